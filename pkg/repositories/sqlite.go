package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/cbodonnell/gameservices/pkg/repositories/models"
	"github.com/mattn/go-sqlite3"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ Repository = &SQLiteRepository{}

// NewSQLiteRepository opens the database at path and applies every .sql file
// in migrations in lexical order. Migrations must be idempotent.
func NewSQLiteRepository(ctx context.Context, path string, migrations string) (Repository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db, migrations); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

func migrate(ctx context.Context, db *sql.DB, migrations string) error {
	dir, err := os.ReadDir(migrations)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	names := make([]string, 0, len(dir))
	for _, entry := range dir {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".sql" {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		migrationPath := filepath.Join(migrations, name)
		migration, err := os.ReadFile(migrationPath)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", migrationPath, err)
		}

		if _, err := db.ExecContext(ctx, string(migration)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", migrationPath, err)
		}
	}

	return nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, userID string, name string) (*models.User, error) {
	q := `
	INSERT INTO users (id, name, created_at) VALUES (?, ?, strftime('%s', 'now'))
	ON CONFLICT (id) DO UPDATE SET name = excluded.name;
	`
	if _, err := r.db.ExecContext(ctx, q, userID, name); err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return &models.User{
		ID:   userID,
		Name: name,
	}, nil
}

func (r *SQLiteRepository) ListLeaderboards(ctx context.Context) ([]*models.Leaderboard, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM leaderboards ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboards: %w", err)
	}
	defer rows.Close()

	leaderboards := make([]*models.Leaderboard, 0)
	for rows.Next() {
		leaderboard := &models.Leaderboard{}
		if err := rows.Scan(&leaderboard.ID, &leaderboard.Name); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard: %w", err)
		}
		leaderboards = append(leaderboards, leaderboard)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leaderboards: %w", err)
	}

	return leaderboards, nil
}

func (r *SQLiteRepository) GetLeaderboard(ctx context.Context, leaderboardID string) (*models.Leaderboard, error) {
	leaderboard := &models.Leaderboard{}
	err := r.db.QueryRowContext(ctx, "SELECT id, name FROM leaderboards WHERE id = ?", leaderboardID).
		Scan(&leaderboard.ID, &leaderboard.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan leaderboard: %w", err)
	}
	return leaderboard, nil
}

func (r *SQLiteRepository) SaveScore(ctx context.Context, score *models.Score) error {
	q := `
	INSERT INTO scores (submission_id, leaderboard_id, user_id, score, created_at)
	VALUES (?, ?, ?, ?, ?);
	`
	_, err := r.db.ExecContext(ctx, q, score.SubmissionID, score.LeaderboardID, score.UserID, int64(score.Score), score.Timestamp)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && (sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
			return &ErrDuplicateSubmission{SubmissionID: score.SubmissionID}
		}
		return fmt.Errorf("failed to insert score: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetScore(ctx context.Context, submissionID string) (*models.Score, error) {
	var value int64
	score := &models.Score{}
	err := r.db.QueryRowContext(ctx, fmt.Sprintf(scoreBySubmissionQuery, "?"), submissionID).
		Scan(&score.SubmissionID, &score.LeaderboardID, &score.UserID, &score.UserName, &value, &score.Timestamp)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan score: %w", err)
	}
	score.Score = uint64(value)
	return score, nil
}

func (r *SQLiteRepository) ListTopScores(ctx context.Context, leaderboardID string, limit int) ([]*models.Score, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(topScoresQuery, "?", "?"), leaderboardID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer rows.Close()

	scores := make([]*models.Score, 0, limit)
	for rows.Next() {
		var value int64
		score := &models.Score{LeaderboardID: leaderboardID}
		if err := rows.Scan(&score.UserID, &score.UserName, &value, &score.SubmissionID, &score.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		score.Score = uint64(value)
		score.Rank = len(scores) + 1
		scores = append(scores, score)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scores: %w", err)
	}

	return scores, nil
}
