package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/cbodonnell/gameservices/pkg/log"
	"github.com/cbodonnell/gameservices/pkg/repositories/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

type PostgresRepository struct {
	pool *pgxpool.Pool
}

var _ Repository = &PostgresRepository{}

// NewPostgresRepository connects to the database at connStr.
// The caller is responsible for calling Close() on the repository.
func NewPostgresRepository(ctx context.Context, connStr string) (Repository, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	var username string
	var database string
	err = pool.QueryRow(ctx, "SELECT current_user, current_database()").Scan(&username, &database)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to query database: %w", err)
	}

	log.Info("Connected to %s as %s", database, username)

	return &PostgresRepository{
		pool: pool,
	}, nil
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	r.pool.Close()
	return nil
}

func (r *PostgresRepository) CreateUser(ctx context.Context, userID string, name string) (*models.User, error) {
	q := `
	INSERT INTO users (id, name, created_at) VALUES ($1, $2, NOW())
	ON CONFLICT (id) DO UPDATE SET name = $2
	RETURNING id, name;
	`
	user := &models.User{}
	if err := r.pool.QueryRow(ctx, q, userID, name).Scan(&user.ID, &user.Name); err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) ListLeaderboards(ctx context.Context) ([]*models.Leaderboard, error) {
	rows, err := r.pool.Query(ctx, "SELECT id, name FROM leaderboards ORDER BY id")
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

func (r *PostgresRepository) GetLeaderboard(ctx context.Context, leaderboardID string) (*models.Leaderboard, error) {
	leaderboard := &models.Leaderboard{}
	err := r.pool.QueryRow(ctx, "SELECT id, name FROM leaderboards WHERE id = $1", leaderboardID).
		Scan(&leaderboard.ID, &leaderboard.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan leaderboard: %w", err)
	}
	return leaderboard, nil
}

func (r *PostgresRepository) SaveScore(ctx context.Context, score *models.Score) error {
	q := `
	INSERT INTO scores (submission_id, leaderboard_id, user_id, score, created_at)
	VALUES ($1, $2, $3, $4, $5);
	`
	_, err := r.pool.Exec(ctx, q, score.SubmissionID, score.LeaderboardID, score.UserID, int64(score.Score), score.Timestamp)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return &ErrDuplicateSubmission{SubmissionID: score.SubmissionID}
		}
		return fmt.Errorf("failed to insert score: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetScore(ctx context.Context, submissionID string) (*models.Score, error) {
	var value int64
	score := &models.Score{}
	err := r.pool.QueryRow(ctx, fmt.Sprintf(scoreBySubmissionQuery, "$1"), submissionID).
		Scan(&score.SubmissionID, &score.LeaderboardID, &score.UserID, &score.UserName, &value, &score.Timestamp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan score: %w", err)
	}
	score.Score = uint64(value)
	return score, nil
}

func (r *PostgresRepository) ListTopScores(ctx context.Context, leaderboardID string, limit int) ([]*models.Score, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(topScoresQuery, "$1", "$2"), leaderboardID, limit)
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
