package firebase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNoCredentials is returned by a CredentialStore that holds nothing.
var ErrNoCredentials = errors.New("no stored credentials")

// Credentials are the tokens of a signed-in player.
type Credentials struct {
	UserID       string
	Email        string
	IDToken      string
	RefreshToken string
	ExpiresAt    time.Time
}

// Expired reports whether the ID token expires within leeway of now.
func (c *Credentials) Expired(now time.Time, leeway time.Duration) bool {
	return !now.Add(leeway).Before(c.ExpiresAt)
}

// CredentialStore persists the player's credentials between runs so the
// provider can sign in silently.
type CredentialStore interface {
	Load(ctx context.Context) (*Credentials, error)
	Save(ctx context.Context, credentials *Credentials) error
	Clear(ctx context.Context) error
}

var _ CredentialStore = &MemoryCredentialStore{}

type MemoryCredentialStore struct {
	lock        sync.Mutex
	credentials *Credentials
}

func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{}
}

func (s *MemoryCredentialStore) Load(ctx context.Context) (*Credentials, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.credentials == nil {
		return nil, ErrNoCredentials
	}
	c := *s.credentials
	return &c, nil
}

func (s *MemoryCredentialStore) Save(ctx context.Context, credentials *Credentials) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	c := *credentials
	s.credentials = &c
	return nil
}

func (s *MemoryCredentialStore) Clear(ctx context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.credentials = nil
	return nil
}

var _ CredentialStore = &SQLiteCredentialStore{}

// SQLiteCredentialStore keeps a single credentials row in a local SQLite file.
type SQLiteCredentialStore struct {
	db *sql.DB
}

func NewSQLiteCredentialStore(ctx context.Context, path string) (*SQLiteCredentialStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}
	db.SetMaxOpenConns(1)

	q := `
	CREATE TABLE IF NOT EXISTS credentials (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		user_id TEXT NOT NULL,
		email TEXT NOT NULL,
		id_token TEXT NOT NULL,
		refresh_token TEXT NOT NULL,
		expires_at INTEGER NOT NULL
	);
	`
	if _, err := db.ExecContext(ctx, q); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create credentials table: %w", err)
	}

	return &SQLiteCredentialStore{
		db: db,
	}, nil
}

func (s *SQLiteCredentialStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteCredentialStore) Load(ctx context.Context) (*Credentials, error) {
	q := `
	SELECT user_id, email, id_token, refresh_token, expires_at FROM credentials WHERE id = 1;
	`
	c := &Credentials{}
	var expiresAt int64
	err := s.db.QueryRowContext(ctx, q).Scan(&c.UserID, &c.Email, &c.IDToken, &c.RefreshToken, &expiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNoCredentials
		}
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	c.ExpiresAt = time.UnixMilli(expiresAt)
	return c, nil
}

func (s *SQLiteCredentialStore) Save(ctx context.Context, c *Credentials) error {
	q := `
	INSERT OR REPLACE INTO credentials (id, user_id, email, id_token, refresh_token, expires_at)
	VALUES (1, ?, ?, ?, ?, ?);
	`
	if _, err := s.db.ExecContext(ctx, q, c.UserID, c.Email, c.IDToken, c.RefreshToken, c.ExpiresAt.UnixMilli()); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

func (s *SQLiteCredentialStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM credentials;"); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}
