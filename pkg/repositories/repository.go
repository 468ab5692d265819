package repositories

import (
	"context"

	"github.com/cbodonnell/gameservices/pkg/repositories/models"
)

type Repository interface {
	Close(ctx context.Context) error
	// CreateUser inserts the user or refreshes its name and returns it.
	CreateUser(ctx context.Context, userID string, name string) (*models.User, error)
	ListLeaderboards(ctx context.Context) ([]*models.Leaderboard, error)
	// GetLeaderboard returns ErrNotFound for unknown ids.
	GetLeaderboard(ctx context.Context, leaderboardID string) (*models.Leaderboard, error)
	// SaveScore returns ErrDuplicateSubmission when the submission id was already stored.
	SaveScore(ctx context.Context, score *models.Score) error
	// GetScore returns the score stored under submissionID, or ErrNotFound.
	GetScore(ctx context.Context, submissionID string) (*models.Score, error)
	// ListTopScores returns each user's best score, best first.
	ListTopScores(ctx context.Context, leaderboardID string, limit int) ([]*models.Score, error)
}
