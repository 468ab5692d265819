package handlers

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/cbodonnell/gameservices/pkg/api/middleware"
	"github.com/cbodonnell/gameservices/pkg/log"
	"github.com/cbodonnell/gameservices/pkg/repositories"
	"github.com/cbodonnell/gameservices/pkg/repositories/models"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	DefaultScoresLimit = 10
	MaxScoresLimit     = 100

	liveWriteTimeout = 5 * time.Second
)

// ScorePublisher receives every newly accepted score.
type ScorePublisher interface {
	Publish(event models.ScoreEvent)
}

// ScoreSubscriber streams accepted scores for a leaderboard.
type ScoreSubscriber interface {
	Subscribe(leaderboardID string) (<-chan models.ScoreEvent, func())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response: %v", err)
	}
}

// lookupLeaderboard writes the error response and returns false when the
// leaderboard in the route does not exist.
func lookupLeaderboard(w http.ResponseWriter, r *http.Request, repository repositories.Repository) (*models.Leaderboard, bool) {
	leaderboardID := mux.Vars(r)["leaderboardID"]
	leaderboard, err := repository.GetLeaderboard(r.Context(), leaderboardID)
	if err != nil {
		if repositories.IsNotFound(err) {
			http.Error(w, "Leaderboard not found", http.StatusNotFound)
			return nil, false
		}
		log.Error("failed to get leaderboard %s: %v", leaderboardID, err)
		http.Error(w, "Failed to get leaderboard", http.StatusInternalServerError)
		return nil, false
	}
	return leaderboard, true
}

func HandleListLeaderboards(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		leaderboards, err := repository.ListLeaderboards(r.Context())
		if err != nil {
			log.Error("failed to list leaderboards: %v", err)
			http.Error(w, "Failed to list leaderboards", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, leaderboards)
	}
}

func HandleListScores(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := DefaultScoresLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 || parsed > MaxScoresLimit {
				http.Error(w, "Limit must be between 1 and 100", http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		leaderboard, ok := lookupLeaderboard(w, r, repository)
		if !ok {
			return
		}

		scores, err := repository.ListTopScores(r.Context(), leaderboard.ID, limit)
		if err != nil {
			log.Error("failed to list scores: %v", err)
			http.Error(w, "Failed to list scores", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, scores)
	}
}

// HandleSubmitScore stores a score for the authenticated user. Resubmitting a
// submission_id is answered with the stored score without publishing it again,
// or with 409 if the id belongs to another user or leaderboard.
func HandleSubmitScore(repository repositories.Repository, publisher ScorePublisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.UserFromContext(r.Context())
		if !ok {
			log.Error("failed to get user from context")
			http.Error(w, "Failed to get user from context", http.StatusInternalServerError)
			return
		}

		value, err := strconv.ParseUint(r.FormValue("score"), 10, 64)
		if err != nil || value > math.MaxInt64 {
			http.Error(w, "Score must be a non-negative integer", http.StatusBadRequest)
			return
		}

		submissionID := uuid.New()
		if raw := r.FormValue("submission_id"); raw != "" {
			submissionID, err = uuid.Parse(raw)
			if err != nil {
				http.Error(w, "Invalid submission ID", http.StatusBadRequest)
				return
			}
		}

		leaderboard, ok := lookupLeaderboard(w, r, repository)
		if !ok {
			return
		}

		score := &models.Score{
			LeaderboardID: leaderboard.ID,
			UserID:        user.ID,
			UserName:      user.Name,
			Score:         value,
			SubmissionID:  submissionID.String(),
			Timestamp:     time.Now().UnixMilli(),
		}
		if err := repository.SaveScore(r.Context(), score); err != nil {
			if repositories.IsDuplicateSubmission(err) {
				handleDuplicateSubmission(w, r, repository, score)
				return
			}
			log.Error("failed to save score: %v", err)
			http.Error(w, "Failed to save score", http.StatusInternalServerError)
			return
		}

		publisher.Publish(models.ScoreEvent{
			LeaderboardID: leaderboard.ID,
			Score:         *score,
		})
		writeJSON(w, http.StatusCreated, score)
	}
}

func handleDuplicateSubmission(w http.ResponseWriter, r *http.Request, repository repositories.Repository, score *models.Score) {
	stored, err := repository.GetScore(r.Context(), score.SubmissionID)
	if err != nil {
		log.Error("failed to get score %s: %v", score.SubmissionID, err)
		http.Error(w, "Failed to save score", http.StatusInternalServerError)
		return
	}
	if stored.UserID != score.UserID || stored.LeaderboardID != score.LeaderboardID {
		log.Warn("submission %s from user %s reuses an id owned by user %s", score.SubmissionID, score.UserID, stored.UserID)
		http.Error(w, "Submission ID already used", http.StatusConflict)
		return
	}
	log.Debug("duplicate submission %s from user %s", score.SubmissionID, score.UserID)
	writeJSON(w, http.StatusOK, stored)
}

// HandleLiveScores upgrades to a websocket and streams ScoreEvents for the
// leaderboard until either side goes away.
func HandleLiveScores(repository repositories.Repository, subscriber ScoreSubscriber, originPatterns []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		leaderboard, ok := lookupLeaderboard(w, r, repository)
		if !ok {
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			log.Error("failed to accept websocket connection: %v", err)
			return
		}
		defer conn.CloseNow()

		events, unsubscribe := subscriber.Subscribe(leaderboard.ID)
		defer unsubscribe()

		// The feed is one way; CloseRead handles control frames and cancels
		// ctx once the client disconnects.
		ctx := conn.CloseRead(r.Context())
		log.Debug("live subscriber joined leaderboard %s", leaderboard.ID)

		for {
			select {
			case <-ctx.Done():
				log.Debug("live subscriber left leaderboard %s", leaderboard.ID)
				return
			case event, ok := <-events:
				if !ok {
					conn.Close(websocket.StatusGoingAway, "server shutting down")
					return
				}
				if err := writeEvent(ctx, conn, event); err != nil {
					log.Debug("failed to write live event: %v", err)
					return
				}
			}
		}
	}
}

func writeEvent(ctx context.Context, conn *websocket.Conn, event models.ScoreEvent) error {
	ctx, cancel := context.WithTimeout(ctx, liveWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, event)
}
