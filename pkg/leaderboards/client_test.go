package leaderboards

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cbodonnell/gameservices/pkg/repositories/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(NewClientOptions{
		BaseURL:    server.URL + "/",
		MaxRetries: 3,
		RetryBase:  time.Millisecond,
	})
}

func TestClient_ListScores(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/leaderboards/score1/scores", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		json.NewEncoder(w).Encode([]models.Score{{LeaderboardID: "score1", UserName: "alice", Score: 700, Rank: 1}})
	}))

	scores, err := client.ListScores(context.Background(), "score1", 5)

	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, uint64(700), scores[0].Score)
}

func TestClient_ListLeaderboards_error(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Failed to list leaderboards", http.StatusInternalServerError)
	}))

	_, err := client.ListLeaderboards(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "Failed to list leaderboards", apiErr.Message)
}

func TestClient_SubmitScore(t *testing.T) {
	tests := []struct {
		name         string
		statuses     []int
		wantErr      bool
		wantAttempts int32
		unauthorized bool
	}{
		{name: "first attempt", statuses: []int{http.StatusCreated}, wantAttempts: 1},
		{name: "retries server errors", statuses: []int{http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusCreated}, wantAttempts: 3},
		{name: "duplicate is success", statuses: []int{http.StatusOK}, wantAttempts: 1},
		{name: "client errors are final", statuses: []int{http.StatusUnauthorized}, wantErr: true, wantAttempts: 1, unauthorized: true},
		{name: "gives up", statuses: []int{500, 500, 500, 500, 500}, wantErr: true, wantAttempts: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			submission := NewSubmission(500)
			var attempts atomic.Int32
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := attempts.Add(1)
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "Bearer id-token", r.Header.Get("Authorization"))
				assert.Equal(t, "500", r.FormValue("score"))
				assert.Equal(t, submission.ID.String(), r.FormValue("submission_id"))

				status := tt.statuses[len(tt.statuses)-1]
				if int(n) <= len(tt.statuses) {
					status = tt.statuses[n-1]
				}
				if status >= 300 {
					http.Error(w, http.StatusText(status), status)
					return
				}
				w.WriteHeader(status)
				json.NewEncoder(w).Encode(&models.Score{LeaderboardID: "score1", Score: 500, SubmissionID: submission.ID.String()})
			}))

			score, err := client.SubmitScore(context.Background(), "id-token", "score1", submission)

			assert.Equal(t, tt.wantAttempts, attempts.Load())
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.unauthorized, IsUnauthorized(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint64(500), score.Score)
		})
	}
}

func TestClient_Watch(t *testing.T) {
	events := []models.ScoreEvent{
		{LeaderboardID: "score1", Score: models.Score{UserName: "alice", Score: 500}},
		{LeaderboardID: "score1", Score: models.Score{UserName: "bob", Score: 700}},
	}
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/leaderboards/score1/live", r.URL.Path)
		conn, err := websocket.Accept(w, r, nil)
		if !assert.NoError(t, err) {
			return
		}
		defer conn.CloseNow()
		for _, event := range events {
			if err := wsjson.Write(r.Context(), conn, event); err != nil {
				return
			}
		}
		conn.Close(websocket.StatusNormalClosure, "")
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got []models.ScoreEvent
	err := client.Watch(ctx, "score1", func(event models.ScoreEvent) {
		got = append(got, event)
	})

	require.NoError(t, err)
	assert.Equal(t, events, got)
}

func TestClient_Watch_cancel(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.CloseNow()
		<-conn.CloseRead(r.Context()).Done()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- client.Watch(ctx, "score1", func(models.ScoreEvent) {})
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
