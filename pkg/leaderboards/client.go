package leaderboards

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cbodonnell/gameservices/pkg/repositories/models"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	DefaultMaxRetries = 4
	DefaultRetryBase  = 250 * time.Millisecond
)

// APIError is a non-2xx reply from the leaderboard API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("leaderboard api error: status: %d, message: %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err is an API rejection of the caller's token.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// Client talks to the leaderboard API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries uint64
	retryBase  time.Duration
}

type NewClientOptions struct {
	// BaseURL is the API root, e.g. http://localhost:9090.
	BaseURL string
	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
	// MaxRetries and RetryBase tune SubmitScore backoff. Zero values use the defaults.
	MaxRetries uint64
	RetryBase  time.Duration
}

func NewClient(opts NewClientOptions) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		maxRetries: opts.MaxRetries,
		retryBase:  opts.RetryBase,
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	if c.maxRetries == 0 {
		c.maxRetries = DefaultMaxRetries
	}
	if c.retryBase == 0 {
		c.retryBase = DefaultRetryBase
	}
	return c
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(b))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) ListLeaderboards(ctx context.Context) ([]models.Leaderboard, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/leaderboards", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var leaderboards []models.Leaderboard
	if err := c.do(req, &leaderboards); err != nil {
		return nil, fmt.Errorf("failed to list leaderboards: %w", err)
	}
	return leaderboards, nil
}

func (c *Client) ListScores(ctx context.Context, leaderboardID string, limit int) ([]models.Score, error) {
	u := fmt.Sprintf("%s/leaderboards/%s/scores?limit=%d", c.baseURL, url.PathEscape(leaderboardID), limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var scores []models.Score
	if err := c.do(req, &scores); err != nil {
		return nil, fmt.Errorf("failed to list scores for %s: %w", leaderboardID, err)
	}
	return scores, nil
}

// Submission is one score report. ID makes retries idempotent on the server.
type Submission struct {
	ID    uuid.UUID
	Score uint64
}

func NewSubmission(score uint64) Submission {
	return Submission{
		ID:    uuid.New(),
		Score: score,
	}
}

// SubmitScore posts s with idToken as bearer. Transport errors and 5xx replies
// are retried with exponential backoff; every attempt reuses s.ID.
func (c *Client) SubmitScore(ctx context.Context, idToken string, leaderboardID string, s Submission) (*models.Score, error) {
	form := url.Values{}
	form.Set("score", strconv.FormatUint(s.Score, 10))
	form.Set("submission_id", s.ID.String())
	u := fmt.Sprintf("%s/leaderboards/%s/scores", c.baseURL, url.PathEscape(leaderboardID))

	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.retryBase))
	score := &models.Score{}
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(form.Encode()))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Authorization", "Bearer "+idToken)

		err = c.do(req, score)
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
			return err
		}
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit score to %s: %w", leaderboardID, err)
	}
	return score, nil
}

// Watch streams live score events for leaderboardID to fn until ctx is done
// or the connection drops. It returns nil when ctx ends the watch.
func (c *Client) Watch(ctx context.Context, leaderboardID string, fn func(models.ScoreEvent)) error {
	u := fmt.Sprintf("%s/leaderboards/%s/live", c.baseURL, url.PathEscape(leaderboardID))
	conn, _, err := websocket.Dial(ctx, u, &websocket.DialOptions{
		HTTPClient: c.httpClient,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to dial live scores for %s: %w", leaderboardID, err)
	}
	defer conn.CloseNow()

	for {
		var event models.ScoreEvent
		if err := wsjson.Read(ctx, conn, &event); err != nil {
			if ctx.Err() != nil {
				conn.Close(websocket.StatusNormalClosure, "")
				return nil
			}
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return nil
			}
			return fmt.Errorf("failed to read live score: %w", err)
		}
		fn(event)
	}
}
