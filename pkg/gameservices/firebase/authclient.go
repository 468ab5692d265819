package firebase

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

	authhandlers "github.com/cbodonnell/gameservices/pkg/auth/handlers"
)

// AuthError is a non-200 reply from the auth server. 4xx messages are meant
// for the player; 401 means the credentials themselves were refused.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error: status: %d, message: %s", e.StatusCode, e.Message)
}

// IsRejected reports whether the auth server refused the request itself, as
// opposed to failing to process it.
func IsRejected(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr) && authErr.StatusCode >= 400 && authErr.StatusCode < 500
}

// IsUnauthorized reports whether the auth server refused the credentials
// themselves, so they should not be tried again.
func IsUnauthorized(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr) && authErr.StatusCode == http.StatusUnauthorized
}

// AuthClient calls the auth server's login and refresh endpoints.
type AuthClient struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

func NewAuthClient(baseURL string, httpClient *http.Client) *AuthClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &AuthClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		now:        time.Now,
	}
}

func (c *AuthClient) postForm(ctx context.Context, path string, values url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(values.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &AuthError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(b))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *AuthClient) expiresAt(expiresIn string) time.Time {
	seconds, err := strconv.Atoi(expiresIn)
	if err != nil || seconds <= 0 {
		// Firebase ID tokens live for an hour.
		seconds = 3600
	}
	return c.now().Add(time.Duration(seconds) * time.Second)
}

// Login signs in with email and password.
func (c *AuthClient) Login(ctx context.Context, email, password string) (*Credentials, error) {
	values := url.Values{}
	values.Set("email", email)
	values.Set("password", password)

	resp := &authhandlers.LoginResponseBody{}
	if err := c.postForm(ctx, "/login", values, resp); err != nil {
		return nil, fmt.Errorf("failed to login: %w", err)
	}

	return &Credentials{
		UserID:       resp.LocalID,
		Email:        resp.Email,
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    c.expiresAt(resp.ExpiresIn),
	}, nil
}

// Refresh exchanges a refresh token for fresh credentials. The email is not
// part of the refresh reply and is left empty.
func (c *AuthClient) Refresh(ctx context.Context, refreshToken string) (*Credentials, error) {
	values := url.Values{}
	values.Set("refreshToken", refreshToken)

	resp := &authhandlers.RefreshResponseBody{}
	if err := c.postForm(ctx, "/refresh", values, resp); err != nil {
		return nil, fmt.Errorf("failed to refresh: %w", err)
	}

	return &Credentials{
		UserID:       resp.UserID,
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    c.expiresAt(resp.ExpiresIn),
	}, nil
}
