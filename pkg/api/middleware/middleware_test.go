package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cbodonnell/gameservices/pkg/repositories/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "bearer", header: "Bearer abc", want: "abc"},
		{name: "lowercase scheme", header: "bearer abc", want: "abc"},
		{name: "missing", header: "", wantErr: true},
		{name: "wrong scheme", header: "Basic abc", wantErr: true},
		{name: "extra parts", header: "Bearer abc def", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}

			got, err := parseBearerToken(r)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUserRateLimiter_Allow(t *testing.T) {
	limiter := NewUserRateLimiter(0, 2)

	assert.True(t, limiter.Allow("alice"))
	assert.True(t, limiter.Allow("alice"))
	assert.False(t, limiter.Allow("alice"))
	assert.True(t, limiter.Allow("bob"))
}

func TestUserRateLimiter_Allow_dropsIdleUsers(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewUserRateLimiter(0, 1)
	limiter.now = func() time.Time { return now }

	for i := 0; i < 100; i++ {
		assert.True(t, limiter.Allow(fmt.Sprintf("user-%d", i)))
	}
	assert.False(t, limiter.Allow("user-0"))
	assert.Len(t, limiter.limiters, 100)

	now = now.Add(DefaultLimiterIdleTTL / 2)
	assert.True(t, limiter.Allow("alice"))

	now = now.Add(DefaultLimiterIdleTTL/2 + time.Second)
	assert.True(t, limiter.Allow("bob"))
	assert.Len(t, limiter.limiters, 2)
	assert.Contains(t, limiter.limiters, "alice")
	assert.Contains(t, limiter.limiters, "bob")
}

func TestRateLimitMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := NewRateLimitMiddleware(NewUserRateLimiter(0, 1))(next)

	serve := func(user *models.User) int {
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		if user != nil {
			r = r.WithContext(context.WithValue(r.Context(), UserContextKey, user))
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w.Code
	}

	alice := &models.User{ID: "uid-a", Name: "alice"}
	assert.Equal(t, http.StatusNoContent, serve(alice))
	assert.Equal(t, http.StatusTooManyRequests, serve(alice))
	assert.Equal(t, http.StatusInternalServerError, serve(nil))
}
