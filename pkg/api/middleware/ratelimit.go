package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/cbodonnell/gameservices/pkg/log"
	"golang.org/x/time/rate"
)

// DefaultLimiterIdleTTL is how long a user's bucket is kept after their last
// request.
const DefaultLimiterIdleTTL = 10 * time.Minute

// UserRateLimiter hands out one token bucket per user id. Buckets idle for
// longer than the TTL are dropped on a later call to Allow.
type UserRateLimiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time

	lock      sync.Mutex
	limiters  map[string]*userLimiter
	lastSweep time.Time
}

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewUserRateLimiter(limit rate.Limit, burst int) *UserRateLimiter {
	idleTTL := DefaultLimiterIdleTTL
	// An evicted bucket comes back full, so keep it at least until it would have refilled.
	if limit > 0 {
		if refill := time.Duration(float64(burst) / float64(limit) * float64(time.Second)); refill > idleTTL {
			idleTTL = refill
		}
	}
	return &UserRateLimiter{
		limit:    limit,
		burst:    burst,
		idleTTL:  idleTTL,
		now:      time.Now,
		limiters: make(map[string]*userLimiter),
	}
}

// Allow reports whether userID may make another request now.
func (l *UserRateLimiter) Allow(userID string) bool {
	now := l.now()

	l.lock.Lock()
	if now.Sub(l.lastSweep) >= l.idleTTL {
		l.sweep(now)
	}
	entry, ok := l.limiters[userID]
	if !ok {
		entry = &userLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[userID] = entry
	}
	entry.lastSeen = now
	l.lock.Unlock()

	return entry.limiter.AllowN(now, 1)
}

// sweep drops buckets idle for longer than the TTL. l.lock must be held.
func (l *UserRateLimiter) sweep(now time.Time) {
	for userID, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > l.idleTTL {
			delete(l.limiters, userID)
		}
	}
	l.lastSweep = now
}

// NewRateLimitMiddleware rejects requests from users over their limit with 429.
// It must run after the auth middleware.
func NewRateLimitMiddleware(limiter *UserRateLimiter) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				log.Error("rate limit middleware used without an authenticated user")
				http.Error(w, "Failed to get user from context", http.StatusInternalServerError)
				return
			}
			if !limiter.Allow(user.ID) {
				http.Error(w, "Too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
