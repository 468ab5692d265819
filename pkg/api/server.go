package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cbodonnell/gameservices/pkg/api/handlers"
	"github.com/cbodonnell/gameservices/pkg/api/live"
	"github.com/cbodonnell/gameservices/pkg/api/middleware"
	authproviders "github.com/cbodonnell/gameservices/pkg/auth/providers"
	"github.com/cbodonnell/gameservices/pkg/log"
	"github.com/cbodonnell/gameservices/pkg/repositories"
	"github.com/gorilla/mux"
	"github.com/klauspost/compress/gzhttp"
	"golang.org/x/time/rate"
)

const (
	// DefaultScoreRate is how many scores per second a user may sustain.
	DefaultScoreRate  rate.Limit = 1
	DefaultScoreBurst            = 5
)

type APIServer struct {
	server *http.Server
	tls    *TLSConfig
	hub    *live.Hub
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewAPIServerOptions struct {
	Port int
	TLS  *TLSConfig
	// AllowOrigin is a comma-separated list of origins allowed for browser clients.
	AllowOrigin  string
	AuthProvider authproviders.AuthProvider
	Repository   repositories.Repository
	// Hub defaults to a new live.Hub.
	Hub *live.Hub
	// ScoreRate and ScoreBurst default to DefaultScoreRate and DefaultScoreBurst.
	ScoreRate  rate.Limit
	ScoreBurst int
}

// NewAPIServer creates a new http.Server for the leaderboard API
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	if opts.Hub == nil {
		opts.Hub = live.NewHub()
	}
	return &APIServer{
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", opts.Port),
			Handler: NewRouter(opts),
		},
		tls: opts.TLS,
		hub: opts.Hub,
	}
}

// NewRouter builds the leaderboard API routes.
func NewRouter(opts NewAPIServerOptions) http.Handler {
	hub := opts.Hub
	if hub == nil {
		hub = live.NewHub()
	}
	scoreRate, scoreBurst := opts.ScoreRate, opts.ScoreBurst
	if scoreRate == 0 {
		scoreRate = DefaultScoreRate
	}
	if scoreBurst == 0 {
		scoreBurst = DefaultScoreBurst
	}
	origins := splitOrigins(opts.AllowOrigin)

	authMiddleware := middleware.NewAuthMiddleware(opts.AuthProvider, opts.Repository)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(middleware.NewUserRateLimiter(scoreRate, scoreBurst))

	r := mux.NewRouter()
	r.Handle("/leaderboards",
		gzhttp.GzipHandler(handlers.HandleListLeaderboards(opts.Repository)),
	).Methods(http.MethodGet, http.MethodOptions)
	r.Handle("/leaderboards/{leaderboardID}/scores",
		gzhttp.GzipHandler(handlers.HandleListScores(opts.Repository)),
	).Methods(http.MethodGet, http.MethodOptions)
	r.Handle("/leaderboards/{leaderboardID}/scores",
		authMiddleware(rateLimitMiddleware(handlers.HandleSubmitScore(opts.Repository, hub))),
	).Methods(http.MethodPost)
	// Websocket upgrades need the raw ResponseWriter, so this route is not compressed.
	r.Handle("/leaderboards/{leaderboardID}/live",
		handlers.HandleLiveScores(opts.Repository, hub, origins),
	).Methods(http.MethodGet)

	r.Use(mux.CORSMethodMiddleware(r))
	r.Use(newCORSMiddleware(origins))
	return r
}

func splitOrigins(allowOrigin string) []string {
	var origins []string
	for _, origin := range strings.Split(allowOrigin, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// newCORSMiddleware echoes allowed origins and answers preflight requests.
func newCORSMiddleware(origins []string) mux.MiddlewareFunc {
	allowed := make(map[string]bool, len(origins))
	for _, origin := range origins {
		allowed[origin] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := r.Header.Get("Origin"); origin != "" && (allowed[origin] || allowed["*"]) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
				w.Header().Add("Vary", "Origin")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Start starts the APIServer
func (s *APIServer) Start() {
	var listenAndServe func() error
	if s.tls != nil {
		log.Info("API server listening on %s with TLS", s.server.Addr)
		listenAndServe = func() error {
			return s.server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		log.Info("API server listening on %s", s.server.Addr)
		listenAndServe = s.server.ListenAndServe
	}
	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("API server closed")
			return
		}
		log.Error("API server error: %v", err)
	}
}

// Stop stops the APIServer. Live subscribers are disconnected first since
// Shutdown does not wait for hijacked connections.
func (s *APIServer) Stop(ctx context.Context) error {
	s.hub.Close()
	return s.server.Shutdown(ctx)
}
