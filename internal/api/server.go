package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mattjoyce/shade/internal/auth"
	"github.com/mattjoyce/shade/internal/events"
	"github.com/mattjoyce/shade/internal/session"
	"github.com/mattjoyce/shade/internal/theme"
)

// SessionRegistry defines the session operations the API needs.
type SessionRegistry interface {
	Open(id string, hint *bool) (*session.Session, bool, error)
	Len() int
	Config() theme.Config
	Hub() *events.Hub
}

// Config holds API server configuration
type Config struct {
	Listen string
	// APIKey is the legacy single bearer token (admin/full access).
	APIKey string
	// Tokens is an optional list of scoped bearer tokens.
	Tokens []auth.TokenConfig
	// CookieName carries the session id. Clients without cookies send the
	// X-Shade-Session header instead.
	CookieName string
	// SystemSource names where the system signal comes from, for /api/config.
	SystemSource string
	// Diagnostics are the theme option corrections made at load time.
	Diagnostics []theme.Diagnostic
}

// Server represents the HTTP API server
type Server struct {
	config    Config
	sessions  SessionRegistry
	logger    *slog.Logger
	server    *http.Server
	startedAt time.Time
	keepAlive time.Duration
}

// New creates a new API server instance
func New(config Config, sessions SessionRegistry, logger *slog.Logger) *Server {
	if config.CookieName == "" {
		config.CookieName = DefaultCookieName
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config:    config,
		sessions:  sessions,
		logger:    logger,
		startedAt: time.Now(),
		keepAlive: 15 * time.Second,
	}
}

// Handler returns the routed handler without starting a listener.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// Start starts the HTTP server (blocking)
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:        s.config.Listen,
		Handler:     s.setupRoutes(),
		ReadTimeout: 10 * time.Second,
		// No WriteTimeout: /events streams for the life of the connection.
		IdleTimeout: 60 * time.Second,
		// Open streams end when ctx does, so Shutdown is not held up by them.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	s.logger.Info("API server starting", "listen", s.config.Listen)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("API server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// setupRoutes configures the HTTP router
func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(clientHintMiddleware)

	// Unauthenticated ops endpoint.
	r.Get("/healthz", s.handleHealthz)

	// The page and its form actions act only on the caller's own cookie
	// session.
	r.Group(func(r chi.Router) {
		r.Use(s.sessionMiddleware)
		r.Get("/", s.handlePage)
		r.Post("/theme", s.handlePageSetTheme)
		r.Post("/toggle", s.handlePageToggle)
		r.Post("/system", s.handlePageSystem)
		r.Get("/stream", s.handlePageStream)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.With(s.requireScopes(auth.ScopeConfigRO)).Get("/api/config", s.handleGetConfig)

		r.Group(func(r chi.Router) {
			r.Use(s.sessionMiddleware)
			r.With(s.requireScopes(auth.ScopeThemeRO)).Get("/api/theme", s.handleGetTheme)
			r.With(s.requireScopes(auth.ScopeThemeRW)).Put("/api/theme", s.handleSetTheme)
			r.With(s.requireScopes(auth.ScopeThemeRW)).Post("/api/theme/toggle", s.handleToggle)
			r.With(s.requireScopes(auth.ScopeThemeRW)).Put("/api/system", s.handleSetSystem)
			r.With(s.requireScopes(auth.ScopeEventsRO)).Get("/events", s.handleEvents)
		})
	})

	return r
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
