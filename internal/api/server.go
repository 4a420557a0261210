// Package api serves adaptive assessments over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/abhisek/adaptiq/internal/adaptive"
	"github.com/abhisek/adaptiq/internal/catalog"
	"github.com/abhisek/adaptiq/internal/logger"
	"github.com/abhisek/adaptiq/internal/session"
	"github.com/abhisek/adaptiq/internal/store"
)

// Config holds HTTP server settings.
type Config struct {
	Addr            string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
	// SessionTTL drops sessions idle for longer than this.
	SessionTTL time.Duration
}

// DefaultConfig returns the standard server settings.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		RequestTimeout:  60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		AllowedOrigins:  []string{"*"},
		SessionTTL:      2 * time.Hour,
	}
}

// Deps are the collaborators the handlers use.
type Deps struct {
	Catalog       *catalog.Catalog
	Engine        *adaptive.Engine
	Grader        session.Grader
	Explainer     session.Explainer // optional
	SessionConfig session.Config
	Profiles      store.ProfileRepo
	Recorder      *session.Recorder
	Registry      *session.Registry
}

// Server represents the HTTP API server.
type Server struct {
	cfg    Config
	deps   Deps
	log    *logger.Logger
	router *chi.Mux
}

// NewServer creates a new API server.
func NewServer(cfg Config, deps Deps, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	if deps.Registry == nil {
		deps.Registry = session.NewRegistry()
	}
	s := &Server{cfg: cfg, deps: deps, log: log}
	s.setupRouter()
	return s
}

// Router returns the configured router.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Post("/answers", s.handleSubmitAnswer)
				r.Post("/finish", s.handleFinishSession)
			})
		})
		r.Get("/profiles/{user}", s.handleGetProfile)
		r.Get("/profiles/{user}/results", s.handleListResults)
		r.Get("/catalog", s.handleCatalog)
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.log.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// ListenAndServe serves until ctx is cancelled, then shuts down
// gracefully. Idle sessions are expired in the background.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.expireLoop(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) expireLoop(ctx context.Context) {
	if s.cfg.SessionTTL <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.SessionTTL / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.deps.Registry.Expire(s.cfg.SessionTTL); n > 0 {
				s.log.Debug("expired idle sessions", "count", n)
			}
		}
	}
}
