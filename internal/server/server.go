// Package server exposes statement rendering over HTTP.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Veraticus/statement-press/internal/engine"
	"github.com/Veraticus/statement-press/internal/model"
	"github.com/Veraticus/statement-press/internal/render/pdf"
	"github.com/Veraticus/statement-press/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// ProfileResolver picks the layout profile for a request. An empty name
// means the variant's default.
type ProfileResolver func(name string, variant model.Variant) (engine.Profile, error)

// Config wires the server's collaborators.
type Config struct {
	Logger   *slog.Logger
	Storage  service.Storage // optional; runs are recorded when set
	Resolve  ProfileResolver
	Branding engine.Branding
	Now      func() time.Time
	Timeout  time.Duration
	// TLS switches ListenAndServe to HTTPS when set.
	TLS *tls.Config
	// MaxBodyBytes caps the request payload size.
	MaxBodyBytes int64
}

// Server renders statements on request.
type Server struct {
	logger   *slog.Logger
	storage  service.Storage
	resolve  ProfileResolver
	branding engine.Branding
	renderer *pdf.Renderer
	tls      *tls.Config
	now      func() time.Time
	timeout  time.Duration
	maxBody  int64
}

// New creates a server.
func New(cfg Config) (*Server, error) {
	if cfg.Resolve == nil {
		return nil, fmt.Errorf("profile resolver is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 10 << 20
	}

	logger = logger.With("component", "server")
	return &Server{
		logger:   logger,
		storage:  cfg.Storage,
		resolve:  cfg.Resolve,
		branding: cfg.Branding,
		renderer: pdf.NewRenderer(logger),
		tls:      cfg.TLS,
		now:      cfg.Now,
		timeout:  cfg.Timeout,
		maxBody:  cfg.MaxBodyBytes,
	}, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition", "X-Statement-Pages"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/profiles", s.handleProfiles)
		r.Route("/statements", func(r chi.Router) {
			r.Post("/", s.handleRender)
			r.Post("/plan", s.handlePlan)
		})
	})

	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		TLSConfig:         s.tls,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("statement server listening", "addr", addr, "tls", s.tls != nil)
		if s.tls != nil {
			errCh <- srv.ListenAndServeTLS("", "")
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down statement server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
