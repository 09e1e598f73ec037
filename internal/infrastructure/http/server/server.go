package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	decoyhttp "3tcapital/biohoneypot/internal/adapters/http/decoy"
	healthhttp "3tcapital/biohoneypot/internal/adapters/http/health"
	monitoringhttp "3tcapital/biohoneypot/internal/adapters/http/monitoring"
	sitehttp "3tcapital/biohoneypot/internal/adapters/http/site"
	apphealth "3tcapital/biohoneypot/internal/application/health"
	appmonitoring "3tcapital/biohoneypot/internal/application/monitoring"
	"3tcapital/biohoneypot/internal/core/interaction"
	"3tcapital/biohoneypot/internal/infrastructure/config"
	"3tcapital/biohoneypot/internal/infrastructure/http/middleware"
)

// Server wires the decoy site, the monitoring API and the capture pipeline
// onto one HTTP listener.
type Server struct {
	log             *slog.Logger
	httpServer      *http.Server
	shutdownTimeout time.Duration
}

// Options configures the server.
type Options struct {
	Config config.AppConfig
	Logger *slog.Logger
	Store  interaction.Store
	// Archive receives a copy of every stored record. Optional.
	Archive middleware.Archiver
	// Dependencies is reported by the health endpoint.
	Dependencies []string
}

// New builds the router and the underlying http.Server.
func New(opts Options) (*Server, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Store == nil {
		return nil, errors.New("store is required")
	}

	cfg := opts.Config
	log := opts.Logger

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Correlation)
	if cfg.Honeypot.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.Fallback(log))
	r.Use(middleware.Capture(middleware.CaptureOptions{
		Store:       opts.Store,
		Logger:      log,
		Routes:      r,
		MaxBodySize: cfg.Honeypot.MaxBodySize,
		Archive:     opts.Archive,
	}))
	// HEAD is served by the GET route, as browsers and scanners expect.
	r.Use(chimw.GetHead)
	r.Use(middleware.CORS(r))
	r.Use(middleware.RequestLogger(log))

	healthService := apphealth.NewService(apphealth.Metadata{
		Service:      cfg.App.Name,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		Dependencies: opts.Dependencies,
	}, opts.Store)

	sitehttp.NewHandler(log, cfg.App.Version).Routes(r)
	decoyhttp.NewHandler(log, cfg.Honeypot.MaxBodySize).Routes(r)
	monitoringhttp.NewHandler(appmonitoring.NewService(opts.Store), log).Routes(r)
	r.Get("/api/honeypot/health", healthhttp.NewHandler(healthService, log).Status)

	srv := &http.Server{
		Addr:         cfg.HTTP.Address(),
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &Server{
		log:             log,
		httpServer:      srv,
		shutdownTimeout: cfg.HTTP.ShutdownTimeout,
	}, nil
}

// Handler returns the fully wired router.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server started", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	timeout := s.shutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.log.Info("shutting down HTTP server", "timeout", timeout.String())
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown HTTP server: %w", err)
	}
	return <-errCh
}
