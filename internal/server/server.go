// Package server provides the HTTP API for platemap coverage queries.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/platemap"
	"github.com/agentstation/platemap/cmd/application"
	"github.com/agentstation/platemap/internal/server/metrics"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	app       application.Application
	platemap  platemap.Platemap
	metrics   *metrics.Metrics
	logger    *zerolog.Logger
	config    Config
	startTime time.Time
}

// New creates a server. The platemap instance, and with it the catalog, is
// resolved here so a broken catalog stops startup.
func New(app application.Application, cfg Config) (*Server, error) {
	logger := app.Logger()
	cfg = cfg.withDefaults()
	cfg.PathPrefix = normalizePrefix(cfg.PathPrefix)

	pm, err := app.Platemap()
	if err != nil {
		return nil, fmt.Errorf("loading platemap: %w", err)
	}

	s := &Server{
		app:       app,
		platemap:  pm,
		logger:    logger,
		config:    cfg,
		startTime: time.Now(),
	}

	if cfg.MetricsEnabled {
		m, err := metrics.New(nil)
		if err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
		m.SetCatalogEntries(pm.Catalog().Len())
		pm.OnQuery(func(req platemap.Request, res platemap.Result) {
			m.RecordQuery(req.Path(), res.Status.String(), len(req.Rows), len(res.StateCounts))
		})
		s.metrics = m
	}

	logger.Debug().
		Int("catalog_entries", pm.Catalog().Len()).
		Str("prefix", cfg.PathPrefix).
		Bool("metrics", cfg.MetricsEnabled).
		Msg("Server instance created")
	return s, nil
}

// Handler returns the configured http.Handler with middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully,
// draining in-flight requests for at most the shutdown timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("Server starting")
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			serverErr <- fmt.Errorf("server failed: %w", err)
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		s.logger.Info().Msg("Shutdown requested")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	if err := <-serverErr; err != nil {
		return err
	}
	s.logger.Info().Msg("Server stopped gracefully")
	return nil
}

// StartTime returns the server start time for uptime calculations.
func (s *Server) StartTime() time.Time {
	return s.startTime
}

// Metrics returns the metrics collectors, or nil when disabled.
func (s *Server) Metrics() *metrics.Metrics {
	return s.metrics
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	if prefix != "" && !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return prefix
}
