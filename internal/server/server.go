// Package server exposes the dashboard over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"github.com/KaramelBytes/cnodash/internal/pipeline"
)

// Runner produces the current dashboard. *pipeline.Pipeline satisfies it.
type Runner interface {
	Run(ctx context.Context) (*pipeline.Dashboard, error)
}

// Options configures a Server.
type Options struct {
	Addr  string
	Debug bool
}

// Server serves the dashboard page, chart images and probes.
type Server struct {
	runner Runner
	opt    Options
	logger *zap.Logger
	page   pageCache
}

// New creates a server backed by runner.
func New(runner Runner, opt Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opt.Addr == "" {
		opt.Addr = ":8501"
	}
	return &Server{runner: runner, opt: opt, logger: logger}
}

// Handler returns the routed handler with request IDs, logging and gzip applied.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()
	router.HandlerFunc(http.MethodGet, "/", s.dashboardHandler)
	router.HandlerFunc(http.MethodGet, "/charts/:panel", s.chartHandler)
	router.HandlerFunc(http.MethodGet, "/healthz", s.healthHandler)
	if s.opt.Debug {
		router.HandlerFunc(http.MethodGet, "/debug/", s.debugHandler)
	}
	return s.requestID(s.logRequests(compress(router)))
}

// HTTPServer builds the http.Server used by ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.opt.Addr,
		Handler:      s.Handler(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorLog:     zap.NewStdLog(s.logger.Named("http")),
	}
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := s.HTTPServer()
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", zap.String("addr", srv.Addr), zap.Bool("debug", s.opt.Debug))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}
