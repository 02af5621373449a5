// Package httpserver wires the HTTP API onto a single listener with
// graceful shutdown.
package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/SandraS2611/agrimensores-sde/internal/config"
	derrors "github.com/SandraS2611/agrimensores-sde/internal/errors"
	"github.com/SandraS2611/agrimensores-sde/internal/eventstore"
	"github.com/SandraS2611/agrimensores-sde/internal/metrics"
	"github.com/SandraS2611/agrimensores-sde/internal/server/handlers"
	smw "github.com/SandraS2611/agrimensores-sde/internal/server/middleware"
	"github.com/SandraS2611/agrimensores-sde/internal/storage"
	"github.com/SandraS2611/agrimensores-sde/internal/survey"
)

// Options carries the collaborators the server exposes over HTTP.
type Options struct {
	Plans     *survey.Store
	Artifacts storage.ArtifactStore
	Generator handlers.Generator
	Runtime   handlers.Runtime
	Recorder  metrics.Recorder
	// Events, when set, exposes the generation audit log endpoints.
	Events eventstore.Store
	// MetricsHandler, when set, is mounted at /metrics.
	MetricsHandler http.Handler
	Version        string
}

// Server manages the HTTP API endpoints.
type Server struct {
	cfg  *config.ServerConfig
	opts Options
	srv  *http.Server

	planHandlers       *handlers.PlanHandlers
	memoriaHandlers    *handlers.MemoriaHandlers
	monitoringHandlers *handlers.MonitoringHandlers
	eventHandlers      *handlers.EventHandlers

	mchain func(http.Handler) http.Handler
}

// New constructs a new HTTP server wiring instance.
func New(cfg *config.ServerConfig, opts Options) *Server {
	s := &Server{
		cfg:  cfg,
		opts: opts,
	}

	s.planHandlers = handlers.NewPlanHandlers(opts.Plans)
	s.memoriaHandlers = handlers.NewMemoriaHandlers(opts.Plans, opts.Artifacts, opts.Generator, opts.Recorder)
	s.monitoringHandlers = handlers.NewMonitoringHandlers(opts.Runtime, opts.Version)
	if opts.Events != nil {
		s.eventHandlers = handlers.NewEventHandlers(opts.Events)
	}
	s.mchain = smw.Chain(slog.Default(), derrors.NewHTTPErrorAdapter(slog.Default()))

	return s
}

// Handler builds the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/planos", s.planHandlers.HandleCreate)
	mux.HandleFunc("GET /api/planos", s.planHandlers.HandleList)
	mux.HandleFunc("GET /api/planos/{id}", s.planHandlers.HandleGet)
	mux.HandleFunc("DELETE /api/planos/{id}", s.planHandlers.HandleDelete)

	// GET kept alongside POST: the original panel fetched this endpoint.
	mux.HandleFunc("POST /api/planos/{id}/memoria", s.memoriaHandlers.HandleGenerate)
	mux.HandleFunc("GET /api/planos/{id}/memoria", s.memoriaHandlers.HandleGenerate)
	mux.HandleFunc("GET /api/planos/{id}/memoria/download", s.memoriaHandlers.HandleDownload)

	if s.eventHandlers != nil {
		mux.HandleFunc("GET /api/generaciones/{id}/eventos", s.eventHandlers.HandleGenerationEvents)
		mux.HandleFunc("GET /api/eventos", s.eventHandlers.HandleEventRange)
	}

	mux.HandleFunc("GET /healthz", s.monitoringHandlers.HandleHealth)
	mux.HandleFunc("GET /api/status", s.monitoringHandlers.HandleStatus)

	if s.opts.MetricsHandler != nil {
		mux.Handle("GET /metrics", s.opts.MetricsHandler)
	}

	return s.mchain(mux)
}

// Start binds the listener and begins serving. The port is pre-bound so a
// taken address surfaces here instead of inside the serve goroutine.
func (s *Server) Start(ctx context.Context) error {
	addr := s.cfg.Addr()
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", addr, err)
	}

	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("HTTP server started", slog.String("addr", addr))
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	slog.Info("HTTP server stopped")
	return nil
}
