// Package daemon wires the memoria service together: plan registry,
// generation pipeline, artifact storage, retention sweep, inbox watcher
// and the HTTP API, with one lifecycle around all of them.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SandraS2611/agrimensores-sde/internal/config"
	"github.com/SandraS2611/agrimensores-sde/internal/docmodel"
	"github.com/SandraS2611/agrimensores-sde/internal/eventstore"
	"github.com/SandraS2611/agrimensores-sde/internal/logfields"
	"github.com/SandraS2611/agrimensores-sde/internal/metrics"
	"github.com/SandraS2611/agrimensores-sde/internal/pipeline"
	"github.com/SandraS2611/agrimensores-sde/internal/server/httpserver"
	"github.com/SandraS2611/agrimensores-sde/internal/storage"
	"github.com/SandraS2611/agrimensores-sde/internal/survey"
	"github.com/SandraS2611/agrimensores-sde/internal/templates"
	"github.com/prometheus/client_golang/prometheus"
)

// Status represents the current state of the daemon.
type Status string

const (
	StatusStopped  Status = "stopped"
	StatusStarting Status = "starting"
	StatusRunning  Status = "running"
	StatusStopping Status = "stopping"
	StatusError    Status = "error"
)

// Daemon is the long-running memoria service.
type Daemon struct {
	config    *config.Config
	version   string
	status    atomic.Value // Status
	startTime time.Time
	stopChan  chan struct{}
	stopOnce  sync.Once
	closed    bool
	mu        sync.Mutex

	plans        *survey.Store
	artifacts    storage.ArtifactStore
	eventStore   eventstore.Store
	bus          *pipeline.Bus
	orchestrator *pipeline.Orchestrator
	recorder     metrics.Recorder
	promRecorder *metrics.PrometheusRecorder
	httpServer   *httpserver.Server
	sweeper      *RetentionSweeper
	inbox        *InboxWatcher
	natsMirror   *pipeline.NATSMirror

	templateVersion string
}

// NewDaemon creates a daemon from configuration. Collaborators are wired
// but nothing runs until Start.
func NewDaemon(cfg *config.Config, version string) (*Daemon, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	d := &Daemon{
		config:   cfg,
		version:  version,
		stopChan: make(chan struct{}),
	}
	d.status.Store(StatusStopped)

	plans, err := survey.NewStore(cfg.Database.PlansPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open plan store: %w", err)
	}
	d.plans = plans

	artifacts, err := storage.NewFSStore(cfg.Storage.Directory)
	if err != nil {
		d.closePartial()
		return nil, fmt.Errorf("failed to open artifact store: %w", err)
	}
	d.artifacts = artifacts

	events, err := eventstore.NewSQLiteStore(cfg.Database.EventsPath)
	if err != nil {
		d.closePartial()
		return nil, fmt.Errorf("failed to open event store: %w", err)
	}
	d.eventStore = events
	d.bus = pipeline.NewBusWithEventStore(events)

	set := templates.Default()
	if cfg.Templates.Directory != "" {
		set, err = templates.Load(cfg.Templates.Directory)
		if err != nil {
			d.closePartial()
			return nil, fmt.Errorf("failed to load template overrides: %w", err)
		}
	}
	builder := docmodel.NewBuilder(set)
	d.templateVersion = builder.TemplateVersion()

	d.recorder = metrics.NoopRecorder{}
	if cfg.Metrics.Enabled {
		d.promRecorder = metrics.NewPrometheusRecorder(prometheus.NewRegistry())
		d.recorder = d.promRecorder
	}

	d.orchestrator = pipeline.NewOrchestrator(builder, d.artifacts, d.bus,
		pipeline.WithRecorder(d.recorder),
		pipeline.WithTimeout(cfg.Generation.Timeout),
	)

	if cfg.NATS.Enabled {
		mirror, err := pipeline.NewNATSMirror(cfg.NATS.URL, cfg.NATS.SubjectPrefix)
		if err != nil {
			d.closePartial()
			return nil, fmt.Errorf("failed to connect event mirror: %w", err)
		}
		mirror.Attach(d.bus)
		d.natsMirror = mirror
	}

	serverOpts := httpserver.Options{
		Plans:     d.plans,
		Artifacts: d.artifacts,
		Generator: d.orchestrator,
		Runtime:   d,
		Recorder:  d.recorder,
		Events:    d.eventStore,
		Version:   version,
	}
	if d.promRecorder != nil {
		serverOpts.MetricsHandler = d.promRecorder.HTTPHandler()
	}
	d.httpServer = httpserver.New(&cfg.Server, serverOpts)

	if cfg.Storage.RetentionDays > 0 {
		sweeper, err := NewRetentionSweeper(d.artifacts, cfg.Storage)
		if err != nil {
			d.closePartial()
			return nil, fmt.Errorf("failed to create retention sweeper: %w", err)
		}
		d.sweeper = sweeper
	}

	if cfg.Inbox.Enabled {
		inbox, err := NewInboxWatcher(cfg.Inbox.Directory, d.plans, d.orchestrator)
		if err != nil {
			d.closePartial()
			return nil, fmt.Errorf("failed to create inbox watcher: %w", err)
		}
		d.inbox = inbox
	}

	return d, nil
}

// Start starts all components and blocks until the context is canceled
// or Stop is called.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.GetStatus() != string(StatusStopped) {
		d.mu.Unlock()
		return fmt.Errorf("daemon is not in stopped state: %s", d.GetStatus())
	}

	d.status.Store(StatusStarting)
	d.startTime = time.Now()

	slog.Info("Starting memoria daemon",
		slog.String("version", d.version),
		slog.String("addr", d.config.Server.Addr()),
		slog.String("template_version", d.templateVersion))

	if err := d.httpServer.Start(ctx); err != nil {
		d.status.Store(StatusError)
		d.mu.Unlock()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	if d.sweeper != nil {
		d.sweeper.Start(ctx)
	}

	if d.inbox != nil {
		if err := d.inbox.Start(ctx); err != nil {
			slog.Error("Failed to start inbox watcher", logfields.Error(err))
		} else {
			slog.Info("Inbox watcher started", slog.String("directory", d.config.Inbox.Directory))
		}
	}

	d.status.Store(StatusRunning)
	slog.Info("Memoria daemon started",
		slog.String("storage_dir", d.config.Storage.Directory),
		slog.Bool("metrics", d.config.Metrics.Enabled),
		slog.Bool("nats", d.config.NATS.Enabled),
		slog.Bool("inbox", d.config.Inbox.Enabled))
	d.mu.Unlock()

	select {
	case <-ctx.Done():
	case <-d.stopChan:
	}

	d.status.Store(StatusStopping)
	slog.Info("Memoria daemon stopping")
	return nil
}

// Stop gracefully shuts down all components, in reverse start order.
func (d *Daemon) Stop(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	d.status.Store(StatusStopping)

	d.stopOnce.Do(func() { close(d.stopChan) })

	var firstErr error
	record := func(component string, err error) {
		if err == nil {
			return
		}
		slog.Error("Error stopping component", slog.String("component", component), logfields.Error(err))
		if firstErr == nil {
			firstErr = err
		}
	}

	if d.inbox != nil {
		record("inbox", d.inbox.Stop())
	}
	if d.sweeper != nil {
		record("sweeper", d.sweeper.Stop())
	}
	record("http", d.httpServer.Stop(ctx))
	if d.natsMirror != nil {
		record("nats", d.natsMirror.Close())
	}
	record("events", d.eventStore.Close())
	record("artifacts", d.artifacts.Close())
	record("plans", d.plans.Close())

	d.status.Store(StatusStopped)
	slog.Info("Memoria daemon stopped")
	return firstErr
}

// closePartial releases whatever NewDaemon already opened when wiring fails.
func (d *Daemon) closePartial() {
	if d.natsMirror != nil {
		d.natsMirror.Close()
	}
	if d.eventStore != nil {
		d.eventStore.Close()
	}
	if d.artifacts != nil {
		d.artifacts.Close()
	}
	if d.plans != nil {
		d.plans.Close()
	}
}

// GetStatus returns the current daemon status.
func (d *Daemon) GetStatus() string {
	if s, ok := d.status.Load().(Status); ok {
		return string(s)
	}
	return string(StatusStopped)
}

// GetStartTime returns when the daemon started.
func (d *Daemon) GetStartTime() time.Time {
	return d.startTime
}

// GetActiveGenerations reports in-flight generations.
func (d *Daemon) GetActiveGenerations() int {
	return d.orchestrator.Active()
}

// PlansTotal reports how many plans the registry holds.
func (d *Daemon) PlansTotal() int {
	plans, err := d.plans.List(context.Background())
	if err != nil {
		slog.Warn("Failed to count plans", logfields.Error(err))
		return 0
	}
	return len(plans)
}

// TemplateVersion reports the audit version of the boilerplate in use.
func (d *Daemon) TemplateVersion() string {
	return d.templateVersion
}

// StorageDirectory reports where artifacts are published.
func (d *Daemon) StorageDirectory() string {
	return d.config.Storage.Directory
}
