package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/SandraS2611/agrimensores-sde/internal/config"
	"github.com/SandraS2611/agrimensores-sde/internal/logfields"
	"github.com/SandraS2611/agrimensores-sde/internal/storage"
)

// RetentionSweeper deletes published artifacts past their retention on a
// cron schedule. Plans keep their memoria reference; a swept download
// answers 404.
type RetentionSweeper struct {
	scheduler gocron.Scheduler
	artifacts storage.ArtifactStore
	retention time.Duration
}

// NewRetentionSweeper creates a sweeper from the storage configuration.
// RetentionDays must be positive.
func NewRetentionSweeper(artifacts storage.ArtifactStore, cfg config.StorageConfig) (*RetentionSweeper, error) {
	if cfg.RetentionDays <= 0 {
		return nil, fmt.Errorf("retention sweep requires retention_days > 0")
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	sweeper := &RetentionSweeper{
		scheduler: s,
		artifacts: artifacts,
		retention: time.Duration(cfg.RetentionDays) * 24 * time.Hour,
	}

	_, err = s.NewJob(
		gocron.CronJob(cfg.SweepSchedule, false),
		gocron.NewTask(sweeper.sweep),
		gocron.WithName("retention-sweep"),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to schedule retention sweep %q: %w", cfg.SweepSchedule, err)
	}

	return sweeper, nil
}

// Start begins the schedule.
func (s *RetentionSweeper) Start(ctx context.Context) {
	slog.Info("Starting retention sweeper", slog.Duration("retention", s.retention))
	s.scheduler.Start()
}

// Stop shuts the schedule down.
func (s *RetentionSweeper) Stop() error {
	slog.Info("Stopping retention sweeper")
	return s.scheduler.Shutdown()
}

// sweep is called by gocron on every schedule firing.
func (s *RetentionSweeper) sweep() {
	cutoff := time.Now().Add(-s.retention)
	removed, err := s.artifacts.DeleteOlderThan(context.Background(), cutoff)
	if err != nil {
		slog.Error("Retention sweep failed", logfields.Error(err))
		return
	}
	if removed > 0 {
		slog.Info("Retention sweep removed artifacts",
			slog.Int("removed", removed),
			slog.Time("cutoff", cutoff))
	}
}

// SweepNow runs one sweep immediately, outside the schedule.
func (s *RetentionSweeper) SweepNow(ctx context.Context) (int, error) {
	return s.artifacts.DeleteOlderThan(ctx, time.Now().Add(-s.retention))
}
