// Package pipeline orchestrates memoria generation runs.
package pipeline

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/SandraS2611/agrimensores-sde/internal/docmodel"
	"github.com/SandraS2611/agrimensores-sde/internal/docx"
	derrors "github.com/SandraS2611/agrimensores-sde/internal/errors"
	"github.com/SandraS2611/agrimensores-sde/internal/metrics"
	"github.com/SandraS2611/agrimensores-sde/internal/observability"
	"github.com/SandraS2611/agrimensores-sde/internal/storage"
	"github.com/SandraS2611/agrimensores-sde/internal/style"
	"github.com/SandraS2611/agrimensores-sde/internal/survey"
)

// State names the phases of one generation run.
type State string

const (
	StateReceived    State = "received"
	StateBuilding    State = "building"
	StateStyling     State = "styling"
	StateSerializing State = "serializing"
	StatePublished   State = "published"
	StateFailed      State = "failed"
)

// Result describes a completed generation run.
type Result struct {
	GenerationID    string
	ArtifactID      string
	Preview         string
	TemplateVersion string
	Duration        time.Duration
}

// Orchestrator drives a record through build, style, serialize and publish.
// Every run gets a fresh generation id; stage transitions are published on
// the bus and timed through the metrics recorder.
type Orchestrator struct {
	builder  *docmodel.Builder
	writer   *docx.Writer
	store    storage.ArtifactStore
	bus      *Bus
	recorder metrics.Recorder
	timeout  time.Duration
	active   atomic.Int64
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithTimeout bounds a single generation run.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// NewOrchestrator creates an orchestrator. A nil bus gets a private one,
// so callers that don't care about events need no wiring.
func NewOrchestrator(builder *docmodel.Builder, store storage.ArtifactStore, bus *Bus, opts ...Option) *Orchestrator {
	if builder == nil {
		builder = docmodel.NewBuilder(nil)
	}
	if bus == nil {
		bus = NewBus()
	}
	o := &Orchestrator{
		builder:  builder,
		writer:   docx.NewWriter(),
		store:    store,
		bus:      bus,
		recorder: metrics.NoopRecorder{},
		timeout:  2 * time.Minute,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Bus exposes the event bus for subscribers.
func (o *Orchestrator) Bus() *Bus { return o.bus }

// Active reports how many generations are currently in flight.
func (o *Orchestrator) Active() int { return int(o.active.Load()) }

// Generate runs the full pipeline for one record and returns the published
// result. The record is read, never mutated, so concurrent runs over the
// same plan are safe; each produces its own artifact.
func (o *Orchestrator) Generate(ctx context.Context, planID string, record *survey.Record) (*Result, error) {
	if record == nil {
		return nil, derrors.ValidationError("record must not be nil").Build()
	}

	generationID := uuid.NewString()
	ctx = observability.WithGenerationID(ctx, generationID)
	ctx = observability.WithPlanID(ctx, planID)
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	o.recorder.SetActiveGenerations(int(o.active.Add(1)))
	defer func() {
		o.recorder.SetActiveGenerations(int(o.active.Add(-1)))
	}()

	started := time.Now()
	o.emit(StageEvent{Event: EventGenerationReceived, Generation: generationID, PlanID: planID, State: StateReceived})
	observability.InfoContext(ctx, "generation received")

	blocks, err := o.runBuilding(ctx, generationID, planID, record)
	if err != nil {
		return nil, o.fail(ctx, generationID, planID, started, err)
	}

	doc, err := o.runStyling(ctx, generationID, planID, blocks, record)
	if err != nil {
		return nil, o.fail(ctx, generationID, planID, started, err)
	}

	data, err := o.runSerializing(ctx, generationID, planID, doc)
	if err != nil {
		return nil, o.fail(ctx, generationID, planID, started, err)
	}

	artifactID, err := o.publish(ctx, generationID, planID, data)
	if err != nil {
		return nil, o.fail(ctx, generationID, planID, started, err)
	}

	duration := time.Since(started)
	o.emit(StageEvent{
		Event:      EventGenerationPublished,
		Generation: generationID,
		PlanID:     planID,
		State:      StatePublished,
		ArtifactID: artifactID,
	})
	o.recorder.ObserveGenerationDuration(duration)
	o.recorder.IncGenerationOutcome(metrics.OutcomePublished)
	observability.InfoContext(ctx, "generation published",
		slog.String("artifact_id", artifactID),
		slog.Duration("duration", duration))

	return &Result{
		GenerationID:    generationID,
		ArtifactID:      artifactID,
		Preview:         docx.Preview(doc),
		TemplateVersion: o.builder.TemplateVersion(),
		Duration:        duration,
	}, nil
}

func (o *Orchestrator) runBuilding(ctx context.Context, generationID, planID string, record *survey.Record) ([]docmodel.Block, error) {
	if err := ctx.Err(); err != nil {
		return nil, derrors.Wrap(err, derrors.CategoryBuild, "generation canceled before building").Build()
	}
	o.emit(StageEvent{Event: EventBuildingStarted, Generation: generationID, PlanID: planID, State: StateBuilding})

	start := time.Now()
	blocks := o.builder.Build(record)
	o.observeStage(ctx, string(StateBuilding), start, nil)
	return blocks, nil
}

func (o *Orchestrator) runStyling(ctx context.Context, generationID, planID string, blocks []docmodel.Block, record *survey.Record) (*style.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, derrors.Wrap(err, derrors.CategoryStyle, "generation canceled before styling").Build()
	}
	o.emit(StageEvent{Event: EventStylingStarted, Generation: generationID, PlanID: planID, State: StateStyling})

	start := time.Now()
	doc, err := style.Resolve(blocks, style.Meta{Place: record.Place})
	o.observeStage(ctx, string(StateStyling), start, err)
	return doc, err
}

func (o *Orchestrator) runSerializing(ctx context.Context, generationID, planID string, doc *style.Document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, derrors.Wrap(err, derrors.CategorySerialize, "generation canceled before serializing").Build()
	}
	o.emit(StageEvent{Event: EventSerializingStarted, Generation: generationID, PlanID: planID, State: StateSerializing})

	start := time.Now()
	data, err := o.writer.Write(doc)
	o.observeStage(ctx, string(StateSerializing), start, err)
	return data, err
}

func (o *Orchestrator) publish(ctx context.Context, generationID, planID string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", derrors.Wrap(err, derrors.CategoryStorage, "generation canceled before publishing").Build()
	}
	artifactID, err := o.store.Put(ctx, &storage.Artifact{
		Data: data,
		Metadata: storage.Metadata{
			PlanID:          planID,
			GenerationID:    generationID,
			TemplateVersion: o.builder.TemplateVersion(),
		},
	})
	if err != nil {
		return "", derrors.Wrap(err, derrors.CategoryStorage, "publish artifact").Build()
	}
	return artifactID, nil
}

func (o *Orchestrator) fail(ctx context.Context, generationID, planID string, started time.Time, err error) error {
	o.emit(StageEvent{
		Event:      EventGenerationFailed,
		Generation: generationID,
		PlanID:     planID,
		State:      StateFailed,
		Error:      err.Error(),
	})
	outcome := metrics.OutcomeFailed
	if ctx.Err() != nil {
		outcome = metrics.OutcomeCanceled
	}
	o.recorder.ObserveGenerationDuration(time.Since(started))
	o.recorder.IncGenerationOutcome(outcome)
	observability.ErrorContext(ctx, "generation failed", slog.Any("error", err))
	return err
}

func (o *Orchestrator) observeStage(ctx context.Context, stage string, start time.Time, err error) {
	o.recorder.ObserveStageDuration(stage, time.Since(start))
	switch {
	case err == nil:
		o.recorder.IncStageResult(stage, metrics.ResultSuccess)
	case ctx.Err() != nil:
		o.recorder.IncStageResult(stage, metrics.ResultCanceled)
	default:
		o.recorder.IncStageResult(stage, metrics.ResultFailed)
	}
}

// emit publishes best-effort: handler errors don't abort a generation.
func (o *Orchestrator) emit(e StageEvent) {
	if err := o.bus.Publish(e); err != nil {
		slog.Warn("event handler failed",
			slog.String("event", e.Event),
			slog.String("generation_id", e.Generation),
			slog.Any("error", err))
	}
}
