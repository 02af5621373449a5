// Package metrics provides observability hooks for the generation pipeline.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection never requires nil checks at call
// sites. Swapping in PrometheusRecorder activates real collection.
package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultCanceled ResultLabel = "canceled"
)

// OutcomeLabel enumerates final generation outcomes.
type OutcomeLabel string

const (
	OutcomePublished OutcomeLabel = "published"
	OutcomeFailed    OutcomeLabel = "failed"
	OutcomeCanceled  OutcomeLabel = "canceled"
)

// Recorder defines observability hooks for generation and stage metrics.
// Implementations may forward to Prometheus, OpenTelemetry, etc.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveGenerationDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncGenerationOutcome(outcome OutcomeLabel)
	IncDownload(found bool)
	SetActiveGenerations(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveGenerationDuration(time.Duration)    {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) IncGenerationOutcome(OutcomeLabel)          {}
func (NoopRecorder) IncDownload(bool)                           {}
func (NoopRecorder) SetActiveGenerations(int)                   {}
