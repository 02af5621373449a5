package metrics

import (
	"net/http"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once               sync.Once
	registry           *prom.Registry
	stageDuration      *prom.HistogramVec
	generationDuration prom.Histogram
	stageResults       *prom.CounterVec
	outcomes           *prom.CounterVec
	downloads          *prom.CounterVec
	activeGenerations  prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{registry: reg}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "memoria",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual generation stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.generationDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "memoria",
			Name:      "generation_duration_seconds",
			Help:      "Total generation duration",
			Buckets:   prom.DefBuckets,
		})
		pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "memoria",
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"})
		pr.outcomes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "memoria",
			Name:      "generation_outcomes_total",
			Help:      "Generation outcomes by final status",
		}, []string{"outcome"})
		pr.downloads = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "memoria",
			Name:      "downloads_total",
			Help:      "Artifact download requests by result",
		}, []string{"result"})
		pr.activeGenerations = prom.NewGauge(prom.GaugeOpts{
			Namespace: "memoria",
			Name:      "active_generations",
			Help:      "Number of generation runs currently in flight",
		})
		reg.MustRegister(pr.stageDuration, pr.generationDuration, pr.stageResults, pr.outcomes, pr.downloads, pr.activeGenerations)
	})
	return pr
}

// HTTPHandler returns an http.Handler serving this recorder's registry.
func (p *PrometheusRecorder) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveGenerationDuration(d time.Duration) {
	if p == nil || p.generationDuration == nil {
		return
	}
	p.generationDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncGenerationOutcome(outcome OutcomeLabel) {
	if p == nil || p.outcomes == nil {
		return
	}
	p.outcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncDownload(found bool) {
	if p == nil || p.downloads == nil {
		return
	}
	result := "not_found"
	if found {
		result = "success"
	}
	p.downloads.WithLabelValues(result).Inc()
}

func (p *PrometheusRecorder) SetActiveGenerations(n int) {
	if p == nil || p.activeGenerations == nil {
		return
	}
	p.activeGenerations.Set(float64(n))
}
