package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/SandraS2611/agrimensores-sde/internal/errors"
	"github.com/SandraS2611/agrimensores-sde/internal/server/responses"
)

// Runtime exposes the daemon state the monitoring endpoints report.
type Runtime interface {
	GetStatus() string
	GetStartTime() time.Time
	GetActiveGenerations() int
	PlansTotal() int
	TemplateVersion() string
	StorageDirectory() string
}

// MonitoringHandlers contains health and status HTTP handlers.
type MonitoringHandlers struct {
	runtime      Runtime
	version      string
	errorAdapter *errors.HTTPErrorAdapter
}

// NewMonitoringHandlers creates a new monitoring handlers instance.
func NewMonitoringHandlers(runtime Runtime, version string) *MonitoringHandlers {
	return &MonitoringHandlers{
		runtime:      runtime,
		version:      version,
		errorAdapter: errors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// HandleHealth handles the health check endpoint.
func (h *MonitoringHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := responses.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   h.version,
		Uptime:    time.Since(h.runtime.GetStartTime()).Seconds(),
	}
	if err := writeJSON(w, r, http.StatusOK, resp); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, errors.Wrap(err, errors.CategoryInternal, "write health response").Build())
	}
}

// HandleStatus handles the daemon status endpoint.
func (h *MonitoringHandlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	resp := responses.StatusResponse{
		Status:            h.runtime.GetStatus(),
		StartTime:         h.runtime.GetStartTime(),
		Uptime:            time.Since(h.runtime.GetStartTime()).Seconds(),
		PlansTotal:        h.runtime.PlansTotal(),
		ActiveGenerations: h.runtime.GetActiveGenerations(),
		TemplateVersion:   h.runtime.TemplateVersion(),
		StorageDirectory:  h.runtime.StorageDirectory(),
	}
	if err := writeJSON(w, r, http.StatusOK, resp); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, errors.Wrap(err, errors.CategoryInternal, "write status response").Build())
	}
}
