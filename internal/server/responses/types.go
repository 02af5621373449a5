// Package responses defines API response types used by the HTTP handlers.
package responses

import (
	"encoding/json"
	"time"

	"github.com/SandraS2611/agrimensores-sde/internal/survey"
)

// PlanResponse represents one registered plan.
type PlanResponse struct {
	ID          string            `json:"id"`
	Title       string            `json:"titulo"`
	Description string            `json:"descripcion,omitempty"`
	Status      survey.PlanStatus `json:"estado"`
	MemoriaID   string            `json:"memoria_id,omitempty"`
	CreatedAt   time.Time         `json:"fecha_carga"`
	UpdatedAt   time.Time         `json:"fecha_actualizacion"`
}

// PlanDetailResponse adds the full record to a plan response.
type PlanDetailResponse struct {
	PlanResponse
	Record *survey.Record `json:"datos,omitempty"`
}

// PlanListResponse represents the plan listing.
type PlanListResponse struct {
	Plans     []PlanResponse `json:"planos"`
	Count     int            `json:"count"`
	Timestamp time.Time      `json:"timestamp"`
}

// MemoriaResponse represents a completed generation run.
type MemoriaResponse struct {
	Memoria         string    `json:"memoria"`
	GenerationID    string    `json:"generation_id"`
	ArtifactID      string    `json:"artifact_id"`
	TemplateVersion string    `json:"template_version"`
	DurationMS      int64     `json:"duration_ms"`
	Timestamp       time.Time `json:"timestamp"`
}

// HealthResponse represents the health check API response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    float64   `json:"uptime"`
}

// StatusResponse represents the daemon's operational status.
type StatusResponse struct {
	Status            string    `json:"status"`
	StartTime         time.Time `json:"start_time"`
	Uptime            float64   `json:"uptime"`
	PlansTotal        int       `json:"plans_total"`
	ActiveGenerations int       `json:"active_generations"`
	TemplateVersion   string    `json:"template_version"`
	StorageDirectory  string    `json:"storage_directory"`
}

// EventResponse represents one persisted pipeline event.
type EventResponse struct {
	Seq          int64             `json:"seq"`
	GenerationID string            `json:"generation_id"`
	Type         string            `json:"tipo"`
	RecordedAt   time.Time         `json:"fecha"`
	Payload      json.RawMessage   `json:"payload,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// EventListResponse represents an event log query result.
type EventListResponse struct {
	Events []EventResponse `json:"eventos"`
	Count  int             `json:"count"`
}
