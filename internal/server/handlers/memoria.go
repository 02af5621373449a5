package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/SandraS2611/agrimensores-sde/internal/errors"
	"github.com/SandraS2611/agrimensores-sde/internal/metrics"
	"github.com/SandraS2611/agrimensores-sde/internal/pipeline"
	"github.com/SandraS2611/agrimensores-sde/internal/server/responses"
	"github.com/SandraS2611/agrimensores-sde/internal/storage"
	"github.com/SandraS2611/agrimensores-sde/internal/survey"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Generator runs the generation pipeline for one plan.
type Generator interface {
	Generate(ctx context.Context, planID string, record *survey.Record) (*pipeline.Result, error)
}

// MemoriaHandlers contains the generation and download HTTP handlers.
type MemoriaHandlers struct {
	plans        *survey.Store
	artifacts    storage.ArtifactStore
	generator    Generator
	recorder     metrics.Recorder
	errorAdapter *errors.HTTPErrorAdapter
}

// NewMemoriaHandlers creates a new memoria handlers instance.
func NewMemoriaHandlers(plans *survey.Store, artifacts storage.ArtifactStore, generator Generator, recorder metrics.Recorder) *MemoriaHandlers {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &MemoriaHandlers{
		plans:        plans,
		artifacts:    artifacts,
		generator:    generator,
		recorder:     recorder,
		errorAdapter: errors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// HandleGenerate runs the pipeline for a plan and returns the preview plus
// handoff details. The plan status tracks the run: procesando while the
// pipeline works, completado or error afterwards.
func (h *MemoriaHandlers) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	plan, err := h.plans.Get(r.Context(), id)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, h.classifyLookup(id, err))
		return
	}
	if plan.Record == nil {
		h.errorAdapter.WriteErrorResponse(w, r, errors.New(errors.CategoryBuild, "plan has no survey record").
			WithContext("plan_id", id).
			Build())
		return
	}

	if err := h.plans.SetStatus(r.Context(), id, survey.StatusProcessing); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, errors.Wrap(err, errors.CategoryStorage, "update plan status").Build())
		return
	}

	result, err := h.generator.Generate(r.Context(), id, plan.Record)
	if err != nil {
		if serr := h.plans.SetStatus(r.Context(), id, survey.StatusError); serr != nil {
			slog.Warn("failed to record plan error status", "plan_id", id, "error", serr)
		}
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	if err := h.plans.SetPublished(r.Context(), id, result.ArtifactID); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, errors.Wrap(err, errors.CategoryStorage, "record published memoria").Build())
		return
	}

	resp := responses.MemoriaResponse{
		Memoria:         result.Preview,
		GenerationID:    result.GenerationID,
		ArtifactID:      result.ArtifactID,
		TemplateVersion: result.TemplateVersion,
		DurationMS:      result.Duration.Milliseconds(),
		Timestamp:       time.Now().UTC(),
	}
	if err := writeJSON(w, r, http.StatusOK, resp); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, errors.Wrap(err, errors.CategoryInternal, "write memoria response").Build())
	}
}

// HandleDownload streams the published artifact. 409 when the plan has no
// published memoria yet, 404 when the artifact has been swept away.
func (h *MemoriaHandlers) HandleDownload(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	plan, err := h.plans.Get(r.Context(), id)
	if err != nil {
		h.recorder.IncDownload(false)
		h.errorAdapter.WriteErrorResponse(w, r, h.classifyLookup(id, err))
		return
	}
	if plan.MemoriaID == "" {
		h.recorder.IncDownload(false)
		h.errorAdapter.WriteErrorResponse(w, r, errors.ConflictError("memoria not yet published").
			WithContext("plan_id", id).
			WithContext("estado", string(plan.Status)).
			Build())
		return
	}

	artifact, err := h.artifacts.Get(r.Context(), plan.MemoriaID)
	if err != nil {
		h.recorder.IncDownload(false)
		if storage.IsNotFound(err) {
			h.errorAdapter.WriteErrorResponse(w, r, errors.NotFoundError("memoria artifact no longer available").
				WithContext("plan_id", id).
				WithContext("artifact_id", plan.MemoriaID).
				Build())
			return
		}
		h.errorAdapter.WriteErrorResponse(w, r, errors.Wrap(err, errors.CategoryStorage, "read artifact").Build())
		return
	}

	h.recorder.IncDownload(true)
	w.Header().Set("Content-Type", docxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", downloadFilename(plan.Title)))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(artifact.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(artifact.Data); err != nil {
		slog.Error("failed streaming artifact", "plan_id", id, "artifact_id", plan.MemoriaID, "error", err)
	}
}

func (h *MemoriaHandlers) classifyLookup(id string, err error) error {
	if survey.IsNotFound(err) {
		return errors.NotFoundError("plan not found").WithContext("plan_id", id).Build()
	}
	return errors.Wrap(err, errors.CategoryStorage, "plan lookup").WithContext("plan_id", id).Build()
}

// asciiFold decomposes accented letters and strips the combining marks,
// so "José Pérez" folds to "Jose Perez" instead of losing letters.
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// downloadFilename builds the attachment name from the plan title. Titles
// are Spanish; accents are transliterated before the ASCII filter.
func downloadFilename(title string) string {
	if folded, _, err := transform.String(asciiFold, title); err == nil {
		title = folded
	}
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		default:
			return -1
		}
	}, title)
	if safe == "" {
		safe = "memoria"
	}
	return "Memoria_" + safe + ".docx"
}
