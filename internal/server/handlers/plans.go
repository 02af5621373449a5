package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/SandraS2611/agrimensores-sde/internal/errors"
	"github.com/SandraS2611/agrimensores-sde/internal/server/responses"
	"github.com/SandraS2611/agrimensores-sde/internal/survey"
)

// PlanHandlers contains the plan registry HTTP handlers.
type PlanHandlers struct {
	plans        *survey.Store
	errorAdapter *errors.HTTPErrorAdapter
}

// NewPlanHandlers creates a new plan handlers instance.
func NewPlanHandlers(plans *survey.Store) *PlanHandlers {
	return &PlanHandlers{
		plans:        plans,
		errorAdapter: errors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// createPlanRequest is the POST /api/planos payload.
type createPlanRequest struct {
	ID          string         `json:"id,omitempty"`
	Title       string         `json:"titulo"`
	Description string         `json:"descripcion,omitempty"`
	Record      *survey.Record `json:"datos,omitempty"`
}

// HandleCreate registers a new plan.
func (h *PlanHandlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, errors.ValidationError("invalid request body").
			WithContext("parse_error", err.Error()).
			Build())
		return
	}
	if req.Title == "" {
		h.errorAdapter.WriteErrorResponse(w, r, errors.ValidationError("titulo is required").Build())
		return
	}

	plan := &survey.Plan{
		ID:          req.ID,
		Title:       req.Title,
		Description: req.Description,
		Record:      req.Record,
	}
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}

	if err := h.plans.Create(r.Context(), plan); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, errors.Wrap(err, errors.CategoryStorage, "register plan").Build())
		return
	}

	if err := writeJSON(w, r, http.StatusCreated, planDetail(plan)); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, errors.Wrap(err, errors.CategoryInternal, "write plan response").Build())
	}
}

// HandleList returns all plans, newest first.
func (h *PlanHandlers) HandleList(w http.ResponseWriter, r *http.Request) {
	plans, err := h.plans.List(r.Context())
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, errors.Wrap(err, errors.CategoryStorage, "list plans").Build())
		return
	}

	resp := responses.PlanListResponse{
		Plans:     make([]responses.PlanResponse, 0, len(plans)),
		Count:     len(plans),
		Timestamp: time.Now().UTC(),
	}
	for _, p := range plans {
		resp.Plans = append(resp.Plans, planSummary(p))
	}

	if err := writeJSON(w, r, http.StatusOK, resp); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, errors.Wrap(err, errors.CategoryInternal, "write plan list").Build())
	}
}

// HandleGet returns one plan with its full record.
func (h *PlanHandlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	plan, err := h.plans.Get(r.Context(), id)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, h.classifyLookup(id, err))
		return
	}

	if err := writeJSON(w, r, http.StatusOK, planDetail(plan)); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, errors.Wrap(err, errors.CategoryInternal, "write plan detail").Build())
	}
}

// HandleDelete removes a plan.
func (h *PlanHandlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.plans.Delete(r.Context(), id); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, h.classifyLookup(id, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PlanHandlers) classifyLookup(id string, err error) error {
	if survey.IsNotFound(err) {
		return errors.NotFoundError("plan not found").WithContext("plan_id", id).Build()
	}
	return errors.Wrap(err, errors.CategoryStorage, "plan lookup").WithContext("plan_id", id).Build()
}

func planSummary(p *survey.Plan) responses.PlanResponse {
	return responses.PlanResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Status:      p.Status,
		MemoriaID:   p.MemoriaID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func planDetail(p *survey.Plan) responses.PlanDetailResponse {
	return responses.PlanDetailResponse{
		PlanResponse: planSummary(p),
		Record:       p.Record,
	}
}
