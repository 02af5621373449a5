package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SandraS2611/agrimensores-sde/internal/errors"
	"github.com/SandraS2611/agrimensores-sde/internal/eventstore"
	"github.com/SandraS2611/agrimensores-sde/internal/server/responses"
)

// defaultEventWindow bounds an unqualified event range query.
const defaultEventWindow = 24 * time.Hour

// EventHandlers exposes the generation audit log.
type EventHandlers struct {
	events       eventstore.Store
	errorAdapter *errors.HTTPErrorAdapter
}

// NewEventHandlers creates a new event handlers instance.
func NewEventHandlers(events eventstore.Store) *EventHandlers {
	return &EventHandlers{
		events:       events,
		errorAdapter: errors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// HandleGenerationEvents returns the audit trail of one generation run, in
// append order. Unknown generation ids yield an empty list, not a 404: the
// log has no registry of runs, only their events.
func (h *EventHandlers) HandleGenerationEvents(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		h.errorAdapter.WriteErrorResponse(w, r, errors.ValidationError("generation id is required").Build())
		return
	}

	events, err := h.events.GetByGenerationID(r.Context(), id)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, errors.Wrap(err, errors.CategoryStorage, "query generation events").
			WithContext("generation_id", id).
			Build())
		return
	}
	h.writeEvents(w, r, events)
}

// HandleEventRange returns events recorded within the desde/hasta query
// window (RFC 3339). Both bounds are optional; the default window is the
// last 24 hours.
func (h *EventHandlers) HandleEventRange(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	start, err := parseEventBound(r.URL.Query().Get("desde"), now.Add(-defaultEventWindow))
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, errors.ValidationError("invalid desde timestamp").
			WithContext("desde", r.URL.Query().Get("desde")).
			Build())
		return
	}
	end, err := parseEventBound(r.URL.Query().Get("hasta"), now)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, errors.ValidationError("invalid hasta timestamp").
			WithContext("hasta", r.URL.Query().Get("hasta")).
			Build())
		return
	}
	if end.Before(start) {
		h.errorAdapter.WriteErrorResponse(w, r, errors.ValidationError("hasta precedes desde").Build())
		return
	}

	events, err := h.events.GetRange(r.Context(), start, end)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, errors.Wrap(err, errors.CategoryStorage, "query event range").Build())
		return
	}
	h.writeEvents(w, r, events)
}

func (h *EventHandlers) writeEvents(w http.ResponseWriter, r *http.Request, events []eventstore.Event) {
	resp := responses.EventListResponse{
		Events: make([]responses.EventResponse, 0, len(events)),
		Count:  len(events),
	}
	for _, e := range events {
		ev := responses.EventResponse{
			Seq:          e.Seq,
			GenerationID: e.GenerationID,
			Type:         e.Type,
			RecordedAt:   e.RecordedAt,
			Metadata:     e.Metadata,
		}
		// Empty or malformed payloads are omitted rather than breaking
		// the whole listing.
		if json.Valid(e.Payload) {
			ev.Payload = json.RawMessage(e.Payload)
		}
		resp.Events = append(resp.Events, ev)
	}
	if err := writeJSON(w, r, http.StatusOK, resp); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, errors.Wrap(err, errors.CategoryInternal, "write events response").Build())
	}
}

func parseEventBound(raw string, fallback time.Time) (time.Time, error) {
	if raw == "" {
		return fallback, nil
	}
	return time.Parse(time.RFC3339, raw)
}
