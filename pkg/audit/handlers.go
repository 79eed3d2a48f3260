package audit

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/greenstamp/greenstamp-api/pkg/carbon"
	"github.com/greenstamp/greenstamp-api/pkg/identity"
)

// ListEventsHandler handles GET /audit/events
// Query params: resourceType, action, outcome, pageSize, pageToken
func ListEventsHandler(store *Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := ListFilter{
			Actor:        identity.OwnerID(r.Context()),
			ResourceType: q.Get("resourceType"),
			Action:       q.Get("action"),
			Outcome:      q.Get("outcome"),
		}

		pageSize := 20
		if ps := q.Get("pageSize"); ps != "" {
			if v, err := strconv.Atoi(ps); err == nil && v > 0 {
				pageSize = v
			}
		}

		records, nextToken, total, err := store.List(r.Context(), filter, pageSize, q.Get("pageToken"))
		if err != nil {
			writeError(w, logger, err)
			return
		}

		events := make([]eventResponse, len(records))
		for i := range records {
			events[i] = eventToResponse(&records[i])
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"events":        events,
			"nextPageToken": nextToken,
			"totalSize":     total,
		})
	}
}

// GetEventHandler handles GET /audit/events/{eventId}
func GetEventHandler(store *Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID := chi.URLParam(r, "eventId")
		record, err := store.Get(r.Context(), identity.OwnerID(r.Context()), eventID)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		if record == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error":   "NOT_FOUND",
				"message": "audit event " + strconv.Quote(eventID) + " not found",
			})
			return
		}
		writeJSON(w, http.StatusOK, eventToResponse(record))
	}
}

type eventResponse struct {
	ID            string         `json:"id"`
	Actor         string         `json:"actor"`
	CorrelationID string         `json:"correlationId,omitempty"`
	RequestID     string         `json:"requestId,omitempty"`
	ResourceType  string         `json:"resourceType,omitempty"`
	ResourceID    string         `json:"resourceId,omitempty"`
	Action        string         `json:"action"`
	Outcome       string         `json:"outcome"`
	StatusCode    int            `json:"statusCode,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	CreatedAt     string         `json:"createdAt"`
}

func eventToResponse(e *Event) eventResponse {
	return eventResponse{
		ID:            e.ID,
		Actor:         e.Actor,
		CorrelationID: e.CorrelationID,
		RequestID:     e.RequestID,
		ResourceType:  e.ResourceType,
		ResourceID:    e.ResourceID,
		Action:        e.Action,
		Outcome:       e.Outcome,
		StatusCode:    e.StatusCode,
		Metadata:      map[string]any(e.Metadata),
		CreatedAt:     e.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := carbon.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("audit request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{
		"error":   carbon.Code(err),
		"message": carbon.PublicMessage(err),
	})
}
