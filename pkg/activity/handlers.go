package activity

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

type energyRequest struct {
	KWh         *float64 `json:"kwh"`
	EnergyType  string   `json:"energyType"`
	Region      string   `json:"region"`
	Timestamp   string   `json:"timestamp"`
	Description string   `json:"description"`
}

type transportRequest struct {
	TKm           *float64 `json:"tkm"`
	TransportMode string   `json:"transportMode"`
	Region        string   `json:"region"`
	Timestamp     string   `json:"timestamp"`
	Description   string   `json:"description"`
}

// activityResponse is the API representation of a recorded activity.
type activityResponse struct {
	ID             string  `json:"id"`
	Type           string  `json:"type"`
	Quantity       float64 `json:"quantity"`
	Unit           string  `json:"unit"`
	Category       string  `json:"category"`
	Region         string  `json:"region,omitempty"`
	Description    string  `json:"description,omitempty"`
	CalculatedCO2e float64 `json:"calculatedCO2e"`
	ActivityDate   string  `json:"activityDate"`
	CreatedAt      string  `json:"createdAt"`
}

func activityToResponse(a *carbon.Activity) activityResponse {
	return activityResponse{
		ID:             a.ID,
		Type:           string(a.Type),
		Quantity:       a.Quantity,
		Unit:           a.Unit,
		Category:       a.Category,
		Region:         a.Region,
		Description:    a.Description,
		CalculatedCO2e: a.CalculatedCO2e,
		ActivityDate:   a.ActivityTimestamp.UTC().Format(time.RFC3339Nano),
		CreatedAt:      a.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// SubmitEnergyHandler handles POST /activities/energy
func SubmitEnergyHandler(svc *Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req energyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, logger, carbon.InvalidInputf("invalid request body: %v", err))
			return
		}
		if req.KWh == nil {
			writeError(w, logger, carbon.InvalidInputf("kwh is required"))
			return
		}
		ts, err := carbon.ParseInstant(req.Timestamp)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		a, err := svc.SubmitEnergyActivity(r.Context(), identity.OwnerID(r.Context()), EnergySubmission{
			KWh:         *req.KWh,
			EnergyType:  req.EnergyType,
			Region:      req.Region,
			Timestamp:   ts,
			Description: req.Description,
		})
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, activityToResponse(a))
	}
}

// SubmitTransportHandler handles POST /activities/transport
func SubmitTransportHandler(svc *Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req transportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, logger, carbon.InvalidInputf("invalid request body: %v", err))
			return
		}
		if req.TKm == nil {
			writeError(w, logger, carbon.InvalidInputf("tkm is required"))
			return
		}
		ts, err := carbon.ParseInstant(req.Timestamp)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		a, err := svc.SubmitTransportActivity(r.Context(), identity.OwnerID(r.Context()), TransportSubmission{
			TonneKm:       *req.TKm,
			TransportMode: req.TransportMode,
			Region:        req.Region,
			Timestamp:     ts,
			Description:   req.Description,
		})
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, activityToResponse(a))
	}
}

// ListActivitiesHandler handles GET /activities
// Query params: pageSize, pageToken
func ListActivitiesHandler(svc *Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pageSize := 20
		if ps := r.URL.Query().Get("pageSize"); ps != "" {
			if v, err := strconv.Atoi(ps); err == nil && v > 0 {
				pageSize = v
			}
		}

		records, next, total, err := svc.GetActivities(r.Context(), identity.OwnerID(r.Context()), pageSize, r.URL.Query().Get("pageToken"))
		if err != nil {
			writeError(w, logger, err)
			return
		}

		out := make([]activityResponse, len(records))
		for i := range records {
			out[i] = activityToResponse(&records[i])
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"activities":    out,
			"nextPageToken": next,
			"totalSize":     total,
		})
	}
}

// GetActivityHandler handles GET /activities/{id}
func GetActivityHandler(svc *Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := svc.GetActivity(r.Context(), identity.OwnerID(r.Context()), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, activityToResponse(a))
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
		logger.Error("activity request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{
		"error":   carbon.Code(err),
		"message": carbon.PublicMessage(err),
	})
}
