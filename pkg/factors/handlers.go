package factors

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/greenstamp/greenstamp-api/pkg/carbon"
)

// factorResponse is the API representation of an emission factor.
type factorResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Category    string  `json:"category"`
	Region      string  `json:"region"`
	FactorValue float64 `json:"factorValue"`
	Unit        string  `json:"unit"`
	Source      string  `json:"source,omitempty"`
	ValidFrom   string  `json:"validFrom"`
	ValidTo     string  `json:"validTo,omitempty"`
	Active      bool    `json:"active"`
	UpdatedAt   string  `json:"updatedAt,omitempty"`
}

func factorToResponse(f *carbon.EmissionFactor) factorResponse {
	resp := factorResponse{
		ID:          f.ID,
		Name:        f.Name,
		Type:        string(f.Type),
		Category:    f.Category,
		Region:      f.Region,
		FactorValue: f.FactorValue,
		Unit:        f.Unit,
		Source:      f.Source,
		ValidFrom:   f.ValidFrom.UTC().Format(time.RFC3339),
		Active:      f.Active,
	}
	if f.ValidTo != nil {
		resp.ValidTo = f.ValidTo.UTC().Format(time.RFC3339)
	}
	if !f.UpdatedAt.IsZero() {
		resp.UpdatedAt = f.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// ListFactorsHandler handles GET /factors
// Query params: type, category, region, filterQuery
func ListFactorsHandler(store *FactorStore, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := FactorListFilter{
			Category: carbon.NormalizeCategory(q.Get("category")),
			Region:   NormalizeRegion(q.Get("region")),
		}
		if v := q.Get("type"); v != "" {
			t, err := carbon.ParseFactorType(v)
			if err != nil {
				writeError(w, logger, err)
				return
			}
			filter.Type = t
		}
		if fq := q.Get("filterQuery"); fq != "" {
			expr, err := ParseFilterQuery(fq)
			if err != nil {
				writeError(w, logger, err)
				return
			}
			filter.Query = expr
		}

		records, err := store.ListActive(r.Context(), filter)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		out := make([]factorResponse, len(records))
		for i := range records {
			out[i] = factorToResponse(&records[i])
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"factors":   out,
			"totalSize": len(out),
		})
	}
}

// ResolveFactorHandler handles GET /factors/resolve
// Query params: type, category, region, at (defaults to now)
func ResolveFactorHandler(resolver *Resolver, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		t, err := carbon.ParseFactorType(q.Get("type"))
		if err != nil {
			writeError(w, logger, err)
			return
		}
		category := q.Get("category")
		if category == "" {
			writeError(w, logger, carbon.InvalidInputf("category is required"))
			return
		}
		at := time.Now().UTC()
		if v := q.Get("at"); v != "" {
			if at, err = carbon.ParseInstant(v); err != nil {
				writeError(w, logger, err)
				return
			}
		}

		f, err := resolver.ResolveFactor(r.Context(), t, category, q.Get("region"), at)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		requested := NormalizeRegion(q.Get("region"))
		if requested == "" {
			requested = resolver.DefaultRegion()
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"factor":          factorToResponse(f),
			"requestedRegion": requested,
			"fallback":        f.Region != requested,
			"at":              at.Format(time.RFC3339),
		})
	}
}

// updateFactorRequest is the PATCH /factors/{id} body. Absent fields are
// left unchanged; "validTo": null makes the factor open-ended.
type updateFactorRequest struct {
	Name        *string         `json:"name"`
	FactorValue *float64        `json:"factorValue"`
	Source      *string         `json:"source"`
	ValidFrom   *string         `json:"validFrom"`
	ValidTo     json.RawMessage `json:"validTo"`
	Active      *bool           `json:"active"`
}

func (req updateFactorRequest) toUpdate() (FactorUpdate, error) {
	u := FactorUpdate{
		Name:        req.Name,
		FactorValue: req.FactorValue,
		Source:      req.Source,
		Active:      req.Active,
	}
	if req.ValidFrom != nil {
		t, err := carbon.ParseInstant(*req.ValidFrom)
		if err != nil {
			return u, err
		}
		u.ValidFrom = &t
	}
	if len(req.ValidTo) > 0 {
		if string(req.ValidTo) == "null" {
			u.ClearValidTo = true
		} else {
			var s string
			if err := json.Unmarshal(req.ValidTo, &s); err != nil {
				return u, carbon.InvalidInputf("validTo must be a string or null")
			}
			t, err := carbon.ParseRangeEnd(s)
			if err != nil {
				return u, err
			}
			u.ValidTo = &t
		}
	}
	return u, nil
}

// UpdateFactorHandler handles PATCH /factors/{id}. onChange, when non-nil,
// runs after every successful update.
func UpdateFactorHandler(store *FactorStore, onChange func(), logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req updateFactorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, logger, carbon.InvalidInputf("invalid request body: %v", err))
			return
		}
		update, err := req.toUpdate()
		if err != nil {
			writeError(w, logger, err)
			return
		}

		f, err := store.Update(r.Context(), id, update)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		if f == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error":   "NOT_FOUND",
				"message": "emission factor " + id + " not found",
			})
			return
		}
		if onChange != nil {
			onChange()
		}

		logger.Info("emission factor updated", "id", f.ID, "type", f.Type, "category", f.Category, "region", f.Region)
		writeJSON(w, http.StatusOK, factorToResponse(f))
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
		logger.Error("factor request failed", "error", err)
	}
	var nf *carbon.FactorNotFoundError
	body := map[string]any{
		"error":   carbon.Code(err),
		"message": carbon.PublicMessage(err),
	}
	if errors.As(err, &nf) {
		body["type"] = nf.Type
		body["category"] = nf.Category
		body["region"] = nf.Region
	}
	writeJSON(w, status, body)
}
