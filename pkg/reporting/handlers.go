package reporting

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/greenstamp/greenstamp-api/pkg/carbon"
	"github.com/greenstamp/greenstamp-api/pkg/identity"
)

// GenerateCSRDHandler handles GET /reports/csrd
// Query params: startDate, endDate (RFC 3339 or YYYY-MM-DD; a date-only
// endDate includes that whole day)
func GenerateCSRDHandler(agg *Aggregator, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("startDate") == "" || q.Get("endDate") == "" {
			writeError(w, logger, carbon.InvalidInputf("startDate and endDate are required"))
			return
		}
		start, err := carbon.ParseInstant(q.Get("startDate"))
		if err != nil {
			writeError(w, logger, err)
			return
		}
		end, err := carbon.ParseRangeEnd(q.Get("endDate"))
		if err != nil {
			writeError(w, logger, err)
			return
		}

		report, err := agg.Generate(r.Context(), identity.OwnerID(r.Context()), start, end)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

// ListReportsHandler handles GET /reports. Reports are generated on demand
// and not stored, so the list is always empty.
func ListReportsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"reports":   []Report{},
			"totalSize": 0,
		})
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
		logger.Error("report request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{
		"error":   carbon.Code(err),
		"message": carbon.PublicMessage(err),
	})
}
