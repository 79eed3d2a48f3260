package reporting

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/greenstamp/greenstamp-api/pkg/identity"
)

// Router creates a chi.Router for the reporting API.
func Router(agg *Aggregator, logger *slog.Logger) chi.Router {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(identity.RequireOwner)
	r.Get("/", ListReportsHandler())
	r.Get("/csrd", GenerateCSRDHandler(agg, logger))
	return r
}
