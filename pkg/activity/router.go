package activity

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/greenstamp/greenstamp-api/pkg/identity"
)

// Router creates a chi.Router for the activity API. Every route requires
// an authenticated owner.
func Router(svc *Service, logger *slog.Logger) chi.Router {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(identity.RequireOwner)
	r.Post("/energy", SubmitEnergyHandler(svc, logger))
	r.Post("/transport", SubmitTransportHandler(svc, logger))
	r.Get("/", ListActivitiesHandler(svc, logger))
	r.Get("/{id}", GetActivityHandler(svc, logger))
	return r
}
