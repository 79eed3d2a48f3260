package passport

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/greenstamp/greenstamp-api/pkg/identity"
)

// Router creates a chi.Router for the passport API.
func Router(svc *Service, logger *slog.Logger) chi.Router {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(identity.RequireOwner)
	r.Post("/", CreatePassportHandler(svc, logger))
	r.Get("/", ListPassportsHandler(svc, logger))
	r.Get("/{id}", GetPassportHandler(svc, logger))
	return r
}
