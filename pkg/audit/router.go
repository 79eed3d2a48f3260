package audit

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/greenstamp/greenstamp-api/pkg/identity"
)

// Router creates a chi.Router for the audit API. Callers only see their
// own events.
func Router(store *Store, logger *slog.Logger) chi.Router {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(identity.RequireOwner)
	r.Get("/events", ListEventsHandler(store, logger))
	r.Get("/events/{eventId}", GetEventHandler(store, logger))
	return r
}
