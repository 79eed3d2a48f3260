package owners

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/greenstamp/greenstamp-api/pkg/identity"
)

// Router creates a chi.Router for the owner API. requireAdmin guards
// registration; nil leaves it open to any authenticated caller.
func Router(store *Store, requireAdmin func(http.Handler) http.Handler, logger *slog.Logger) chi.Router {
	if logger == nil {
		logger = slog.Default()
	}
	if requireAdmin == nil {
		requireAdmin = identity.RequireOwner
	}

	r := chi.NewRouter()
	r.With(requireAdmin).Post("/", CreateOwnerHandler(store, logger))
	r.With(identity.RequireOwner).Get("/me", GetCurrentOwnerHandler(store, logger))
	return r
}
