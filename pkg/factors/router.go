package factors

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RouterOptions wires optional behaviour into the factor routes.
type RouterOptions struct {
	// RequireAdmin guards PATCH /{id}. Nil leaves the route open.
	RequireAdmin func(http.Handler) http.Handler
	// ListCache and ResolveCache wrap the read routes. Nil disables caching.
	ListCache    func(http.Handler) http.Handler
	ResolveCache func(http.Handler) http.Handler
	// OnChange runs after each successful update, e.g. cache invalidation.
	OnChange func()
	Logger   *slog.Logger
}

// Router creates a chi.Router for the emission factor API.
func Router(store *FactorStore, resolver *Resolver, opts RouterOptions) chi.Router {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.With(orPass(opts.ListCache)).Get("/", ListFactorsHandler(store, logger))
	r.With(orPass(opts.ResolveCache)).Get("/resolve", ResolveFactorHandler(resolver, logger))
	r.With(orPass(opts.RequireAdmin)).Patch("/{id}", UpdateFactorHandler(store, opts.OnChange, logger))
	return r
}

func orPass(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if mw == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return mw
}
