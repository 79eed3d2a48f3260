package cache

import "net/http"

// Cache names reported to an Observer.
const (
	NameFactorListing = "factor_listing"
	NameFactorResolve = "factor_resolve"
)

// Manager holds the factor listing and factor resolution caches. A nil
// *Manager is valid and caches nothing.
type Manager struct {
	listing  *LRUCache
	resolve  *LRUCache
	observer Observer
}

// NewManager creates a Manager from cfg. It returns nil when cfg is nil or
// caching is disabled.
func NewManager(cfg *CacheConfig, obs Observer) *Manager {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	return &Manager{
		listing:  NewLRUCache(cfg.MaxSize, cfg.ListingTTL),
		resolve:  NewLRUCache(cfg.MaxSize, cfg.ResolveTTL),
		observer: obs,
	}
}

// InvalidateFactors drops every cached factor response. Called after any
// factor write.
func (m *Manager) InvalidateFactors() {
	if m == nil {
		return
	}
	m.listing.InvalidateAll()
	m.resolve.InvalidateAll()
}

// ListingMiddleware caches GET /factors responses.
func (m *Manager) ListingMiddleware() func(http.Handler) http.Handler {
	if m == nil {
		return passthrough
	}
	return CacheMiddleware(m.listing, NameFactorListing, m.observer)
}

// ResolveMiddleware caches GET /factors/resolve responses.
func (m *Manager) ResolveMiddleware() func(http.Handler) http.Handler {
	if m == nil {
		return passthrough
	}
	return CacheMiddleware(m.resolve, NameFactorResolve, m.observer)
}

func passthrough(next http.Handler) http.Handler { return next }
