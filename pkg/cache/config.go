package cache

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// CacheConfig holds configuration for the factor response caches.
type CacheConfig struct {
	// Enabled controls whether caching is active. When false, factor
	// endpoints are served straight from the database.
	Enabled bool

	// ListingTTL bounds how long a GET /factors response is reused.
	ListingTTL time.Duration

	// ResolveTTL bounds how long a GET /factors/resolve response is reused.
	ResolveTTL time.Duration

	// MaxSize is the maximum number of entries per cache instance.
	MaxSize int
}

// DefaultCacheConfig returns a CacheConfig with sensible defaults.
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Enabled:    true,
		ListingTTL: 5 * time.Minute,
		ResolveTTL: time.Minute,
		MaxSize:    500,
	}
}

// CacheConfigFromEnv reads cache configuration from environment variables,
// falling back to defaults for any unset variable.
//
// Environment variables:
//   - GREENSTAMP_CACHE_ENABLED: "true" or "false" (default: "true")
//   - GREENSTAMP_CACHE_LISTING_TTL: duration in seconds (default: 300)
//   - GREENSTAMP_CACHE_RESOLVE_TTL: duration in seconds (default: 60)
//   - GREENSTAMP_CACHE_MAX_SIZE: max entries per cache (default: 500)
func CacheConfigFromEnv() *CacheConfig {
	cfg := DefaultCacheConfig()

	if v := os.Getenv("GREENSTAMP_CACHE_ENABLED"); v != "" {
		cfg.Enabled = strings.EqualFold(v, "true") || v == "1"
	}
	if d, ok := secondsFromEnv("GREENSTAMP_CACHE_LISTING_TTL"); ok {
		cfg.ListingTTL = d
	}
	if d, ok := secondsFromEnv("GREENSTAMP_CACHE_RESOLVE_TTL"); ok {
		cfg.ResolveTTL = d
	}
	if v := os.Getenv("GREENSTAMP_CACHE_MAX_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxSize = n
		}
	}

	return cfg
}

func secondsFromEnv(key string) (time.Duration, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}
