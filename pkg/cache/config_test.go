package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheConfigFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := CacheConfigFromEnv()
		assert.Equal(t, DefaultCacheConfig(), cfg)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("GREENSTAMP_CACHE_ENABLED", "false")
		t.Setenv("GREENSTAMP_CACHE_LISTING_TTL", "30")
		t.Setenv("GREENSTAMP_CACHE_RESOLVE_TTL", "10")
		t.Setenv("GREENSTAMP_CACHE_MAX_SIZE", "42")

		cfg := CacheConfigFromEnv()
		assert.False(t, cfg.Enabled)
		assert.Equal(t, 30*time.Second, cfg.ListingTTL)
		assert.Equal(t, 10*time.Second, cfg.ResolveTTL)
		assert.Equal(t, 42, cfg.MaxSize)
	})

	t.Run("invalid values keep defaults", func(t *testing.T) {
		t.Setenv("GREENSTAMP_CACHE_LISTING_TTL", "-5")
		t.Setenv("GREENSTAMP_CACHE_MAX_SIZE", "lots")

		cfg := CacheConfigFromEnv()
		assert.Equal(t, 5*time.Minute, cfg.ListingTTL)
		assert.Equal(t, 500, cfg.MaxSize)
	})
}
