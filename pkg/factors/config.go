package factors

import (
	"os"
	"strconv"
	"strings"
)

// ResolverConfig controls emission factor resolution.
type ResolverConfig struct {
	DefaultRegion string // Region retried when the requested one has no factor. Default "EU".
	SeedDefaults  bool   // Whether the embedded default factors are loaded at start-up. Default true.
}

// DefaultResolverConfig returns the default resolver configuration.
func DefaultResolverConfig() *ResolverConfig {
	return &ResolverConfig{
		DefaultRegion: "EU",
		SeedDefaults:  true,
	}
}

// ResolverConfigFromEnv loads config from environment variables.
// GREENSTAMP_DEFAULT_REGION, GREENSTAMP_SEED_FACTORS
func ResolverConfigFromEnv() *ResolverConfig {
	cfg := DefaultResolverConfig()

	if v := strings.TrimSpace(os.Getenv("GREENSTAMP_DEFAULT_REGION")); v != "" {
		cfg.DefaultRegion = NormalizeRegion(v)
	}

	if v := os.Getenv("GREENSTAMP_SEED_FACTORS"); v != "" {
		cfg.SeedDefaults, _ = strconv.ParseBool(v)
	}

	return cfg
}

// NormalizeRegion upper-cases and trims a region code.
func NormalizeRegion(region string) string {
	return strings.ToUpper(strings.TrimSpace(region))
}
