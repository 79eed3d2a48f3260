package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/greenstamp/greenstamp-api/pkg/audit"
	"github.com/greenstamp/greenstamp-api/pkg/cache"
	"github.com/greenstamp/greenstamp-api/pkg/factors"
	"github.com/greenstamp/greenstamp-api/pkg/ha"
	"github.com/greenstamp/greenstamp-api/pkg/identity"
	"github.com/greenstamp/greenstamp-api/pkg/reporting"
)

// Config gathers everything the server needs. The per-package sections are
// loaded from their own GREENSTAMP_* variables; the top-level fields are set
// by the server command's flags.
type Config struct {
	ListenAddr      string
	DatabaseType    string // postgres, mysql or sqlite
	DatabaseDSN     string
	ShutdownTimeout time.Duration
	AllowedOrigins  []string

	Resolver *factors.ResolverConfig
	Cache    *cache.CacheConfig
	Identity *identity.Config
	Audit    *audit.Config
	HA       *ha.HAConfig
	Policy   reporting.Policy
}

// DefaultConfig returns a configuration suitable for local development:
// an SQLite file database and header-based identity.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:      ":8080",
		DatabaseType:    "sqlite",
		DatabaseDSN:     "greenstamp.db",
		ShutdownTimeout: 30 * time.Second,
		AllowedOrigins:  []string{"https://*", "http://*"},
		Resolver:        factors.DefaultResolverConfig(),
		Cache:           cache.DefaultCacheConfig(),
		Identity:        identity.DefaultConfig(),
		Audit:           audit.DefaultConfig(),
		HA:              ha.DefaultHAConfig(),
		Policy:          reporting.DefaultPolicy(),
	}
}

// ConfigFromEnv loads every package section from the environment on top of
// DefaultConfig.
func ConfigFromEnv() (*Config, error) {
	cfg := DefaultConfig()
	cfg.Resolver = factors.ResolverConfigFromEnv()
	cfg.Cache = cache.CacheConfigFromEnv()
	cfg.Identity = identity.ConfigFromEnv()
	auditCfg, err := audit.ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	cfg.Audit = auditCfg
	cfg.HA = ha.HAConfigFromEnv()

	policy, err := reporting.PolicyFromEnv()
	if err != nil {
		return nil, err
	}
	cfg.Policy = policy
	return cfg, nil
}

// Validate reports configuration errors that would otherwise surface at
// request time.
func (c *Config) Validate() error {
	switch strings.ToLower(c.DatabaseType) {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unknown database type %q (expected postgres, mysql or sqlite)", c.DatabaseType)
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("database DSN is required")
	}
	return c.Policy.Validate()
}
