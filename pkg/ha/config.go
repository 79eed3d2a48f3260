// Package ha serializes schema migrations across server replicas sharing one
// database.
package ha

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// HAConfig holds configuration for multi-replica start-up.
type HAConfig struct {
	// MigrationLockEnabled controls whether database migration locking
	// is used to prevent concurrent schema changes.
	MigrationLockEnabled bool

	// LockName keys the lock. Replicas sharing a database must agree on it.
	LockName string

	// Identity is recorded as the holder of the table-based lock.
	// Defaults to POD_NAME or the hostname.
	Identity string

	// LockRetries and LockRetryInterval bound how long the table-based lock
	// waits for a concurrent holder.
	LockRetries       int
	LockRetryInterval time.Duration

	// StaleLockAge is the age after which a table-based lock left behind by
	// a crashed replica is discarded.
	StaleLockAge time.Duration
}

// DefaultHAConfig returns an HAConfig with sensible defaults.
func DefaultHAConfig() *HAConfig {
	return &HAConfig{
		MigrationLockEnabled: true,
		LockName:             "greenstamp-migration",
		Identity:             defaultIdentity(),
		LockRetries:          30,
		LockRetryInterval:    time.Second,
		StaleLockAge:         5 * time.Minute,
	}
}

// HAConfigFromEnv reads HA configuration from environment variables,
// falling back to defaults for any unset variable.
//
// Environment variables:
//   - GREENSTAMP_MIGRATION_LOCK_ENABLED: "true" or "false" (default: "true")
//   - GREENSTAMP_MIGRATION_LOCK_NAME: lock key (default: "greenstamp-migration")
//   - GREENSTAMP_MIGRATION_LOCK_RETRIES: attempts (default: 30)
//   - GREENSTAMP_MIGRATION_LOCK_STALE_AGE: seconds (default: 300)
//   - POD_NAME: lock holder identity
func HAConfigFromEnv() *HAConfig {
	cfg := DefaultHAConfig()

	if v := os.Getenv("GREENSTAMP_MIGRATION_LOCK_ENABLED"); v != "" {
		cfg.MigrationLockEnabled = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("GREENSTAMP_MIGRATION_LOCK_NAME"); v != "" {
		cfg.LockName = v
	}
	if v := os.Getenv("GREENSTAMP_MIGRATION_LOCK_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.LockRetries = n
		}
	}
	if v := os.Getenv("GREENSTAMP_MIGRATION_LOCK_STALE_AGE"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.StaleLockAge = time.Duration(secs) * time.Second
		}
	}
	if v := os.Getenv("POD_NAME"); v != "" {
		cfg.Identity = v
	}

	return cfg
}

func defaultIdentity() string {
	if v := os.Getenv("POD_NAME"); v != "" {
		return v
	}
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		return "unknown"
	}
	return hostname
}
