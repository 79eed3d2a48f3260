package audit

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config controls what the audit trail records and how long it keeps it.
type Config struct {
	// Enabled turns on recording of mutating /api/v1 requests.
	Enabled bool
	// RecordDenied also records requests answered with 401 or 403.
	RecordDenied bool
	// Retention is how long events are kept. Zero keeps them forever.
	Retention time.Duration
	// PruneInterval is the time between retention passes.
	PruneInterval time.Duration
	// PruneBatchSize caps the rows removed per delete statement so a large
	// backlog does not hold one long lock. Zero deletes in one statement.
	PruneBatchSize int
}

// DefaultConfig keeps 90 days of events, pruned daily in batches of 500.
func DefaultConfig() *Config {
	return &Config{
		Enabled:        true,
		RecordDenied:   true,
		Retention:      90 * 24 * time.Hour,
		PruneInterval:  24 * time.Hour,
		PruneBatchSize: 500,
	}
}

// RetentionDays is Retention in whole days.
func (c *Config) RetentionDays() int {
	return int(c.Retention / (24 * time.Hour))
}

// ConfigFromEnv overlays the GREENSTAMP_AUDIT_* variables on DefaultConfig:
//
//	GREENSTAMP_AUDIT_ENABLED         bool
//	GREENSTAMP_AUDIT_LOG_DENIED      bool
//	GREENSTAMP_AUDIT_RETENTION_DAYS  int, 0 keeps events forever
//	GREENSTAMP_AUDIT_PRUNE_INTERVAL  duration, e.g. 6h
//	GREENSTAMP_AUDIT_PRUNE_BATCH     int, 0 deletes in one statement
//
// Malformed values are reported together rather than silently ignored.
func ConfigFromEnv() (*Config, error) {
	cfg := DefaultConfig()
	var errs []error

	if v := os.Getenv("GREENSTAMP_AUDIT_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if errs = appendEnvErr(errs, "GREENSTAMP_AUDIT_ENABLED", err); err == nil {
			cfg.Enabled = b
		}
	}
	if v := os.Getenv("GREENSTAMP_AUDIT_LOG_DENIED"); v != "" {
		b, err := strconv.ParseBool(v)
		if errs = appendEnvErr(errs, "GREENSTAMP_AUDIT_LOG_DENIED", err); err == nil {
			cfg.RecordDenied = b
		}
	}
	if v := os.Getenv("GREENSTAMP_AUDIT_RETENTION_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err == nil && days < 0 {
			err = errors.New("must not be negative")
		}
		if errs = appendEnvErr(errs, "GREENSTAMP_AUDIT_RETENTION_DAYS", err); err == nil {
			cfg.Retention = time.Duration(days) * 24 * time.Hour
		}
	}
	if v := os.Getenv("GREENSTAMP_AUDIT_PRUNE_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil && d < time.Minute {
			err = errors.New("must be at least 1m")
		}
		if errs = appendEnvErr(errs, "GREENSTAMP_AUDIT_PRUNE_INTERVAL", err); err == nil {
			cfg.PruneInterval = d
		}
	}
	if v := os.Getenv("GREENSTAMP_AUDIT_PRUNE_BATCH"); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil && n < 0 {
			err = errors.New("must not be negative")
		}
		if errs = appendEnvErr(errs, "GREENSTAMP_AUDIT_PRUNE_BATCH", err); err == nil {
			cfg.PruneBatchSize = n
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func appendEnvErr(errs []error, key string, err error) []error {
	if err == nil {
		return errs
	}
	return append(errs, fmt.Errorf("%s: %w", key, err))
}
