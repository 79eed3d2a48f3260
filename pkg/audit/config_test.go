package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.Enabled)
	assert.True(t, cfg.RecordDenied)
	assert.Equal(t, 90, cfg.RetentionDays())
	assert.Equal(t, 24*time.Hour, cfg.PruneInterval)
	assert.Equal(t, 500, cfg.PruneBatchSize)
}

func TestConfigFromEnv(t *testing.T) {
	tests := []struct {
		name string
		envs map[string]string
		want *Config
	}{
		{
			name: "defaults",
			envs: map[string]string{},
			want: DefaultConfig(),
		},
		{
			name: "custom",
			envs: map[string]string{
				"GREENSTAMP_AUDIT_ENABLED":        "false",
				"GREENSTAMP_AUDIT_LOG_DENIED":     "false",
				"GREENSTAMP_AUDIT_RETENTION_DAYS": "30",
				"GREENSTAMP_AUDIT_PRUNE_INTERVAL": "6h",
				"GREENSTAMP_AUDIT_PRUNE_BATCH":    "1000",
			},
			want: &Config{
				Enabled:        false,
				RecordDenied:   false,
				Retention:      30 * 24 * time.Hour,
				PruneInterval:  6 * time.Hour,
				PruneBatchSize: 1000,
			},
		},
		{
			name: "keep forever and delete in one statement",
			envs: map[string]string{
				"GREENSTAMP_AUDIT_RETENTION_DAYS": "0",
				"GREENSTAMP_AUDIT_PRUNE_BATCH":    "0",
			},
			want: &Config{
				Enabled:        true,
				RecordDenied:   true,
				Retention:      0,
				PruneInterval:  24 * time.Hour,
				PruneBatchSize: 0,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envs {
				t.Setenv(k, v)
			}
			cfg, err := ConfigFromEnv()
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg)
		})
	}
}

func TestConfigFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "enabled not a bool", key: "GREENSTAMP_AUDIT_ENABLED", val: "sometimes"},
		{name: "denied not a bool", key: "GREENSTAMP_AUDIT_LOG_DENIED", val: "maybe"},
		{name: "retention not a number", key: "GREENSTAMP_AUDIT_RETENTION_DAYS", val: "ninety"},
		{name: "negative retention", key: "GREENSTAMP_AUDIT_RETENTION_DAYS", val: "-1"},
		{name: "interval not a duration", key: "GREENSTAMP_AUDIT_PRUNE_INTERVAL", val: "daily"},
		{name: "interval too short", key: "GREENSTAMP_AUDIT_PRUNE_INTERVAL", val: "10s"},
		{name: "negative batch", key: "GREENSTAMP_AUDIT_PRUNE_BATCH", val: "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			cfg, err := ConfigFromEnv()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestConfigFromEnv_ReportsEveryBadKey(t *testing.T) {
	t.Setenv("GREENSTAMP_AUDIT_RETENTION_DAYS", "-1")
	t.Setenv("GREENSTAMP_AUDIT_PRUNE_BATCH", "lots")

	_, err := ConfigFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GREENSTAMP_AUDIT_RETENTION_DAYS")
	assert.Contains(t, err.Error(), "GREENSTAMP_AUDIT_PRUNE_BATCH")
}
