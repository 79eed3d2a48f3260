package main

import (
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/greenstamp/greenstamp-api/pkg/server"
)

// loadConfig builds the server configuration: package sections from their
// GREENSTAMP_* variables, top-level settings from v.
func loadConfig(v *viper.Viper) (*server.Config, error) {
	cfg, err := server.ConfigFromEnv()
	if err != nil {
		return nil, err
	}

	if s := v.GetString("listen"); s != "" {
		cfg.ListenAddr = s
	}
	if s := v.GetString("db-type"); s != "" {
		cfg.DatabaseType = strings.ToLower(s)
	}
	if s := v.GetString("db-dsn"); s != "" {
		cfg.DatabaseDSN = s
	}
	if origins := v.GetStringSlice("allowed-origins"); len(origins) > 0 {
		cfg.AllowedOrigins = origins
	}
	if d := v.GetDuration("shutdown-timeout"); d > 0 {
		cfg.ShutdownTimeout = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
