// Package main is the GreenStamp API server entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/greenstamp/greenstamp-api/pkg/server"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "greenstamp-server",
	Short: "GreenStamp carbon-accounting API server",
	Long: `greenstamp-server records energy and transport activities, resolves
time-versioned emission factors and produces CSRD scope reports.

Settings come from flags, GREENSTAMP_* environment variables or an optional
YAML config file, in that order of precedence.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	RunE: runServer,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (YAML)")
	rootCmd.Flags().String("listen", ":8080", "Address to listen on")
	rootCmd.Flags().String("db-type", "sqlite", "Database type (postgres, mysql or sqlite)")
	rootCmd.Flags().String("db-dsn", "greenstamp.db", "Database connection string")
	rootCmd.Flags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.Flags().StringSlice("allowed-origins", nil, "CORS allowed origins (default: any http/https origin)")
	rootCmd.Flags().Duration("shutdown-timeout", 0, "Graceful shutdown timeout (default 30s)")

	// glog flags (-v, -logtostderr) live on the standard flag set.
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)

	if err := viper.BindPFlags(rootCmd.Flags()); err != nil {
		glog.Fatalf("Failed to bind flags: %v", err)
	}
}

func initConfig() error {
	viper.SetEnvPrefix("GREENSTAMP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
	}
	return nil
}

func runServer(cmd *cobra.Command, args []string) error {
	_ = flag.Set("logtostderr", "true")

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(viper.GetString("log-level")),
	}))
	slog.SetDefault(logger)

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	logger.Info("starting greenstamp server",
		"listen", cfg.ListenAddr,
		"dbType", cfg.DatabaseType,
		"identityMode", cfg.Identity.Mode,
		"defaultRegion", cfg.Resolver.DefaultRegion,
		"cache", cfg.Cache.Enabled,
		"audit", cfg.Audit.Enabled,
	)

	db, err := server.OpenDatabase(cfg.DatabaseType, cfg.DatabaseDSN, logger)
	if err != nil {
		glog.Fatalf("Failed to connect to database: %v", err)
	}

	srv, err := server.New(cfg, db, logger)
	if err != nil {
		glog.Fatalf("Failed to create server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Init(ctx); err != nil {
		glog.Fatalf("Failed to initialize server: %v", err)
	}

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
