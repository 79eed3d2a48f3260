package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	outputFmt string
	user      string
	groups    string
	token     string
)

var rootCmd = &cobra.Command{
	Use:   "greenstampctl",
	Short: "CLI for the GreenStamp carbon-accounting API",
	Long: `greenstampctl submits activities, generates CSRD reports and manages
emission factors and product passports on a GreenStamp server.

Identity is sent as X-Remote-User / X-Remote-Group headers, or as a bearer
token when --token (or GREENSTAMP_TOKEN) is set.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("GREENSTAMP_SERVER", "http://localhost:8080"), "GreenStamp server URL")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table", "Output format: table, json, yaml")
	rootCmd.PersistentFlags().StringVar(&user, "user", os.Getenv("GREENSTAMP_USER"), "Owner id sent as X-Remote-User")
	rootCmd.PersistentFlags().StringVar(&groups, "groups", os.Getenv("GREENSTAMP_GROUPS"), "Comma-separated groups sent as X-Remote-Group")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("GREENSTAMP_TOKEN"), "Bearer token (overrides --user/--groups)")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(activityCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(factorsCmd)
	rootCmd.AddCommand(passportCmd)
	rootCmd.AddCommand(ownerCmd)
	rootCmd.AddCommand(auditCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
