package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check server health and readiness",
	RunE:  runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	client := newClient()

	var healthResp map[string]any
	if err := client.getJSON("/healthz", nil, &healthResp); err != nil {
		return fmt.Errorf("server unreachable: %w", err)
	}

	var readyResp map[string]any
	if err := client.getJSON("/readyz", nil, &readyResp); err != nil {
		// The server may still be migrating.
		readyResp = map[string]any{"status": "unknown", "error": err.Error()}
	}

	if structured() {
		return printOutput(map[string]any{
			"health":    healthResp,
			"readiness": readyResp,
		})
	}

	status, _ := healthResp["status"].(string)
	uptime, _ := healthResp["uptime"].(string)
	ready, _ := readyResp["status"].(string)

	printTable([]string{"Check", "Status"}, [][]string{
		{"Liveness", status},
		{"Uptime", uptime},
		{"Readiness", ready},
	})
	return nil
}
