package main

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

var activityCmd = &cobra.Command{
	Use:     "activity",
	Aliases: []string{"activities"},
	Short:   "Submit and inspect activities",
}

var (
	actRegion      string
	actTimestamp   string
	actDescription string
	actPageSize    int
	actPageToken   string
)

var activityEnergyCmd = &cobra.Command{
	Use:   "energy <kwh> <energy-type>",
	Short: "Submit an energy activity (electricity, gas, diesel, petrol, renewable)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kwh, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid kwh %q: %w", args[0], err)
		}
		body := map[string]any{
			"kwh":         kwh,
			"energyType":  args[1],
			"region":      actRegion,
			"timestamp":   actTimestamp,
			"description": actDescription,
		}
		var a activity
		if err := newClient().postJSON(apiPrefix+"/activities/energy", body, &a); err != nil {
			return fmt.Errorf("failed to submit energy activity: %w", err)
		}
		return printActivities([]activity{a})
	},
}

var activityTransportCmd = &cobra.Command{
	Use:   "transport <tkm> <mode>",
	Short: "Submit a transport activity (road, rail, air, sea)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tkm, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid tkm %q: %w", args[0], err)
		}
		body := map[string]any{
			"tkm":           tkm,
			"transportMode": args[1],
			"region":        actRegion,
			"timestamp":     actTimestamp,
			"description":   actDescription,
		}
		var a activity
		if err := newClient().postJSON(apiPrefix+"/activities/transport", body, &a); err != nil {
			return fmt.Errorf("failed to submit transport activity: %w", err)
		}
		return printActivities([]activity{a})
	},
}

var activityListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your activities, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{}
		if actPageSize > 0 {
			q.Set("pageSize", strconv.Itoa(actPageSize))
		}
		if actPageToken != "" {
			q.Set("pageToken", actPageToken)
		}
		var resp activityList
		if err := newClient().getJSON(apiPrefix+"/activities", q, &resp); err != nil {
			return fmt.Errorf("failed to list activities: %w", err)
		}
		if structured() {
			return printOutput(resp)
		}
		if err := printActivities(resp.Activities); err != nil {
			return err
		}
		fmt.Fprintf(out, "\n%d of %d activities\n", len(resp.Activities), resp.TotalSize)
		if resp.NextPageToken != "" {
			fmt.Fprintf(out, "Next page: --page-token %s\n", resp.NextPageToken)
		}
		return nil
	},
}

var activityGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one activity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var a activity
		if err := newClient().getJSON(apiPrefix+"/activities/"+url.PathEscape(args[0]), nil, &a); err != nil {
			return fmt.Errorf("failed to get activity: %w", err)
		}
		return printActivities([]activity{a})
	},
}

func init() {
	for _, c := range []*cobra.Command{activityEnergyCmd, activityTransportCmd} {
		c.Flags().StringVar(&actRegion, "region", "", "Region code (default: server default region)")
		c.Flags().StringVar(&actTimestamp, "timestamp", "", "Activity time, RFC 3339 or YYYY-MM-DD (required)")
		c.Flags().StringVar(&actDescription, "description", "", "Free-text description")
		_ = c.MarkFlagRequired("timestamp")
	}
	activityListCmd.Flags().IntVar(&actPageSize, "page-size", 0, "Page size (server default 20)")
	activityListCmd.Flags().StringVar(&actPageToken, "page-token", "", "Token from a previous page")

	activityCmd.AddCommand(activityEnergyCmd, activityTransportCmd, activityListCmd, activityGetCmd)
}

func printActivities(items []activity) error {
	if structured() {
		if len(items) == 1 {
			return printOutput(items[0])
		}
		return printOutput(items)
	}
	rows := make([][]string, 0, len(items))
	for _, a := range items {
		rows = append(rows, []string{
			a.ID,
			a.Type,
			a.Category,
			formatNumber(a.Quantity) + " " + a.Unit,
			formatKg(a.CalculatedCO2e),
			a.ActivityDate,
		})
	}
	printTable([]string{"ID", "Type", "Category", "Quantity", "CO2e", "Date"}, rows)
	return nil
}
