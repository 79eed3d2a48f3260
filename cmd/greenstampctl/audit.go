package main

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	auditAction    string
	auditResource  string
	auditPageSize  int
	auditPageToken string
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show your audit trail",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{}
		setIf(q, "action", auditAction)
		setIf(q, "resourceType", auditResource)
		setIf(q, "pageToken", auditPageToken)
		if auditPageSize > 0 {
			q.Set("pageSize", strconv.Itoa(auditPageSize))
		}

		var resp auditList
		if err := newClient().getJSON(apiPrefix+"/audit/events", q, &resp); err != nil {
			return fmt.Errorf("failed to list audit events: %w", err)
		}
		if structured() {
			return printOutput(resp)
		}

		rows := make([][]string, 0, len(resp.Events))
		for _, e := range resp.Events {
			rows = append(rows, []string{
				e.CreatedAt,
				e.Action,
				e.ResourceType,
				e.ResourceID,
				e.Outcome,
				strconv.Itoa(e.StatusCode),
			})
		}
		printTable([]string{"Time", "Action", "Resource", "ID", "Outcome", "Status"}, rows)
		if resp.NextPageToken != "" {
			fmt.Fprintf(out, "\nNext page: --page-token %s\n", resp.NextPageToken)
		}
		return nil
	},
}

func init() {
	auditCmd.Flags().StringVar(&auditAction, "action", "", "Filter by action, e.g. submit-energy")
	auditCmd.Flags().StringVar(&auditResource, "resource", "", "Filter by resource type, e.g. passports")
	auditCmd.Flags().IntVar(&auditPageSize, "page-size", 0, "Page size (server default 20)")
	auditCmd.Flags().StringVar(&auditPageToken, "page-token", "", "Token from a previous page")
}
