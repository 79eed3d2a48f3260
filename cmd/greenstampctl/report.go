package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

var (
	reportStart string
	reportEnd   string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate emissions reports",
}

var reportCSRDCmd = &cobra.Command{
	Use:   "csrd",
	Short: "Generate a CSRD scope 1/2/3 report for a date range",
	Example: `  greenstampctl report csrd --start 2024-01-01 --end 2024-12-31
  greenstampctl report csrd --start 2024-01-01 --end 2024-03-31 -o yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{}
		q.Set("startDate", reportStart)
		q.Set("endDate", reportEnd)

		var r report
		if err := newClient().getJSON(apiPrefix+"/reports/csrd", q, &r); err != nil {
			return fmt.Errorf("failed to generate report: %w", err)
		}
		if structured() {
			return printOutput(r)
		}

		fmt.Fprintf(out, "Report:        %s\n", r.ReportID)
		fmt.Fprintf(out, "Organization:  %s (%s)\n", r.Organization.Name, r.Organization.Identifier)
		fmt.Fprintf(out, "Period:        %s .. %s\n", r.ReportingPeriod.StartDate, r.ReportingPeriod.EndDate)
		fmt.Fprintf(out, "Activities:    %d\n\n", r.ActivityCount)

		printTable([]string{"Scope", "Breakdown", "Emissions"}, [][]string{
			{"Scope 1", "", formatKg(r.Scope1.Total)},
			{"", "energy", formatKg(r.Scope1.Breakdown["energy"])},
			{"", "transport", formatKg(r.Scope1.Breakdown["transport"])},
			{"Scope 2", "", formatKg(r.Scope2.Total)},
			{"", "electricity", formatKg(r.Scope2.Breakdown["electricity"])},
			{"", "heat", formatKg(r.Scope2.Breakdown["heat"])},
			{"Scope 3", "", formatKg(r.Scope3.Total)},
			{"", "transport", formatKg(r.Scope3.Breakdown["transport"])},
			{"", "materials", formatKg(r.Scope3.Breakdown["materials"])},
			{"Total", "", formatKg(r.TotalEmissions)},
		})

		fmt.Fprintf(out, "\nMethodology: %s\nAssurance:   %s\n", r.Methodology, r.Assurance)
		return nil
	},
}

func init() {
	reportCSRDCmd.Flags().StringVar(&reportStart, "start", "", "Start date, YYYY-MM-DD or RFC 3339 (required)")
	reportCSRDCmd.Flags().StringVar(&reportEnd, "end", "", "End date, inclusive (required)")
	_ = reportCSRDCmd.MarkFlagRequired("start")
	_ = reportCSRDCmd.MarkFlagRequired("end")

	reportCmd.AddCommand(reportCSRDCmd)
}
