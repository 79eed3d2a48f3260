package main

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

var factorsCmd = &cobra.Command{
	Use:     "factors",
	Aliases: []string{"factor"},
	Short:   "List, resolve and update emission factors",
}

var (
	factorType     string
	factorCategory string
	factorRegion   string
	factorAt       string
	factorFilter   string

	factorValue float64
	factorSrc   string
	factorTo    string
	factorOff   bool
)

var factorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active emission factors",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{}
		setIf(q, "type", factorType)
		setIf(q, "category", factorCategory)
		setIf(q, "region", factorRegion)
		setIf(q, "filterQuery", factorFilter)

		var resp factorList
		if err := newClient().getJSON(apiPrefix+"/factors", q, &resp); err != nil {
			return fmt.Errorf("failed to list factors: %w", err)
		}
		if structured() {
			return printOutput(resp)
		}
		printFactors(resp.Factors)
		return nil
	},
}

var factorsResolveCmd = &cobra.Command{
	Use:   "resolve <type> <category>",
	Short: "Show the factor applied to a lookup, including region fallback",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{}
		q.Set("type", args[0])
		q.Set("category", args[1])
		setIf(q, "region", factorRegion)
		setIf(q, "at", factorAt)

		var resp resolvedFactor
		if err := newClient().getJSON(apiPrefix+"/factors/resolve", q, &resp); err != nil {
			return fmt.Errorf("failed to resolve factor: %w", err)
		}
		if structured() {
			return printOutput(resp)
		}
		printFactors([]factor{resp.Factor})
		if resp.Fallback {
			fmt.Fprintf(out, "\nNo factor for region %s; fell back to %s.\n", resp.RequestedRegion, resp.Factor.Region)
		}
		return nil
	},
}

var factorsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a factor (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]any{}
		if cmd.Flags().Changed("value") {
			body["factorValue"] = factorValue
		}
		if cmd.Flags().Changed("source") {
			body["source"] = factorSrc
		}
		if cmd.Flags().Changed("valid-to") {
			if factorTo == "" {
				body["validTo"] = nil
			} else {
				body["validTo"] = factorTo
			}
		}
		if cmd.Flags().Changed("deactivate") {
			body["active"] = !factorOff
		}
		if len(body) == 0 {
			return fmt.Errorf("nothing to update: set at least one of --value, --source, --valid-to, --deactivate")
		}

		var f factor
		if err := newClient().patchJSON(apiPrefix+"/factors/"+url.PathEscape(args[0]), body, &f); err != nil {
			return fmt.Errorf("failed to update factor: %w", err)
		}
		if structured() {
			return printOutput(f)
		}
		printFactors([]factor{f})
		return nil
	},
}

func init() {
	factorsListCmd.Flags().StringVar(&factorType, "type", "", "Filter by type: energy, transport, material")
	factorsListCmd.Flags().StringVar(&factorCategory, "category", "", "Filter by category")
	factorsListCmd.Flags().StringVar(&factorRegion, "region", "", "Filter by region")
	factorsListCmd.Flags().StringVar(&factorFilter, "filter", "", "filterQuery expression, e.g. \"factorValue > 1 AND unit = 'kg'\"")

	factorsResolveCmd.Flags().StringVar(&factorRegion, "region", "", "Requested region")
	factorsResolveCmd.Flags().StringVar(&factorAt, "at", "", "Instant, RFC 3339 or YYYY-MM-DD (default: now)")

	factorsUpdateCmd.Flags().Float64Var(&factorValue, "value", 0, "New factor value (kg CO2e per unit)")
	factorsUpdateCmd.Flags().StringVar(&factorSrc, "source", "", "New source")
	factorsUpdateCmd.Flags().StringVar(&factorTo, "valid-to", "", "End of validity; empty makes the factor open-ended")
	factorsUpdateCmd.Flags().BoolVar(&factorOff, "deactivate", false, "Deactivate the factor")

	factorsCmd.AddCommand(factorsListCmd, factorsResolveCmd, factorsUpdateCmd)
}

func printFactors(items []factor) {
	rows := make([][]string, 0, len(items))
	for _, f := range items {
		validity := f.ValidFrom + " .."
		if f.ValidTo != "" {
			validity += " " + f.ValidTo
		}
		rows = append(rows, []string{
			truncate(f.ID, 12),
			f.Type,
			f.Category,
			f.Region,
			strconv.FormatFloat(f.FactorValue, 'f', -1, 64) + " /" + f.Unit,
			validity,
		})
	}
	printTable([]string{"ID", "Type", "Category", "Region", "Factor", "Validity"}, rows)
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
