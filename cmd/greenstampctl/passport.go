package main

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var passportCmd = &cobra.Command{
	Use:     "passport",
	Aliases: []string{"passports"},
	Short:   "Issue and inspect digital product passports",
}

var (
	ppProductID    string
	ppName         string
	ppManufacturer string
	ppMaterials    []string
	ppFootprint    float64
	ppInputs       []string
	ppRegion       string
	ppDate         string
	ppURL          string
)

var passportCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Issue a passport",
	Long: `Issue a passport. Give the footprint directly with --footprint, or let the
server compute it from a bill of materials with repeated --input material=kg.`,
	Example: `  greenstampctl passport create --product-id SKU-1 --name Chair --manufacturer Acme \
    --input steel=4.5 --input plastic=0.8`,
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]any{
			"productId":         ppProductID,
			"productName":       ppName,
			"manufacturer":      ppManufacturer,
			"materials":         ppMaterials,
			"region":            ppRegion,
			"manufacturingDate": ppDate,
			"productUrl":        ppURL,
		}
		if cmd.Flags().Changed("footprint") {
			body["carbonFootprint"] = ppFootprint
		}
		if len(ppInputs) > 0 {
			inputs, err := parseMaterialInputs(ppInputs)
			if err != nil {
				return err
			}
			body["materialInputs"] = inputs
		}

		var p passport
		if err := newClient().postJSON(apiPrefix+"/passports", body, &p); err != nil {
			return fmt.Errorf("failed to create passport: %w", err)
		}
		return printPassports([]passport{p})
	},
}

var passportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your passports",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp passportList
		if err := newClient().getJSON(apiPrefix+"/passports", nil, &resp); err != nil {
			return fmt.Errorf("failed to list passports: %w", err)
		}
		if structured() {
			return printOutput(resp)
		}
		return printPassports(resp.Passports)
	},
}

var passportGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one passport",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var p passport
		if err := newClient().getJSON(apiPrefix+"/passports/"+url.PathEscape(args[0]), nil, &p); err != nil {
			return fmt.Errorf("failed to get passport: %w", err)
		}
		return printPassports([]passport{p})
	},
}

func init() {
	f := passportCreateCmd.Flags()
	f.StringVar(&ppProductID, "product-id", "", "Product identifier (required)")
	f.StringVar(&ppName, "name", "", "Product name (required)")
	f.StringVar(&ppManufacturer, "manufacturer", "", "Manufacturer (required)")
	f.StringSliceVar(&ppMaterials, "material", nil, "Material names (repeatable)")
	f.Float64Var(&ppFootprint, "footprint", 0, "Carbon footprint in kg CO2e")
	f.StringArrayVar(&ppInputs, "input", nil, "Bill-of-materials line material=kg (repeatable)")
	f.StringVar(&ppRegion, "region", "", "Region for material factors")
	f.StringVar(&ppDate, "manufacturing-date", "", "Manufacturing date, YYYY-MM-DD")
	f.StringVar(&ppURL, "url", "", "Product page URL")
	_ = passportCreateCmd.MarkFlagRequired("product-id")
	_ = passportCreateCmd.MarkFlagRequired("name")
	_ = passportCreateCmd.MarkFlagRequired("manufacturer")

	passportCmd.AddCommand(passportCreateCmd, passportListCmd, passportGetCmd)
}

// parseMaterialInputs turns ["steel=4.5"] into materialInputs entries.
func parseMaterialInputs(specs []string) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(specs))
	for _, s := range specs {
		name, qty, ok := strings.Cut(s, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid --input %q (expected material=kg)", s)
		}
		kg, err := strconv.ParseFloat(strings.TrimSpace(qty), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity in --input %q: %w", s, err)
		}
		out = append(out, map[string]any{"material": strings.TrimSpace(name), "quantityKg": kg})
	}
	return out, nil
}

func printPassports(items []passport) error {
	if structured() {
		if len(items) == 1 {
			return printOutput(items[0])
		}
		return printOutput(items)
	}
	rows := make([][]string, 0, len(items))
	for _, p := range items {
		rows = append(rows, []string{
			p.ID,
			p.ProductID,
			truncate(p.ProductName, 30),
			p.Manufacturer,
			strings.Join(p.Materials, ", "),
			formatKg(p.CarbonFootprint),
		})
	}
	printTable([]string{"ID", "Product", "Name", "Manufacturer", "Materials", "Footprint"}, rows)
	return nil
}
