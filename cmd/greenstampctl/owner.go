package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var ownerCmd = &cobra.Command{
	Use:   "owner",
	Short: "Register owners and show the current one",
}

var (
	ownerID    string
	ownerEmail string
	ownerOrg   string
)

var ownerRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register an owner organization (admin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]string{
			"id":               ownerID,
			"email":            ownerEmail,
			"organizationName": ownerOrg,
		}
		var o owner
		if err := newClient().postJSON(apiPrefix+"/owners", body, &o); err != nil {
			return fmt.Errorf("failed to register owner: %w", err)
		}
		return printOwner(o)
	},
}

var ownerMeCmd = &cobra.Command{
	Use:   "me",
	Short: "Show the owner record of the current identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		var o owner
		if err := newClient().getJSON(apiPrefix+"/owners/me", nil, &o); err != nil {
			return fmt.Errorf("failed to get owner: %w", err)
		}
		return printOwner(o)
	},
}

func init() {
	ownerRegisterCmd.Flags().StringVar(&ownerID, "id", "", "Owner id (default: generated)")
	ownerRegisterCmd.Flags().StringVar(&ownerEmail, "email", "", "Contact email (required)")
	ownerRegisterCmd.Flags().StringVar(&ownerOrg, "organization", "", "Organization name (required)")
	_ = ownerRegisterCmd.MarkFlagRequired("email")
	_ = ownerRegisterCmd.MarkFlagRequired("organization")

	ownerCmd.AddCommand(ownerRegisterCmd, ownerMeCmd)
}

func printOwner(o owner) error {
	if structured() {
		return printOutput(o)
	}
	printTable([]string{"ID", "Email", "Organization", "Active"}, [][]string{
		{o.ID, o.Email, o.OrganizationName, strconv.FormatBool(o.Active)},
	})
	return nil
}
