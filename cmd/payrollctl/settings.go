package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func settingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change per-store payroll settings",
	}

	show := &cobra.Command{
		Use:   "show <storeId>",
		Short: "Show payroll settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.payroll.Settings(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "purchase-orders-required=%t\nfiles-optional=%t\ndefault-currency=%s\n",
				s.PurchaseOrdersRequired, s.MakeInvoiceFilesOptional, s.DefaultCurrency)
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <storeId>",
		Short: "Change payroll settings; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.payroll.Settings(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("purchase-orders-required") {
				s.PurchaseOrdersRequired, _ = flags.GetBool("purchase-orders-required")
			}
			if flags.Changed("files-optional") {
				s.MakeInvoiceFilesOptional, _ = flags.GetBool("files-optional")
			}
			if flags.Changed("currency") {
				s.DefaultCurrency, _ = flags.GetString("currency")
			}
			if err := a.payroll.SaveSettings(cmd.Context(), s); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "settings saved for %s\n", args[0])
			return nil
		},
	}
	set.Flags().Bool("purchase-orders-required", false, "Require a purchase order on every invoice")
	set.Flags().Bool("files-optional", false, "Allow invoices without an attached file")
	set.Flags().String("currency", "", "Default currency")

	cmd.AddCommand(show, set)
	return cmd
}
