package main

import (
	"fmt"

	"btcpay-plugins/internal/models"

	"github.com/spf13/cobra"
)

func invoicesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoices",
		Short: "Review payroll invoices",
	}

	list := &cobra.Command{
		Use:   "list <storeId>",
		Short: "List payroll invoices of a store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			all, _ := cmd.Flags().GetBool("all")
			stateFilter, _ := cmd.Flags().GetString("state")
			var want models.PayrollInvoiceState
			if stateFilter != "" {
				st, ok := models.ParsePayrollInvoiceState(stateFilter)
				if !ok {
					return fmt.Errorf("unknown state %q", stateFilter)
				}
				want = st
			}
			invoices, err := a.payroll.StoreInvoices(cmd.Context(), args[0], all)
			if err != nil {
				return err
			}
			for _, inv := range invoices {
				if want != "" && inv.State != want {
					continue
				}
				fmt.Fprintf(a.out, "%s  %s  %-24s %s %s  %s  %s\n",
					inv.ID, inv.CreatedAt.Format("2006-01-02"), inv.User.Email,
					inv.Amount.String(), inv.Currency, inv.Destination, inv.State.Label())
			}
			return nil
		},
	}
	list.Flags().Bool("all", false, "Include archived invoices")
	list.Flags().String("state", "", "Only show invoices in this state, e.g. awaiting_approval")

	cmd.AddCommand(
		list,
		transitionCmd(a, "approve", "Approve an invoice awaiting approval", models.PayrollApproved),
		transitionCmd(a, "start", "Mark an approved invoice as being paid", models.PayrollInProgress),
		transitionCmd(a, "complete", "Mark an invoice as paid", models.PayrollCompleted),
		transitionCmd(a, "cancel", "Cancel an invoice", models.PayrollCancelled),
		archiveCmd(a),
	)
	return cmd
}

func transitionCmd(a *app, use, short string, next models.PayrollInvoiceState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " <invoiceId>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			txn, _ := cmd.Flags().GetString("txn")
			inv, err := a.payroll.TransitionInvoice(cmd.Context(), args[0], next, txn)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "invoice %s is now %s\n", inv.ID, inv.State.Label())
			return nil
		},
	}
	if next == models.PayrollCompleted {
		cmd.Flags().String("txn", "", "Payout transaction id")
		_ = cmd.MarkFlagRequired("txn")
	}
	return cmd
}

func archiveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "archive <invoiceId>",
		Short: "Hide a completed or cancelled invoice from the vendor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.payroll.ArchiveInvoice(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "invoice %s archived\n", args[0])
			return nil
		},
	}
}
