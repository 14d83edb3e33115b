package main

import (
	"fmt"

	"btcpay-plugins/internal/models"

	"github.com/spf13/cobra"
)

func usersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage payroll users",
	}

	create := &cobra.Command{
		Use:   "create <storeId> <email> <name>",
		Short: "Create a payroll user",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, _ := cmd.Flags().GetString("password")
			user, err := a.payroll.CreateUser(cmd.Context(), args[0], args[1], args[2], password)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "created payroll user %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}
	create.Flags().String("password", "", "Initial password")
	_ = create.MarkFlagRequired("password")

	list := &cobra.Command{
		Use:   "list <storeId>",
		Short: "List payroll users of a store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := a.payroll.StoreUsers(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, u := range users {
				fmt.Fprintf(a.out, "%s  %-30s %-24s %s\n", u.ID, u.Email, u.Name, u.State)
			}
			return nil
		},
	}

	state := &cobra.Command{
		Use:   "state <storeId> <email> <active|disabled>",
		Short: "Enable or disable a payroll user",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := models.PayrollUserState(args[2])
			if st != models.PayrollUserActive && st != models.PayrollUserDisabled {
				return fmt.Errorf("unknown state %q", args[2])
			}
			if err := a.payroll.SetUserState(cmd.Context(), args[0], args[1], st); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s is now %s\n", args[1], st)
			return nil
		},
	}

	cmd.AddCommand(create, list, state)
	return cmd
}
