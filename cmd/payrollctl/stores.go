package main

import (
	"fmt"
	"strings"

	"btcpay-plugins/internal/auth"
	"btcpay-plugins/internal/cash"
	"btcpay-plugins/internal/database"
	"btcpay-plugins/internal/models"

	"github.com/spf13/cobra"
)

func storesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stores",
		Short: "Manage stores",
	}

	create := &cobra.Command{
		Use:   "create <id> <name>",
		Short: "Create a store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			currency, _ := cmd.Flags().GetString("currency")
			store := &models.Store{ID: args[0], Name: args[1]}
			store.SetBlob(models.StoreBlob{DefaultCurrency: strings.ToUpper(currency)})
			if err := a.db.WithContext(cmd.Context()).Create(store).Error; err != nil {
				return fmt.Errorf("create store: %w", err)
			}
			database.CreateAuditLog(cmd.Context(), a.db, models.AuditLog{
				StoreID:  store.ID,
				Actor:    models.ActorCLI,
				Entity:   "store",
				EntityID: store.ID,
				Action:   "create",
				Details:  store.Name,
			})
			fmt.Fprintf(a.out, "created store %s (%s)\n", store.ID, store.Name)
			return nil
		},
	}
	create.Flags().String("currency", models.DefaultCurrency, "Store default currency")

	list := &cobra.Command{
		Use:   "list",
		Short: "List stores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var stores []models.Store
			if err := a.db.WithContext(cmd.Context()).Order("id asc").Find(&stores).Error; err != nil {
				return fmt.Errorf("list stores: %w", err)
			}
			for i := range stores {
				s := &stores[i]
				fmt.Fprintf(a.out, "%-24s %-30s currency=%s cash=%t\n",
					s.ID, s.Name, s.GetBlob().DefaultCurrency, cash.Enabled(s))
			}
			return nil
		},
	}

	cmd.AddCommand(create, list)
	return cmd
}

func adminCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage host admin accounts",
	}

	create := &cobra.Command{
		Use:   "create <username>",
		Short: "Create a host account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, _ := cmd.Flags().GetString("password")
			role, _ := cmd.Flags().GetString("role")
			switch models.UserRole(role) {
			case models.RoleAdmin, models.RoleViewer:
			default:
				return fmt.Errorf("unknown role %q", role)
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			user := &models.User{
				Username:     strings.TrimSpace(args[0]),
				PasswordHash: hash,
				Role:         models.UserRole(role),
			}
			if err := a.db.WithContext(cmd.Context()).Create(user).Error; err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			fmt.Fprintf(a.out, "created %s %s (id %d)\n", user.Role, user.Username, user.ID)
			return nil
		},
	}
	create.Flags().String("password", "", "Password")
	create.Flags().String("role", string(models.RoleAdmin), "Role: admin or viewer")
	_ = create.MarkFlagRequired("password")

	cmd.AddCommand(create)
	return cmd
}
