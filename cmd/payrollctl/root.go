package main

import (
	"fmt"
	"io"

	"btcpay-plugins/internal/config"
	"btcpay-plugins/internal/database"
	"btcpay-plugins/internal/logging"
	"btcpay-plugins/internal/payroll"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// app is shared by all subcommands once the database is open.
type app struct {
	db      *gorm.DB
	payroll *payroll.Service
	out     io.Writer
}

type opener func() (*gorm.DB, error)

func openFromEnv() (*gorm.DB, error) {
	cfg, err := config.LoadForCLI()
	if err != nil {
		return nil, err
	}
	logging.Configure(cfg.AppEnv, cfg.LogLevel)
	return database.Open(cfg)
}

func newRootCmd(open opener) *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "payrollctl",
		Short:         "Administer stores, payroll users and payroll invoices",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			db, err := open()
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			a.db = db
			// admin operations never touch attachments or addresses
			a.payroll = payroll.NewService(db, nil, nil)
			a.out = cmd.OutOrStdout()
			return nil
		},
	}

	rootCmd.AddCommand(storesCmd(a))
	rootCmd.AddCommand(adminCmd(a))
	rootCmd.AddCommand(usersCmd(a))
	rootCmd.AddCommand(invoicesCmd(a))
	rootCmd.AddCommand(settingsCmd(a))

	return rootCmd
}
