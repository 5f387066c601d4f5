// Command cashclear runs the CASHCLEAR Pro voucher server and its maintenance tasks.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cashclear/cashclear-pro/internal/app"
	"github.com/cashclear/cashclear-pro/internal/config"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		log.WithError(err).Error("cashclear failed")
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var appCfg config.AppConfig

	root := &cobra.Command{
		Use:           "cashclear",
		Short:         "CASHCLEAR Pro voucher ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&appCfg.ConfigPath, "config", "", "path to config.yaml (default $CASHCLEAR_CONFIG or ./config.yaml)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.RunServer(cmd.Context(), appCfg)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.Migrate(cmd.Context(), appCfg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "provision",
		Short: "Create the bootstrap administrator when missing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := app.Provision(cmd.Context(), appCfg)
			if err != nil {
				return err
			}
			if result.Created {
				fmt.Fprintf(cmd.OutOrStdout(), "administrator %s created at %s\n", result.AdminID, result.Location)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "administrator %s already exists\n", result.AdminID)
			}
			return nil
		},
	})

	breakGlass := &cobra.Command{
		Use:   "break-glass",
		Short: "Manage emergency access",
	}
	var actor string
	rotate := &cobra.Command{
		Use:   "rotate",
		Short: "Replace the break-glass secret and print the enrolment URL",
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := app.RotateBreakGlass(cmd.Context(), appCfg, actor)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "secret: %s\n", key.Secret)
			fmt.Fprintf(out, "otpauth url: %s\n", key.URL)
			return nil
		},
	}
	rotate.Flags().StringVar(&actor, "actor", "cli", "actor recorded in the audit log")
	breakGlass.AddCommand(rotate)
	root.AddCommand(breakGlass)

	return root
}
