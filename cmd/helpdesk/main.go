package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/openhelpdesk/helpdesk/internal/interfaces/cli/bootstrap"
	"github.com/openhelpdesk/helpdesk/internal/interfaces/cli/escalate"
	"github.com/openhelpdesk/helpdesk/internal/interfaces/cli/kb"
	"github.com/openhelpdesk/helpdesk/internal/interfaces/cli/mailbox"
	"github.com/openhelpdesk/helpdesk/internal/interfaces/cli/migrate"
	"github.com/openhelpdesk/helpdesk/internal/interfaces/cli/server"
	"github.com/openhelpdesk/helpdesk/internal/interfaces/cli/user"
	"github.com/openhelpdesk/helpdesk/internal/shared/version"
)

// @title Helpdesk API
// @version 1.0
// @description Ticket tracking with queues, follow-ups, e-mail intake and a knowledge base.
// @BasePath /
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
func main() {
	flags := &bootstrap.Flags{}

	rootCmd := &cobra.Command{
		Use:          "helpdesk",
		Short:        "Helpdesk - ticket tracking for support teams",
		Long:         `Helpdesk serves the ticket tracker and runs its maintenance jobs: migrations, mailbox polling, escalation and knowledge base import.`,
		Version:      version.Current,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&flags.Env, "env", "e", "development", "Environment (development, test, production)")
	rootCmd.PersistentFlags().StringVarP(&flags.ConfigPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	rootCmd.AddCommand(
		server.NewCommand(flags),
		migrate.NewCommand(flags),
		mailbox.NewCommand(flags),
		escalate.NewCommand(flags),
		user.NewCommand(flags),
		kb.NewCommand(flags),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
