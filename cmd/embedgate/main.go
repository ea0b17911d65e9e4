package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/embedgate/embedgate/internal/interfaces/cli/migrate"
	"github.com/embedgate/embedgate/internal/interfaces/cli/reconcile"
	"github.com/embedgate/embedgate/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "embedgate",
		Short: "Embedgate - session lifecycle and widget domain authorization service",
		Long:  `Embedgate runs the session lifecycle engine, the user status reconciliation engine, and the widget domain authorization verifier behind a single HTTP server and CLI.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		reconcile.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
