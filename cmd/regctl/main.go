package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"regsync/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "regctl",
		Short: "regctl - inspect and update reconciled registrations",
		Long: `regctl runs the registration reconciliation against the configured
sources and forwards status changes, using the same environment
variables as the server.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cli.ReconcileCmd())
	rootCmd.AddCommand(cli.StatusCmd())
	rootCmd.AddCommand(cli.TokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
