package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"regsync/internal/platform/config"
	"regsync/internal/registration/reconcile"
	"regsync/internal/registration/sources"
)

const (
	viewAll           = "all"
	viewSummary       = "summary"
	viewSubscriptions = "subscriptions"
)

// ReconcileCmd returns the reconcile command.
func ReconcileCmd() *cobra.Command {
	var (
		userID  string
		view    string
		asJSON  bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Fetch and reconcile a user's registrations from every source",
		Long: `Fetch the user's registrations from the configured sources, merge them
into one newest-first timeline and classify each record.

Views:
  all            every visible registration (default)
  summary        the most recent registration per lifecycle bucket
  subscriptions  paid registrations only`,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch view {
			case viewAll, viewSummary, viewSubscriptions:
			default:
				return fmt.Errorf("unknown view %q (want all, summary or subscriptions)", view)
			}

			cfg := config.FromEnv()
			table, err := config.LoadSourcesFile(cfg.Sources.File)
			if err != nil {
				return err
			}
			registry, err := sources.FromConfig(cfg.Sources, table)
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			if verbose {
				logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
			}
			svc := reconcile.New(registry,
				reconcile.WithLogger(logger),
				reconcile.WithFetchTimeout(cfg.Sources.FetchTimeout),
			)

			result, err := svc.Run(cmd.Context(), userID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				switch view {
				case viewSummary:
					return renderJSON(out, result.LatestByBucket())
				case viewSubscriptions:
					return renderJSON(out, result.PaidOnly())
				default:
					return renderJSON(out, result)
				}
			}

			renderSources(out, result.Sources)
			switch view {
			case viewSummary:
				renderSummary(out, result.LatestByBucket())
			case viewSubscriptions:
				renderRecords(out, result.PaidOnly())
			default:
				renderRecords(out, result.Records)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User ID to reconcile (required)")
	cmd.Flags().StringVar(&view, "view", viewAll, "View: all, summary or subscriptions")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log source fetches to stderr")
	cmd.MarkFlagRequired("user")

	return cmd
}
