package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"regsync/internal/platform/config"
	"regsync/internal/registration/statusupdate"
)

// StatusCmd returns the status command.
func StatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Manage registration status",
	}
	cmd.AddCommand(statusSetCmd())
	return cmd
}

func statusSetCmd() *cobra.Command {
	var userID, ticketID, status string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set the service status of a registration",
		Long: `Forward a status change for one ticket to the admin status endpoint.
The reconciled list is not changed locally; run reconcile again to see it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			client, err := statusupdate.NewHTTPClient(cfg.Status.BaseURL,
				statusupdate.WithAuthToken(cfg.Status.AuthToken),
				statusupdate.WithTimeout(cfg.Status.Timeout),
			)
			if err != nil {
				return err
			}
			svc := statusupdate.New(client, statusupdate.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

			err = svc.Update(cmd.Context(), statusupdate.UpdateRequest{
				UserID:   userID,
				TicketID: ticketID,
				Status:   status,
				ActorID:  "regctl",
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s -> %s\n", color.New(color.FgHiGreen).Sprint("✓"), ticketID, status)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "Owner of the ticket (required)")
	cmd.Flags().StringVar(&ticketID, "ticket", "", "Ticket ID (required)")
	cmd.Flags().StringVar(&status, "status", "", "New status (required)")
	cmd.MarkFlagRequired("user")
	cmd.MarkFlagRequired("ticket")
	cmd.MarkFlagRequired("status")

	return cmd
}
