package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	jwttoken "regsync/internal/jwt_token"
	"regsync/internal/platform/config"
)

// TokenCmd returns the token command, used to mint tokens for local testing.
func TokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue access tokens for the HTTP API",
	}
	cmd.AddCommand(tokenIssueCmd())
	return cmd
}

func tokenIssueCmd() *cobra.Command {
	var (
		userID string
		role   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Sign an access token with JWT_SIGNING_KEY",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			svc := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer)
			token, err := svc.GenerateAccessToken(userID, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "Subject user ID (required)")
	cmd.Flags().StringVar(&role, "role", jwttoken.RoleClient, "Role claim")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	cmd.MarkFlagRequired("user")

	return cmd
}
