package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mytrips/service-trips/internal/config"
	"github.com/mytrips/service-trips/pkg/auth"
)

var (
	tokenUser string
	tokenRole string
	tokenTTL  time.Duration
)

// tokenCmd mints an access token signed with the configured secret, for
// local testing against the API.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a development access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		userID := uuid.New()
		if tokenUser != "" {
			userID, err = uuid.Parse(tokenUser)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}
		}
		if tokenRole != auth.RoleTraveler && tokenRole != auth.RoleAdmin {
			return fmt.Errorf("invalid --role %q", tokenRole)
		}

		jwtManager := auth.NewJWTManager(cfg.JWTConfig.Secret, tokenTTL, tokenTTL)
		token, err := jwtManager.GenerateAccessToken(userID, tokenRole)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "user: %s\nrole: %s\ntoken: %s\n", userID, tokenRole, token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "user id (random when empty)")
	tokenCmd.Flags().StringVar(&tokenRole, "role", auth.RoleTraveler, "traveler or admin")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
}
