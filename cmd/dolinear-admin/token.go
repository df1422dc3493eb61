package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/dafibh/dolinear/dolinear-backend/internal/middleware"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token <subject>",
	Short: "Issue a locally signed access token",
	Long: `Sign an HS256 access token with JWT_SECRET.

The user row is created on the token's first use, so the subject does not
need to exist yet.

Examples:
  dolinear-admin token local|alice --email alice@example.com --ttl 24h`,
	Args: cobra.ExactArgs(1),
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().String("email", "", "Email claim")
	tokenCmd.Flags().String("name", "", "Name claim")
	tokenCmd.Flags().Duration("ttl", time.Hour, "Token lifetime")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	email, _ := cmd.Flags().GetString("email")
	name, _ := cmd.Flags().GetString("name")
	ttl, _ := cmd.Flags().GetDuration("ttl")

	v := middleware.NewHMACValidator(cfg.JWTSecret, middleware.TokenIssuer)
	token, err := v.IssueToken(domain.Identity{Subject: args[0], Email: email, Name: name}, ttl)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
