package main

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"docflow/internal/domain/auth"
)

var knownRoles = []string{auth.RoleAccountant, auth.RoleApprover, auth.RoleAdmin}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Access token utilities",
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a bearer token signed with JWT_SECRET",
	Example: `  docctl token issue --user u-42 --email ap@example.com --role accountant
  docctl token issue --user ops --role admin --ttl 1h`,
	RunE: runTokenIssue,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenIssueCmd)

	tokenIssueCmd.Flags().String("user", "", "User id recorded as the actor of changes")
	tokenIssueCmd.Flags().String("email", "", "User email")
	tokenIssueCmd.Flags().StringSlice("role", []string{auth.RoleAccountant}, "Role (accountant, approver, admin), repeatable")
	tokenIssueCmd.Flags().Duration("ttl", 0, "Token lifetime (default: 12h)")
	_ = tokenIssueCmd.MarkFlagRequired("user")
}

func runTokenIssue(cmd *cobra.Command, args []string) error {
	userID, _ := cmd.Flags().GetString("user")
	email, _ := cmd.Flags().GetString("email")
	roles, _ := cmd.Flags().GetStringSlice("role")
	ttl, _ := cmd.Flags().GetDuration("ttl")

	for _, r := range roles {
		if !slices.Contains(knownRoles, r) {
			return fmt.Errorf("unknown role %q", r)
		}
	}

	jwtCfg := auth.DefaultJWTConfig(cfg.JWTSecret)
	if ttl > 0 {
		jwtCfg.AccessTokenTTL = ttl
	}
	token, expiresAt, err := auth.NewJWTService(jwtCfg).GenerateAccessToken(userID, email, roles)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}

	log.Debugw("token issued", "user_id", userID, "roles", roles, "expires_at", expiresAt)
	return printJSON(cmd.OutOrStdout(), map[string]any{
		"accessToken": token,
		"expiresAt":   expiresAt.Format(time.RFC3339),
	})
}
