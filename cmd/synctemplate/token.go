package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-synctemplate/components/fieldlist"
)

func newTokenCommand(a *app) *cobra.Command {
	var (
		subject   string
		ttl       time.Duration
		templates []string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an editor token for the HTTP field listing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret := a.cfg.Server.JWTSecret
			if secret == "" {
				return errors.New("token: server.jwt_secret is not configured")
			}
			token, err := fieldlist.SignScopedToken([]byte(secret), subject, []string{a.cfg.Server.EditorRole}, templates, ttl)
			if err != nil {
				return fmt.Errorf("token: sign: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "editor", "token subject")
	cmd.Flags().StringSliceVar(&templates, "template", nil, "restrict the token to these template ids (repeatable)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime (0 for no expiry)")
	return cmd
}
