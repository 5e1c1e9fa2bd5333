// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-cipherlab.
//
// go-cipherlab is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-cipherlab/pkg/adapters/auth"
)

// newKeyHashCommand prints the digest to put in the daemon's api_keys map
// so plaintext keys stay out of config files.
func newKeyHashCommand(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "keyhash <api-key>",
		Short: "Hash an API key for the server config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewPrinter(cfg.OutputFormat, cmd.OutOrStdout()).PrintValue("hash", auth.HashKey(args[0]))
		},
	}
}

func newTokenCommand(cfg *Config) *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a JWT for the server",
		Long: `Issue an HMAC-signed JWT using auth.jwt.secret from the config file,
CIPHERLAB_JWT_SECRET, or --secret.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret, _ := cmd.Flags().GetString("secret"); secret != "" {
				cfg.JWTSecret = secret
			}
			authenticator, err := cfg.NewJWTAuthenticator()
			if err != nil {
				return err
			}

			var extra map[string]interface{}
			if role != "" {
				extra = map[string]interface{}{"role": role}
			}
			token, err := authenticator.Sign(subject, ttl, extra)
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}
			printVerbose(cmd, cfg, "Issued token for %s (expires in %s)", subject, ttl)
			return NewPrinter(cfg.OutputFormat, cmd.OutOrStdout()).PrintValue("token", token)
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "token subject")
	cmd.Flags().StringVar(&role, "role", "", "role claim, e.g. the server's admin_role")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	cmd.Flags().String("secret", "", "HMAC secret (at least 32 bytes)")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}
