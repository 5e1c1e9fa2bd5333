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

	"github.com/spf13/cobra"
)

func newCiphersCommand(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "ciphers",
		Short: "List supported ciphers",
		Long:  `List the supported cipher variants with their domain and parameters`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := cfg.NewService(cmd.ErrOrStderr())
			return NewPrinter(cfg.OutputFormat, cmd.OutOrStdout()).PrintCiphers(svc.Ciphers())
		},
	}
}

func newSelfTestCommand(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "selftest",
		Short: "Run the known-answer vectors",
		Long:  `Round-trip every cipher against its known-answer vector`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := cfg.NewService(cmd.ErrOrStderr())
			if err := svc.SelfTest(); err != nil {
				return fmt.Errorf("self-test failed: %w", err)
			}
			return NewPrinter(cfg.OutputFormat, cmd.OutOrStdout()).
				PrintSuccess(fmt.Sprintf("All %d ciphers passed", len(svc.Ciphers())))
		},
	}
}
