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
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-cipherlab/pkg/types"
)

// NewRootCommand builds the cipherlab command tree. Each call returns an
// independent tree with its own configuration.
func NewRootCommand() *cobra.Command {
	cfg := NewConfig()

	rootCmd := &cobra.Command{
		Use:   "cipherlab",
		Short: "go-cipherlab CLI - Classical cipher workbench",
		Long: `cipherlab encrypts and decrypts text and files with classical ciphers.

Supported ciphers:
  - vigenere:           polyalphabetic shift, repeating key
  - autokey:            Vigenere keyed by the plaintext itself
  - playfair:           5x5 digraph substitution (J merged into I)
  - affine:             (a*x + b) mod 26
  - hill:               n x n matrix multiplication mod 26
  - extended_vigenere:  byte-wise Vigenere over 0-255, binary safe
  - super:              extended Vigenere followed by columnar transposition

Settings are read from $HOME/.cipherlab.yaml and CIPHERLAB_* environment
variables; flags take precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.Load(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfg.ConfigFile, "config", "",
		"config file (default is $HOME/.cipherlab.yaml)")
	rootCmd.PersistentFlags().StringP("output", "o", "text",
		"output format (text, json, table)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false,
		"verbose output")

	rootCmd.AddCommand(newCipherCommand(cfg, "encrypt"))
	rootCmd.AddCommand(newCipherCommand(cfg, "decrypt"))
	rootCmd.AddCommand(newCiphersCommand(cfg))
	rootCmd.AddCommand(newSelfTestCommand(cfg))
	rootCmd.AddCommand(newKeyHashCommand(cfg))
	rootCmd.AddCommand(newTokenCommand(cfg))
	rootCmd.AddCommand(newVersionCommand(cfg))

	return rootCmd
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// printVerbose prints to stderr when --verbose is set
func printVerbose(cmd *cobra.Command, cfg *Config, format string, args ...interface{}) {
	if cfg.Verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "[VERBOSE] "+format+"\n", args...)
	}
}

// commandContext returns the context the command was executed with.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// exitCode maps an error to the process exit status: 2 for rejected
// input, 1 for everything else.
func exitCode(err error) int {
	switch kind := types.KindOf(err); {
	case err == nil:
		return 0
	case kind != "" && kind != types.KindInternal:
		return 2
	default:
		return 1
	}
}

// Main runs the CLI and exits the process with its status.
func Main(ctx context.Context) {
	cmd := NewRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		printer := NewPrinter("text", os.Stderr)
		_ = printer.PrintError(err)
		os.Exit(exitCode(err))
	}
}
