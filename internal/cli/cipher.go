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
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-cipherlab/internal/service"
)

type cipherFlags struct {
	cipher  string
	key     string
	key2    string
	affineA int
	affineB int
	matrix  string
	text    string
	in      string
	out     string
}

// newCipherCommand builds the encrypt or decrypt command.
func newCipherCommand(cfg *Config, operation string) *cobra.Command {
	flags := &cipherFlags{}

	cmd := &cobra.Command{
		Use:   operation,
		Short: fmt.Sprintf("%s text or a file", strings.ToUpper(operation[:1])+operation[1:]),
		Long: fmt.Sprintf(`%s inline text (--text, or stdin when neither --text nor --in
is given) or a file (--in).

File results are written to --out, or next to the input file under the
generated name (e.g. report_encrypted.dat). Inline results are printed.`,
			strings.ToUpper(operation[:1])+operation[1:]),
		Example: fmt.Sprintf(`  cipherlab %[1]s --cipher vigenere --key KEY --text HELLO
  cipherlab %[1]s --cipher hill --matrix '[[3,3],[2,5]]' --text help
  cipherlab %[1]s --cipher super --key alpha --key2 beta --in report.pdf`, operation),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCipher(cmd, cfg, flags, operation)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.cipher, "cipher", "c", "", "cipher variant (see 'cipherlab ciphers')")
	f.StringVarP(&flags.key, "key", "k", "", "primary key")
	f.StringVar(&flags.key2, "key2", "", "transposition key for the super cipher")
	f.IntVar(&flags.affineA, "affine-a", 0, "affine multiplier, coprime with 26 (default from config)")
	f.IntVar(&flags.affineB, "affine-b", 0, "affine shift (default from config)")
	f.StringVar(&flags.matrix, "matrix", "", "hill key matrix as JSON rows (default from config)")
	f.StringVarP(&flags.text, "text", "t", "", "inline text")
	f.StringVarP(&flags.in, "in", "i", "", "input file")
	f.StringVar(&flags.out, "out", "", "output file")
	_ = cmd.MarkFlagRequired("cipher")
	cmd.MarkFlagsMutuallyExclusive("text", "in")

	return cmd
}

func runCipher(cmd *cobra.Command, cfg *Config, flags *cipherFlags, operation string) error {
	job, err := buildJob(cmd, flags, operation)
	if err != nil {
		return err
	}

	printVerbose(cmd, cfg, "Running %s %s (file: %t)", job.Cipher, operation, job.File != nil)

	svc := cfg.NewService(cmd.ErrOrStderr())
	res, err := svc.Process(commandContext(cmd), job)
	if err != nil {
		return err
	}

	output := flags.out
	if output == "" && res.IsFile {
		output = filepath.Join(filepath.Dir(flags.in), filepath.Base(res.Filename))
	}
	if output != "" {
		if err := os.WriteFile(output, res.Data, 0600); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		printVerbose(cmd, cfg, "Wrote %d bytes to %s", len(res.Data), output)
	}

	return NewPrinter(cfg.OutputFormat, cmd.OutOrStdout()).PrintResult(res, output)
}

// buildJob turns flags into a service job. Affine parameters left at
// their zero default fall back to the configured defaults.
func buildJob(cmd *cobra.Command, flags *cipherFlags, operation string) (*service.Job, error) {
	job := &service.Job{
		Cipher:    flags.cipher,
		Operation: operation,
		Key:       flags.key,
		Key2:      flags.key2,
	}

	if cmd.Flags().Changed("affine-a") {
		a := flags.affineA
		job.AffineA = &a
	}
	if cmd.Flags().Changed("affine-b") {
		b := flags.affineB
		job.AffineB = &b
	}

	matrix, err := parseMatrixFlag(flags.matrix)
	if err != nil {
		return nil, err
	}
	job.HillMatrix = matrix

	switch {
	case flags.in != "":
		// #nosec G304 - input path is supplied by the user
		data, err := os.ReadFile(flags.in)
		if err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}
		job.File = &service.Upload{Name: filepath.Base(flags.in), Data: data}
	case cmd.Flags().Changed("text"):
		job.Text = flags.text
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		job.Text = strings.TrimRight(string(data), "\r\n")
	}
	return job, nil
}
