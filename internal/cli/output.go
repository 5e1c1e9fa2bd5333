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
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jeremyhahn/go-cipherlab/internal/service"
	"github.com/jeremyhahn/go-cipherlab/pkg/engine"
)

// OutputFormat defines the output format type
type OutputFormat string

const (
	OutputFormatText  OutputFormat = "text"
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatTable OutputFormat = "table"
)

// Printer handles formatted output
type Printer struct {
	format OutputFormat
	writer io.Writer
}

// NewPrinter creates a new Printer
func NewPrinter(format string, writer io.Writer) *Printer {
	return &Printer{
		format: OutputFormat(format),
		writer: writer,
	}
}

// PrintCiphers prints the supported cipher variants
func (p *Printer) PrintCiphers(ciphers []engine.CipherInfo) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"ciphers": ciphers,
		})
	case OutputFormatTable:
		fmt.Fprintf(p.writer, "%-18s %-7s %-7s %-22s\n", "VARIANT", "DOMAIN", "BINARY", "PARAMETERS")
		fmt.Fprintln(p.writer, strings.Repeat("-", 57))
		for _, c := range ciphers {
			fmt.Fprintf(p.writer, "%-18s %-7s %-7t %-22s\n",
				c.Variant, c.Domain, c.BinarySafe, strings.Join(c.Parameters, ","))
		}
		return nil
	case OutputFormatText:
		fmt.Fprintln(p.writer, "Supported Ciphers:")
		for _, c := range ciphers {
			fmt.Fprintf(p.writer, "  - %s (%s): %s\n", c.Variant, c.Domain, c.Description)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintResult prints a processed job. output is the file the result was
// written to, empty when it was not written.
func (p *Printer) PrintResult(res *service.Result, output string) error {
	switch p.format {
	case OutputFormatJSON:
		info := map[string]interface{}{
			"cipher":      res.Variant.String(),
			"operation":   res.Operation.String(),
			"filename":    res.Filename,
			"is_file":     res.IsFile,
			"size":        res.Size,
			"result_text": res.Text,
		}
		if output != "" {
			info["output"] = output
		} else {
			info["result"] = base64.StdEncoding.EncodeToString(res.Data)
		}
		return p.printJSON(info)
	case OutputFormatTable, OutputFormatText:
		if output == "" {
			fmt.Fprintln(p.writer, res.Text)
			return nil
		}
		fmt.Fprintf(p.writer, "%s: wrote %d bytes to %s\n", res.Operation, res.Size, output)
		if !res.IsFile || res.Text != service.FileProcessedText {
			fmt.Fprintf(p.writer, "Preview: %s\n", res.Text)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintValue prints a single named value, such as a key hash or token
func (p *Printer) PrintValue(name, value string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{name: value})
	case OutputFormatTable, OutputFormatText:
		fmt.Fprintln(p.writer, value)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintSuccess prints a success message
func (p *Printer) PrintSuccess(message string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"success": true,
			"message": message,
		})
	case OutputFormatTable, OutputFormatText:
		fmt.Fprintln(p.writer, message)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintError prints an error message
func (p *Printer) PrintError(err error) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
	default:
		fmt.Fprintf(p.writer, "Error: %v\n", err)
		return nil
	}
}

// printJSON prints data as JSON
func (p *Printer) printJSON(data interface{}) error {
	encoder := json.NewEncoder(p.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
