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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jeremyhahn/go-cipherlab/internal/service"
	"github.com/jeremyhahn/go-cipherlab/pkg/adapters/auth"
	"github.com/jeremyhahn/go-cipherlab/pkg/adapters/logger"
	"github.com/jeremyhahn/go-cipherlab/pkg/engine"
)

// EnvPrefix is the prefix of environment variables read by the CLI.
const EnvPrefix = "CIPHERLAB"

// Configuration keys, as they appear in $HOME/.cipherlab.yaml.
const (
	keyOutput          = "output"
	keyVerbose         = "verbose"
	keyAffineA         = "defaults.affine_a"
	keyAffineB         = "defaults.affine_b"
	keyHillMatrix      = "defaults.hill_matrix"
	keyMaxPayloadBytes = "limits.max_payload_bytes"
	keyMaxKeyBytes     = "limits.max_key_bytes"
	keyMaxMatrixSide   = "limits.max_matrix_side"
	keyJWTSecret       = "auth.jwt.secret"
	keyJWTIssuer       = "auth.jwt.issuer"
	keyJWTAudience     = "auth.jwt.audience"
)

// Config holds global CLI configuration
type Config struct {
	// ConfigFile is the path to the configuration file
	ConfigFile string

	// OutputFormat controls output formatting (text, json, table)
	OutputFormat string

	// Verbose enables verbose logging
	Verbose bool

	AffineA    int
	AffineB    int
	HillMatrix [][]int64
	Limits     engine.Limits

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string

	v *viper.Viper
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		OutputFormat: "text",
		AffineA:      5,
		AffineB:      8,
		HillMatrix:   [][]int64{{6, 24, 1}, {13, 16, 10}, {20, 17, 15}},
		Limits:       engine.DefaultLimits(),
		v:            viper.New(),
	}
}

// Load merges flags, CIPHERLAB_* environment variables and the config
// file, in that order of precedence. A missing default config file is
// not an error; a missing --config file is.
func (c *Config) Load(cmd *cobra.Command) error {
	v := c.v
	if c.ConfigFile != "" {
		v.SetConfigFile(c.ConfigFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigName(".cipherlab")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	// The daemon reads CIPHERLAB_JWT_SECRET; accept it here too
	if err := v.BindEnv(keyJWTSecret, EnvPrefix+"_AUTH_JWT_SECRET", EnvPrefix+"_JWT_SECRET"); err != nil {
		return err
	}

	v.SetDefault(keyOutput, c.OutputFormat)
	v.SetDefault(keyAffineA, c.AffineA)
	v.SetDefault(keyAffineB, c.AffineB)
	v.SetDefault(keyMaxPayloadBytes, c.Limits.MaxPayloadBytes)
	v.SetDefault(keyMaxKeyBytes, c.Limits.MaxKeyBytes)
	v.SetDefault(keyMaxMatrixSide, c.Limits.MaxMatrixSide)

	flags := cmd.Flags()
	for key, flag := range map[string]string{keyOutput: "output", keyVerbose: "verbose"} {
		if f := flags.Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if c.ConfigFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	c.OutputFormat = strings.ToLower(v.GetString(keyOutput))
	c.Verbose = v.GetBool(keyVerbose)
	c.AffineA = v.GetInt(keyAffineA)
	c.AffineB = v.GetInt(keyAffineB)
	c.Limits = engine.Limits{
		MaxPayloadBytes: v.GetInt(keyMaxPayloadBytes),
		MaxKeyBytes:     v.GetInt(keyMaxKeyBytes),
		MaxMatrixSide:   v.GetInt(keyMaxMatrixSide),
	}
	c.JWTSecret = v.GetString(keyJWTSecret)
	c.JWTIssuer = v.GetString(keyJWTIssuer)
	c.JWTAudience = v.GetString(keyJWTAudience)

	if v.IsSet(keyHillMatrix) {
		matrix, err := c.hillMatrix()
		if err != nil {
			return err
		}
		c.HillMatrix = matrix
	}

	switch OutputFormat(c.OutputFormat) {
	case OutputFormatText, OutputFormatJSON, OutputFormatTable:
	default:
		return fmt.Errorf("unknown output format: %s", c.OutputFormat)
	}
	return nil
}

// hillMatrix reads the default matrix from either a YAML list of rows or
// a JSON string, as environment variables carry it.
func (c *Config) hillMatrix() ([][]int64, error) {
	if raw, ok := c.v.Get(keyHillMatrix).(string); ok {
		return parseMatrixFlag(raw)
	}
	var rows [][]int64
	if err := c.v.UnmarshalKey(keyHillMatrix, &rows); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", keyHillMatrix, err)
	}
	return rows, nil
}

func parseMatrixFlag(raw string) ([][]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var rows [][]int64
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		return nil, fmt.Errorf("matrix must be a JSON array of integer rows, e.g. [[3,3],[2,5]]: %w", err)
	}
	return rows, nil
}

// NewService builds an in-process cipher service. Results are not stored.
func (c *Config) NewService(logOutput io.Writer) *service.Service {
	log := logger.Discard()
	if c.Verbose {
		log = logger.New("debug", "text", logOutput)
	}

	limits := c.Limits
	def := engine.DefaultLimits()
	if limits.MaxPayloadBytes <= 0 {
		limits.MaxPayloadBytes = def.MaxPayloadBytes
	}
	if limits.MaxKeyBytes <= 0 {
		limits.MaxKeyBytes = def.MaxKeyBytes
	}
	if limits.MaxMatrixSide <= 0 {
		limits.MaxMatrixSide = def.MaxMatrixSide
	}

	return service.New(service.Options{
		Engine: engine.New(limits),
		Logger: log,
		Defaults: service.Defaults{
			AffineA:    c.AffineA,
			AffineB:    c.AffineB,
			HillMatrix: c.HillMatrix,
		},
	})
}

// NewJWTAuthenticator returns an authenticator for the configured secret.
func (c *Config) NewJWTAuthenticator() (*auth.JWTAuthenticator, error) {
	return auth.NewJWTAuthenticator(&auth.JWTConfig{
		Secret:   c.JWTSecret,
		Issuer:   c.JWTIssuer,
		Audience: c.JWTAudience,
	})
}
