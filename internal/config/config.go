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

// Package config loads the cipherlabd server configuration from YAML with
// CIPHERLAB_* environment overrides.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jeremyhahn/go-cipherlab/pkg/engine"
	"github.com/jeremyhahn/go-cipherlab/pkg/modular"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CIPHERLAB_"

// Config represents the complete server configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	TLS       TLSConfig       `yaml:"tls"`
	Limits    engine.Limits   `yaml:"limits"`
	Defaults  DefaultsConfig  `yaml:"defaults"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Health    HealthConfig    `yaml:"health"`
	Storage   StorageConfig   `yaml:"storage"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

// LoggingConfig controls logging behavior
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultsConfig holds the cipher parameters used when a request omits them.
type DefaultsConfig struct {
	AffineA    int       `yaml:"affine_a"`
	AffineB    int       `yaml:"affine_b"`
	HillMatrix [][]int64 `yaml:"hill_matrix"`
}

// AuthConfig selects the API authenticator.
type AuthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Type    string `yaml:"type"` // none, apikey, jwt

	// APIKeys maps a plaintext key or "blake2b:<hex>" digest to a subject.
	APIKeys map[string]string `yaml:"api_keys,omitempty"`

	JWT JWTConfig `yaml:"jwt"`

	// AdminRole, when set, is required to delete stored results.
	AdminRole string `yaml:"admin_role,omitempty"`
}

// JWTConfig controls HMAC JWT authentication
type JWTConfig struct {
	Secret   string        `yaml:"secret"`
	Issuer   string        `yaml:"issuer"`
	Audience string        `yaml:"audience"`
	Leeway   time.Duration `yaml:"leeway"`
}

// RateLimitConfig controls per-client rate limiting
type RateLimitConfig struct {
	Enabled        bool `yaml:"enabled"`
	RequestsPerMin int  `yaml:"requests_per_min"`
	Burst          int  `yaml:"burst"`
}

// MetricsConfig controls the Prometheus endpoint. A zero port serves
// metrics on the API listener.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	Port    int    `yaml:"port"`
}

// HealthConfig controls the health probes
type HealthConfig struct {
	Enabled      bool          `yaml:"enabled"`
	CheckTimeout time.Duration `yaml:"check_timeout"`
}

// StorageConfig selects the result store backend
type StorageConfig struct {
	Backend        string `yaml:"backend"` // memory, file, none
	Path           string `yaml:"path"`
	MaxResultBytes int64  `yaml:"max_result_bytes"`
}

// DefaultHillMatrix is the key used when a hill request has no matrix.
func DefaultHillMatrix() [][]int64 {
	return [][]int64{{6, 24, 1}, {13, 16, 10}, {20, 17, 15}}
}

// Default returns a configuration that starts a working server with no
// file: memory result store, no auth, metrics on the API port.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     60 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Limits:  engine.DefaultLimits(),
		Defaults: DefaultsConfig{
			AffineA:    5,
			AffineB:    8,
			HillMatrix: DefaultHillMatrix(),
		},
		Auth:      AuthConfig{Type: "none"},
		RateLimit: RateLimitConfig{Enabled: false, RequestsPerMin: 600},
		Metrics:   MetricsConfig{Enabled: true, Path: "/metrics"},
		Health:    HealthConfig{Enabled: true, CheckTimeout: 5 * time.Second},
		Storage:   StorageConfig{Backend: "memory", MaxResultBytes: 64 << 20},
	}
}

// Load reads configuration from a YAML file over Default, applies
// environment overrides and validates the result. An empty path loads
// defaults plus environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		// #nosec G304 - config path is supplied by the operator
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if host := os.Getenv(EnvPrefix + "HOST"); host != "" {
		cfg.Server.Host = host
	}
	envPort(EnvPrefix+"PORT", &cfg.Server.Port)
	envPort(EnvPrefix+"METRICS_PORT", &cfg.Metrics.Port)

	if level := os.Getenv(EnvPrefix + "LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if format := os.Getenv(EnvPrefix + "LOG_FORMAT"); format != "" {
		cfg.Logging.Format = format
	}

	if backend := os.Getenv(EnvPrefix + "STORAGE_BACKEND"); backend != "" {
		cfg.Storage.Backend = backend
	}
	if dataDir := os.Getenv(EnvPrefix + "DATA_DIR"); dataDir != "" {
		cfg.Storage.Path = dataDir
	}

	if raw := os.Getenv(EnvPrefix + "MAX_PAYLOAD_BYTES"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			log.Printf("Warning: invalid %sMAX_PAYLOAD_BYTES value %q, using %d", EnvPrefix, raw, cfg.Limits.MaxPayloadBytes)
		} else {
			cfg.Limits.MaxPayloadBytes = n
		}
	}

	if raw := os.Getenv(EnvPrefix + "RATELIMIT_RPM"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			log.Printf("Warning: invalid %sRATELIMIT_RPM value %q, using %d", EnvPrefix, raw, cfg.RateLimit.RequestsPerMin)
		} else {
			cfg.RateLimit.Enabled = n > 0
			cfg.RateLimit.RequestsPerMin = n
		}
	}

	if secret := os.Getenv(EnvPrefix + "JWT_SECRET"); secret != "" {
		cfg.Auth.JWT.Secret = secret
	}
}

func envPort(name string, dst *int) {
	raw := os.Getenv(name)
	if raw == "" {
		return
	}
	port, err := strconv.Atoi(raw)
	switch {
	case err != nil:
		log.Printf("Warning: invalid %s value %q, using default %d: %v", name, raw, *dst, err)
	case port < 1 || port > 65535:
		log.Printf("Warning: invalid %s value %q (out of range 1-65535), using default %d", name, raw, *dst)
	default:
		*dst = port
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Metrics.Enabled && c.Metrics.Port != 0 {
		if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
			return fmt.Errorf("invalid metrics port: %d", c.Metrics.Port)
		}
		if c.Metrics.Port == c.Server.Port {
			return fmt.Errorf("metrics port must differ from server port")
		}
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics path must start with '/': %q", c.Metrics.Path)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Logging.Format)
	}

	if c.TLS.Enabled && (c.TLS.CertFile == "" || c.TLS.KeyFile == "") {
		return fmt.Errorf("TLS cert_file and key_file are required when TLS is enabled")
	}

	if c.Limits.MaxPayloadBytes < 0 || c.Limits.MaxKeyBytes < 0 || c.Limits.MaxMatrixSide < 0 {
		return fmt.Errorf("limits must not be negative")
	}

	if len(c.Defaults.HillMatrix) > 0 {
		m, err := modular.NewMatrix(c.Defaults.HillMatrix)
		if err != nil {
			return fmt.Errorf("defaults.hill_matrix: %w", err)
		}
		if !m.Invertible(26) {
			return fmt.Errorf("defaults.hill_matrix is not invertible mod 26")
		}
	}

	switch strings.ToLower(c.Storage.Backend) {
	case "memory", "none", "":
	case "file":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage path must be specified for the file backend")
		}
	default:
		return fmt.Errorf("invalid storage backend: %s (must be memory, file, or none)", c.Storage.Backend)
	}

	if c.RateLimit.Enabled && c.RateLimit.RequestsPerMin <= 0 {
		return fmt.Errorf("ratelimit.requests_per_min must be positive when enabled")
	}

	return c.Auth.validate()
}

// EngineLimits returns the engine limits. Zero fields fall back to the
// engine defaults so a partial limits block still bounds every input.
func (c *Config) EngineLimits() engine.Limits {
	limits := c.Limits
	def := engine.DefaultLimits()
	if limits.MaxPayloadBytes == 0 {
		limits.MaxPayloadBytes = def.MaxPayloadBytes
	}
	if limits.MaxKeyBytes == 0 {
		limits.MaxKeyBytes = def.MaxKeyBytes
	}
	if limits.MaxMatrixSide == 0 {
		limits.MaxMatrixSide = def.MaxMatrixSide
	}
	return limits
}

// Address returns host:port for the API listener.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
