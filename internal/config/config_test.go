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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-cipherlab/pkg/engine"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Defaults.AffineA)
	assert.Equal(t, 8, cfg.Defaults.AffineB)
	assert.Equal(t, DefaultHillMatrix(), cfg.Defaults.HillMatrix)
	assert.Equal(t, 64<<20, cfg.Limits.MaxPayloadBytes)
	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 127.0.0.1
  port: 9000
  shutdown_timeout: 5s
logging:
  level: debug
  format: json
limits:
  max_payload_bytes: 1024
defaults:
  affine_a: 7
  hill_matrix: [[3, 3], [2, 5]]
storage:
  backend: file
  path: /var/lib/cipherlab
metrics:
  enabled: true
  path: /metrics
  port: 9090
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.ReadTimeout, "unset fields keep defaults")
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 7, cfg.Defaults.AffineA)
	assert.Equal(t, 8, cfg.Defaults.AffineB)
	assert.Equal(t, [][]int64{{3, 3}, {2, 5}}, cfg.Defaults.HillMatrix)
	assert.Equal(t, "file", cfg.Storage.Backend)

	limits := cfg.EngineLimits()
	assert.Equal(t, 1024, limits.MaxPayloadBytes)
	assert.Equal(t, engine.DefaultLimits().MaxKeyBytes, limits.MaxKeyBytes)
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Server.Port, cfg.Server.Port)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "server: [not, a, map"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "server:\n  port: 0\n"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CIPHERLAB_HOST", "10.0.0.5")
	t.Setenv("CIPHERLAB_PORT", "8443")
	t.Setenv("CIPHERLAB_METRICS_PORT", "not-a-port")
	t.Setenv("CIPHERLAB_LOG_LEVEL", "warn")
	t.Setenv("CIPHERLAB_STORAGE_BACKEND", "file")
	t.Setenv("CIPHERLAB_DATA_DIR", "/data")
	t.Setenv("CIPHERLAB_MAX_PAYLOAD_BYTES", "2048")
	t.Setenv("CIPHERLAB_RATELIMIT_RPM", "120")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", cfg.Server.Host)
	assert.Equal(t, 8443, cfg.Server.Port)
	assert.Equal(t, 0, cfg.Metrics.Port, "invalid port is ignored")
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "/data", cfg.Storage.Path)
	assert.Equal(t, 2048, cfg.Limits.MaxPayloadBytes)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 120, cfg.RateLimit.RequestsPerMin)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"metrics port clash", func(c *Config) { c.Metrics.Port = c.Server.Port }},
		{"metrics path", func(c *Config) { c.Metrics.Path = "metrics" }},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"tls without files", func(c *Config) { c.TLS.Enabled = true }},
		{"negative limits", func(c *Config) { c.Limits.MaxKeyBytes = -1 }},
		{"singular hill default", func(c *Config) { c.Defaults.HillMatrix = [][]int64{{2, 4}, {1, 2}} }},
		{"ragged hill default", func(c *Config) { c.Defaults.HillMatrix = [][]int64{{1, 2}, {3}} }},
		{"storage backend", func(c *Config) { c.Storage.Backend = "s3" }},
		{"file storage path", func(c *Config) { c.Storage.Backend = "file"; c.Storage.Path = "" }},
		{"ratelimit zero", func(c *Config) { c.RateLimit.Enabled = true; c.RateLimit.RequestsPerMin = 0 }},
		{"auth type", func(c *Config) { c.Auth.Enabled = true; c.Auth.Type = "kerberos" }},
		{"apikey without keys", func(c *Config) { c.Auth.Enabled = true; c.Auth.Type = "apikey" }},
		{"jwt short secret", func(c *Config) { c.Auth.Enabled = true; c.Auth.Type = "jwt"; c.Auth.JWT.Secret = "short" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestCreateAuthenticator(t *testing.T) {
	cfg := Default()
	a, err := cfg.Auth.CreateAuthenticator()
	require.NoError(t, err)
	assert.Equal(t, "noop", a.Name())

	cfg.Auth = AuthConfig{Enabled: true, Type: "apikey", APIKeys: map[string]string{"k": "svc"}}
	require.NoError(t, cfg.Validate())
	a, err = cfg.Auth.CreateAuthenticator()
	require.NoError(t, err)
	assert.Equal(t, "apikey", a.Name())

	cfg.Auth = AuthConfig{Enabled: true, Type: "JWT", JWT: JWTConfig{Secret: "0123456789abcdef0123456789abcdef"}}
	require.NoError(t, cfg.Validate())
	a, err = cfg.Auth.CreateAuthenticator()
	require.NoError(t, err)
	assert.Equal(t, "jwt", a.Name())

	cfg.Auth = AuthConfig{Enabled: false, Type: "apikey"}
	a, err = cfg.Auth.CreateAuthenticator()
	require.NoError(t, err)
	assert.Equal(t, "noop", a.Name(), "disabled auth ignores the type")
}

func TestTLSConfig(t *testing.T) {
	disabled := TLSConfig{}
	tlsCfg, err := disabled.LoadTLSConfig()
	require.NoError(t, err)
	assert.Nil(t, tlsCfg)

	missing := TLSConfig{Enabled: true, CertFile: "/nope.pem", KeyFile: "/nope.key"}
	_, err = missing.LoadTLSConfig()
	assert.Error(t, err)

	_, err = parseTLSVersion("TLS1.0")
	assert.Error(t, err)
	v, err := parseTLSVersion("tls1.3")
	require.NoError(t, err)
	assert.NotZero(t, v)
}
