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

package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-cipherlab/internal/config"
	"github.com/jeremyhahn/go-cipherlab/pkg/engine"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = 5 * time.Second
	cfg.Logging.Level = "error"
	return cfg
}

func startServer(t *testing.T, cfg *config.Config) (*Server, string) {
	t.Helper()
	srv, err := New(cfg, WithLogOutput(io.Discard))
	require.NoError(t, err)
	require.NoError(t, srv.Start())
	t.Cleanup(func() { _ = srv.Shutdown() })
	return srv, "http://" + srv.Addr()
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestNewResultStore(t *testing.T) {
	store, err := newResultStore(config.StorageConfig{Backend: "none"})
	require.NoError(t, err)
	assert.Nil(t, store)

	store, err = newResultStore(config.StorageConfig{Backend: "memory"})
	require.NoError(t, err)
	assert.Equal(t, "memory", store.Name())

	store, err = newResultStore(config.StorageConfig{Backend: "file", Path: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "file", store.Name())
	require.NoError(t, store.Close())

	_, err = newResultStore(config.StorageConfig{Backend: "s3"})
	assert.Error(t, err)
}

func TestRequestBodyLimit(t *testing.T) {
	assert.Equal(t, int64(0), requestBodyLimit(engine.Limits{}))
	assert.Equal(t, int64(1024+1<<20), requestBodyLimit(engine.Limits{MaxPayloadBytes: 1024}))
}

func TestServerLifecycle(t *testing.T) {
	srv, base := startServer(t, testConfig(t))

	resp, err := http.Get(base + "/health/ready")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var ready struct {
		Status string `json:"status"`
		Checks []struct {
			Name string `json:"name"`
		} `json:"checks"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ready))
	assert.Equal(t, "healthy", ready.Status)
	names := make([]string, 0, len(ready.Checks))
	for _, c := range ready.Checks {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"engine", "store-memory"}, names)

	assert.True(t, srv.HealthChecker().IsStarted())

	require.NoError(t, srv.Shutdown())
	srv.WaitForShutdown()
	assert.False(t, srv.HealthChecker().IsStarted())
}

func TestServerEncryptAndFetchResult(t *testing.T) {
	_, base := startServer(t, testConfig(t))

	form := url.Values{"cipher_type": {"vigenere"}, "key": {"KEY"}, "text": {"HELLO"}}
	resp, err := http.PostForm(base+"/api/v1/encrypt", form)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		ResultText string `json:"result_text"`
		ResultID   string `json:"result_id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "rijvs", out.ResultText)
	require.NotEmpty(t, out.ResultID)

	got, err := http.Get(base + "/api/v1/results/" + out.ResultID)
	require.NoError(t, err)
	defer got.Body.Close()
	body, err := io.ReadAll(got.Body)
	require.NoError(t, err)
	assert.Equal(t, "rijvs", string(body))
}

func TestServerMetricsOnAPIPort(t *testing.T) {
	_, base := startServer(t, testConfig(t))

	_, err := http.PostForm(base+"/api/v1/encrypt", url.Values{"cipher_type": {"affine"}, "text": {"abc"}})
	require.NoError(t, err)

	resp, err := http.Get(base + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "cipherlab_operations_total")
}

func TestServerMetricsDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Enabled = false
	_, base := startServer(t, cfg)

	resp, err := http.Get(base + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServerAPIKeyAuth(t *testing.T) {
	cfg := testConfig(t)
	cfg.Auth = config.AuthConfig{
		Enabled: true,
		Type:    "apikey",
		APIKeys: map[string]string{"topsecret": "ops"},
	}
	_, base := startServer(t, cfg)

	resp, err := http.Get(base + "/api/v1/ciphers")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, base+"/api/v1/ciphers", nil)
	require.NoError(t, err)
	req.Header.Set("X-API-Key", "topsecret")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServerRejectsOversizedBody(t *testing.T) {
	cfg := testConfig(t)
	cfg.Limits = engine.Limits{MaxPayloadBytes: 16}
	_, base := startServer(t, cfg)

	body := bytes.NewBufferString("cipher_type=vigenere&key=k&text=" + strings.Repeat("a", 2<<20))
	resp, err := http.Post(base+"/api/v1/encrypt", "application/x-www-form-urlencoded", body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	resp, err = http.PostForm(base+"/api/v1/encrypt", url.Values{
		"cipher_type": {"vigenere"}, "key": {"k"}, "text": {strings.Repeat("a", 32)},
	})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "engine limit applies below the body cap")
}

func TestReload(t *testing.T) {
	srv, err := New(testConfig(t), WithLogOutput(io.Discard))
	require.NoError(t, err)
	assert.Equal(t, "error", srv.LogLevel())

	next := testConfig(t)
	next.Server.Port = 8080
	next.Logging.Level = "debug"
	next.Logging.Format = "json"
	require.NoError(t, srv.Reload(next))
	assert.Equal(t, "debug", srv.LogLevel())

	bad := testConfig(t)
	bad.Server.Port = 8080
	bad.Logging.Level = "verbose"
	assert.Error(t, srv.Reload(bad))
	assert.Equal(t, "debug", srv.LogLevel())

	assert.Error(t, srv.Reload(nil))
}

func TestRestartRequired(t *testing.T) {
	old := testConfig(t)
	next := testConfig(t)
	assert.Empty(t, restartRequired(old, next))

	next.Logging.Format = "json"
	next.Storage.Backend = "none"
	next.Server.Port = 9999
	assert.Equal(t, []string{"logging.format", "server", "storage"}, restartRequired(old, next))
}
