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
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jeremyhahn/go-cipherlab/internal/config"
	"github.com/jeremyhahn/go-cipherlab/pkg/adapters/logger"
)

// Reload applies the parts of cfg that can change without a restart.
// Currently only the log level; listener, storage and auth changes need a
// full restart and are reported as such.
func (s *Server) Reload(cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("Reloading server configuration...")

	if cfg.Logging.Level != s.config.Logging.Level {
		s.logger.Info("Updating log level",
			logger.String("old_level", s.config.Logging.Level),
			logger.String("new_level", cfg.Logging.Level))
		s.logLevel.Set(slogLevel(cfg.Logging.Level))
	}

	for _, field := range restartRequired(s.config, cfg) {
		s.logger.Warn("Configuration change requires restart", logger.String("field", field))
	}

	s.config.Logging.Level = cfg.Logging.Level
	s.logger.Info("Server configuration reloaded successfully")

	return nil
}

// LogLevel returns the active log level name.
func (s *Server) LogLevel() string {
	return strings.ToLower(s.logLevel.Level().String())
}

func restartRequired(old, cfg *config.Config) []string {
	var fields []string
	if old.Logging.Format != cfg.Logging.Format {
		fields = append(fields, "logging.format")
	}
	if old.Address() != cfg.Address() {
		fields = append(fields, "server")
	}
	if old.Storage != cfg.Storage {
		fields = append(fields, "storage")
	}
	if old.Auth.Type != cfg.Auth.Type || old.Auth.Enabled != cfg.Auth.Enabled {
		fields = append(fields, "auth")
	}
	if old.TLS != cfg.TLS {
		fields = append(fields, "tls")
	}
	return fields
}

// HandleReloadSignal reloads configuration from load on every SIGHUP until
// the server shuts down.
func (s *Server) HandleReloadSignal(load func() (*config.Config, error)) {
	hupCh := make(chan os.Signal, 1)
	signal.Notify(hupCh, syscall.SIGHUP)

	go func() {
		defer signal.Stop(hupCh)
		for {
			select {
			case <-hupCh:
				cfg, err := load()
				if err != nil {
					s.logger.Error("Failed to load configuration", logger.Error(err))
					continue
				}
				if err := s.Reload(cfg); err != nil {
					s.logger.Error("Failed to reload configuration", logger.Error(err))
				}
			case <-s.shutdownCh:
				return
			}
		}
	}()
}
