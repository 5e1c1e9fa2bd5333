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

package health

import (
	"context"

	"github.com/jeremyhahn/go-cipherlab/pkg/metrics"
)

// SelfTester runs known-answer vectors against a cipher engine.
type SelfTester interface {
	SelfTest() error
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// EngineCheck returns a check that runs the engine self-test and records
// the outcome in the selftest gauge.
func EngineCheck(engine SelfTester) CheckFunc {
	return func(ctx context.Context) CheckResult {
		if err := ctx.Err(); err != nil {
			return CheckResult{Name: "engine", Status: StatusUnhealthy, Error: err.Error()}
		}
		if err := engine.SelfTest(); err != nil {
			metrics.SetSelfTestHealth(false)
			return CheckResult{
				Name:    "engine",
				Status:  StatusUnhealthy,
				Message: "known-answer self-test failed",
				Error:   err.Error(),
			}
		}
		metrics.SetSelfTestHealth(true)
		return CheckResult{Name: "engine", Status: StatusHealthy, Message: "known-answer self-test passed"}
	}
}

// StoreCheck returns a check for the result store, reported under name.
// A nil store is reported as degraded since the service still processes
// jobs without it.
func StoreCheck(name string, store Pinger) CheckFunc {
	return func(ctx context.Context) CheckResult {
		if store == nil {
			return CheckResult{Name: name, Status: StatusDegraded, Message: "result store disabled"}
		}
		if err := store.Ping(ctx); err != nil {
			return CheckResult{
				Name:    name,
				Status:  StatusUnhealthy,
				Message: "result store unavailable",
				Error:   err.Error(),
			}
		}
		return CheckResult{Name: name, Status: StatusHealthy, Message: "result store reachable"}
	}
}
