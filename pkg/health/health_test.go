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
	"errors"
	"testing"
	"time"
)

type fakeEngine struct{ err error }

func (f fakeEngine) SelfTest() error { return f.err }

type fakeStore struct{ err error }

func (f fakeStore) Ping(ctx context.Context) error { return f.err }

func TestNewChecker(t *testing.T) {
	checker := NewChecker()
	if checker == nil {
		t.Fatal("NewChecker returned nil")
	}
	if len(checker.Checks()) != 0 {
		t.Errorf("expected 0 checks, got %d", len(checker.Checks()))
	}
	if checker.IsStarted() {
		t.Error("expected checker to start unstarted")
	}
}

func TestRegisterCheck(t *testing.T) {
	checker := NewChecker()
	checker.RegisterCheck("b", func(ctx context.Context) CheckResult { return CheckResult{Status: StatusHealthy} })
	checker.RegisterCheck("a", func(ctx context.Context) CheckResult { return CheckResult{Status: StatusHealthy} })
	checker.RegisterCheck("nil", nil)

	names := checker.Checks()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("unexpected checks %v", names)
	}

	checker.UnregisterCheck("a")
	if len(checker.Checks()) != 1 {
		t.Errorf("expected 1 check after unregister, got %d", len(checker.Checks()))
	}
}

func TestReady(t *testing.T) {
	t.Run("NoChecks", func(t *testing.T) {
		results := NewChecker().Ready(context.Background())
		if len(results) != 1 || results[0].Status != StatusHealthy {
			t.Fatalf("expected default healthy result, got %+v", results)
		}
	})

	t.Run("SortedAndNamed", func(t *testing.T) {
		checker := NewChecker()
		checker.RegisterCheck("zeta", func(ctx context.Context) CheckResult { return CheckResult{Status: StatusHealthy} })
		checker.RegisterCheck("alpha", func(ctx context.Context) CheckResult { return CheckResult{Status: StatusDegraded} })

		results := checker.Ready(context.Background())
		if len(results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(results))
		}
		if results[0].Name != "alpha" || results[1].Name != "zeta" {
			t.Errorf("expected sorted names, got %s, %s", results[0].Name, results[1].Name)
		}
		if AggregateStatus(results) != StatusDegraded {
			t.Errorf("expected degraded aggregate, got %s", AggregateStatus(results))
		}
	})

	t.Run("Timeout", func(t *testing.T) {
		checker := NewChecker()
		checker.SetTimeout(20 * time.Millisecond)
		checker.RegisterCheck("slow", func(ctx context.Context) CheckResult {
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
			}
			return CheckResult{Status: StatusHealthy}
		})

		results := checker.Ready(context.Background())
		if results[0].Status != StatusUnhealthy {
			t.Errorf("expected timed out check to be unhealthy, got %s", results[0].Status)
		}
		if checker.IsHealthy(context.Background()) {
			t.Error("expected checker to be unhealthy")
		}
	})
}

func TestStartup(t *testing.T) {
	checker := NewChecker()
	if checker.Startup(context.Background()).Status != StatusUnhealthy {
		t.Error("expected startup to be unhealthy before MarkStarted")
	}
	checker.MarkStarted()
	if checker.Startup(context.Background()).Status != StatusHealthy {
		t.Error("expected startup to be healthy after MarkStarted")
	}
	checker.MarkNotStarted()
	if checker.IsStarted() {
		t.Error("expected MarkNotStarted to reset the flag")
	}
}

func TestLive(t *testing.T) {
	checker := NewChecker()
	checker.RegisterCheck("broken", func(ctx context.Context) CheckResult { return CheckResult{Status: StatusUnhealthy} })
	if checker.Live(context.Background()).Status != StatusHealthy {
		t.Error("liveness must not depend on component checks")
	}
}

func TestAggregateStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"empty", nil, StatusHealthy},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy wins", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := make([]CheckResult, len(tt.statuses))
			for i, s := range tt.statuses {
				results[i] = CheckResult{Status: s}
			}
			if got := AggregateStatus(results); got != tt.want {
				t.Errorf("AggregateStatus() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEngineCheck(t *testing.T) {
	ok := EngineCheck(fakeEngine{})(context.Background())
	if ok.Status != StatusHealthy || ok.Name != "engine" {
		t.Errorf("unexpected result %+v", ok)
	}

	bad := EngineCheck(fakeEngine{err: errors.New("vigenere vector mismatch")})(context.Background())
	if bad.Status != StatusUnhealthy || bad.Error == "" {
		t.Errorf("unexpected result %+v", bad)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if EngineCheck(fakeEngine{})(ctx).Status != StatusUnhealthy {
		t.Error("expected cancelled context to be unhealthy")
	}
}

func TestStoreCheck(t *testing.T) {
	if got := StoreCheck("store-memory", nil)(context.Background()).Status; got != StatusDegraded {
		t.Errorf("expected degraded for nil store, got %s", got)
	}
	if got := StoreCheck("store-memory", fakeStore{})(context.Background()).Status; got != StatusHealthy {
		t.Errorf("expected healthy, got %s", got)
	}
	if got := StoreCheck("store-file", fakeStore{err: errors.New("closed")})(context.Background()).Status; got != StatusUnhealthy {
		t.Errorf("expected unhealthy, got %s", got)
	}
}

func TestStoreCheck_ReportsRegisteredName(t *testing.T) {
	checker := NewChecker()
	checker.RegisterCheck("store-memory", StoreCheck("store-memory", fakeStore{}))

	results := checker.Ready(context.Background())
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	for _, res := range results {
		if res.Name != "store-memory" {
			t.Errorf("check reported as %q, want store-memory", res.Name)
		}
	}
}
