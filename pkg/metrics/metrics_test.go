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

package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsEnabled(t *testing.T) {
	if !IsEnabled() {
		t.Error("Expected metrics to be enabled by default")
	}

	Disable()
	if IsEnabled() {
		t.Error("Expected metrics to be disabled after Disable()")
	}

	Enable()
	if !IsEnabled() {
		t.Error("Expected metrics to be enabled after Enable()")
	}
}

func TestRecordOperation(t *testing.T) {
	Enable()
	OperationsTotal.Reset()
	OperationDuration.Reset()

	RecordOperation("vigenere", "encrypt", StatusSuccess, 0.001)
	if got := testutil.ToFloat64(OperationsTotal.WithLabelValues("vigenere", "encrypt", StatusSuccess)); got != 1 {
		t.Errorf("Expected 1 operation recorded, got %v", got)
	}

	RecordOperation("hill", "decrypt", StatusError, 0.002)
	if count := testutil.CollectAndCount(OperationsTotal); count != 2 {
		t.Errorf("Expected 2 series, got %d", count)
	}
	if count := testutil.CollectAndCount(OperationDuration); count != 2 {
		t.Errorf("Expected 2 histogram series, got %d", count)
	}
}

func TestRecordOperationWhenDisabled(t *testing.T) {
	Disable()
	defer Enable()
	OperationsTotal.Reset()

	RecordOperation("vigenere", "encrypt", StatusSuccess, 0.1)
	if count := testutil.CollectAndCount(OperationsTotal); count != 0 {
		t.Errorf("Expected no operations recorded when disabled, got %d", count)
	}
}

func TestRecordError(t *testing.T) {
	Enable()
	ErrorsTotal.Reset()

	RecordError("affine", "encrypt", "NonCoprimeParameter")
	RecordError("affine", "encrypt", "NonCoprimeParameter")
	RecordError("super", "decrypt", "")

	if got := testutil.ToFloat64(ErrorsTotal.WithLabelValues("affine", "encrypt", "NonCoprimeParameter")); got != 2 {
		t.Errorf("Expected 2 errors, got %v", got)
	}
	if got := testutil.ToFloat64(ErrorsTotal.WithLabelValues("super", "decrypt", "unknown")); got != 1 {
		t.Errorf("Expected empty kind to be recorded as unknown, got %v", got)
	}
}

func TestJobStarted(t *testing.T) {
	Enable()
	ActiveJobs.Set(0)

	done := JobStarted()
	if got := testutil.ToFloat64(ActiveJobs); got != 1 {
		t.Errorf("Expected 1 active job, got %v", got)
	}
	done()
	if got := testutil.ToFloat64(ActiveJobs); got != 0 {
		t.Errorf("Expected 0 active jobs, got %v", got)
	}
}

func TestRecordResultStoredAndPayload(t *testing.T) {
	Enable()
	ResultsStoredTotal.Reset()
	PayloadBytes.Reset()

	RecordResultStored("memory", nil)
	RecordResultStored("file", errors.New("disk full"))
	ObservePayload("super", "encrypt", SourceFile, 1024)

	if got := testutil.ToFloat64(ResultsStoredTotal.WithLabelValues("file", StatusError)); got != 1 {
		t.Errorf("Expected 1 failed store, got %v", got)
	}
	if count := testutil.CollectAndCount(PayloadBytes); count != 1 {
		t.Errorf("Expected 1 payload series, got %d", count)
	}
}

func TestSetSelfTestHealth(t *testing.T) {
	Enable()
	SetSelfTestHealth(true)
	if got := testutil.ToFloat64(SelfTestHealthy); got != 1 {
		t.Errorf("Expected 1, got %v", got)
	}
	SetSelfTestHealth(false)
	if got := testutil.ToFloat64(SelfTestHealthy); got != 0 {
		t.Errorf("Expected 0, got %v", got)
	}
}

func TestHTTPMiddleware_UsesRoutePattern(t *testing.T) {
	Enable()
	HTTPRequestsTotal.Reset()

	r := chi.NewRouter()
	r.Use(HTTPMiddleware)
	r.Get("/api/v1/results/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b", "c"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/results/"+id, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	got := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/results/{id}", "404"))
	if got != 3 {
		t.Errorf("Expected 3 requests under the route pattern, got %v", got)
	}
}

func TestHTTPMiddleware_DefaultStatus(t *testing.T) {
	Enable()
	HTTPRequestsTotal.Reset()

	h := HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/plain", nil))

	got := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "200"))
	if got != 1 {
		t.Errorf("Expected 1 unmatched request, got %v", got)
	}
}

func TestResourceCollector(t *testing.T) {
	Enable()
	ServerUptime.Set(0)

	c := StartResourceCollector(context.Background(), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	c.Stop()

	if got := testutil.ToFloat64(Goroutines); got <= 0 {
		t.Errorf("Expected goroutine gauge to be set, got %v", got)
	}
	if got := testutil.ToFloat64(MemorySysBytes); got <= 0 {
		t.Errorf("Expected memory gauge to be set, got %v", got)
	}
}
