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

// Package metrics provides Prometheus instrumentation for cipher jobs, the
// HTTP transport, the result store and process resources.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the Prometheus namespace for all cipherlab metrics
	Namespace = "cipherlab"

	// Label names
	LabelVariant    = "variant"
	LabelOperation  = "operation"
	LabelStatus     = "status"
	LabelErrorKind  = "error_kind"
	LabelSource     = "source"
	LabelMethod     = "method"
	LabelRoute      = "route"
	LabelStatusCode = "status_code"
	LabelBackend    = "backend"

	// Status values
	StatusSuccess = "success"
	StatusError   = "error"

	// Source values
	SourceText = "text"
	SourceFile = "file"
)

var (
	// OperationsTotal counts cipher jobs by variant, operation and status.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "operations_total",
			Help:      "Total number of cipher operations by variant, operation and status",
		},
		[]string{LabelVariant, LabelOperation, LabelStatus},
	)

	// OperationDuration tracks how long a cipher job takes in seconds.
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of cipher operations in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{LabelVariant, LabelOperation},
	)

	// ErrorsTotal counts failed jobs by engine error kind.
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "errors_total",
			Help:      "Total number of cipher errors by variant, operation and error kind",
		},
		[]string{LabelVariant, LabelOperation, LabelErrorKind},
	)

	// PayloadBytes observes input sizes by variant, operation and source.
	PayloadBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "payload_bytes",
			Help:      "Size of cipher input payloads in bytes",
			Buckets:   prometheus.ExponentialBuckets(16, 4, 12),
		},
		[]string{LabelVariant, LabelOperation, LabelSource},
	)

	// ActiveJobs is the number of jobs currently running.
	ActiveJobs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "active_jobs",
			Help:      "Number of cipher jobs currently in progress",
		},
	)

	// ResultsStoredTotal counts results written to the result store.
	ResultsStoredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "results_stored_total",
			Help:      "Total number of results written to the result store by backend and status",
		},
		[]string{LabelBackend, LabelStatus},
	)

	// HTTPRequestsTotal tracks HTTP requests by method, route and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, route and status code",
		},
		[]string{LabelMethod, LabelRoute, LabelStatusCode},
	)

	// HTTPRequestDuration tracks the duration of HTTP requests in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{LabelMethod, LabelRoute},
	)

	// HTTPInFlight is the number of HTTP requests being served.
	HTTPInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of HTTP requests currently being served",
		},
	)

	// RateLimitedTotal counts requests rejected by the rate limiter.
	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Total number of HTTP requests rejected by the rate limiter",
		},
	)

	Goroutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "goroutines",
			Help:      "Current number of goroutines",
		},
	)

	MemoryAllocBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "memory_alloc_bytes",
			Help:      "Current bytes of allocated heap objects",
		},
	)

	MemorySysBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "memory_sys_bytes",
			Help:      "Total bytes of memory obtained from the OS",
		},
	)

	GCPauseTotalSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "gc_pause_total_seconds",
			Help:      "Cumulative time spent in GC stop-the-world pauses",
		},
	)

	ServerUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "server_uptime_seconds",
			Help:      "Server uptime in seconds since startup",
		},
	)

	// SelfTestHealthy is 1 when the last engine self-test passed.
	SelfTestHealthy = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "selftest_healthy",
			Help:      "Whether the last engine known-answer self-test passed (1) or failed (0)",
		},
	)

	enabled atomic.Bool
)

func init() {
	enabled.Store(true)
}

// RecordOperation records one finished cipher job.
//
// Example:
//
//	start := time.Now()
//	out, err := eng.Run(req)
//	status := metrics.StatusSuccess
//	if err != nil {
//	    status = metrics.StatusError
//	}
//	metrics.RecordOperation("vigenere", "encrypt", status, time.Since(start).Seconds())
func RecordOperation(variant, operation, status string, duration float64) {
	if !enabled.Load() {
		return
	}
	OperationsTotal.WithLabelValues(variant, operation, status).Inc()
	OperationDuration.WithLabelValues(variant, operation).Observe(duration)
}

// RecordError records a failed job by its engine error kind.
func RecordError(variant, operation, kind string) {
	if !enabled.Load() {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	ErrorsTotal.WithLabelValues(variant, operation, kind).Inc()
}

// ObservePayload records the input size of a job.
func ObservePayload(variant, operation, source string, size int) {
	if !enabled.Load() {
		return
	}
	PayloadBytes.WithLabelValues(variant, operation, source).Observe(float64(size))
}

// JobStarted increments the active job gauge and returns a func that
// decrements it.
func JobStarted() func() {
	if !enabled.Load() {
		return func() {}
	}
	ActiveJobs.Inc()
	return ActiveJobs.Dec
}

// RecordResultStored records a result store write.
func RecordResultStored(backend string, err error) {
	if !enabled.Load() {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	ResultsStoredTotal.WithLabelValues(backend, status).Inc()
}

// RecordHTTPRequest records an HTTP request with its duration and status.
func RecordHTTPRequest(method, route, statusCode string, duration float64) {
	if !enabled.Load() {
		return
	}
	HTTPRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration)
}

// RecordRateLimited counts a rejected request.
func RecordRateLimited() {
	if !enabled.Load() {
		return
	}
	RateLimitedTotal.Inc()
}

// SetSelfTestHealth records the outcome of an engine self-test.
func SetSelfTestHealth(healthy bool) {
	if !enabled.Load() {
		return
	}
	value := 0.0
	if healthy {
		value = 1.0
	}
	SelfTestHealthy.Set(value)
}

// Enable enables metrics collection.
func Enable() {
	enabled.Store(true)
}

// Disable disables metrics collection.
func Disable() {
	enabled.Store(false)
}

// IsEnabled returns whether metrics collection is currently enabled.
func IsEnabled() bool {
	return enabled.Load()
}
