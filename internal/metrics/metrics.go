// Package metrics provides Prometheus metrics for Mapping.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mapping",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration tracks HTTP request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mapping",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// CapturesTotal counts capture pipeline runs by outcome (done or failed).
	CapturesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mapping",
			Name:      "captures_total",
			Help:      "Total number of capture pipeline runs",
		},
		[]string{"outcome"},
	)

	// CaptureDuration tracks end-to-end capture duration.
	CaptureDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "mapping",
			Name:      "capture_duration_seconds",
			Help:      "Capture pipeline duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// StructuringFallbacks counts captures that used the deterministic
	// fallback title because the structuring collaborator failed.
	StructuringFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mapping",
			Name:      "structuring_fallbacks_total",
			Help:      "Captures that fell back to the local title",
		},
	)

	// SessionsTotal tracks the number of sessions.
	SessionsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "mapping",
			Name:      "sessions_total",
			Help:      "Number of knowledge sessions",
		},
	)
)
