// Package metrics holds the Prometheus collectors of the moviestitch client.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "moviestitch"

// Gateway metrics
var (
	// GatewayRequests counts remote API calls by operation and outcome.
	GatewayRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Total number of remote API calls",
		},
		[]string{"op", "outcome"},
	)

	// GatewayDuration tracks remote API call latency.
	GatewayDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Remote API call duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"op"},
	)
)

// Workflow metrics
var (
	// WorkflowRuns counts generate/download runs by kind and final status.
	WorkflowRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "runs_total",
			Help:      "Total number of stitch workflow runs",
		},
		[]string{"kind", "status"},
	)

	// WorkflowInFlight tracks stitch requests that are still pending.
	WorkflowInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "in_flight",
			Help:      "Number of pending stitch requests",
		},
		[]string{"kind"},
	)

	// UploadBytes counts bytes sent to presigned storage targets.
	UploadBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upload",
			Name:      "bytes_total",
			Help:      "Total bytes uploaded to storage",
		},
	)

	// Uploads counts upload pipeline terminations by phase reached.
	Uploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upload",
			Name:      "runs_total",
			Help:      "Total number of upload pipeline runs by outcome",
		},
		[]string{"outcome"},
	)
)

// Control API metrics
var (
	// HTTPRequestsTotal counts control API requests by method, route, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "http_requests_total",
			Help:      "Total number of control API requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration tracks control API request duration.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "http_request_duration_seconds",
			Help:      "Control API request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// ObserveGateway records one remote API call.
func ObserveGateway(op, outcome string, d time.Duration) {
	GatewayRequests.WithLabelValues(op, outcome).Inc()
	GatewayDuration.WithLabelValues(op).Observe(d.Seconds())
}

// RecordWorkflow records the final status of a stitch run.
func RecordWorkflow(kind, status string) {
	WorkflowRuns.WithLabelValues(kind, status).Inc()
}

// RecordUpload records how an upload pipeline run ended.
func RecordUpload(outcome string) {
	Uploads.WithLabelValues(outcome).Inc()
}
