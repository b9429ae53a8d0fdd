// Package observability provides OpenTelemetry tracing and Prometheus
// metrics instrumentation for the ZAP client and consensus coordinator.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// CLIENT METRICS
// =============================================================================

var (
	clientRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zap_client_requests_total",
			Help: "Total number of ZAP client requests by method and outcome",
		},
		[]string{"method", "status"}, // status: success, error, timeout
	)

	clientRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "zap_client_request_duration_seconds",
			Help:    "ZAP client request round-trip duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"method"},
	)

	clientConnectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zap_client_connections_total",
			Help: "Total number of connection lifecycle transitions",
		},
		[]string{"event"}, // event: established, closed
	)
)

// =============================================================================
// TOOL INVOCATION METRICS
// =============================================================================

var (
	toolInvocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zap_tool_invocations_total",
			Help: "Total number of catalog tool invocations",
		},
		[]string{"tool", "status"}, // status: success, error
	)

	toolInvocationDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "zap_tool_invocation_duration_seconds",
			Help:    "Tool invocation duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 60},
		},
		[]string{"tool"},
	)
)

// =============================================================================
// CONSENSUS METRICS
// =============================================================================

var (
	consensusRoundsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zap_consensus_rounds_total",
			Help: "Total number of consensus rounds executed",
		},
		[]string{"mode"}, // mode: gateway, local
	)

	consensusConfidence = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "zap_consensus_confidence",
			Help:    "Confidence level of reached consensus decisions",
			Buckets: []float64{0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 1.0},
		},
		[]string{"mode"},
	)

	consensusDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "zap_consensus_duration_seconds",
			Help:    "Wall-clock duration of a full consensus decision",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"mode"},
	)
)

// =============================================================================
// PUBLIC API
// =============================================================================

// RecordClientRequest records a single request/response round trip.
func RecordClientRequest(method string, status string, durationMS int) {
	clientRequestsTotal.WithLabelValues(method, status).Inc()
	clientRequestDurationSeconds.WithLabelValues(method).Observe(float64(durationMS) / 1000.0)
}

// RecordClientConnection records a connection lifecycle transition
// ("established" or "closed").
func RecordClientConnection(event string) {
	clientConnectionsTotal.WithLabelValues(event).Inc()
}

// RecordToolInvocation records one catalog.invoke round trip.
func RecordToolInvocation(tool string, status string, durationMS int) {
	toolInvocationsTotal.WithLabelValues(tool, status).Inc()
	toolInvocationDurationSeconds.WithLabelValues(tool).Observe(float64(durationMS) / 1000.0)
}

// RecordConsensusRound records one completed consensus round for mode
// ("gateway" or "local").
func RecordConsensusRound(mode string) {
	consensusRoundsTotal.WithLabelValues(mode).Inc()
}

// RecordConsensusDecision records the confidence and total duration of a
// finished consensus decision.
func RecordConsensusDecision(mode string, confidence float64, durationMS int) {
	consensusConfidence.WithLabelValues(mode).Observe(confidence)
	consensusDurationSeconds.WithLabelValues(mode).Observe(float64(durationMS) / 1000.0)
}
