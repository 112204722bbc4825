package metrics

import "time"

// APIMetrics records control plane HTTP traffic.
type APIMetrics interface {
	// ObserveRequest records one request. route is the matched route
	// pattern, not the raw path, to keep label cardinality bounded.
	ObserveRequest(method, route string, status int, duration time.Duration)
}

// NewAPIMetrics creates a Prometheus-backed APIMetrics.
// Returns nil if metrics are not enabled.
func NewAPIMetrics() APIMetrics {
	if !IsEnabled() || newPrometheusAPIMetrics == nil {
		return nil
	}
	return newPrometheusAPIMetrics()
}

var newPrometheusAPIMetrics func() APIMetrics

// RegisterAPIMetricsConstructor registers the Prometheus API metrics
// constructor. Called by pkg/metrics/prometheus during package initialization.
func RegisterAPIMetricsConstructor(constructor func() APIMetrics) {
	newPrometheusAPIMetrics = constructor
}

// ObserveRequest records a request if m is non-nil.
func ObserveRequest(m APIMetrics, method, route string, status int, duration time.Duration) {
	if m != nil {
		m.ObserveRequest(method, route, status, duration)
	}
}
