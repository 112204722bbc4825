package metrics

import (
	"github.com/marmos91/tagkeep/pkg/housekeeping"
)

// NewHousekeepingMetrics creates a Prometheus-backed housekeeping.Metrics.
//
// Returns nil if metrics are not enabled (InitRegistry not called) or the
// Prometheus implementation is not linked in. Pass the result directly to
// Runner.SetMetrics and UnusedTagsCleaner.SetMetrics; nil disables collection.
//
//	metrics.InitRegistry()
//	m := metrics.NewHousekeepingMetrics()
//	runner.SetMetrics(m)
func NewHousekeepingMetrics() housekeeping.Metrics {
	if !IsEnabled() || newPrometheusHousekeepingMetrics == nil {
		return nil
	}
	return newPrometheusHousekeepingMetrics()
}

// newPrometheusHousekeepingMetrics is implemented in
// pkg/metrics/prometheus/housekeeping.go. The indirection avoids an import
// cycle between the two packages.
var newPrometheusHousekeepingMetrics func() housekeeping.Metrics

// RegisterHousekeepingMetricsConstructor registers the Prometheus
// housekeeping metrics constructor. Called by pkg/metrics/prometheus during
// package initialization.
func RegisterHousekeepingMetricsConstructor(constructor func() housekeeping.Metrics) {
	newPrometheusHousekeepingMetrics = constructor
}
