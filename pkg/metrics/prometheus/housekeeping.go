// Package prometheus implements the metrics interfaces with Prometheus
// collectors. Importing it registers the constructors with pkg/metrics.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/tagkeep/pkg/housekeeping"
	"github.com/marmos91/tagkeep/pkg/metrics"
)

func init() {
	metrics.RegisterHousekeepingMetricsConstructor(NewHousekeepingMetrics)
	metrics.RegisterAPIMetricsConstructor(NewAPIMetrics)
}

// housekeepingMetrics is the Prometheus implementation of housekeeping.Metrics.
type housekeepingMetrics struct {
	runs        *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
	lastSuccess *prometheus.GaugeVec
	tagsScanned prometheus.Gauge
	tagsDeleted prometheus.Counter
}

// NewHousekeepingMetrics creates a new Prometheus-backed housekeeping.Metrics.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewHousekeepingMetrics() housekeeping.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &housekeepingMetrics{
		runs: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "tagkeep_housekeeping_runs_total",
				Help: "Total number of housekeeper executions by housekeeper and status",
			},
			[]string{"housekeeper", "status"}, // status: "success", "error"
		),
		runDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "tagkeep_housekeeping_run_duration_milliseconds",
				Help: "Duration of housekeeper executions in milliseconds",
				Buckets: []float64{
					1,     // 1ms - empty catalog
					10,    // 10ms
					50,    // 50ms
					100,   // 100ms
					500,   // 500ms
					1000,  // 1s
					5000,  // 5s - large catalogs
					30000, // 30s
				},
			},
			[]string{"housekeeper"},
		),
		lastSuccess: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tagkeep_housekeeping_last_success_timestamp_seconds",
				Help: "Unix time of the last successful execution per housekeeper",
			},
			[]string{"housekeeper"},
		),
		tagsScanned: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "tagkeep_housekeeping_tags_scanned",
				Help: "Number of catalog tags seen by the most recent unused tags pass",
			},
		),
		tagsDeleted: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "tagkeep_housekeeping_tags_deleted_total",
				Help: "Total number of unused tags deleted",
			},
		),
	}
}

func (m *housekeepingMetrics) ObserveRun(housekeeper string, duration time.Duration, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
	}

	m.runs.WithLabelValues(housekeeper, status).Inc()
	m.runDuration.WithLabelValues(housekeeper).Observe(duration.Seconds() * 1000)
	if err == nil {
		m.lastSuccess.WithLabelValues(housekeeper).SetToCurrentTime()
	}
}

func (m *housekeepingMetrics) RecordTagsScanned(n int) {
	if m == nil {
		return
	}
	m.tagsScanned.Set(float64(n))
}

func (m *housekeepingMetrics) RecordTagsDeleted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.tagsDeleted.Add(float64(n))
}
