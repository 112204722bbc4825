package config

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/marmos91/tagkeep/pkg/metrics"
)

// InitializeMetrics enables metrics collection when cfg asks for it.
//
// It must run before the control plane is built: collectors are only
// created by components constructed after the registry exists.
// Returns nil when metrics are disabled.
func InitializeMetrics(cfg *Config) *prometheus.Registry {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return metrics.InitRegistry()
}
