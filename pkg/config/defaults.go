package config

import (
	"strings"
	"time"

	"github.com/marmos91/tagkeep/pkg/controlplane/store"
	"github.com/marmos91/tagkeep/pkg/housekeeping"
)

// Defaults for values that have no natural zero.
const (
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMetricsPort     = 9090
	DefaultInitialDelay    = time.Minute
	DefaultRunRetention    = 30 * 24 * time.Hour
	DefaultOTLPEndpoint    = "localhost:4317"
	DefaultPyroscopeURL    = "http://localhost:4040"
)

// DefaultProfileTypes are collected when profiling is enabled without an
// explicit list.
var DefaultProfileTypes = []string{
	"cpu",
	"alloc_objects",
	"alloc_space",
	"inuse_objects",
	"inuse_space",
	"goroutines",
}

// ApplyDefaults fills zero values in cfg. Explicit values are kept; the
// log level is upper-cased.
func ApplyDefaults(cfg *Config) {
	lg := &cfg.Logging
	lg.Level = strings.ToUpper(orString(lg.Level, "INFO"))
	lg.Format = orString(lg.Format, "text")
	lg.Output = orString(lg.Output, "stdout")

	tel := &cfg.Telemetry
	tel.Endpoint = orString(tel.Endpoint, DefaultOTLPEndpoint)
	if tel.SampleRate == 0 {
		tel.SampleRate = 1.0
	}
	tel.Profiling.Endpoint = orString(tel.Profiling.Endpoint, DefaultPyroscopeURL)
	if len(tel.Profiling.ProfileTypes) == 0 {
		tel.Profiling.ProfileTypes = append([]string(nil), DefaultProfileTypes...)
	}

	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}

	cfg.Database.ApplyDefaults()
	cfg.ControlPlane.ApplyDefaults()

	// The port only matters once metrics are switched on.
	if cfg.Metrics.Enabled && cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = DefaultMetricsPort
	}

	hk := &cfg.Housekeeping
	if hk.Interval == 0 {
		hk.Interval = housekeeping.DefaultInterval
	}
	if hk.InitialDelay == 0 {
		hk.InitialDelay = DefaultInitialDelay
	}
	if hk.RunRetention == 0 {
		hk.RunRetention = DefaultRunRetention
	}
}

func orString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// GetDefaultConfig returns a fully defaulted single-node configuration
// backed by SQLite.
func GetDefaultConfig() *Config {
	cfg := &Config{Database: store.Config{Type: store.DatabaseTypeSQLite}}
	ApplyDefaults(cfg)
	return cfg
}
