package config

import (
	"time"

	"github.com/marmos91/tagkeep/pkg/controlplane/api"
	"github.com/marmos91/tagkeep/pkg/controlplane/store"
)

// Config is the static configuration of a tagkeep server. The catalog
// itself lives in the database and is edited through the API.
//
// Values resolve from TAGKEEP_* environment variables, then the YAML file,
// then defaults.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// ShutdownTimeout bounds the graceful stop after SIGINT or SIGTERM.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	Database     store.Config       `mapstructure:"database" yaml:"database"`
	Metrics      MetricsConfig      `mapstructure:"metrics" yaml:"metrics"`
	ControlPlane api.APIConfig      `mapstructure:"controlplane" yaml:"controlplane"`
	Housekeeping HousekeepingConfig `mapstructure:"housekeeping" yaml:"housekeeping"`
}

// HousekeepingConfig schedules the unused tag and run history cleaners.
// Manual runs are available regardless.
type HousekeepingConfig struct {
	// Enabled turns the scheduler on; nil means true.
	Enabled *bool `mapstructure:"enabled" yaml:"enabled,omitempty"`

	Interval     time.Duration `mapstructure:"interval" yaml:"interval"`
	InitialDelay time.Duration `mapstructure:"initial_delay" yaml:"initial_delay"`

	// RunRetention prunes run records older than this. Negative keeps all.
	RunRetention time.Duration `mapstructure:"run_retention" yaml:"run_retention"`

	// DryRun makes scheduled passes report candidates without deleting.
	DryRun bool `mapstructure:"dry_run" yaml:"dry_run"`
}

// IsEnabled reports whether the scheduler should run.
func (c HousekeepingConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// LoggingConfig selects level, format and destination of the logs.
type LoggingConfig struct {
	// Level is DEBUG, INFO, WARN or ERROR in any case.
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output is stdout, stderr or a file path.
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig exports traces over OTLP gRPC and, optionally, profiles
// to Pyroscope.
type TelemetryConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Insecure dials the collector without TLS.
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`

	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig enables Pyroscope continuous profiling.
type ProfilingConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the Pyroscope server URL.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// ProfileTypes lists pyroscope profile names such as cpu or inuse_space.
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types"`
}

// MetricsConfig exposes Prometheus metrics. Nothing is collected while
// disabled.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Port    int  `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}
