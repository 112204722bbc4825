package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	disabled := false

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string // empty means valid
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad log level", func(c *Config) { c.Logging.Level = "TRACE" }, "oneof"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "Format"},
		{"api port too high", func(c *Config) { c.ControlPlane.Port = 70000 }, "max"},
		{"api port negative", func(c *Config) { c.ControlPlane.Port = -1 }, "min"},
		{"zero shutdown timeout", func(c *Config) { c.ShutdownTimeout = 0 }, "ShutdownTimeout"},
		{"interval below minimum", func(c *Config) { c.Housekeeping.Interval = 10 * time.Second }, "housekeeping"},
		{"short interval with scheduler off", func(c *Config) {
			c.Housekeeping.Interval = 10 * time.Second
			c.Housekeeping.Enabled = &disabled
		}, ""},
		{"negative initial delay", func(c *Config) { c.Housekeeping.InitialDelay = -time.Second }, "initial_delay"},
		{"negative retention", func(c *Config) { c.Housekeeping.RunRetention = -1 }, ""},
		{"metrics on api port", func(c *Config) {
			c.Metrics.Enabled = true
			c.Metrics.Port = c.ControlPlane.Port
		}, "metrics"},
		{"telemetry without endpoint", func(c *Config) {
			c.Telemetry.Enabled = true
			c.Telemetry.Endpoint = ""
		}, "telemetry"},
		{"sample rate above one", func(c *Config) { c.Telemetry.SampleRate = 1.5 }, "lte"},
		{"profiling without endpoint", func(c *Config) {
			c.Telemetry.Profiling.Enabled = true
			c.Telemetry.Profiling.Endpoint = ""
		}, "profiling"},
		{"postgres without host", func(c *Config) {
			c.Database.Type = "postgres"
			c.Database.Postgres.Database = "tags"
			c.Database.Postgres.User = "lidarr"
		}, "database"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			switch {
			case tt.wantErr == "" && err != nil:
				t.Errorf("Expected valid config, got: %v", err)
			case tt.wantErr != "" && err == nil:
				t.Errorf("Expected error containing %q, got nil", tt.wantErr)
			case tt.wantErr != "" && !strings.Contains(err.Error(), tt.wantErr):
				t.Errorf("Expected error containing %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_LogLevelCase(t *testing.T) {
	for _, level := range []string{"info", "INFO", "debug", "warn", "ERROR"} {
		cfg := GetDefaultConfig()
		cfg.Logging.Level = level

		if err := Validate(cfg); err != nil {
			t.Errorf("Validation failed for level %q: %v", level, err)
		}
		if cfg.Logging.Level != level {
			t.Errorf("Validate modified level %q to %q", level, cfg.Logging.Level)
		}
	}

	cfg := &Config{Logging: LoggingConfig{Level: "warn"}}
	ApplyDefaults(cfg)
	if cfg.Logging.Level != "WARN" {
		t.Errorf("Expected ApplyDefaults to upper-case the level, got %q", cfg.Logging.Level)
	}
}
