package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/tagkeep/internal/logger"
	"github.com/marmos91/tagkeep/internal/telemetry"
	"github.com/marmos91/tagkeep/pkg/config"
	"github.com/marmos91/tagkeep/pkg/controlplane"

	// Import prometheus metrics to register init() functions
	_ "github.com/marmos91/tagkeep/pkg/metrics/prometheus"
)

var pidFile string

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the tagkeep server",
	Long: `Start the tagkeep server in the foreground.

The server exposes the REST API, runs housekeeping on the configured
interval and, when enabled, serves Prometheus metrics. Run it under a
process supervisor (systemd, Kubernetes) for background operation.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/tagkeep/config.yaml.

Examples:
  # Start with the default config
  tagkeep start

  # Start with custom config file
  tagkeep start --config /etc/tagkeep/config.yaml

  # Start with environment variable overrides
  TAGKEEP_LOGGING_LEVEL=DEBUG tagkeep start`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringVar(&pidFile, "pid-file", "", "Write the process ID to this file while running")
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "tagkeep",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(context.Background()); err != nil {
			logger.Error("telemetry shutdown error", logger.Err(err))
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "tagkeep",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", logger.Err(err))
		}
	}()

	logger.Info("tagkeep starting", "version", Version, "commit", Commit)
	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))
	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	}
	if telemetry.IsProfilingEnabled() {
		logger.Info("Profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint)
	}

	if reg := config.InitializeMetrics(cfg); reg != nil {
		logger.Info("Metrics enabled", "port", cfg.Metrics.Port)
	} else {
		logger.Info("Metrics collection disabled")
	}

	cp, err := controlplane.New(ctx, &controlplane.Options{
		Database: &cfg.Database,
		API:      &cfg.ControlPlane,
		Housekeeping: controlplane.HousekeepingOptions{
			Scheduled:    cfg.Housekeeping.IsEnabled(),
			Interval:     cfg.Housekeeping.Interval,
			InitialDelay: cfg.Housekeeping.InitialDelay,
			RunRetention: cfg.Housekeeping.RunRetention,
			DryRun:       cfg.Housekeeping.DryRun,
		},
		MetricsPort: cfg.Metrics.Port,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := cp.Close(); err != nil {
			logger.Warn("Failed to close catalog database", logger.Err(err))
		}
	}()

	if !cfg.Housekeeping.IsEnabled() {
		logger.Info("Scheduled housekeeping disabled; manual runs remain available")
	} else if cfg.Housekeeping.DryRun {
		logger.Warn("Scheduled housekeeping runs in dry-run mode; no tags will be deleted")
	}

	if pidFile != "" {
		if err := os.WriteFile(pidFile, []byte(fmt.Sprintf("%d", os.Getpid())), 0644); err != nil {
			return fmt.Errorf("failed to write PID file: %w", err)
		}
		defer func() { _ = os.Remove(pidFile) }()
	}

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- cp.Serve(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	logger.Info("Server is running. Press Ctrl+C to stop.")

	select {
	case <-sigChan:
		logger.Info("Shutdown signal received, initiating graceful shutdown")
		cancel()

		select {
		case err := <-serverDone:
			if err != nil {
				logger.Error("Server shutdown error", logger.Err(err))
				return err
			}
			logger.Info("Server stopped gracefully")
		case <-time.After(cfg.ShutdownTimeout):
			return fmt.Errorf("graceful shutdown did not finish within %s", cfg.ShutdownTimeout)
		}

	case err := <-serverDone:
		if err != nil {
			logger.Error("Server error", logger.Err(err))
			return err
		}
		logger.Info("Server stopped")
	}

	return nil
}
