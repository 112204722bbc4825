package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// MinHousekeepingInterval is the shortest accepted scheduler interval.
const MinHousekeepingInterval = time.Minute

// Validate checks the configuration for structural and semantic errors.
//
// Struct tags are checked first (validator/v10); cross-field rules that tags
// cannot express follow. Validation does not modify cfg.
func Validate(cfg *Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return formatValidationErrors(verrs)
		}
		return err
	}

	if err := cfg.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint == "" {
		return errors.New("telemetry: endpoint is required when telemetry is enabled")
	}
	if cfg.Telemetry.Profiling.Enabled && cfg.Telemetry.Profiling.Endpoint == "" {
		return errors.New("telemetry.profiling: endpoint is required when profiling is enabled")
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Port == cfg.ControlPlane.Port {
		return fmt.Errorf("metrics: port %d conflicts with the control plane port", cfg.Metrics.Port)
	}

	if cfg.Housekeeping.IsEnabled() && cfg.Housekeeping.Interval < MinHousekeepingInterval {
		return fmt.Errorf("housekeeping: interval must be at least %s, got %s",
			MinHousekeepingInterval, cfg.Housekeeping.Interval)
	}
	if cfg.Housekeeping.InitialDelay < 0 {
		return errors.New("housekeeping: initial_delay must not be negative")
	}

	return nil
}

// formatValidationErrors turns validator errors into one readable error.
func formatValidationErrors(verrs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed '%s=%s' (got %v)", field, fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed '%s'", field, fe.Tag()))
		}
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}
