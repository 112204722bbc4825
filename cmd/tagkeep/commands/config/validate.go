package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/tagkeep/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the tagkeep configuration file.

Checks for syntax errors, missing required fields, and invalid values.

Examples:
  # Validate default config
  tagkeep config validate

  # Validate specific config file
  tagkeep config validate --config /etc/tagkeep/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	displayPath := configPath
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file: %s\n", displayPath)
	_, _ = fmt.Fprintln(out, "Validation: OK")

	if warnings := Warnings(cfg); len(warnings) > 0 {
		_, _ = fmt.Fprintln(out, "\nWarnings:")
		for _, w := range warnings {
			_, _ = fmt.Fprintf(out, "  - %s\n", w)
		}
	}

	_, _ = fmt.Fprintf(out, "\nConfiguration summary:\n")
	_, _ = fmt.Fprintf(out, "  Database type:   %s\n", cfg.Database.Type)
	_, _ = fmt.Fprintf(out, "  API port:        %d\n", cfg.ControlPlane.Port)
	_, _ = fmt.Fprintf(out, "  Housekeeping:    %s\n", housekeepingSummary(cfg.Housekeeping))
	_, _ = fmt.Fprintf(out, "  Log level:       %s\n", cfg.Logging.Level)

	return nil
}

// Warnings returns problems in cfg that do not prevent startup of every
// command but are likely mistakes.
func Warnings(cfg *config.Config) []string {
	var warnings []string
	if !cfg.ControlPlane.HasJWTSecret() {
		warnings = append(warnings, "JWT secret not configured - the server will refuse to start")
	}
	if cfg.Housekeeping.IsEnabled() && cfg.Housekeeping.DryRun {
		warnings = append(warnings, "housekeeping.dry_run is set - scheduled runs will never delete tags")
	}
	if cfg.Housekeeping.RunRetention < 0 {
		warnings = append(warnings, "housekeeping.run_retention is negative - run history is kept forever")
	}
	return warnings
}

func housekeepingSummary(hk config.HousekeepingConfig) string {
	if !hk.IsEnabled() {
		return "manual only"
	}
	s := fmt.Sprintf("every %s", hk.Interval)
	if hk.DryRun {
		s += " (dry run)"
	}
	return s
}
