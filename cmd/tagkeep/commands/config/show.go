package config

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/tagkeep/internal/cli/output"
	"github.com/marmos91/tagkeep/pkg/config"
)

var showOutput string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Long: `Display the effective tagkeep configuration, with defaults and
environment overrides applied.

The JWT secret is masked.

Examples:
  # Show as YAML
  tagkeep config show

  # Show as JSON
  tagkeep config show --output json`,
	RunE: runConfigShow,
}

func init() {
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "yaml", "Output format (yaml|json)")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(showOutput)
	if err != nil {
		return err
	}

	masked := *cfg
	if masked.ControlPlane.JWT.Secret != "" {
		masked.ControlPlane.JWT.Secret = "********"
	}
	if masked.Database.Postgres.Password != "" {
		masked.Database.Postgres.Password = "********"
	}

	out := cmd.OutOrStdout()
	switch format {
	case output.FormatJSON:
		return output.PrintJSON(out, masked)
	default:
		return output.PrintYAML(out, masked)
	}
}
