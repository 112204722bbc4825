package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/tagkeep/pkg/config"
	"github.com/marmos91/tagkeep/pkg/controlplane/api"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a sample tagkeep configuration file.

By default, the configuration file is created at $XDG_CONFIG_HOME/tagkeep/config.yaml.
Use --config to specify a custom path.

Examples:
  # Initialize with default location
  tagkeep init

  # Initialize with custom path
  tagkeep init --config /etc/tagkeep/config.yaml

  # Force overwrite existing config
  tagkeep init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	var configPath string
	var err error

	if configFile != "" {
		err = config.InitConfigToPath(configFile, initForce)
		configPath = configFile
	} else {
		configPath, err = config.InitConfig(initForce)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file created at: %s\n", configPath)
	_, _ = fmt.Fprintln(out, "\nNext steps:")
	_, _ = fmt.Fprintln(out, "  1. Review the housekeeping interval and database settings")
	_, _ = fmt.Fprintln(out, "  2. Start the server with: tagkeep start")
	_, _ = fmt.Fprintln(out, "  3. Mint an API token with: tagkeep token")
	_, _ = fmt.Fprintln(out, "\nSecurity note:")
	_, _ = fmt.Fprintln(out, "  A random JWT secret has been written to the configuration file.")
	_, _ = fmt.Fprintln(out, "  For production, keep it out of the file and use an environment variable:")
	_, _ = fmt.Fprintf(out, "    export %s=$(openssl rand -hex 32)\n", api.EnvControlPlaneSecret)

	return nil
}
