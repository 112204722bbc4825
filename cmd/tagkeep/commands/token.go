package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/tagkeep/internal/cli/output"
	"github.com/marmos91/tagkeep/internal/controlplane/api/auth"
	"github.com/marmos91/tagkeep/pkg/config"
	"github.com/marmos91/tagkeep/pkg/controlplane/api"
)

var (
	tokenRole    string
	tokenSubject string
	tokenTTL     time.Duration
	tokenOutput  string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an API bearer token",
	Long: `Mint a bearer token for the REST API, signed with the configured
control plane secret.

Admin tokens may modify the catalog and trigger housekeeping; reader
tokens may only read.

Examples:
  # Admin token with the configured lifetime
  tagkeep token

  # Read-only token for a dashboard, valid for one week
  tagkeep token --role reader --subject grafana --ttl 168h`,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenRole, "role", string(auth.RoleAdmin), "Token role (admin|reader)")
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "tagkeep-cli", "Token subject")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "Token lifetime (default: controlplane.jwt.token_duration)")
	tokenCmd.Flags().StringVarP(&tokenOutput, "output", "o", "", "Output format (json|yaml); prints the bare token when empty")
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	token, err := mintToken(cfg.ControlPlane, auth.Role(tokenRole), tokenSubject, tokenTTL)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if tokenOutput == "" {
		_, _ = fmt.Fprintln(out, token.AccessToken)
		return nil
	}

	format, err := output.ParseFormat(tokenOutput)
	if err != nil {
		return err
	}
	return output.NewPrinter(out, format, false).Print(token)
}

// mintToken signs a token with the secret from cfg.
func mintToken(cfg api.APIConfig, role auth.Role, subject string, ttl time.Duration) (*auth.Token, error) {
	svc, err := api.NewJWTService(cfg)
	if err != nil {
		return nil, err
	}
	token, err := svc.GenerateToken(subject, role, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to mint token: %w", err)
	}
	return token, nil
}
