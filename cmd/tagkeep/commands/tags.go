package commands

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/tagkeep/internal/cli/output"
)

var tagsOutput string

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Inspect the tag catalog",
}

var tagsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tags and the records using them",
	Long: `List every tag in the catalog with the release profiles and
auto-tagging rules that reference it.

Examples:
  # Table output
  tagkeep tags list

  # JSON output
  tagkeep tags list -o json`,
	RunE: runTagsList,
}

func init() {
	tagsListCmd.Flags().StringVarP(&tagsOutput, "output", "o", "table", "Output format (table|json|yaml)")
	tagsCmd.AddCommand(tagsListCmd)
}

func runTagsList(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(tagsOutput)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	usage, err := s.ListTagUsage(cmd.Context())
	if err != nil {
		return err
	}

	printer := output.NewPrinter(cmd.OutOrStdout(), format, true)
	if format == output.FormatTable && len(usage) == 0 {
		printer.Println("No tags.")
		return nil
	}
	return printer.Print(tagList(usage))
}
