package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marmos91/tagkeep/internal/cli/output"
	"github.com/marmos91/tagkeep/internal/cli/prompt"
	"github.com/marmos91/tagkeep/pkg/controlplane/models"
	"github.com/marmos91/tagkeep/pkg/controlplane/store"
	"github.com/marmos91/tagkeep/pkg/housekeeping"
)

var (
	cleanDryRun bool
	cleanYes    bool
	cleanOnly   []string
	cleanOutput string
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Run housekeeping once against the configured database",
	Long: `Run every housekeeper once, outside the server's schedule.

The tags that would be deleted are listed first and, unless --yes is given,
you are asked to confirm. Use --dry-run to only report. Each execution is
recorded in the run history like a scheduled run.

Do not run clean while a server against the same database is mid-pass;
runs are only serialized within one process.

Examples:
  # Preview unused tags without deleting
  tagkeep clean --dry-run

  # Delete unused tags without prompting
  tagkeep clean --yes

  # Only trim the run history
  tagkeep clean --only run_history`,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanDryRun, "dry-run", false, "Report what would be deleted without deleting")
	cleanCmd.Flags().BoolVarP(&cleanYes, "yes", "y", false, "Skip the confirmation prompt")
	cleanCmd.Flags().StringSliceVar(&cleanOnly, "only", nil, "Run only these housekeepers (unused_tags, run_history)")
	cleanCmd.Flags().StringVarP(&cleanOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

func runClean(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(cleanOutput)
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

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cleaner := housekeeping.NewCatalogCleaner(s)
	runner := housekeeping.NewRunner(s,
		cleaner,
		housekeeping.NewRunHistoryCleaner(s, cfg.Housekeeping.RunRetention),
	)

	c := &cleanRun{
		store:   s,
		cleaner: cleaner,
		runner:  runner,
		printer: output.NewPrinter(cmd.OutOrStdout(), format, true),
		confirm: prompt.ConfirmWithForce,
	}
	return c.execute(ctx, housekeeping.RunOptions{DryRun: cleanDryRun, Only: cleanOnly}, cleanYes)
}

// cleanRun holds the collaborators of one clean invocation.
type cleanRun struct {
	store   store.TagStore
	cleaner *housekeeping.UnusedTagsCleaner
	runner  *housekeeping.Runner
	printer *output.Printer
	confirm func(label string, force bool) (bool, error)
}

func (c *cleanRun) execute(ctx context.Context, opts housekeeping.RunOptions, yes bool) error {
	if selects(opts.Only, housekeeping.UnusedTagsName) {
		unused, err := c.previewUnused(ctx)
		if err != nil {
			return err
		}

		if c.printer.Format() == output.FormatTable {
			if len(unused) == 0 {
				c.printer.Println("No unused tags.")
			} else {
				c.printer.Printf("%d unused tag(s):\n", len(unused))
				if err := c.printer.Print(unusedList(unused)); err != nil {
					return err
				}
				c.printer.Println()
			}
		}

		if !opts.DryRun && len(unused) > 0 {
			ok, err := c.confirm(fmt.Sprintf("Delete %d unused tag(s)", len(unused)), yes)
			if err != nil {
				if prompt.IsAborted(err) {
					c.printer.Println("Aborted.")
					return nil
				}
				return err
			}
			if !ok {
				c.printer.Println("Aborted.")
				return nil
			}
		}
	}

	runs, runErr := c.runner.Run(ctx, opts)
	if len(runs) > 0 {
		if err := c.printer.Print(runList(runs)); err != nil {
			return err
		}
	}

	if runErr == nil && c.printer.Format() == output.FormatTable {
		if opts.DryRun {
			c.printer.Warning("Dry run: nothing was deleted.")
		} else {
			c.printer.Success("Housekeeping finished.")
		}
	}
	return runErr
}

// previewUnused returns the tags a pass would delete right now.
func (c *cleanRun) previewUnused(ctx context.Context) ([]*models.Tag, error) {
	stats, err := c.cleaner.Reconcile(ctx, &housekeeping.Options{DryRun: true})
	if err != nil {
		return nil, err
	}
	if len(stats.Unused) == 0 {
		return nil, nil
	}

	tags, err := c.store.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	unused := housekeeping.NewIDSet(stats.Unused...)
	out := make([]*models.Tag, 0, len(stats.Unused))
	for _, t := range tags {
		if unused.Contains(t.ID) {
			out = append(out, t)
		}
	}
	return out, nil
}

// selects reports whether a run restricted to only includes name.
func selects(only []string, name string) bool {
	return len(only) == 0 || slices.Contains(only, name)
}
