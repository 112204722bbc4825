package housekeeping

import (
	"context"
	"fmt"
	"time"

	"github.com/marmos91/tagkeep/internal/logger"
)

// RunHistoryName is the housekeeper name of RunHistoryCleaner.
const RunHistoryName = "run_history"

// RunHistoryStore removes old housekeeping run records.
type RunHistoryStore interface {
	// DeleteHousekeepingRunsBefore removes finished runs started before
	// cutoff and returns how many were removed.
	DeleteHousekeepingRunsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// RunHistoryCleaner trims the housekeeping run history to a retention window.
// A retention of zero or less keeps the history forever.
type RunHistoryCleaner struct {
	store     RunHistoryStore
	retention time.Duration
	now       func() time.Time
}

// NewRunHistoryCleaner creates a cleaner that removes runs older than retention.
func NewRunHistoryCleaner(store RunHistoryStore, retention time.Duration) *RunHistoryCleaner {
	return &RunHistoryCleaner{store: store, retention: retention, now: time.Now}
}

func (c *RunHistoryCleaner) Name() string { return RunHistoryName }

func (c *RunHistoryCleaner) Clean(ctx context.Context) error {
	_, err := c.CleanCount(ctx, false)
	return err
}

// CleanCount implements CountingHousekeeper. A dry run reports nothing, since
// counting old runs would need a second query for no practical benefit.
func (c *RunHistoryCleaner) CleanCount(ctx context.Context, dryRun bool) (int, error) {
	if c.retention <= 0 || dryRun {
		return 0, nil
	}

	cutoff := c.now().Add(-c.retention)
	n, err := c.store.DeleteHousekeepingRunsBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete runs before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	if n > 0 {
		logger.DebugCtx(ctx, "Housekeeping: trimmed run history", logger.Deleted(int(n)))
	}
	return int(n), nil
}
