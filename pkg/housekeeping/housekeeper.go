package housekeeping

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"

	"github.com/marmos91/tagkeep/internal/logger"
	"github.com/marmos91/tagkeep/internal/telemetry"
	"github.com/marmos91/tagkeep/pkg/controlplane/models"
)

var (
	// ErrRunInProgress is returned when a run is requested while another one
	// is still executing.
	ErrRunInProgress = errors.New("housekeeping run already in progress")

	// ErrUnknownHousekeeper is returned when a run names a housekeeper that
	// is not registered.
	ErrUnknownHousekeeper = errors.New("unknown housekeeper")
)

// Housekeeper is a maintenance task executed by the Runner.
type Housekeeper interface {
	Name() string
	Clean(ctx context.Context) error
}

// CountingHousekeeper is implemented by housekeepers that can report how many
// records a pass removed, and that support dry runs. On a dry run the count is
// the number of records that would have been removed.
type CountingHousekeeper interface {
	Housekeeper
	CleanCount(ctx context.Context, dryRun bool) (int, error)
}

// RunRecorder persists the history of housekeeping runs.
type RunRecorder interface {
	CreateHousekeepingRun(ctx context.Context, run *models.HousekeepingRun) (string, error)
	UpdateHousekeepingRun(ctx context.Context, run *models.HousekeepingRun) error
}

// Metrics receives housekeeping observations. Implementations live in
// pkg/metrics; a nil Metrics disables collection.
type Metrics interface {
	// ObserveRun records the outcome and duration of one housekeeper execution.
	ObserveRun(housekeeper string, duration time.Duration, err error)

	// RecordTagsScanned records the catalog size seen by a pass.
	RecordTagsScanned(n int)

	// RecordTagsDeleted records the number of tags a pass removed.
	RecordTagsDeleted(n int)
}

// RunOptions selects what a Runner.Run executes.
type RunOptions struct {
	// DryRun is passed to housekeepers implementing CountingHousekeeper.
	// Housekeepers without dry-run support are skipped.
	DryRun bool

	// Only restricts the run to the named housekeepers. Empty runs all.
	Only []string
}

// Runner executes registered housekeepers in registration order and records
// each execution. A failing housekeeper does not stop the ones after it.
// Runs never overlap: a run requested while another is executing fails with
// ErrRunInProgress.
type Runner struct {
	recorder RunRecorder

	runMu sync.Mutex

	mu           sync.RWMutex
	housekeepers []Housekeeper
	metrics      Metrics
}

// NewRunner creates a Runner. recorder may be nil, in which case runs are
// only logged.
func NewRunner(recorder RunRecorder, housekeepers ...Housekeeper) *Runner {
	r := &Runner{recorder: recorder}
	r.Register(housekeepers...)
	return r
}

// Register appends housekeepers to the run order.
func (r *Runner) Register(housekeepers ...Housekeeper) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, hk := range housekeepers {
		if hk != nil {
			r.housekeepers = append(r.housekeepers, hk)
		}
	}
}

// SetMetrics sets the metrics sink. A nil sink disables metrics.
func (r *Runner) SetMetrics(m Metrics) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics = m
}

// Names returns the registered housekeeper names in run order.
func (r *Runner) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.housekeepers))
	for i, hk := range r.housekeepers {
		names[i] = hk.Name()
	}
	return names
}

// Run executes the selected housekeepers and returns one record per
// execution. The returned error joins the failures of every housekeeper that
// failed; the records of the others are still returned.
func (r *Runner) Run(ctx context.Context, opts RunOptions) ([]*models.HousekeepingRun, error) {
	if !r.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer r.runMu.Unlock()

	selected, err := r.selectHousekeepers(opts.Only)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanHousekeepingRun)
	span.SetAttributes(telemetry.DryRun(opts.DryRun))
	defer span.End()

	start := time.Now()
	runs := make([]*models.HousekeepingRun, 0, len(selected))
	var errs []error

	for _, hk := range selected {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		run, err := r.runOne(ctx, hk, opts.DryRun)
		if run != nil {
			runs = append(runs, run)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", hk.Name(), err))
		}
	}

	joined := errors.Join(errs...)
	if joined != nil {
		span.RecordError(joined)
		span.SetStatus(codes.Error, joined.Error())
	}

	logger.InfoCtx(ctx, "Housekeeping: run finished",
		logger.Count(len(runs)),
		logger.DryRun(opts.DryRun),
		logger.DurationMs(logger.Duration(start)),
		logger.Err(joined))

	return runs, joined
}

// RunOne executes a single housekeeper by name.
func (r *Runner) RunOne(ctx context.Context, name string, dryRun bool) (*models.HousekeepingRun, error) {
	runs, err := r.Run(ctx, RunOptions{DryRun: dryRun, Only: []string{name}})
	if len(runs) == 0 {
		return nil, err
	}
	return runs[0], err
}

func (r *Runner) selectHousekeepers(only []string) ([]Housekeeper, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(only) == 0 {
		return slices.Clone(r.housekeepers), nil
	}

	selected := make([]Housekeeper, 0, len(only))
	for _, name := range only {
		idx := slices.IndexFunc(r.housekeepers, func(hk Housekeeper) bool { return hk.Name() == name })
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownHousekeeper, name)
		}
		selected = append(selected, r.housekeepers[idx])
	}
	return selected, nil
}

// runOne executes hk and records the outcome. The record is returned even
// when persisting it failed; persistence errors are logged, not returned.
func (r *Runner) runOne(ctx context.Context, hk Housekeeper, dryRun bool) (*models.HousekeepingRun, error) {
	counting, canCount := hk.(CountingHousekeeper)
	if dryRun && !canCount {
		logger.DebugCtx(ctx, "Housekeeping: housekeeper has no dry run, skipping", logger.Housekeeper(hk.Name()))
		return nil, nil
	}

	run := &models.HousekeepingRun{
		ID:        uuid.NewString(),
		Name:      hk.Name(),
		Status:    models.RunStatusRunning,
		DryRun:    dryRun,
		StartedAt: time.Now(),
	}

	ctx, span := telemetry.StartHousekeepingSpan(ctx, run.Name, run.ID, telemetry.DryRun(dryRun))
	defer span.End()

	lc := logger.FromContext(ctx)
	if lc == nil {
		lc = logger.NewLogContext()
	}
	lc = lc.WithRun(run.Name, run.ID).WithTrace(telemetry.TraceID(ctx), telemetry.SpanID(ctx))
	ctx = logger.WithContext(ctx, lc)

	if r.recorder != nil {
		if _, err := r.recorder.CreateHousekeepingRun(ctx, run); err != nil {
			logger.WarnCtx(ctx, "Housekeeping: failed to record run start", logger.Err(err))
		}
	}

	logger.InfoCtx(ctx, "Housekeeping: starting", logger.DryRun(dryRun))

	var (
		deleted int
		err     error
	)
	if canCount {
		deleted, err = counting.CleanCount(ctx, dryRun)
	} else {
		err = hk.Clean(ctx)
	}

	finished := time.Now()
	run.FinishedAt = &finished
	run.Deleted = deleted
	if err != nil {
		run.Status = models.RunStatusFailed
		run.Error = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.ErrorCtx(ctx, "Housekeeping: failed",
			logger.DurationMs(logger.Duration(run.StartedAt)), logger.Err(err))
	} else {
		run.Status = models.RunStatusSucceeded
		span.SetAttributes(telemetry.TagsDeleted(deleted))
		logger.InfoCtx(ctx, "Housekeeping: completed",
			logger.Deleted(deleted),
			logger.DurationMs(logger.Duration(run.StartedAt)))
	}

	r.mu.RLock()
	metrics := r.metrics
	r.mu.RUnlock()
	if metrics != nil {
		metrics.ObserveRun(run.Name, run.Duration(), err)
	}

	if r.recorder != nil {
		// Record the outcome even when the run was cancelled.
		if uerr := r.recorder.UpdateHousekeepingRun(context.WithoutCancel(ctx), run); uerr != nil {
			logger.WarnCtx(ctx, "Housekeeping: failed to record run outcome", logger.Err(uerr))
		}
	}

	return run, err
}
