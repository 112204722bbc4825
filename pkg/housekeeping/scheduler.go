package housekeeping

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/marmos91/tagkeep/internal/logger"
)

// DefaultInterval is the default time between scheduled housekeeping runs.
const DefaultInterval = 24 * time.Hour

// Scheduler runs a Runner on a fixed interval.
//
// The first run happens after initialDelay, then every interval. Failed runs
// are logged and retried on the next tick; there is no in-pass retry. Manual
// runs go through Trigger and share the Runner's overlap protection with the
// ticker.
type Scheduler struct {
	runner       *Runner
	interval     time.Duration
	initialDelay time.Duration
	dryRun       bool

	stopOnce sync.Once
	stopCh   chan struct{}
	stopped  chan struct{} // closed when the scheduling goroutine exits
}

// NewScheduler creates a Scheduler for runner.
// If interval is 0, DefaultInterval (24h) is used.
func NewScheduler(runner *Runner, interval, initialDelay time.Duration, dryRun bool) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if initialDelay < 0 {
		initialDelay = 0
	}
	return &Scheduler{
		runner:       runner,
		interval:     interval,
		initialDelay: initialDelay,
		dryRun:       dryRun,
		stopCh:       make(chan struct{}),
		stopped:      make(chan struct{}),
	}
}

// Interval returns the time between scheduled runs.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Start begins the background scheduling goroutine. It returns immediately.
// The goroutine exits when ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		defer close(s.stopped)

		logger.Info("Housekeeping scheduler started",
			logger.Interval(s.interval),
			"initial_delay", s.initialDelay.String(),
			logger.DryRun(s.dryRun))

		delay := time.NewTimer(s.initialDelay)
		defer delay.Stop()

		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-delay.C:
			s.tick(ctx)
		}

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()
}

// Stop signals the scheduling goroutine to stop and waits for it to exit.
// A run in progress is allowed to finish. Stop must only be called after
// Start.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	<-s.stopped
}

// Trigger runs every housekeeper now, outside the schedule.
func (s *Scheduler) Trigger(ctx context.Context, opts RunOptions) error {
	_, err := s.runner.Run(ctx, opts)
	return err
}

func (s *Scheduler) tick(ctx context.Context) {
	ctx = logger.WithContext(ctx, logger.NewLogContext())
	_, err := s.runner.Run(ctx, RunOptions{DryRun: s.dryRun})
	switch {
	case err == nil:
	case errors.Is(err, ErrRunInProgress):
		logger.Debug("Housekeeping: previous run still in progress, skipping tick")
	case ctx.Err() != nil:
		logger.Debug("Housekeeping: scheduled run cancelled")
	default:
		// Failures are already logged per housekeeper; retried next tick.
		logger.Warn("Housekeeping: scheduled run failed", logger.Err(err))
	}
}
