// Package controlplane wires the tagkeep server together.
//
// The control plane owns:
//   - Store: the tag catalog and the records referencing it
//   - Housekeeping: the unused tag cleaner, the run history cleaner and the
//     runner and scheduler driving them
//   - API Server: REST API for catalog management and manual runs
//   - Metrics Server: Prometheus endpoint (optional)
//
// Usage:
//
//	cp, err := controlplane.New(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cp.Close()
//
//	err = cp.Serve(ctx)
package controlplane

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/marmos91/tagkeep/internal/logger"
	"github.com/marmos91/tagkeep/pkg/controlplane/api"
	"github.com/marmos91/tagkeep/pkg/controlplane/store"
	"github.com/marmos91/tagkeep/pkg/housekeeping"
	"github.com/marmos91/tagkeep/pkg/metrics"
)

// ControlPlane is the central component of a tagkeep server.
type ControlPlane struct {
	store         *store.GORMStore
	cleaner       *housekeeping.UnusedTagsCleaner
	runner        *housekeeping.Runner
	scheduler     *housekeeping.Scheduler
	apiServer     *api.Server
	metricsServer *metrics.Server
}

// HousekeepingOptions configures scheduled housekeeping.
type HousekeepingOptions struct {
	// Scheduled enables the background scheduler. Manual runs are always
	// available.
	Scheduled bool

	Interval     time.Duration
	InitialDelay time.Duration

	// RunRetention bounds the run history. Zero or less keeps it forever.
	RunRetention time.Duration

	// DryRun makes scheduled runs report without deleting.
	DryRun bool
}

// Options configures the ControlPlane.
type Options struct {
	// Database configuration for persistent storage
	Database *store.Config

	// API configuration (optional, nil disables the API server)
	API *api.APIConfig

	Housekeeping HousekeepingOptions

	// MetricsPort is the port of the metrics endpoint. The endpoint only
	// runs when metrics.InitRegistry was called beforehand.
	MetricsPort int
}

// New creates a new ControlPlane with the given options.
//
// This initializes:
//  1. Persistent store (SQLite/PostgreSQL)
//  2. Housekeepers, runner and scheduler
//  3. API server (if configured)
//  4. Metrics server (if metrics are enabled)
//
// Call Close() when done to release resources.
func New(ctx context.Context, opts *Options) (*ControlPlane, error) {
	if opts == nil {
		return nil, fmt.Errorf("options cannot be nil")
	}
	if opts.Database == nil {
		return nil, fmt.Errorf("database configuration is required")
	}

	cpStore, err := store.New(opts.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	cp, err := newWithStore(cpStore, opts)
	if err != nil {
		_ = cpStore.Close()
		return nil, err
	}

	logger.InfoCtx(ctx, "Control plane initialized",
		"database", opts.Database.Type,
		"housekeepers", cp.runner.Names(),
		"sources", cp.cleaner.Sources())
	return cp, nil
}

func newWithStore(cpStore *store.GORMStore, opts *Options) (*ControlPlane, error) {
	hkMetrics := metrics.NewHousekeepingMetrics()

	cleaner := housekeeping.NewCatalogCleaner(cpStore)
	cleaner.SetMetrics(hkMetrics)

	runner := housekeeping.NewRunner(cpStore,
		cleaner,
		housekeeping.NewRunHistoryCleaner(cpStore, opts.Housekeeping.RunRetention),
	)
	runner.SetMetrics(hkMetrics)

	cp := &ControlPlane{
		store:   cpStore,
		cleaner: cleaner,
		runner:  runner,
	}

	if opts.Housekeeping.Scheduled {
		cp.scheduler = housekeeping.NewScheduler(runner,
			opts.Housekeeping.Interval,
			opts.Housekeeping.InitialDelay,
			opts.Housekeeping.DryRun,
		)
	}

	if opts.API != nil {
		apiServer, err := api.NewServer(*opts.API, api.Dependencies{
			Store:     cpStore,
			StoreType: string(opts.Database.Type),
			Runner:    runner,
			Preview:   cleaner,
			Metrics:   metrics.NewAPIMetrics(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create API server: %w", err)
		}
		cp.apiServer = apiServer
	}

	cp.metricsServer = metrics.NewServer(opts.MetricsPort)

	return cp, nil
}

// Store returns the persistent catalog store.
func (cp *ControlPlane) Store() *store.GORMStore {
	return cp.store
}

// Runner returns the housekeeping runner.
func (cp *ControlPlane) Runner() *housekeeping.Runner {
	return cp.runner
}

// Cleaner returns the unused tag cleaner.
func (cp *ControlPlane) Cleaner() *housekeeping.UnusedTagsCleaner {
	return cp.cleaner
}

// Scheduler returns the housekeeping scheduler (nil if scheduling is disabled).
func (cp *ControlPlane) Scheduler() *housekeeping.Scheduler {
	return cp.scheduler
}

// APIServer returns the API server (nil if not configured).
func (cp *ControlPlane) APIServer() *api.Server {
	return cp.apiServer
}

// Serve starts the scheduler and the HTTP servers, then blocks until ctx is
// cancelled or a server fails. The scheduler is stopped before Serve returns.
func (cp *ControlPlane) Serve(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	if cp.scheduler != nil {
		cp.scheduler.Start(gctx)
	}

	if cp.apiServer != nil {
		g.Go(func() error {
			return cp.apiServer.Start(gctx)
		})
	}
	if cp.metricsServer != nil {
		g.Go(func() error {
			return cp.metricsServer.Start(gctx)
		})
	}

	// Keep Serve blocking when neither server is configured.
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	err := g.Wait()

	if cp.scheduler != nil {
		cp.scheduler.Stop()
	}

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close releases the database connection. Serve must have returned.
func (cp *ControlPlane) Close() error {
	return cp.store.Close()
}
