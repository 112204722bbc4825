package housekeeping

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/marmos91/tagkeep/internal/logger"
	"github.com/marmos91/tagkeep/internal/telemetry"
)

// UnusedTagsName is the housekeeper name of UnusedTagsCleaner.
const UnusedTagsName = "unused_tags"

// ============================================================================
// Types
// ============================================================================

// TagStore is the part of the catalog the cleaner reads and deletes from.
type TagStore interface {
	// AllTagIDs returns the IDs of every tag in the catalog.
	AllTagIDs(ctx context.Context) ([]uint, error)

	// DeleteTags removes the given tags in one operation. IDs that no longer
	// exist are not an error.
	DeleteTags(ctx context.Context, ids []uint) error
}

// SourceStats describes one source's contribution to a pass.
type SourceStats struct {
	Name       string  `json:"name"`
	Referenced int     `json:"referenced"`
	DurationMs float64 `json:"duration_ms"`
}

// Stats holds statistics about one cleaning pass.
type Stats struct {
	TagsScanned    int           `json:"tags_scanned"`    // Tags present when the pass started
	TagsReferenced int           `json:"tags_referenced"` // Distinct IDs reported by all sources
	TagsDeleted    int           `json:"tags_deleted"`    // Tags removed (0 on a dry run)
	Unused         []uint        `json:"unused"`          // Tags no source references, ascending
	DryRun         bool          `json:"dry_run"`
	Sources        []SourceStats `json:"sources"`
}

// Options configures a cleaning pass.
type Options struct {
	// DryRun computes the unused set without deleting anything.
	DryRun bool
}

// ============================================================================
// UnusedTagsCleaner
// ============================================================================

// UnusedTagsCleaner deletes catalog tags that no registered source references.
//
// The cleaner holds no state between passes. Concurrent passes against the
// same store are not coordinated here; Runner serializes them.
type UnusedTagsCleaner struct {
	store TagStore

	mu      sync.RWMutex
	sources []TagReferenceSource
	metrics Metrics
}

// NewUnusedTagsCleaner creates a cleaner over store with the given sources.
func NewUnusedTagsCleaner(store TagStore, sources ...TagReferenceSource) *UnusedTagsCleaner {
	c := &UnusedTagsCleaner{store: store}
	c.Register(sources...)
	return c
}

// CatalogStore holds the tag catalog and the records of every built-in
// source.
type CatalogStore interface {
	TagStore
	ReleaseProfileLister
	AutoTagLister
}

// NewCatalogCleaner creates a cleaner over s with the built-in sources
// registered: release profiles, then auto-tagging.
func NewCatalogCleaner(s CatalogStore) *UnusedTagsCleaner {
	return NewUnusedTagsCleaner(s,
		NewReleaseProfileSource(s),
		NewAutoTaggingSource(s),
	)
}

// Register adds sources to the cleaner. Sources registered while a pass is
// running take part from the next pass on.
func (c *UnusedTagsCleaner) Register(sources ...TagReferenceSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range sources {
		if s != nil {
			c.sources = append(c.sources, s)
		}
	}
}

// Sources returns the names of the registered sources in registration order.
func (c *UnusedTagsCleaner) Sources() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, len(c.sources))
	for i, s := range c.sources {
		names[i] = s.Name()
	}
	return names
}

// SetMetrics sets the metrics sink. A nil sink disables metrics.
func (c *UnusedTagsCleaner) SetMetrics(m Metrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = m
}

// Name implements Housekeeper.
func (c *UnusedTagsCleaner) Name() string {
	return UnusedTagsName
}

// Clean implements Housekeeper. It runs one pass and deletes every unused tag.
func (c *UnusedTagsCleaner) Clean(ctx context.Context) error {
	_, err := c.Reconcile(ctx, nil)
	return err
}

// CleanCount implements CountingHousekeeper. On a dry run the count is the
// number of tags that would have been deleted.
func (c *UnusedTagsCleaner) CleanCount(ctx context.Context, dryRun bool) (int, error) {
	stats, err := c.Reconcile(ctx, &Options{DryRun: dryRun})
	if err != nil {
		return 0, err
	}
	return len(stats.Unused), nil
}

// Reconcile runs one pass:
//
//	All        = store.AllTagIDs
//	Referenced = ∪ source.ReferencedTagIDs
//	Unused     = All - Referenced
//
// and deletes Unused with a single DeleteTags call when it is non-empty.
// A failure in any source or in the store aborts the pass before the delete.
// Options may be nil.
func (c *UnusedTagsCleaner) Reconcile(ctx context.Context, opts *Options) (*Stats, error) {
	if opts == nil {
		opts = &Options{}
	}

	c.mu.RLock()
	sources := append([]TagReferenceSource(nil), c.sources...)
	metrics := c.metrics
	c.mu.RUnlock()

	stats := &Stats{DryRun: opts.DryRun}

	all, err := c.allTagIDs(ctx)
	if err != nil {
		return stats, err
	}
	stats.TagsScanned = all.Len()
	if metrics != nil {
		metrics.RecordTagsScanned(stats.TagsScanned)
	}

	if all.Len() == 0 {
		logger.DebugCtx(ctx, "Housekeeping: tag catalog is empty")
		return stats, nil
	}

	referenced, sourceStats, err := c.collectReferences(ctx, sources)
	if err != nil {
		return stats, err
	}
	stats.Sources = sourceStats
	stats.TagsReferenced = referenced.Len()

	unused := all.Difference(referenced)
	stats.Unused = unused.Sorted()

	logger.InfoCtx(ctx, "Housekeeping: scanned tags",
		logger.Count(stats.TagsScanned),
		logger.KeyReferenced, stats.TagsReferenced,
		logger.KeyTagIDs, stats.Unused,
		logger.DryRun(opts.DryRun))

	if len(stats.Unused) == 0 || opts.DryRun {
		return stats, nil
	}

	if err := c.deleteTags(ctx, stats.Unused); err != nil {
		return stats, err
	}
	stats.TagsDeleted = len(stats.Unused)
	if metrics != nil {
		metrics.RecordTagsDeleted(stats.TagsDeleted)
	}

	logger.InfoCtx(ctx, "Housekeeping: deleted unused tags", logger.Deleted(stats.TagsDeleted))
	return stats, nil
}

func (c *UnusedTagsCleaner) allTagIDs(ctx context.Context) (IDSet, error) {
	ctx, span := telemetry.StartStoreSpan(ctx, telemetry.SpanStoreAllTagIDs)
	defer span.End()

	ids, err := c.store.AllTagIDs(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("read tag ids: %w", err)
	}
	span.SetAttributes(telemetry.TagCount(len(ids)))
	return NewIDSet(ids...), nil
}

func (c *UnusedTagsCleaner) deleteTags(ctx context.Context, ids []uint) error {
	ctx, span := telemetry.StartStoreSpan(ctx, telemetry.SpanStoreDeleteTags, telemetry.TagCount(len(ids)))
	defer span.End()

	if err := c.store.DeleteTags(ctx, ids); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("delete unused tags: %w", err)
	}
	return nil
}

// collectReferences queries every source concurrently and unions the results.
// The first failure cancels the remaining queries.
func (c *UnusedTagsCleaner) collectReferences(ctx context.Context, sources []TagReferenceSource) (IDSet, []SourceStats, error) {
	results := make([]IDSet, len(sources))
	sourceStats := make([]SourceStats, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			name := src.Name()
			sctx, span := telemetry.StartSourceSpan(gctx, name)
			defer span.End()

			start := time.Now()
			ids, err := src.ReferencedTagIDs(sctx)
			if err == nil && ids == nil {
				ids = NewIDSet()
			}
			if err == nil {
				err = sctx.Err()
			}
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return &SourceError{Source: name, Err: err}
			}

			span.SetAttributes(telemetry.TagsReferenced(ids.Len()))
			results[i] = ids
			sourceStats[i] = SourceStats{Name: name, Referenced: ids.Len(), DurationMs: logger.Duration(start)}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var srcErr *SourceError
		if errors.As(err, &srcErr) {
			logger.ErrorCtx(ctx, "Housekeeping: tag reference source failed, no tags deleted",
				logger.SourceName(srcErr.Source), logger.Err(srcErr.Err))
		}
		return nil, nil, err
	}

	referenced := NewIDSet()
	for _, ids := range results {
		referenced.Union(ids)
	}
	return referenced, sourceStats, nil
}
