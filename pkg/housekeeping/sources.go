package housekeeping

import (
	"context"
	"fmt"

	"github.com/marmos91/tagkeep/internal/telemetry"
	"github.com/marmos91/tagkeep/pkg/controlplane/models"
)

// Source names reported in logs, stats and errors.
const (
	SourceReleaseProfiles = "release_profiles"
	SourceAutoTagging     = "auto_tagging"
)

// TagReferenceSource reports the tag IDs referenced by one kind of record.
//
// Implementations must be read-only and safe to call concurrently with other
// sources. A source that cannot produce its complete set must return an
// error; returning a partial set would let the cleaner delete tags that are
// still in use.
type TagReferenceSource interface {
	// Name identifies the source in logs and errors.
	Name() string

	// ReferencedTagIDs returns every tag ID the source's records reference.
	ReferencedTagIDs(ctx context.Context) (IDSet, error)
}

// SourceError reports which source failed during a pass.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("tag reference source %q: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// ReleaseProfileLister lists release profiles.
type ReleaseProfileLister interface {
	ListReleaseProfiles(ctx context.Context) ([]*models.ReleaseProfile, error)
}

// AutoTagLister lists auto-tagging rules.
type AutoTagLister interface {
	ListAutoTags(ctx context.Context) ([]*models.AutoTag, error)
}

// ReleaseProfileSource reports the tags of every release profile, enabled or
// not.
type ReleaseProfileSource struct {
	profiles ReleaseProfileLister
}

// NewReleaseProfileSource creates a source backed by the given lister.
func NewReleaseProfileSource(profiles ReleaseProfileLister) *ReleaseProfileSource {
	return &ReleaseProfileSource{profiles: profiles}
}

func (s *ReleaseProfileSource) Name() string { return SourceReleaseProfiles }

func (s *ReleaseProfileSource) ReferencedTagIDs(ctx context.Context) (IDSet, error) {
	ctx, span := telemetry.StartStoreSpan(ctx, telemetry.SpanStoreListProfiles)
	defer span.End()

	profiles, err := s.profiles.ListReleaseProfiles(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list release profiles: %w", err)
	}

	ids := NewIDSet()
	for _, p := range profiles {
		ids.Add(p.Tags...)
	}
	return ids, nil
}

// AutoTaggingSource reports the tags used by auto-tagging rules: the tags a
// rule applies, and the tags matched by its tag-reference specifications.
// Specifications without a tag reference contribute nothing.
type AutoTaggingSource struct {
	autoTags AutoTagLister
}

// NewAutoTaggingSource creates a source backed by the given lister.
func NewAutoTaggingSource(autoTags AutoTagLister) *AutoTaggingSource {
	return &AutoTaggingSource{autoTags: autoTags}
}

func (s *AutoTaggingSource) Name() string { return SourceAutoTagging }

func (s *AutoTaggingSource) ReferencedTagIDs(ctx context.Context) (IDSet, error) {
	ctx, span := telemetry.StartStoreSpan(ctx, telemetry.SpanStoreListAutoTags)
	defer span.End()

	rules, err := s.autoTags.ListAutoTags(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list auto tags: %w", err)
	}

	ids := NewIDSet()
	for _, rule := range rules {
		ids.Add(rule.ReferencedTagIDs()...)
	}
	return ids, nil
}

// SourceFunc adapts a function to TagReferenceSource.
type SourceFunc struct {
	SourceName string
	Fn         func(ctx context.Context) (IDSet, error)
}

func (s SourceFunc) Name() string { return s.SourceName }

func (s SourceFunc) ReferencedTagIDs(ctx context.Context) (IDSet, error) {
	return s.Fn(ctx)
}
