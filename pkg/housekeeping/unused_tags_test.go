package housekeeping

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/tagkeep/pkg/controlplane/models"
)

func newCleaner(tags *memTagStore, profiles []*models.ReleaseProfile, rules []*models.AutoTag) *UnusedTagsCleaner {
	return NewUnusedTagsCleaner(tags,
		NewReleaseProfileSource(&fakeProfiles{profiles: profiles}),
		NewAutoTaggingSource(&fakeAutoTags{rules: rules}),
	)
}

// ============================================================================
// Scenarios
// ============================================================================

func TestUnusedTagsCleaner_Scenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		profiles []*models.ReleaseProfile
		rules    []*models.AutoTag
		want     []uint
	}{
		{
			name: "nothing referenced",
			want: []uint{},
		},
		{
			name:     "release profile references one tag",
			profiles: []*models.ReleaseProfile{{ID: 1, Tags: []uint{1}}},
			want:     []uint{1},
		},
		{
			name: "auto tag with tag and unrelated specification",
			rules: []*models.AutoTag{{
				ID:             1,
				Specifications: models.SpecificationList{tagSpec("tagged", 1), genreSpec("rock", "rock")},
			}},
			want: []uint{1},
		},
		{
			name:     "double reference",
			profiles: []*models.ReleaseProfile{{ID: 1, Tags: []uint{1}}},
			rules: []*models.AutoTag{{
				ID:             1,
				Specifications: models.SpecificationList{tagSpec("tagged", 1)},
			}},
			want: []uint{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tags := newMemTagStore(1, 2)
			c := newCleaner(tags, tt.profiles, tt.rules)

			require.NoError(t, c.Clean(context.Background()))
			assert.Equal(t, tt.want, tags.remaining())
			assert.Equal(t, 1, tags.deletes(), "exactly one bulk delete")
		})
	}
}

// ============================================================================
// Properties
// ============================================================================

func TestUnusedTagsCleaner_SafetyAndCompleteness(t *testing.T) {
	t.Parallel()

	tags := newMemTagStore(1, 2, 3, 4, 5, 6, 7, 8)
	profiles := []*models.ReleaseProfile{
		{ID: 1, Tags: []uint{2, 2}},
		{ID: 2, Enabled: false, Tags: []uint{5}},
	}
	rules := []*models.AutoTag{
		{ID: 1, Tags: []uint{7}, Specifications: models.SpecificationList{
			&models.MonitoredSpecification{SpecificationCommon: models.SpecificationCommon{Name: "monitored"}},
			tagSpec("a", 3),
			tagSpec("b", 42),
		}},
	}

	stats, err := newCleaner(tags, profiles, rules).Reconcile(context.Background(), nil)
	require.NoError(t, err)

	referenced := NewIDSet(2, 5, 3, 7, 42)
	for _, id := range []uint{1, 2, 3, 4, 5, 6, 7, 8} {
		if referenced.Contains(id) {
			assert.Contains(t, tags.remaining(), id, "referenced tag %d must survive", id)
		} else {
			assert.NotContains(t, tags.remaining(), id, "unreferenced tag %d must be deleted", id)
		}
	}

	assert.Equal(t, 8, stats.TagsScanned)
	assert.Equal(t, 5, stats.TagsReferenced)
	assert.Equal(t, []uint{1, 4, 6, 8}, stats.Unused)
	assert.Equal(t, 4, stats.TagsDeleted)
	require.Len(t, stats.Sources, 2)
	assert.Equal(t, SourceReleaseProfiles, stats.Sources[0].Name)
	assert.Equal(t, 2, stats.Sources[0].Referenced)
	assert.Equal(t, SourceAutoTagging, stats.Sources[1].Name)
	assert.Equal(t, 3, stats.Sources[1].Referenced)
}

func TestUnusedTagsCleaner_Idempotent(t *testing.T) {
	t.Parallel()

	tags := newMemTagStore(1, 2, 3)
	c := newCleaner(tags, []*models.ReleaseProfile{{ID: 1, Tags: []uint{2}}}, nil)
	ctx := context.Background()

	require.NoError(t, c.Clean(ctx))
	after := tags.remaining()

	stats, err := c.Reconcile(ctx, nil)
	require.NoError(t, err)

	assert.Equal(t, after, tags.remaining())
	assert.Equal(t, 0, stats.TagsDeleted)
	assert.Equal(t, 1, tags.deletes(), "second pass must not write")
}

func TestUnusedTagsCleaner_ResolverTotality(t *testing.T) {
	t.Parallel()

	unknown := &models.UnknownSpecification{Kind: "FutureSpecification", Raw: json.RawMessage(`{"implementation":"FutureSpecification"}`)}
	rules := []*models.AutoTag{
		{ID: 1},
		{ID: 2, Specifications: models.SpecificationList{genreSpec("g", "jazz"), unknown}},
		{ID: 3, Specifications: models.SpecificationList{tagSpec("empty payload", 0)}},
		{ID: 4, Specifications: models.SpecificationList{
			&models.RootFolderSpecification{SpecificationCommon: models.SpecificationCommon{Name: "root"}, Value: "/music"},
		}},
	}

	ids, err := NewAutoTaggingSource(&fakeAutoTags{rules: rules}).ReferencedTagIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, ids.Len())
}

func TestAutoTaggingSource_DecodedSpecifications(t *testing.T) {
	t.Parallel()

	var specs models.SpecificationList
	require.NoError(t, json.Unmarshal([]byte(`[
		{"implementation":"TagSpecification","name":"n","value":"9"},
		{"implementation":"TagSpecification","name":"bad","value":"x"},
		{"implementation":"GenreSpecification","name":"g","value":["pop"]},
		{"implementation":"Whatever","name":"w","value":{"a":1}},
		17
	]`), &specs))

	ids, err := NewAutoTaggingSource(&fakeAutoTags{rules: []*models.AutoTag{{ID: 1, Specifications: specs}}}).
		ReferencedTagIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []uint{9}, ids.Sorted())
}

func TestReleaseProfileSource_Empty(t *testing.T) {
	t.Parallel()

	ids, err := NewReleaseProfileSource(&fakeProfiles{}).ReferencedTagIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, ids.Len())
}

// ============================================================================
// Failures
// ============================================================================

func TestUnusedTagsCleaner_SourceFailureAborts(t *testing.T) {
	t.Parallel()

	boom := errors.New("database is locked")
	tags := newMemTagStore(1, 2)
	c := NewUnusedTagsCleaner(tags,
		NewReleaseProfileSource(&fakeProfiles{}),
		NewAutoTaggingSource(&fakeAutoTags{err: boom}),
	)

	err := c.Clean(context.Background())
	require.Error(t, err)

	var srcErr *SourceError
	require.True(t, errors.As(err, &srcErr))
	assert.Equal(t, SourceAutoTagging, srcErr.Source)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, 0, tags.deletes(), "no delete after a source failure")
	assert.Equal(t, []uint{1, 2}, tags.remaining())
}

func TestUnusedTagsCleaner_StoreReadFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection refused")
	tags := newMemTagStore(1)
	tags.readErr = boom

	var queried atomic.Bool
	c := NewUnusedTagsCleaner(tags, SourceFunc{
		SourceName: "probe",
		Fn: func(ctx context.Context) (IDSet, error) {
			queried.Store(true)
			return NewIDSet(), nil
		},
	})

	err := c.Clean(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.False(t, queried.Load(), "sources are not queried when the catalog read fails")
	assert.Equal(t, 0, tags.deletes())
}

func TestUnusedTagsCleaner_DeleteFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk full")
	tags := newMemTagStore(1, 2)
	tags.deleteErr = boom
	c := newCleaner(tags, nil, nil)

	stats, err := c.Reconcile(context.Background(), nil)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, stats.TagsDeleted)

	// The next pass re-derives the unused set and succeeds.
	tags.deleteErr = nil
	require.NoError(t, c.Clean(context.Background()))
	assert.Empty(t, tags.remaining())
}

func TestUnusedTagsCleaner_CancelledContext(t *testing.T) {
	t.Parallel()

	tags := newMemTagStore(1, 2)
	ctx, cancel := context.WithCancel(context.Background())

	c := NewUnusedTagsCleaner(tags, SourceFunc{
		SourceName: "slow",
		Fn: func(ctx context.Context) (IDSet, error) {
			cancel()
			return NewIDSet(1), nil
		},
	})

	err := c.Clean(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, tags.deletes())
}

// ============================================================================
// Options and registration
// ============================================================================

func TestUnusedTagsCleaner_DryRun(t *testing.T) {
	t.Parallel()

	tags := newMemTagStore(1, 2, 3)
	c := newCleaner(tags, []*models.ReleaseProfile{{ID: 1, Tags: []uint{3}}}, nil)

	stats, err := c.Reconcile(context.Background(), &Options{DryRun: true})
	require.NoError(t, err)

	assert.True(t, stats.DryRun)
	assert.Equal(t, []uint{1, 2}, stats.Unused)
	assert.Equal(t, 0, stats.TagsDeleted)
	assert.Equal(t, 0, tags.deletes())

	n, err := c.CleanCount(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []uint{1, 2, 3}, tags.remaining())
}

func TestUnusedTagsCleaner_EmptyCatalog(t *testing.T) {
	t.Parallel()

	var queried atomic.Bool
	tags := newMemTagStore()
	c := NewUnusedTagsCleaner(tags, SourceFunc{
		SourceName: "probe",
		Fn: func(ctx context.Context) (IDSet, error) {
			queried.Store(true)
			return nil, nil
		},
	})

	stats, err := c.Reconcile(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TagsScanned)
	assert.False(t, queried.Load())
	assert.Equal(t, 0, tags.deletes())
}

func TestUnusedTagsCleaner_Register(t *testing.T) {
	t.Parallel()

	tags := newMemTagStore(1, 2, 3)
	c := NewUnusedTagsCleaner(tags)
	c.Register(nil, SourceFunc{
		SourceName: "notifications",
		Fn: func(ctx context.Context) (IDSet, error) {
			return NewIDSet(2), nil
		},
	})

	assert.Equal(t, []string{"notifications"}, c.Sources())
	assert.Equal(t, UnusedTagsName, c.Name())

	require.NoError(t, c.Clean(context.Background()))
	assert.Equal(t, []uint{2}, tags.remaining())
}

func TestUnusedTagsCleaner_NilSourceResult(t *testing.T) {
	t.Parallel()

	tags := newMemTagStore(1)
	c := NewUnusedTagsCleaner(tags, SourceFunc{
		SourceName: "nil",
		Fn:         func(ctx context.Context) (IDSet, error) { return nil, nil },
	})

	require.NoError(t, c.Clean(context.Background()))
	assert.Empty(t, tags.remaining())
}

func TestUnusedTagsCleaner_Metrics(t *testing.T) {
	t.Parallel()

	tags := newMemTagStore(1, 2, 3)
	c := newCleaner(tags, []*models.ReleaseProfile{{ID: 1, Tags: []uint{1}}}, nil)
	m := newFakeMetrics()
	c.SetMetrics(m)

	require.NoError(t, c.Clean(context.Background()))
	assert.Equal(t, 3, m.scanned)
	assert.Equal(t, 2, m.deleted)
}
