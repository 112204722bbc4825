package housekeeping

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/tagkeep/pkg/controlplane/models"
)

func TestRunner_RecordsEachHousekeeper(t *testing.T) {
	t.Parallel()

	tags := newMemTagStore(1, 2, 3)
	cleaner := newCleaner(tags, []*models.ReleaseProfile{{ID: 1, Tags: []uint{1}}}, nil)
	rec := newFakeRecorder()
	m := newFakeMetrics()

	var order []string
	second := &funcHousekeeper{name: "second", fn: func(ctx context.Context) error {
		order = append(order, "second")
		return nil
	}}

	r := NewRunner(rec, cleaner, second)
	r.SetMetrics(m)
	assert.Equal(t, []string{UnusedTagsName, "second"}, r.Names())

	runs, err := r.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, UnusedTagsName, runs[0].Name)
	assert.Equal(t, models.RunStatusSucceeded, runs[0].Status)
	assert.Equal(t, 2, runs[0].Deleted)
	assert.NotEmpty(t, runs[0].ID)
	require.NotNil(t, runs[0].FinishedAt)

	stored, ok := rec.get(runs[0].ID)
	require.True(t, ok)
	assert.Equal(t, models.RunStatusSucceeded, stored.Status)
	assert.Equal(t, 2, stored.Deleted)

	assert.Equal(t, []string{"second"}, order)
	assert.Equal(t, 1, m.runs[UnusedTagsName])
	assert.Equal(t, 1, m.runs["second"])
	assert.Equal(t, 0, m.failed)
}

func TestRunner_FailureDoesNotStopOthers(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	rec := newFakeRecorder()
	var ranSecond bool

	r := NewRunner(rec,
		&funcHousekeeper{name: "first", fn: func(ctx context.Context) error { return boom }},
		&funcHousekeeper{name: "second", fn: func(ctx context.Context) error {
			ranSecond = true
			return nil
		}},
	)

	runs, err := r.Run(context.Background(), RunOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "first")
	assert.True(t, ranSecond)

	require.Len(t, runs, 2)
	assert.Equal(t, models.RunStatusFailed, runs[0].Status)
	assert.Equal(t, "boom", runs[0].Error)
	assert.Equal(t, models.RunStatusSucceeded, runs[1].Status)

	stored, ok := rec.get(runs[0].ID)
	require.True(t, ok)
	assert.Equal(t, models.RunStatusFailed, stored.Status)
}

func TestRunner_Only(t *testing.T) {
	t.Parallel()

	calls := map[string]int{}
	hk := func(name string) Housekeeper {
		return &funcHousekeeper{name: name, fn: func(ctx context.Context) error {
			calls[name]++
			return nil
		}}
	}
	r := NewRunner(nil, hk("a"), hk("b"))

	run, err := r.RunOne(context.Background(), "b", false)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, "b", run.Name)
	assert.Equal(t, map[string]int{"b": 1}, calls)

	_, err = r.Run(context.Background(), RunOptions{Only: []string{"missing"}})
	assert.ErrorIs(t, err, ErrUnknownHousekeeper)
}

func TestRunner_DryRunSkipsNonCounting(t *testing.T) {
	t.Parallel()

	tags := newMemTagStore(1, 2)
	var ranPlain bool
	r := NewRunner(nil,
		newCleaner(tags, nil, nil),
		&funcHousekeeper{name: "plain", fn: func(ctx context.Context) error {
			ranPlain = true
			return nil
		}},
	)

	runs, err := r.Run(context.Background(), RunOptions{DryRun: true})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.True(t, runs[0].DryRun)
	assert.Equal(t, 2, runs[0].Deleted, "dry run reports the would-delete count")
	assert.False(t, ranPlain)
	assert.Equal(t, []uint{1, 2}, tags.remaining())
}

func TestRunner_RecorderFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	rec := newFakeRecorder()
	rec.createErr = errors.New("read-only database")
	r := NewRunner(rec, &funcHousekeeper{name: "ok", fn: func(ctx context.Context) error { return nil }})

	runs, err := r.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, models.RunStatusSucceeded, runs[0].Status)
}

func TestRunner_NoOverlap(t *testing.T) {
	t.Parallel()

	entered := make(chan struct{})
	release := make(chan struct{})
	r := NewRunner(nil, &funcHousekeeper{name: "slow", fn: func(ctx context.Context) error {
		close(entered)
		<-release
		return nil
	}})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := r.Run(context.Background(), RunOptions{})
		assert.NoError(t, err)
	}()

	<-entered
	_, err := r.Run(context.Background(), RunOptions{})
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(release)
	wg.Wait()
}

// ============================================================================
// Run history
// ============================================================================

type fakeRunHistory struct {
	cutoff time.Time
	n      int64
	err    error
	calls  int
}

func (f *fakeRunHistory) DeleteHousekeepingRunsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.calls++
	f.cutoff = cutoff
	return f.n, f.err
}

func TestRunHistoryCleaner(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeRunHistory{n: 4}
	c := NewRunHistoryCleaner(store, 7*24*time.Hour)
	c.now = func() time.Time { return now }

	n, err := c.CleanCount(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, now.Add(-7*24*time.Hour), store.cutoff)
	assert.Equal(t, RunHistoryName, c.Name())

	n, err = c.CleanCount(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 1, store.calls, "dry run does not delete")
}

func TestRunHistoryCleaner_Disabled(t *testing.T) {
	t.Parallel()

	store := &fakeRunHistory{}
	require.NoError(t, NewRunHistoryCleaner(store, 0).Clean(context.Background()))
	assert.Equal(t, 0, store.calls)
}

func TestRunHistoryCleaner_Error(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	c := NewRunHistoryCleaner(&fakeRunHistory{err: boom}, time.Hour)
	assert.ErrorIs(t, c.Clean(context.Background()), boom)
}
