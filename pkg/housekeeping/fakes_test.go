package housekeeping

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/marmos91/tagkeep/pkg/controlplane/models"
)

// memTagStore is an in-memory TagStore that records delete calls.
type memTagStore struct {
	mu          sync.Mutex
	ids         IDSet
	deleteCalls [][]uint
	readErr     error
	deleteErr   error
}

func newMemTagStore(ids ...uint) *memTagStore {
	return &memTagStore{ids: NewIDSet(ids...)}
}

func (s *memTagStore) AllTagIDs(ctx context.Context) ([]uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, s.readErr
	}
	return s.ids.Sorted(), nil
}

func (s *memTagStore) DeleteTags(ctx context.Context, ids []uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteCalls = append(s.deleteCalls, slices.Clone(ids))
	if s.deleteErr != nil {
		return s.deleteErr
	}
	for _, id := range ids {
		delete(s.ids, id)
	}
	return nil
}

func (s *memTagStore) remaining() []uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ids.Sorted()
}

func (s *memTagStore) deletes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.deleteCalls)
}

type fakeProfiles struct {
	profiles []*models.ReleaseProfile
	err      error
}

func (f *fakeProfiles) ListReleaseProfiles(ctx context.Context) ([]*models.ReleaseProfile, error) {
	return f.profiles, f.err
}

type fakeAutoTags struct {
	rules []*models.AutoTag
	err   error
}

func (f *fakeAutoTags) ListAutoTags(ctx context.Context) ([]*models.AutoTag, error) {
	return f.rules, f.err
}

// fakeRecorder is an in-memory RunRecorder.
type fakeRecorder struct {
	mu        sync.Mutex
	runs      map[string]models.HousekeepingRun
	createErr error
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{runs: make(map[string]models.HousekeepingRun)}
}

func (r *fakeRecorder) CreateHousekeepingRun(ctx context.Context, run *models.HousekeepingRun) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return "", r.createErr
	}
	r.runs[run.ID] = *run
	return run.ID, nil
}

func (r *fakeRecorder) UpdateHousekeepingRun(ctx context.Context, run *models.HousekeepingRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.runs[run.ID]; !ok {
		return models.ErrRunNotFound
	}
	r.runs[run.ID] = *run
	return nil
}

func (r *fakeRecorder) get(id string) (models.HousekeepingRun, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	return run, ok
}

// fakeMetrics counts observations.
type fakeMetrics struct {
	mu      sync.Mutex
	runs    map[string]int
	failed  int
	scanned int
	deleted int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{runs: make(map[string]int)}
}

func (m *fakeMetrics) ObserveRun(name string, d time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[name]++
	if err != nil {
		m.failed++
	}
}

func (m *fakeMetrics) RecordTagsScanned(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scanned += n
}

func (m *fakeMetrics) RecordTagsDeleted(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted += n
}

// funcHousekeeper adapts a function to Housekeeper.
type funcHousekeeper struct {
	name string
	fn   func(ctx context.Context) error
}

func (h *funcHousekeeper) Name() string                    { return h.name }
func (h *funcHousekeeper) Clean(ctx context.Context) error { return h.fn(ctx) }

func tagSpec(name string, id uint) *models.TagSpecification {
	return &models.TagSpecification{SpecificationCommon: models.SpecificationCommon{Name: name}, Value: id}
}

func genreSpec(name string, genres ...string) *models.GenreSpecification {
	return &models.GenreSpecification{SpecificationCommon: models.SpecificationCommon{Name: name}, Value: genres}
}
