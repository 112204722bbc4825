package store

import (
	"context"
	"time"

	"github.com/marmos91/tagkeep/pkg/controlplane/models"
)

func (s *GORMStore) CreateHousekeepingRun(ctx context.Context, run *models.HousekeepingRun) (string, error) {
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if run.Status == "" {
		run.Status = models.RunStatusRunning
	}
	return createWithID(s.db, ctx, run, func(r *models.HousekeepingRun, id string) { r.ID = id }, run.ID, nil)
}

func (s *GORMStore) UpdateHousekeepingRun(ctx context.Context, run *models.HousekeepingRun) error {
	return updateFields(s.db, ctx, run.ID, run, models.ErrRunNotFound, nil,
		"Status", "DryRun", "Deleted", "Error", "FinishedAt")
}

func (s *GORMStore) GetHousekeepingRun(ctx context.Context, id string) (*models.HousekeepingRun, error) {
	return getByField[models.HousekeepingRun](s.db, ctx, "id", id, models.ErrRunNotFound)
}

func (s *GORMStore) ListHousekeepingRuns(ctx context.Context, limit int) ([]*models.HousekeepingRun, error) {
	runs := make([]*models.HousekeepingRun, 0)
	q := s.db.WithContext(ctx).Order("started_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

func (s *GORMStore) DeleteHousekeepingRunsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("started_at < ? AND status <> ?", cutoff, models.RunStatusRunning).
		Delete(&models.HousekeepingRun{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
