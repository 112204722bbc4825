package store

import (
	"context"

	"github.com/marmos91/tagkeep/pkg/controlplane/models"
)

func (s *GORMStore) GetReleaseProfile(ctx context.Context, id uint) (*models.ReleaseProfile, error) {
	return getByField[models.ReleaseProfile](s.db, ctx, "id", id, models.ErrReleaseProfileNotFound)
}

func (s *GORMStore) ListReleaseProfiles(ctx context.Context) ([]*models.ReleaseProfile, error) {
	return listAll[models.ReleaseProfile](s.db, ctx, "id")
}

func (s *GORMStore) CreateReleaseProfile(ctx context.Context, profile *models.ReleaseProfile) (uint, error) {
	if err := profile.Validate(); err != nil {
		return 0, err
	}
	if err := createRecord(s.db, ctx, profile, nil); err != nil {
		return 0, err
	}
	return profile.ID, nil
}

func (s *GORMStore) UpdateReleaseProfile(ctx context.Context, profile *models.ReleaseProfile) error {
	if err := profile.Validate(); err != nil {
		return err
	}
	return updateFields(s.db, ctx, profile.ID, profile,
		models.ErrReleaseProfileNotFound, nil,
		"Name", "Enabled", "Required", "Ignored", "Tags")
}

func (s *GORMStore) DeleteReleaseProfile(ctx context.Context, id uint) error {
	return deleteByField[models.ReleaseProfile](s.db, ctx, "id", id, models.ErrReleaseProfileNotFound)
}
