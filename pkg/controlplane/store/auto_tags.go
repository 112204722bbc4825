package store

import (
	"context"

	"github.com/marmos91/tagkeep/pkg/controlplane/models"
)

func (s *GORMStore) GetAutoTag(ctx context.Context, id uint) (*models.AutoTag, error) {
	return getByField[models.AutoTag](s.db, ctx, "id", id, models.ErrAutoTagNotFound)
}

func (s *GORMStore) ListAutoTags(ctx context.Context) ([]*models.AutoTag, error) {
	return listAll[models.AutoTag](s.db, ctx, "id")
}

func (s *GORMStore) CreateAutoTag(ctx context.Context, autoTag *models.AutoTag) (uint, error) {
	if err := autoTag.Validate(); err != nil {
		return 0, err
	}
	if err := createRecord(s.db, ctx, autoTag, models.ErrDuplicateAutoTag); err != nil {
		return 0, err
	}
	return autoTag.ID, nil
}

func (s *GORMStore) UpdateAutoTag(ctx context.Context, autoTag *models.AutoTag) error {
	if err := autoTag.Validate(); err != nil {
		return err
	}
	return updateFields(s.db, ctx, autoTag.ID, autoTag,
		models.ErrAutoTagNotFound, models.ErrDuplicateAutoTag,
		"Name", "RemoveTagsAutomatically", "Tags", "Specifications")
}

func (s *GORMStore) DeleteAutoTag(ctx context.Context, id uint) error {
	return deleteByField[models.AutoTag](s.db, ctx, "id", id, models.ErrAutoTagNotFound)
}
