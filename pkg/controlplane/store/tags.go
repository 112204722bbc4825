package store

import (
	"context"
	"slices"

	"gorm.io/gorm"

	"github.com/marmos91/tagkeep/pkg/controlplane/models"
)

func (s *GORMStore) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	return getByField[models.Tag](s.db, ctx, "id", id, models.ErrTagNotFound)
}

func (s *GORMStore) GetTagByLabel(ctx context.Context, label string) (*models.Tag, error) {
	return getByField[models.Tag](s.db, ctx, "label", models.NormalizeTagLabel(label), models.ErrTagNotFound)
}

func (s *GORMStore) ListTags(ctx context.Context) ([]*models.Tag, error) {
	return listAll[models.Tag](s.db, ctx, "id")
}

func (s *GORMStore) CreateTag(ctx context.Context, tag *models.Tag) (uint, error) {
	if err := tag.Validate(); err != nil {
		return 0, err
	}
	if err := createRecord(s.db, ctx, tag, models.ErrDuplicateTag); err != nil {
		return 0, err
	}
	return tag.ID, nil
}

func (s *GORMStore) UpdateTag(ctx context.Context, tag *models.Tag) error {
	if err := tag.Validate(); err != nil {
		return err
	}
	return updateFields(s.db, ctx, tag.ID, tag, models.ErrTagNotFound, models.ErrDuplicateTag, "Label")
}

func (s *GORMStore) DeleteTag(ctx context.Context, id uint) error {
	return deleteByField[models.Tag](s.db, ctx, "id", id, models.ErrTagNotFound)
}

func (s *GORMStore) AllTagIDs(ctx context.Context) ([]uint, error) {
	ids := make([]uint, 0)
	if err := s.db.WithContext(ctx).Model(&models.Tag{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *GORMStore) DeleteTags(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Where("id IN ?", ids).Delete(&models.Tag{}).Error
	})
}

func (s *GORMStore) GetTagUsage(ctx context.Context, id uint) (*models.TagUsage, error) {
	tag, err := s.GetTag(ctx, id)
	if err != nil {
		return nil, err
	}
	usages, err := s.collectTagUsage(ctx, []*models.Tag{tag})
	if err != nil {
		return nil, err
	}
	return usages[0], nil
}

func (s *GORMStore) ListTagUsage(ctx context.Context) ([]*models.TagUsage, error) {
	tags, err := s.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	return s.collectTagUsage(ctx, tags)
}

// collectTagUsage resolves usage in memory because tag references live in
// JSON columns that cannot be queried portably across backends.
func (s *GORMStore) collectTagUsage(ctx context.Context, tags []*models.Tag) ([]*models.TagUsage, error) {
	profiles, err := s.ListReleaseProfiles(ctx)
	if err != nil {
		return nil, err
	}
	autoTags, err := s.ListAutoTags(ctx)
	if err != nil {
		return nil, err
	}

	usages := make([]*models.TagUsage, 0, len(tags))
	for _, tag := range tags {
		usage := &models.TagUsage{
			Tag:               tag,
			ReleaseProfileIDs: []uint{},
			AutoTagIDs:        []uint{},
		}
		for _, p := range profiles {
			if p.HasTag(tag.ID) {
				usage.ReleaseProfileIDs = append(usage.ReleaseProfileIDs, p.ID)
			}
		}
		for _, a := range autoTags {
			if slices.Contains(a.ReferencedTagIDs(), tag.ID) {
				usage.AutoTagIDs = append(usage.AutoTagIDs, a.ID)
			}
		}
		usages = append(usages, usage)
	}
	return usages, nil
}
