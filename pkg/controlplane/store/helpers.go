package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// getByField loads the first T where field = value.
func getByField[T any](db *gorm.DB, ctx context.Context, field string, value any, notFoundErr error) (*T, error) {
	var result T
	if err := db.WithContext(ctx).Where(field+" = ?", value).First(&result).Error; err != nil {
		return nil, convertNotFoundError(err, notFoundErr)
	}
	return &result, nil
}

// listAll returns every T ordered by orderBy, never nil.
func listAll[T any](db *gorm.DB, ctx context.Context, orderBy string) ([]*T, error) {
	results := make([]*T, 0)
	if err := db.WithContext(ctx).Order(orderBy).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// createRecord inserts entity, reporting unique violations as dupErr when set.
func createRecord[T any](db *gorm.DB, ctx context.Context, entity *T, dupErr error) error {
	if err := db.WithContext(ctx).Create(entity).Error; err != nil {
		if dupErr != nil && isUniqueConstraintError(err) {
			return dupErr
		}
		return err
	}
	return nil
}

// createWithID assigns a UUID through idSetter when currentID is empty,
// then inserts entity.
func createWithID[T any](db *gorm.DB, ctx context.Context, entity *T, idSetter func(*T, string), currentID string, dupErr error) (string, error) {
	id := currentID
	if id == "" {
		id = uuid.New().String()
		idSetter(entity, id)
	}
	if err := createRecord(db, ctx, entity, dupErr); err != nil {
		return "", err
	}
	return id, nil
}

// updateFields writes the named columns of the row with primary key id.
func updateFields[T any](db *gorm.DB, ctx context.Context, id any, entity *T, notFoundErr, dupErr error, fields ...string) error {
	var existing T
	if err := db.WithContext(ctx).Where("id = ?", id).First(&existing).Error; err != nil {
		return convertNotFoundError(err, notFoundErr)
	}

	err := db.WithContext(ctx).
		Model(&existing).
		Select(fields).
		Updates(entity).Error
	if err != nil && dupErr != nil && isUniqueConstraintError(err) {
		return dupErr
	}
	return err
}

// deleteByField removes rows where field = value; none removed is notFoundErr.
func deleteByField[T any](db *gorm.DB, ctx context.Context, field string, value any, notFoundErr error) error {
	var zero T
	result := db.WithContext(ctx).Where(field+" = ?", value).Delete(&zero)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFoundErr
	}
	return nil
}
