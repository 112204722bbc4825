package models

import (
	"fmt"
	"strings"
	"time"
)

// Tag is a labeled catalog entry that other records reference by ID.
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Label     string    `gorm:"uniqueIndex;not null;size:255" json:"label"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for Tag.
func (Tag) TableName() string {
	return "tags"
}

// Validate checks that the tag has a usable label.
// Labels are normalized to lower case without surrounding whitespace.
func (t *Tag) Validate() error {
	t.Label = NormalizeTagLabel(t.Label)
	if t.Label == "" {
		return fmt.Errorf("%w: tag label is required", ErrValidation)
	}
	if len(t.Label) > 255 {
		return fmt.Errorf("%w: tag label must be at most 255 characters", ErrValidation)
	}
	return nil
}

// NormalizeTagLabel lower-cases and trims a tag label.
func NormalizeTagLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// TagUsage describes which records reference a tag.
type TagUsage struct {
	Tag               *Tag   `json:"tag"`
	ReleaseProfileIDs []uint `json:"release_profile_ids"`
	AutoTagIDs        []uint `json:"auto_tag_ids"`
}

// InUse reports whether any record references the tag.
func (u *TagUsage) InUse() bool {
	return len(u.ReleaseProfileIDs) > 0 || len(u.AutoTagIDs) > 0
}
