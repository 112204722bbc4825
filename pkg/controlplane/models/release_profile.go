package models

import (
	"fmt"
	"slices"
	"time"
)

// ReleaseProfile restricts which releases are accepted for the tagged items.
// Tags holds the IDs of the tags the profile applies to; an empty list means
// the profile applies to everything.
type ReleaseProfile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255" json:"name"`
	Enabled   bool      `gorm:"not null;default:true" json:"enabled"`
	Required  []string  `gorm:"serializer:json;type:text" json:"required"`
	Ignored   []string  `gorm:"serializer:json;type:text" json:"ignored"`
	Tags      []uint    `gorm:"serializer:json;type:text" json:"tags"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for ReleaseProfile.
func (ReleaseProfile) TableName() string {
	return "release_profiles"
}

// Validate checks the profile and normalizes its tag list.
func (p *ReleaseProfile) Validate() error {
	if len(p.Required) == 0 && len(p.Ignored) == 0 {
		return fmt.Errorf("%w: release profile must have at least one required or ignored term", ErrValidation)
	}
	p.Tags = DedupeTagIDs(p.Tags)
	return nil
}

// HasTag reports whether the profile references the given tag.
func (p *ReleaseProfile) HasTag(id uint) bool {
	return slices.Contains(p.Tags, id)
}

// DedupeTagIDs returns the IDs sorted, without duplicates and without the zero ID.
func DedupeTagIDs(ids []uint) []uint {
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id != 0 {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
