package models

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// AutoTag is an auto-tagging rule: when every required specification matches
// (and at least one of the optional ones), the rule applies Tags to the item.
type AutoTag struct {
	ID                      uint              `gorm:"primaryKey" json:"id"`
	Name                    string            `gorm:"uniqueIndex;not null;size:255" json:"name"`
	RemoveTagsAutomatically bool              `gorm:"not null;default:false" json:"remove_tags_automatically"`
	Tags                    []uint            `gorm:"serializer:json;type:text" json:"tags"`
	Specifications          SpecificationList `gorm:"type:text" json:"specifications"`
	CreatedAt               time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt               time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for AutoTag.
func (AutoTag) TableName() string {
	return "auto_tags"
}

// Validate checks the rule before it is written. Unknown specification
// variants are accepted when read back from storage but never written.
func (a *AutoTag) Validate() error {
	a.Name = strings.TrimSpace(a.Name)
	if a.Name == "" {
		return fmt.Errorf("%w: auto tag name is required", ErrValidation)
	}
	if len(a.Specifications) == 0 {
		return fmt.Errorf("%w: auto tag must have at least one specification", ErrInvalidSpecification)
	}
	for _, spec := range a.Specifications {
		if err := ValidateSpecification(spec); err != nil {
			return err
		}
	}
	a.Tags = DedupeTagIDs(a.Tags)
	return nil
}

// ReferencedTagIDs returns every tag the rule depends on: the tags it applies
// and the tags its specifications match on. The result is sorted and unique.
func (a *AutoTag) ReferencedTagIDs() []uint {
	ids := slices.Concat(a.Tags, a.Specifications.TagIDs())
	return DedupeTagIDs(ids)
}
