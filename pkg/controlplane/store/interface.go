// Package store provides the catalog persistence layer.
//
// This package implements the Store interface for tags, the records that
// reference them (release profiles and auto-tagging rules) and the history
// of housekeeping runs.
//
// Two backends are supported:
//   - SQLite (single-node, default)
//   - PostgreSQL (HA-capable)
package store

import (
	"context"
	"time"

	"github.com/marmos91/tagkeep/pkg/controlplane/models"
)

// TagStore manages the tag catalog.
type TagStore interface {
	// GetTag returns a tag by ID.
	// Returns models.ErrTagNotFound if the tag doesn't exist.
	GetTag(ctx context.Context, id uint) (*models.Tag, error)

	// GetTagByLabel returns a tag by its normalized label.
	// Returns models.ErrTagNotFound if no tag has this label.
	GetTagByLabel(ctx context.Context, label string) (*models.Tag, error)

	// ListTags returns all tags ordered by ID.
	ListTags(ctx context.Context) ([]*models.Tag, error)

	// CreateTag creates a new tag and returns its assigned ID.
	// Returns models.ErrDuplicateTag if a tag with the same label exists.
	CreateTag(ctx context.Context, tag *models.Tag) (uint, error)

	// UpdateTag relabels an existing tag.
	// Returns models.ErrTagNotFound or models.ErrDuplicateTag.
	UpdateTag(ctx context.Context, tag *models.Tag) error

	// DeleteTag deletes a single tag.
	// Returns models.ErrTagNotFound if the tag doesn't exist.
	DeleteTag(ctx context.Context, id uint) error

	// AllTagIDs returns the IDs of every tag in the catalog.
	AllTagIDs(ctx context.Context) ([]uint, error)

	// DeleteTags removes all tags with the given IDs in one statement inside
	// one transaction. IDs that do not exist are ignored.
	DeleteTags(ctx context.Context, ids []uint) error

	// GetTagUsage returns the records referencing a tag.
	// Returns models.ErrTagNotFound if the tag doesn't exist.
	GetTagUsage(ctx context.Context, id uint) (*models.TagUsage, error)

	// ListTagUsage returns the usage of every tag ordered by tag ID.
	ListTagUsage(ctx context.Context) ([]*models.TagUsage, error)
}

// ReleaseProfileStore manages release profiles.
type ReleaseProfileStore interface {
	// GetReleaseProfile returns a release profile by ID.
	// Returns models.ErrReleaseProfileNotFound if it doesn't exist.
	GetReleaseProfile(ctx context.Context, id uint) (*models.ReleaseProfile, error)

	// ListReleaseProfiles returns all release profiles ordered by ID.
	ListReleaseProfiles(ctx context.Context) ([]*models.ReleaseProfile, error)

	// CreateReleaseProfile creates a release profile and returns its ID.
	CreateReleaseProfile(ctx context.Context, profile *models.ReleaseProfile) (uint, error)

	// UpdateReleaseProfile replaces the mutable fields of a release profile.
	// Returns models.ErrReleaseProfileNotFound if it doesn't exist.
	UpdateReleaseProfile(ctx context.Context, profile *models.ReleaseProfile) error

	// DeleteReleaseProfile deletes a release profile.
	// Returns models.ErrReleaseProfileNotFound if it doesn't exist.
	DeleteReleaseProfile(ctx context.Context, id uint) error
}

// AutoTagStore manages auto-tagging rules.
type AutoTagStore interface {
	// GetAutoTag returns an auto-tagging rule by ID.
	// Returns models.ErrAutoTagNotFound if it doesn't exist.
	GetAutoTag(ctx context.Context, id uint) (*models.AutoTag, error)

	// ListAutoTags returns all auto-tagging rules ordered by ID.
	ListAutoTags(ctx context.Context) ([]*models.AutoTag, error)

	// CreateAutoTag creates a rule and returns its ID.
	// Returns models.ErrDuplicateAutoTag if a rule with the same name exists.
	CreateAutoTag(ctx context.Context, autoTag *models.AutoTag) (uint, error)

	// UpdateAutoTag replaces the mutable fields of a rule.
	// Returns models.ErrAutoTagNotFound or models.ErrDuplicateAutoTag.
	UpdateAutoTag(ctx context.Context, autoTag *models.AutoTag) error

	// DeleteAutoTag deletes a rule.
	// Returns models.ErrAutoTagNotFound if it doesn't exist.
	DeleteAutoTag(ctx context.Context, id uint) error
}

// HousekeepingRunStore records housekeeping history.
type HousekeepingRunStore interface {
	// CreateHousekeepingRun records a new run and returns its ID.
	// The ID is generated if empty.
	CreateHousekeepingRun(ctx context.Context, run *models.HousekeepingRun) (string, error)

	// UpdateHousekeepingRun stores the outcome of a run.
	// Returns models.ErrRunNotFound if the run doesn't exist.
	UpdateHousekeepingRun(ctx context.Context, run *models.HousekeepingRun) error

	// GetHousekeepingRun returns a run by ID.
	// Returns models.ErrRunNotFound if the run doesn't exist.
	GetHousekeepingRun(ctx context.Context, id string) (*models.HousekeepingRun, error)

	// ListHousekeepingRuns returns the most recent runs, newest first.
	// A limit of zero or less returns every run.
	ListHousekeepingRuns(ctx context.Context, limit int) ([]*models.HousekeepingRun, error)

	// DeleteHousekeepingRunsBefore removes finished runs started before cutoff
	// and returns how many were removed.
	DeleteHousekeepingRunsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Store provides the full persistence interface.
//
// Thread Safety: Implementations must be safe for concurrent use from multiple
// goroutines.
type Store interface {
	TagStore
	ReleaseProfileStore
	AutoTagStore
	HousekeepingRunStore

	// Healthcheck verifies the database connection is usable.
	Healthcheck(ctx context.Context) error

	// Close releases the database connection.
	Close() error
}
