package models

import "time"

// RunStatus is the outcome of a housekeeping run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// IsValid checks if the status is a valid value.
func (s RunStatus) IsValid() bool {
	switch s {
	case RunStatusRunning, RunStatusSucceeded, RunStatusFailed:
		return true
	}
	return false
}

// HousekeepingRun records one execution of a housekeeping task.
type HousekeepingRun struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	Name       string     `gorm:"not null;size:64;index" json:"name"`
	Status     RunStatus  `gorm:"not null;size:16" json:"status"`
	DryRun     bool       `gorm:"not null;default:false" json:"dry_run"`
	Deleted    int        `gorm:"not null;default:0" json:"deleted"`
	Error      string     `gorm:"type:text" json:"error,omitempty"`
	StartedAt  time.Time  `gorm:"not null;index" json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// TableName returns the table name for HousekeepingRun.
func (HousekeepingRun) TableName() string {
	return "housekeeping_runs"
}

// Duration returns how long the run took, or zero while it is still running.
func (r *HousekeepingRun) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
