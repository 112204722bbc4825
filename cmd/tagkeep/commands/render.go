package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/marmos91/tagkeep/internal/cli/timeutil"
	"github.com/marmos91/tagkeep/pkg/controlplane/models"
)

// tagList renders tag usage as a table.
type tagList []*models.TagUsage

func (l tagList) Headers() []string {
	return []string{"ID", "Label", "Release Profiles", "Auto Tags", "In Use"}
}

func (l tagList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, u := range l {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(u.Tag.ID), 10),
			u.Tag.Label,
			joinIDs(u.ReleaseProfileIDs),
			joinIDs(u.AutoTagIDs),
			yesNo(u.InUse()),
		})
	}
	return rows
}

// unusedList renders the tags a pass would delete.
type unusedList []*models.Tag

func (l unusedList) Headers() []string {
	return []string{"ID", "Label", "Created"}
}

func (l unusedList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, t := range l {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(t.ID), 10),
			t.Label,
			timeutil.FormatTime(t.CreatedAt),
		})
	}
	return rows
}

// runList renders housekeeping runs.
type runList []*models.HousekeepingRun

func (l runList) Headers() []string {
	return []string{"Housekeeper", "Status", "Dry Run", "Deleted", "Duration", "Error"}
}

func (l runList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, r := range l {
		rows = append(rows, []string{
			r.Name,
			string(r.Status),
			yesNo(r.DryRun),
			strconv.Itoa(r.Deleted),
			timeutil.FormatDuration(r.Duration()),
			r.Error,
		})
	}
	return rows
}

func joinIDs(ids []uint) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ",")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
