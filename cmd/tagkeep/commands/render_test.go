package commands

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/tagkeep/internal/cli/output"
	"github.com/marmos91/tagkeep/pkg/controlplane/models"
)

func TestTagListRows(t *testing.T) {
	t.Parallel()

	list := tagList{
		{Tag: &models.Tag{ID: 1, Label: "anime"}, ReleaseProfileIDs: []uint{3, 7}},
		{Tag: &models.Tag{ID: 2, Label: "orphan"}},
	}

	rows := list.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"1", "anime", "3,7", "-", "yes"}, rows[0])
	assert.Equal(t, []string{"2", "orphan", "-", "-", "no"}, rows[1])
	assert.Len(t, list.Headers(), len(rows[0]))
}

func TestRunListRows(t *testing.T) {
	t.Parallel()

	started := time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC)
	finished := started.Add(1500 * time.Millisecond)
	list := runList{
		{Name: "unused_tags", Status: models.RunStatusSucceeded, Deleted: 4, StartedAt: started, FinishedAt: &finished},
		{Name: "run_history", Status: models.RunStatusFailed, DryRun: true, Error: "boom", StartedAt: started},
	}

	rows := list.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"unused_tags", "succeeded", "no", "4", "1s", ""}, rows[0])
	assert.Equal(t, []string{"run_history", "failed", "yes", "0", "0s", "boom"}, rows[1])
}

func TestPrintTagListFormats(t *testing.T) {
	t.Parallel()

	list := tagList{{Tag: &models.Tag{ID: 9, Label: "hdr"}, AutoTagIDs: []uint{1}}}

	var table bytes.Buffer
	require.NoError(t, output.NewPrinter(&table, output.FormatTable, false).Print(list))
	assert.Contains(t, table.String(), "LABEL")
	assert.Contains(t, table.String(), "hdr")

	var js bytes.Buffer
	require.NoError(t, output.NewPrinter(&js, output.FormatJSON, false).Print(list))
	assert.Contains(t, js.String(), `"label": "hdr"`)
	assert.Contains(t, js.String(), `"auto_tag_ids": [`)
}
