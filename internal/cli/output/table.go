package output

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// TableRenderer is implemented by list types the CLI prints as tables.
type TableRenderer interface {
	Headers() []string
	Rows() [][]string
}

// newPlainTable returns a writer in kubectl style: no borders, upper-cased
// headers, two-space gaps.
func newPlainTable(w io.Writer, headers []string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(headers)
	t.SetAutoFormatHeaders(true)
	t.SetAutoWrapText(false)
	t.SetBorder(false)
	t.SetHeaderLine(false)
	t.SetCenterSeparator("")
	t.SetColumnSeparator("")
	t.SetRowSeparator("")
	t.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	t.SetTablePadding("  ")
	t.SetNoWhiteSpace(true)
	return t
}

// PrintTable renders data to w. Rows must have one cell per header.
func PrintTable(w io.Writer, data TableRenderer) error {
	headers := data.Headers()
	rows := data.Rows()
	for i, row := range rows {
		if len(row) != len(headers) {
			return fmt.Errorf("table row %d has %d cells, want %d", i, len(row), len(headers))
		}
	}

	t := newPlainTable(w, headers)
	t.AppendBulk(rows)
	t.Render()
	return nil
}
