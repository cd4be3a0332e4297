package table

import (
	"github.com/jacoelho/jtab/internal/cell"
	"github.com/jacoelho/jtab/internal/formatter"
)

// Table is a fully materialised result.
type Table struct {
	Columns []string
	Rows    [][]cell.Cell
}

// Render writes the table through f.
func (t *Table) Render(f formatter.Formatter) error {
	if err := f.Begin(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := f.Row(row); err != nil {
			return err
		}
	}
	return f.End()
}
