package table

import (
	"github.com/jacoelho/jtab/internal/cell"
	"github.com/jacoelho/jtab/internal/flatten"
	"github.com/jacoelho/jtab/internal/path"
	"github.com/jacoelho/jtab/internal/value"
)

// Layout maps records onto a fixed column list.
type Layout struct {
	columns []string
	getters []getter

	flat *flatten.FlatSchema
	cfg  flatten.Config
	// positions maps a selected column to its index in the flat schema, or
	// -1 when it is resolved by path instead.
	positions []int
}

type getter func(value.Value) (value.Value, bool)

// compileAll resolves column names to lookups. Names that are not valid
// paths, such as a key containing '[', come from the data itself and are
// looked up as literal keys.
func compileAll(columns []string) []getter {
	cache := path.NewCache()
	getters := make([]getter, len(columns))
	for i, col := range columns {
		p, err := cache.Compile(col)
		if err != nil || p.IsWildcard() {
			getters[i] = literal(col)
			continue
		}
		getters[i] = p.Get
	}
	return getters
}

func literal(key string) getter {
	return func(v value.Value) (value.Value, bool) {
		return v.Field(key)
	}
}

// NewLayout renders each column by path lookup. Nested values become
// placeholders.
func NewLayout(columns []string) *Layout {
	return &Layout{columns: columns, getters: compileAll(columns)}
}

// NewFlatLayout renders columns from the flattened record. Columns the flat
// schema does not know are resolved by path.
func NewFlatLayout(columns []string, fs *flatten.FlatSchema, cfg flatten.Config) *Layout {
	positions := make([]int, len(columns))
	for i, col := range columns {
		pos, ok := fs.Position(col)
		if !ok {
			pos = -1
		}
		positions[i] = pos
	}

	return &Layout{columns: columns, getters: compileAll(columns), flat: fs, cfg: cfg, positions: positions}
}

func (l *Layout) Columns() []string {
	return append([]string(nil), l.columns...)
}

// Row returns one cell per column. Missing values are null.
func (l *Layout) Row(record value.Value) []cell.Cell {
	row := make([]cell.Cell, len(l.columns))

	var full []cell.Cell
	if l.flat != nil {
		full = l.flat.Row(flatten.Flatten(record, l.cfg))
	}

	for i, get := range l.getters {
		if l.flat != nil && l.positions[i] >= 0 {
			row[i] = full[l.positions[i]]
			continue
		}

		v, ok := get(record)
		if !ok {
			continue
		}
		if l.flat != nil && v.IsArray() {
			row[i] = cell.NewArrayDisplay(flatten.DisplayArray(v, l.cfg.ArrayLimit))
			continue
		}
		row[i] = cell.FromValue(v)
	}
	return row
}
