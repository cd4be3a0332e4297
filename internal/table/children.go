package table

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/jacoelho/jtab/internal/cell"
	"github.com/jacoelho/jtab/internal/value"
)

const (
	// ParentColumn holds the position of the owning row in the parent table.
	ParentColumn = "_parent_row"
	// ValueColumn holds primitive array elements.
	ValueColumn = "value"
)

// ChildTable collects the nested values found under one top-level key.
type ChildTable struct {
	Name    string
	columns []string
	seen    map[string]struct{}
	rows    []childRow
}

type childRow struct {
	parent int
	v      value.Value
	// primitive rows only fill ValueColumn.
	primitive bool
}

func newChildTable(name string) *ChildTable {
	return &ChildTable{Name: name, seen: make(map[string]struct{})}
}

func (c *ChildTable) addColumn(name string) {
	if _, ok := c.seen[name]; ok {
		return
	}
	c.seen[name] = struct{}{}
	c.columns = append(c.columns, name)
}

func (c *ChildTable) addObject(parent int, v value.Value) {
	for _, m := range v.Members() {
		c.addColumn(m.Key)
	}
	c.rows = append(c.rows, childRow{parent: parent, v: v})
}

func (c *ChildTable) addElement(parent int, v value.Value) {
	if v.IsObject() {
		c.addObject(parent, v)
		return
	}
	c.addColumn(ValueColumn)
	c.rows = append(c.rows, childRow{parent: parent, v: v, primitive: true})
}

func (c *ChildTable) Len() int { return len(c.rows) }

// Table materialises the child rows, prefixed with ParentColumn. Columns a
// row lacks are null.
func (c *ChildTable) Table() *Table {
	t := &Table{
		Columns: append([]string{ParentColumn}, c.columns...),
		Rows:    make([][]cell.Cell, 0, len(c.rows)),
	}
	for _, r := range c.rows {
		row := make([]cell.Cell, 0, len(t.Columns))
		row = append(row, cell.NewNumber(strconv.Itoa(r.parent)))
		for _, col := range c.columns {
			row = append(row, r.cell(col))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func (r childRow) cell(col string) cell.Cell {
	if r.primitive {
		if col == ValueColumn {
			return cell.FromValue(r.v)
		}
		return cell.NewNull()
	}
	if v, ok := r.v.Field(col); ok {
		return cell.FromValue(v)
	}
	return cell.NewNull()
}

// Children splits the nested values of parent rows into one child table per
// top-level key. Each object value becomes one row; each array element
// becomes one row.
type Children struct {
	tables map[string]*ChildTable
}

func NewChildren() *Children {
	return &Children{tables: make(map[string]*ChildTable)}
}

// Add records the nested members of the record shown at parent.
func (c *Children) Add(parent int, record value.Value) {
	for _, m := range record.Members() {
		switch m.Value.Kind() {
		case value.KindObject:
			c.table(m.Key).addObject(parent, m.Value)
		case value.KindArray:
			t := c.table(m.Key)
			for _, item := range m.Value.Items() {
				t.addElement(parent, item)
			}
		}
	}
}

func (c *Children) table(name string) *ChildTable {
	t, ok := c.tables[name]
	if !ok {
		t = newChildTable(name)
		c.tables[name] = t
	}
	return t
}

// Tables returns the non-empty child tables ordered by name.
func (c *Children) Tables() []*ChildTable {
	out := make([]*ChildTable, 0, len(c.tables))
	for _, t := range c.tables {
		if t.Len() > 0 {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b *ChildTable) int { return cmp.Compare(a.Name, b.Name) })
	return out
}
