package flatten

import (
	"slices"
	"strings"

	"github.com/jacoelho/jtab/internal/cell"
	"github.com/jacoelho/jtab/internal/schema"
	"github.com/jacoelho/jtab/internal/value"
)

type keyState struct {
	children map[string]struct{}
	// terminal is set once the key itself held a non-null scalar or array.
	terminal bool
}

// Builder collects the tentative flat schema over a full scan.
type Builder struct {
	cfg    Config
	keys   *schema.Schema
	states map[string]*keyState
}

func NewBuilder(cfg Config) *Builder {
	return &Builder{
		cfg:    cfg,
		keys:   schema.New(),
		states: make(map[string]*keyState),
	}
}

// Add folds one record and returns its flattened entries so callers do not
// flatten twice.
func (b *Builder) Add(record value.Value) []Entry {
	b.keys.Observe(record)

	entries := Flatten(record, b.cfg)
	for _, e := range entries {
		st, ok := b.states[e.Key]
		if !ok {
			st = &keyState{children: make(map[string]struct{})}
			b.states[e.Key] = st
		}

		if e.Path != e.Key {
			st.children[e.Path] = struct{}{}
			continue
		}
		switch e.Cell.Kind {
		case cell.Null, cell.ObjectStub:
		default:
			st.terminal = true
		}
	}
	return entries
}

// Schema is the first-level key schema observed so far.
func (b *Builder) Schema() *schema.Schema { return b.keys }

// Build resolves conflicts and freezes the column layout. Each key
// occupies its position with either its sorted child block or itself; a
// key that was expanded in some rows and terminal in others also gets a
// dynamic column appended after every static one.
func (b *Builder) Build() *FlatSchema {
	fs := &FlatSchema{index: make(map[string]int)}

	var promoted []string
	for _, key := range b.keys.Columns() {
		st, ok := b.states[key]
		if !ok || len(st.children) == 0 {
			fs.add(key)
			continue
		}

		children := make([]string, 0, len(st.children))
		for child := range st.children {
			children = append(children, child)
		}
		slices.Sort(children)
		for _, child := range children {
			fs.add(child)
		}

		if st.terminal {
			promoted = append(promoted, key)
		}
	}

	fs.static = len(fs.columns)
	for _, key := range promoted {
		fs.add(key)
	}
	return fs
}

// FlatSchema is the frozen flattened column layout.
type FlatSchema struct {
	columns []string
	index   map[string]int
	static  int
}

func (fs *FlatSchema) add(name string) {
	if _, ok := fs.index[name]; ok {
		return
	}
	fs.index[name] = len(fs.columns)
	fs.columns = append(fs.columns, name)
}

func (fs *FlatSchema) Columns() []string {
	return append([]string(nil), fs.columns...)
}

// Dynamic returns the promoted columns.
func (fs *FlatSchema) Dynamic() []string {
	return append([]string(nil), fs.columns[fs.static:]...)
}

// Position returns the index of column name in the layout.
func (fs *FlatSchema) Position(name string) (int, bool) {
	i, ok := fs.index[name]
	return i, ok
}

// Row aligns entries to the layout. Columns without an entry are null.
func (fs *FlatSchema) Row(entries []Entry) []cell.Cell {
	row := make([]cell.Cell, len(fs.columns))
	for _, e := range entries {
		if i, ok := fs.index[e.Path]; ok {
			row[i] = e.Cell
		}
	}
	return row
}

// Expand lists columns under prefix in layout order. An empty prefix lists
// every column.
func (fs *FlatSchema) Expand(prefix string) []string {
	if prefix == "" {
		return fs.Columns()
	}

	want := prefix + "."
	var out []string
	for _, name := range fs.columns {
		if strings.HasPrefix(name, want) {
			out = append(out, name)
		}
	}
	return out
}
