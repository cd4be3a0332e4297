// Package table assembles rows of cells from records and a column layout.
package table

import (
	"github.com/jacoelho/jtab/internal/path"
)

// Catalog is a source of known column names, such as a schema.
type Catalog interface {
	Columns() []string
	Expand(prefix string) []string
}

// Selector is a compiled, ordered column selection. Wildcards are expanded
// against a Catalog when the selection is resolved.
type Selector struct {
	paths []*path.Path
}

// NewSelector compiles columns eagerly so malformed paths fail before any
// record is read. An empty list selects every column.
func NewSelector(columns []string) (*Selector, error) {
	cache := path.NewCache()
	s := &Selector{paths: make([]*path.Path, 0, len(columns))}
	for _, col := range columns {
		p, err := cache.Compile(col)
		if err != nil {
			return nil, err
		}
		s.paths = append(s.paths, p)
	}
	return s, nil
}

func (s *Selector) IsEmpty() bool { return s == nil || len(s.paths) == 0 }

// Resolve returns the concrete column names in selection order.
func (s *Selector) Resolve(c Catalog) []string {
	if s.IsEmpty() {
		return c.Columns()
	}

	var out []string
	for _, p := range s.paths {
		if p.IsWildcard() {
			out = append(out, c.Expand(p.Prefix())...)
			continue
		}
		out = append(out, p.String())
	}
	return out
}
