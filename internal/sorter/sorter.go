// Package sorter orders records by one or more compiled paths.
package sorter

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jacoelho/jtab/internal/ordering"
	"github.com/jacoelho/jtab/internal/path"
	"github.com/jacoelho/jtab/internal/value"
)

// ErrInvalidSortKey reports a sort key that cannot be used.
var ErrInvalidSortKey = errors.New("invalid sort key")

// Key is a compiled sort column with its direction.
type Key struct {
	Path       *path.Path
	Descending bool
}

func (k Key) String() string {
	if k.Descending {
		return "-" + k.Path.String()
	}
	return k.Path.String()
}

// ParseKey compiles "col" (ascending) or "-col" (descending).
func ParseKey(raw string) (Key, error) {
	if raw == "" {
		return Key{}, fmt.Errorf("%w: empty sort key", ErrInvalidSortKey)
	}

	column, descending := strings.CutPrefix(raw, "-")
	if column == "" {
		return Key{}, fmt.Errorf("%w: empty column name in %q", ErrInvalidSortKey, raw)
	}

	p, err := path.Compile(column)
	if err != nil {
		return Key{}, err
	}
	if p.IsWildcard() {
		return Key{}, fmt.Errorf("%w: wildcard %q cannot be sorted on", ErrInvalidSortKey, raw)
	}

	return Key{Path: p, Descending: descending}, nil
}

func ParseKeys(raw []string) ([]Key, error) {
	keys := make([]Key, 0, len(raw))
	for _, r := range raw {
		k, err := ParseKey(r)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// Sorter compares records key by key, left to right.
type Sorter struct {
	keys []Key
}

func New(keys []Key) *Sorter {
	return &Sorter{keys: keys}
}

func (s *Sorter) Keys() []Key { return s.keys }

// Extract resolves every key against record. Missing values are null.
func (s *Sorter) Extract(record value.Value) []value.Value {
	out := make([]value.Value, len(s.keys))
	for i, k := range s.keys {
		if v, ok := k.Path.Get(record); ok {
			out[i] = v
		}
	}
	return out
}

// CompareKeys compares two tuples produced by Extract. Nulls sort last in
// either direction; the direction reverses everything else.
func (s *Sorter) CompareKeys(a, b []value.Value) int {
	for i, k := range s.keys {
		aNull, bNull := a[i].IsNull(), b[i].IsNull()
		switch {
		case aNull && bNull:
			continue
		case aNull:
			return 1
		case bNull:
			return -1
		}

		c := ordering.Compare(a[i], b[i])
		if k.Descending {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

func (s *Sorter) Compare(a, b value.Value) int {
	return s.CompareKeys(s.Extract(a), s.Extract(b))
}

// Sort orders records in place. Equal records keep their input order.
func (s *Sorter) Sort(records []value.Value) {
	if len(s.keys) == 0 {
		return
	}
	slices.SortStableFunc(records, s.Compare)
}

// SortIndices returns the stable sorted order of tuples without moving
// them. tuples[i] must come from Extract.
func (s *Sorter) SortIndices(tuples [][]value.Value) []int {
	indices := make([]int, len(tuples))
	for i := range indices {
		indices[i] = i
	}
	if len(s.keys) == 0 {
		return indices
	}

	slices.SortStableFunc(indices, func(i, j int) int {
		return s.CompareKeys(tuples[i], tuples[j])
	})
	return indices
}
