// Package schema infers an append-only column schema from a record stream.
package schema

import (
	"slices"
	"strings"

	"github.com/jacoelho/jtab/internal/value"
)

// ColumnType is the merged type classification of a column.
type ColumnType uint8

const (
	TypeNull ColumnType = iota
	TypeBool
	TypeNumber
	TypeString
	TypeArray
	TypeObject
	TypeMixed
)

func (t ColumnType) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeBool:
		return "bool"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeArray:
		return "array"
	case TypeObject:
		return "object"
	}
	return "mixed"
}

// TypeOf classifies a single observed value.
func TypeOf(v value.Value) ColumnType {
	switch v.Kind() {
	case value.KindBool:
		return TypeBool
	case value.KindNumber:
		return TypeNumber
	case value.KindString:
		return TypeString
	case value.KindArray:
		return TypeArray
	case value.KindObject:
		return TypeObject
	}
	return TypeNull
}

// Merge combines two observations: null is absorbed, identical types stay,
// anything else is mixed.
func (t ColumnType) Merge(other ColumnType) ColumnType {
	switch {
	case t == other:
		return t
	case t == TypeNull:
		return other
	case other == TypeNull:
		return t
	}
	return TypeMixed
}

// Column is the metadata kept per column name.
type Column struct {
	Name string
	Type ColumnType
	// Expandable is set once an object or array value was observed.
	Expandable bool
	// Children are the keys seen inside object values, first-seen order.
	Children []string
}

// Schema is the union of observed columns. Columns are never removed or
// reordered once added.
type Schema struct {
	order   []string
	columns map[string]*Column
	frozen  bool
}

func New() *Schema {
	return &Schema{columns: make(map[string]*Column)}
}

// AddColumn records an observation of name with type t.
func (s *Schema) AddColumn(name string, t ColumnType) {
	col, ok := s.columns[name]
	if !ok {
		col = &Column{Name: name, Type: t}
		s.columns[name] = col
		s.order = append(s.order, name)
	} else {
		col.Type = col.Type.Merge(t)
	}

	if t == TypeObject || t == TypeArray {
		col.Expandable = true
	}
}

func (s *Schema) addChildren(name string, v value.Value) {
	col := s.columns[name]
	for _, m := range v.Members() {
		if !slices.Contains(col.Children, m.Key) {
			col.Children = append(col.Children, m.Key)
		}
	}
}

// Observe folds every top-level member of an object record into the
// schema. Non-object records contribute nothing.
func (s *Schema) Observe(record value.Value) {
	for _, m := range record.Members() {
		s.AddColumn(m.Key, TypeOf(m.Value))
		if m.Value.IsObject() {
			s.addChildren(m.Key, m.Value)
		}
	}
}

// Infer builds a schema from all records in order.
func Infer(records []value.Value) *Schema {
	s := New()
	for _, record := range records {
		s.Observe(record)
	}
	return s
}

// InferStreaming folds one record into s without ever growing the column
// set past the first object record: later records only refine the types of
// columns already known. This keeps Streaming mode memory bounded.
func InferStreaming(record value.Value, s *Schema) {
	if !record.IsObject() {
		return
	}

	if !s.frozen {
		s.Observe(record)
		s.frozen = true
		return
	}

	for _, m := range record.Members() {
		if _, ok := s.columns[m.Key]; ok {
			s.AddColumn(m.Key, TypeOf(m.Value))
		}
	}
}

// Columns returns the column names in first-seen order.
func (s *Schema) Columns() []string {
	return append([]string(nil), s.order...)
}

func (s *Schema) Len() int { return len(s.order) }

func (s *Schema) Column(name string) (Column, bool) {
	col, ok := s.columns[name]
	if !ok {
		return Column{}, false
	}
	out := *col
	out.Children = append([]string(nil), col.Children...)
	return out, true
}

func (s *Schema) Type(name string) (ColumnType, bool) {
	col, ok := s.columns[name]
	if !ok {
		return TypeNull, false
	}
	return col.Type, true
}

func (s *Schema) Expandable(name string) bool {
	col, ok := s.columns[name]
	return ok && col.Expandable
}

// Expand lists the known columns under prefix in schema order, including
// the first-level children of object columns. An empty prefix lists the
// top-level columns.
func (s *Schema) Expand(prefix string) []string {
	if prefix == "" {
		return s.Columns()
	}

	want := prefix + "."
	var out []string
	for _, name := range s.order {
		if strings.HasPrefix(name, want) {
			out = append(out, name)
		}
		for _, child := range s.columns[name].Children {
			full := name + "." + child
			if strings.HasPrefix(full, want) && !slices.Contains(out, full) {
				out = append(out, full)
			}
		}
	}
	return out
}
