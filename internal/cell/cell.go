// Package cell holds the display-ready values a table row is made of.
package cell

import (
	"encoding/json"

	"github.com/jacoelho/jtab/internal/value"
)

const (
	ObjectPlaceholder = "{...}"
	ArrayPlaceholder  = "[...]"
)

type Kind uint8

const (
	Null Kind = iota
	Bool
	Number
	String
	// ArrayStub and ObjectStub stand in for a nested value
	// that is not rendered inline.
	ArrayStub
	ObjectStub
	// ArrayDisplay is a pre-rendered, possibly truncated, array listing.
	ArrayDisplay
)

// Cell is one rendered table value. Number keeps the original literal.
type Cell struct {
	Kind Kind
	Text string
	Bool bool
}

func NewNull() Cell { return Cell{Kind: Null} }

func NewBool(b bool) Cell { return Cell{Kind: Bool, Bool: b} }

func NewNumber(literal string) Cell { return Cell{Kind: Number, Text: literal} }

func NewString(s string) Cell { return Cell{Kind: String, Text: s} }

func NewObjectPlaceholder() Cell { return Cell{Kind: ObjectStub, Text: ObjectPlaceholder} }

func NewArrayPlaceholder() Cell { return Cell{Kind: ArrayStub, Text: ArrayPlaceholder} }

func NewArrayDisplay(text string) Cell { return Cell{Kind: ArrayDisplay, Text: text} }

// FromValue converts v for non-flattened display: nested values become
// placeholders.
func FromValue(v value.Value) Cell {
	switch v.Kind() {
	case value.KindBool:
		return NewBool(v.Bool())
	case value.KindNumber:
		return NewNumber(v.Text())
	case value.KindString:
		return NewString(v.Text())
	case value.KindArray:
		return NewArrayPlaceholder()
	case value.KindObject:
		return NewObjectPlaceholder()
	}
	return NewNull()
}

func (c Cell) IsNull() bool { return c.Kind == Null }

// String is the plain-text rendering used by every text formatter.
func (c Cell) String() string {
	switch c.Kind {
	case Null:
		return "null"
	case Bool:
		if c.Bool {
			return "true"
		}
		return "false"
	}
	return c.Text
}

// MarshalJSON keeps scalars typed; placeholders and array listings are
// emitted as strings.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case Null:
		return []byte("null"), nil
	case Bool:
		return json.Marshal(c.Bool)
	case Number:
		if json.Valid([]byte(c.Text)) {
			return []byte(c.Text), nil
		}
	}
	return json.Marshal(c.Text)
}
