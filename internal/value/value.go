// Package value models decoded JSON as a closed tagged variant.
//
// Objects keep their members in document order, which is what lets the
// schema layer derive a first-seen column order from a record stream.
package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"slices"
	"strconv"
)

// Kind is the JSON type tag of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return "unknown"
}

// Member is one key/value pair of an object.
type Member struct {
	Key   string
	Value Value
}

// Value is an immutable JSON value. The zero Value is null.
type Value struct {
	kind    Kind
	b       bool
	text    string // string content, or the number literal
	items   []Value
	members []Member
}

func Null() Value {
	return Value{}
}

func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Number keeps the literal text so display never reformats it.
func Number(literal string) Value {
	return Value{kind: KindNumber, text: literal}
}

func Float(f float64) Value {
	return Number(strconv.FormatFloat(f, 'g', -1, 64))
}

func String(s string) Value {
	return Value{kind: KindString, text: s}
}

func Array(items ...Value) Value {
	return Value{kind: KindArray, items: items}
}

// Object builds an object from members. A repeated key keeps its first
// position and takes the last value.
func Object(members ...Member) Value {
	out := make([]Member, 0, len(members))
	for _, m := range members {
		if i := indexOf(out, m.Key); i >= 0 {
			out[i].Value = m.Value
			continue
		}
		out = append(out, m)
	}
	return Value{kind: KindObject, members: out}
}

func indexOf(members []Member, key string) int {
	return slices.IndexFunc(members, func(m Member) bool { return m.Key == key })
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) IsObject() bool { return v.kind == KindObject }

func (v Value) IsArray() bool { return v.kind == KindArray }

// Bool reports the boolean payload; false for non-bool values.
func (v Value) Bool() bool { return v.kind == KindBool && v.b }

// Text returns the string content or the number literal.
func (v Value) Text() string { return v.text }

// Float parses a number value. Literals beyond float64 range resolve to
// ±Inf or 0 so they still order against other numbers.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return f, true
}

// Len is the element count of an array or the member count of an object.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.items)
	case KindObject:
		return len(v.members)
	}
	return 0
}

// Items returns the array elements. The slice must not be modified.
func (v Value) Items() []Value { return v.items }

// Members returns the object members in document order. The slice must not
// be modified.
func (v Value) Members() []Member { return v.members }

// Field looks up an object member by key.
func (v Value) Field(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	if i := indexOf(v.members, key); i >= 0 {
		return v.members[i].Value, true
	}
	return Value{}, false
}

// Index returns the i-th array element.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindArray || i < 0 || i >= len(v.items) {
		return Value{}, false
	}
	return v.items[i], true
}

// Equal reports deep equality. Numbers compare by literal text.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber, KindString:
		return v.text == o.text
	case KindArray:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.members) != len(o.members) {
			return false
		}
		for i := range v.members {
			if v.members[i].Key != o.members[i].Key || !v.members[i].Value.Equal(o.members[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

// Interface converts v into the representation produced by encoding/json
// (map[string]any, []any, float64, string, bool, nil). Member order is lost.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		f, _ := v.Float()
		return f
	case KindString:
		return v.text
	case KindArray:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.members))
		for _, m := range v.members {
			out[m.Key] = m.Value.Interface()
		}
		return out
	}
	return nil
}

// MarshalJSON encodes v preserving member order and number literals.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		buf.WriteString(v.text)
	case KindString:
		return writeString(buf, v.text)
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(buf, m.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := m.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	encoded, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(encoded)
	return nil
}
