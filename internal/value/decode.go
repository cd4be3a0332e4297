package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jacoelho/jtab/internal/stack"
)

// ErrMalformed indicates the token stream does not form a JSON value.
var ErrMalformed = errors.New("value: malformed JSON")

// frame is an open container while decoding.
type frame struct {
	kind    Kind
	needKey bool   // object expects a key next
	key     string // last key read for an object
	items   []Value
	members []Member
	index   map[string]int // member position by key, for duplicate keys
}

func (f *frame) add(v Value) {
	if f.kind == KindArray {
		f.items = append(f.items, v)
		return
	}

	if i, ok := f.index[f.key]; ok {
		f.members[i].Value = v
	} else {
		f.index[f.key] = len(f.members)
		f.members = append(f.members, Member{Key: f.key, Value: v})
	}
	f.needKey = true
}

func (f *frame) close() Value {
	if f.kind == KindArray {
		return Value{kind: KindArray, items: f.items}
	}
	return Value{kind: KindObject, members: f.members}
}

// Decode reads exactly one JSON value from dec. The decoder should have
// UseNumber enabled so number literals survive untouched.
func Decode(dec *json.Decoder) (Value, error) {
	frames := stack.NewWithCapacity[frame](8)

	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) && !frames.IsEmpty() {
				return Value{}, fmt.Errorf("%w: unexpected end of input", ErrMalformed)
			}
			return Value{}, err
		}

		top := frames.Top()
		if top != nil && top.kind == KindObject && top.needKey {
			switch t := tok.(type) {
			case string:
				top.key = t
				top.needKey = false
				continue
			case json.Delim:
				if t != '}' {
					return Value{}, fmt.Errorf("%w: unexpected %v", ErrMalformed, t)
				}
			default:
				return Value{}, fmt.Errorf("%w: object key must be a string", ErrMalformed)
			}
		}

		var v Value
		switch t := tok.(type) {
		case json.Delim:
			switch t {
			case '{':
				frames.Push(frame{kind: KindObject, needKey: true, index: make(map[string]int)})
				continue
			case '[':
				frames.Push(frame{kind: KindArray})
				continue
			case '}', ']':
				closed, ok := frames.Pop()
				if !ok {
					return Value{}, fmt.Errorf("%w: unbalanced %v", ErrMalformed, t)
				}
				v = closed.close()
			}
		case nil:
			v = Null()
		case bool:
			v = Bool(t)
		case json.Number:
			v = Number(t.String())
		case float64:
			v = Float(t)
		case string:
			v = String(t)
		default:
			return Value{}, fmt.Errorf("%w: unexpected token %T", ErrMalformed, tok)
		}

		parent := frames.Top()
		if parent == nil {
			return v, nil
		}
		parent.add(v)
	}
}

// Parse decodes a single JSON document. Trailing non-space data is an error.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := Decode(dec)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Value{}, fmt.Errorf("%w: empty input", ErrMalformed)
		}
		return Value{}, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, fmt.Errorf("%w: trailing data after value", ErrMalformed)
	}

	return v, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(data string) Value {
	v, err := Parse([]byte(data))
	if err != nil {
		panic(err)
	}
	return v
}
