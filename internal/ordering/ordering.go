// Package ordering defines a total order over heterogeneous JSON values.
//
// Values are first ranked by class, Number < String < Bool < Array <
// Object < Null, and only values of the same class compare by content.
package ordering

import (
	"cmp"
	"strings"

	"github.com/jacoelho/jtab/internal/value"
)

// Class is the sort precedence of a value's type.
type Class uint8

const (
	ClassNumber Class = iota
	ClassString
	ClassBool
	ClassArray
	ClassObject
	ClassNull
)

func (c Class) String() string {
	switch c {
	case ClassNumber:
		return "number"
	case ClassString:
		return "string"
	case ClassBool:
		return "bool"
	case ClassArray:
		return "array"
	case ClassObject:
		return "object"
	}
	return "null"
}

func ClassOf(v value.Value) Class {
	switch v.Kind() {
	case value.KindNumber:
		return ClassNumber
	case value.KindString:
		return ClassString
	case value.KindBool:
		return ClassBool
	case value.KindArray:
		return ClassArray
	case value.KindObject:
		return ClassObject
	}
	return ClassNull
}

// Compare returns -1, 0 or +1. Numbers compare as float64, strings by raw
// bytes with no collation, booleans false < true. Arrays, objects and nulls
// of the same class are equal.
func Compare(a, b value.Value) int {
	ca, cb := ClassOf(a), ClassOf(b)
	if ca != cb {
		return cmp.Compare(ca, cb)
	}

	switch ca {
	case ClassNumber:
		fa, okA := a.Float()
		fb, okB := b.Float()
		if !okA || !okB {
			return 0
		}
		return cmp.Compare(fa, fb)
	case ClassString:
		return strings.Compare(a.Text(), b.Text())
	case ClassBool:
		return compareBool(a.Bool(), b.Bool())
	}
	return 0
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}
