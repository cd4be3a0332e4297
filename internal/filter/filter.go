// Package filter selects records with column conditions, full-text search
// and JSONPath predicates.
package filter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jacoelho/jtab/internal/ordering"
	"github.com/jacoelho/jtab/internal/path"
	"github.com/jacoelho/jtab/internal/value"
)

// ErrInvalidFilter reports a filter expression that cannot be parsed.
var ErrInvalidFilter = errors.New("invalid filter")

// Predicate decides whether a record is kept.
type Predicate interface {
	Match(record value.Value) bool
}

// Func adapts a plain function to Predicate.
type Func func(record value.Value) bool

func (f Func) Match(record value.Value) bool { return f(record) }

// All matches when every non-nil predicate matches.
func All(predicates ...Predicate) Predicate {
	var kept []Predicate
	for _, p := range predicates {
		if p != nil {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	if len(kept) == 1 {
		return kept[0]
	}
	return Func(func(record value.Value) bool {
		for _, p := range kept {
			if !p.Match(record) {
				return false
			}
		}
		return true
	})
}

type Op uint8

const (
	OpEq Op = iota
	OpNe
	OpGt
	OpGte
	OpLt
	OpLte
	OpContains
	OpNotContains
)

var opText = map[Op]string{
	OpEq:          "=",
	OpNe:          "!=",
	OpGt:          ">",
	OpGte:         ">=",
	OpLt:          "<",
	OpLte:         "<=",
	OpContains:    "~",
	OpNotContains: "!~",
}

func (o Op) String() string { return opText[o] }

// Condition compares the value at Path with a literal.
type Condition struct {
	Column string
	Path   *path.Path
	Op     Op
	Value  string
}

func (c Condition) Match(record value.Value) bool {
	v, ok := c.Path.Get(record)

	switch c.Op {
	case OpEq:
		return ok && c.equal(v)
	case OpNe:
		return !ok || !c.equal(v)
	case OpGt:
		return ok && c.compare(v, func(n int) bool { return n > 0 })
	case OpGte:
		return ok && c.compare(v, func(n int) bool { return n >= 0 })
	case OpLt:
		return ok && c.compare(v, func(n int) bool { return n < 0 })
	case OpLte:
		return ok && c.compare(v, func(n int) bool { return n <= 0 })
	case OpContains:
		return ok && c.contains(v)
	case OpNotContains:
		return !ok || !c.contains(v)
	}
	return false
}

func (c Condition) equal(v value.Value) bool {
	switch v.Kind() {
	case value.KindString, value.KindNumber:
		return v.Text() == c.Value
	case value.KindBool:
		return strconv.FormatBool(v.Bool()) == c.Value
	case value.KindNull:
		return c.Value == "null"
	}
	return false
}

// compare is numeric only; non-numbers never satisfy an ordering operator.
func (c Condition) compare(v value.Value, accept func(int) bool) bool {
	if v.Kind() != value.KindNumber {
		return false
	}
	if _, err := strconv.ParseFloat(c.Value, 64); err != nil {
		return false
	}
	return accept(ordering.Compare(v, value.Number(c.Value)))
}

func (c Condition) contains(v value.Value) bool {
	return strings.Contains(strings.ToLower(searchText(v)), strings.ToLower(c.Value))
}

func searchText(v value.Value) string {
	switch v.Kind() {
	case value.KindString, value.KindNumber:
		return v.Text()
	case value.KindBool:
		return strconv.FormatBool(v.Bool())
	}
	b, err := v.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(b)
}

// Expr is a conjunction of conditions.
type Expr struct {
	Conditions []Condition
}

func (e *Expr) Match(record value.Value) bool {
	for _, c := range e.Conditions {
		if !c.Match(record) {
			return false
		}
	}
	return true
}

// Parse reads space separated conditions such as
// `age>=30 name~"ali ce" active=true`. Values may be single or double
// quoted.
func Parse(input string) (*Expr, error) {
	var (
		expr Expr
		i    int
	)

	for {
		for i < len(input) && input[i] == ' ' {
			i++
		}
		if i >= len(input) {
			break
		}

		start := i
		for i < len(input) && !strings.ContainsRune("=!<>~ ", rune(input[i])) {
			i++
		}
		column := input[start:i]
		if column == "" {
			return nil, fmt.Errorf("%w: empty column name in %q", ErrInvalidFilter, input)
		}

		op, n, err := parseOp(input[i:])
		if err != nil {
			return nil, fmt.Errorf("%w: %s after %q", ErrInvalidFilter, err, column)
		}
		i += n

		var literal string
		literal, i = parseLiteral(input, i)

		p, err := path.Compile(column)
		if err != nil {
			return nil, err
		}
		if p.IsWildcard() {
			return nil, fmt.Errorf("%w: wildcard column %q", ErrInvalidFilter, column)
		}

		expr.Conditions = append(expr.Conditions, Condition{Column: column, Path: p, Op: op, Value: literal})
	}

	if len(expr.Conditions) == 0 {
		return nil, fmt.Errorf("%w: empty expression", ErrInvalidFilter)
	}
	return &expr, nil
}

func parseOp(s string) (Op, int, error) {
	two := s
	if len(two) > 2 {
		two = two[:2]
	}

	switch {
	case two == "!=":
		return OpNe, 2, nil
	case two == "!~":
		return OpNotContains, 2, nil
	case two == ">=":
		return OpGte, 2, nil
	case two == "<=":
		return OpLte, 2, nil
	case strings.HasPrefix(s, "!"):
		return 0, 0, errors.New("expected = or ~ after !")
	case strings.HasPrefix(s, "="):
		return OpEq, 1, nil
	case strings.HasPrefix(s, ">"):
		return OpGt, 1, nil
	case strings.HasPrefix(s, "<"):
		return OpLt, 1, nil
	case strings.HasPrefix(s, "~"):
		return OpContains, 1, nil
	}
	return 0, 0, errors.New("missing operator")
}

func parseLiteral(input string, i int) (string, int) {
	if i < len(input) && (input[i] == '"' || input[i] == '\'') {
		quote := input[i]
		end := strings.IndexByte(input[i+1:], quote)
		if end < 0 {
			return input[i+1:], len(input)
		}
		return input[i+1 : i+1+end], i + end + 2
	}

	end := strings.IndexByte(input[i:], ' ')
	if end < 0 {
		return input[i:], len(input)
	}
	return input[i : i+end], i + end
}

// Search matches records holding query, case-insensitively, in any string,
// number or boolean value at any depth.
type Search struct {
	query string
}

func NewSearch(query string) *Search {
	return &Search{query: strings.ToLower(query)}
}

func (s *Search) Match(record value.Value) bool {
	switch record.Kind() {
	case value.KindString:
		return strings.Contains(strings.ToLower(record.Text()), s.query)
	case value.KindNumber:
		return strings.Contains(record.Text(), s.query)
	case value.KindBool:
		return strings.Contains(strconv.FormatBool(record.Bool()), s.query)
	case value.KindArray:
		for _, item := range record.Items() {
			if s.Match(item) {
				return true
			}
		}
	case value.KindObject:
		for _, m := range record.Members() {
			if s.Match(m.Value) {
				return true
			}
		}
	}
	return false
}
