// Package path compiles dotted/bracketed field-access expressions such as
// "orders[0].item" into a reusable step sequence.
//
// Compilation happens once per distinct expression; the compiled Path is
// read-only and safe to share across every record it is applied to.
package path

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jacoelho/jtab/internal/value"
)

// ErrInvalidPath reports a malformed path expression.
var ErrInvalidPath = errors.New("invalid path")

// Wildcard is the final segment meaning "all children of this prefix".
const Wildcard = "*"

type StepKind uint8

const (
	FieldStep StepKind = iota
	IndexStep
)

// Step is one lookup: a field by name or an array element by position.
type Step struct {
	Kind  StepKind
	Name  string
	Index int
}

func (s Step) String() string {
	if s.Kind == IndexStep {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	return s.Name
}

// Path is a compiled expression.
type Path struct {
	raw      string
	steps    []Step
	wildcard bool
}

// Compile parses raw into a Path.
func Compile(raw string) (*Path, error) {
	var (
		steps   []Step
		current strings.Builder
	)

	flush := func() {
		if current.Len() > 0 {
			steps = append(steps, Step{Kind: FieldStep, Name: current.String()})
			current.Reset()
		}
	}

	for i := 0; i < len(raw); i++ {
		switch c := raw[i]; c {
		case '.':
			flush()
		case '[':
			flush()
			end := strings.IndexByte(raw[i+1:], ']')
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated index in %q", ErrInvalidPath, raw)
			}
			segment := raw[i+1 : i+1+end]
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || strings.HasPrefix(segment, "+") {
				return nil, fmt.Errorf("%w: invalid index %q in %q", ErrInvalidPath, segment, raw)
			}
			steps = append(steps, Step{Kind: IndexStep, Index: idx})
			i += end + 1
		case ']':
			return nil, fmt.Errorf("%w: unexpected ']' in %q", ErrInvalidPath, raw)
		default:
			current.WriteByte(c)
		}
	}
	flush()

	p := &Path{raw: raw}
	for i, step := range steps {
		if step.Kind == FieldStep && step.Name == Wildcard {
			if i != len(steps)-1 {
				return nil, fmt.Errorf("%w: wildcard must be the last segment in %q", ErrInvalidPath, raw)
			}
			p.wildcard = true
			steps = steps[:i]
			break
		}
	}

	if len(steps) == 0 && !p.wildcard {
		return nil, fmt.Errorf("%w: empty path %q", ErrInvalidPath, raw)
	}

	p.steps = steps
	return p, nil
}

// MustCompile is Compile for expressions known to be valid.
func MustCompile(raw string) *Path {
	p, err := Compile(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the expression the path was compiled from.
func (p *Path) String() string { return p.raw }

func (p *Path) IsWildcard() bool { return p.wildcard }

// Prefix returns the column prefix a wildcard path expands, e.g. "user"
// for "user.*". It is empty for a bare "*".
func (p *Path) Prefix() string {
	if !p.wildcard {
		return p.raw
	}
	return strings.TrimSuffix(strings.TrimSuffix(p.raw, Wildcard), ".")
}

// Get resolves the path against v. It reports false as soon as a step
// cannot resolve; a missing value is not an error.
//
// A multi-step path first tries a member whose key is the literal
// expression, so flattened column names like "address.city" resolve
// against already-flat records.
func (p *Path) Get(v value.Value) (value.Value, bool) {
	if p.wildcard {
		return value.Value{}, false
	}

	if len(p.steps) > 1 {
		if literal, ok := v.Field(p.raw); ok {
			return literal, true
		}
	}

	current := v
	for _, step := range p.steps {
		var ok bool
		switch step.Kind {
		case FieldStep:
			current, ok = current.Field(step.Name)
		case IndexStep:
			current, ok = current.Index(step.Index)
		}
		if !ok {
			return value.Value{}, false
		}
	}

	return current, true
}

// Cache compiles each distinct expression once.
type Cache struct {
	paths map[string]*Path
}

func NewCache() *Cache {
	return &Cache{paths: make(map[string]*Path)}
}

func (c *Cache) Compile(raw string) (*Path, error) {
	if p, ok := c.paths[raw]; ok {
		return p, nil
	}

	p, err := Compile(raw)
	if err != nil {
		return nil, err
	}

	c.paths[raw] = p
	return p, nil
}
