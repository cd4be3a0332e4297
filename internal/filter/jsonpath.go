package filter

import (
	"fmt"
	"strings"

	"github.com/theory/jsonpath"

	"github.com/jacoelho/jtab/internal/value"
)

// JSONPath keeps records selected by an RFC 9535 expression.
type JSONPath struct {
	expr    string
	path    *jsonpath.Path
	wrapped bool
}

// NewJSONPath accepts either a bare filter predicate such as
// `@.age > 30 && @.active == true`, evaluated against each record, or a
// full query starting with "$", which keeps records where it selects
// anything.
func NewJSONPath(expr string) (*JSONPath, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("%w: empty JSONPath expression", ErrInvalidFilter)
	}

	query, wrapped := expr, false
	if !strings.HasPrefix(expr, "$") {
		query, wrapped = "$[?"+expr+"]", true
	}

	p, err := jsonpath.Parse(query)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JSONPath %s: %v", ErrInvalidFilter, expr, err)
	}

	return &JSONPath{expr: expr, path: p, wrapped: wrapped}, nil
}

func (j *JSONPath) String() string { return j.expr }

func (j *JSONPath) Match(record value.Value) bool {
	data := record.Interface()
	if j.wrapped {
		data = []any{data}
	}
	return len(j.path.Select(data)) > 0
}
