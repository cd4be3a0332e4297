package formatter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jacoelho/jtab/internal/cell"
)

// ErrUnknownStyle reports an output style name that is not supported.
var ErrUnknownStyle = errors.New("unknown output style")

// Formatter receives the final column list once, then every row in order.
// Implementations decide whether to stream rows or buffer them until End.
type Formatter interface {
	Begin(columns []string) error
	Row(cells []cell.Cell) error
	End() error
}

type Style uint8

const (
	StylePlain Style = iota
	StyleMarkdown
	StyleCSV
	StyleTSV
	StyleJSONL
)

var styleNames = []string{
	StylePlain:    "plain",
	StyleMarkdown: "markdown",
	StyleCSV:      "csv",
	StyleTSV:      "tsv",
	StyleJSONL:    "jsonl",
}

func (s Style) String() string {
	if int(s) < len(styleNames) {
		return styleNames[s]
	}
	return fmt.Sprintf("Style(%d)", s)
}

// Styles lists the accepted style names.
func Styles() []string {
	return append([]string(nil), styleNames...)
}

func ParseStyle(name string) (Style, error) {
	switch strings.ToLower(name) {
	case "", "plain", "table":
		return StylePlain, nil
	case "markdown", "md":
		return StyleMarkdown, nil
	case "csv":
		return StyleCSV, nil
	case "tsv":
		return StyleTSV, nil
	case "jsonl", "ndjson":
		return StyleJSONL, nil
	}
	return 0, fmt.Errorf("%w: %q (expected one of %s)", ErrUnknownStyle, name, strings.Join(styleNames, ", "))
}

// Strings renders a row with cell.String.
func Strings(cells []cell.Cell) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = c.String()
	}
	return out
}
