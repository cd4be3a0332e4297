// Package flatten expands nested objects into dot-notation columns.
package flatten

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jacoelho/jtab/internal/cell"
	"github.com/jacoelho/jtab/internal/value"
)

// ErrInvalidConfig reports an unusable flatten configuration.
var ErrInvalidConfig = errors.New("invalid flatten config")

// Unbounded disables the depth limit.
const Unbounded = -1

// Truncated is the token appended to an array listing cut at the limit.
const Truncated = "..."

// Config controls how deep objects are expanded and how many array
// elements are listed.
type Config struct {
	MaxDepth   int
	ArrayLimit int
}

func DefaultConfig() Config {
	return Config{MaxDepth: Unbounded, ArrayLimit: 3}
}

func (c Config) Validate() error {
	if c.ArrayLimit <= 0 {
		return fmt.Errorf("%w: array limit must be positive, got %d", ErrInvalidConfig, c.ArrayLimit)
	}
	return nil
}

func (c Config) expands(depth int) bool {
	return c.MaxDepth < 0 || depth < c.MaxDepth
}

// Entry is one flattened leaf. Key is the top-level member it came from.
type Entry struct {
	Key  string
	Path string
	Cell cell.Cell
}

// Flatten returns the leaves of an object record in document order.
// Non-object records have no leaves.
func Flatten(record value.Value, cfg Config) []Entry {
	if !record.IsObject() {
		return nil
	}

	entries := make([]Entry, 0, record.Len())
	for _, m := range record.Members() {
		entries = flattenInto(entries, m.Key, m.Key, m.Value, 0, cfg)
	}
	return entries
}

func flattenInto(entries []Entry, key, path string, v value.Value, depth int, cfg Config) []Entry {
	switch v.Kind() {
	case value.KindObject:
		if v.Len() == 0 || !cfg.expands(depth) {
			return append(entries, Entry{Key: key, Path: path, Cell: cell.NewObjectPlaceholder()})
		}
		for _, m := range v.Members() {
			entries = flattenInto(entries, key, path+"."+m.Key, m.Value, depth+1, cfg)
		}
		return entries
	case value.KindArray:
		return append(entries, Entry{Key: key, Path: path, Cell: cell.NewArrayDisplay(DisplayArray(v, cfg.ArrayLimit))})
	}
	return append(entries, Entry{Key: key, Path: path, Cell: cell.FromValue(v)})
}

// DisplayArray lists up to limit elements separated by ", ". Nested
// containers become placeholders and a cut listing ends with "...".
func DisplayArray(v value.Value, limit int) string {
	items := v.Items()
	if len(items) == 0 {
		return ""
	}

	n := min(len(items), limit)
	tokens := make([]string, 0, n+1)
	for _, item := range items[:n] {
		tokens = append(tokens, cell.FromValue(item).String())
	}
	if len(items) > n {
		tokens = append(tokens, Truncated)
	}
	return strings.Join(tokens, ", ")
}
