// Package jsonl streams rows as JSON objects, one per line, keyed by
// column name in column order.
package jsonl

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/jacoelho/jtab/internal/cell"
	"github.com/jacoelho/jtab/internal/formatter"
)

type Formatter struct {
	w    *bufio.Writer
	keys [][]byte
}

func New(w io.Writer) *Formatter {
	return &Formatter{w: bufio.NewWriter(w)}
}

var _ formatter.Formatter = (*Formatter)(nil)

func (f *Formatter) Begin(columns []string) error {
	f.keys = make([][]byte, len(columns))
	for i, col := range columns {
		key, err := json.Marshal(col)
		if err != nil {
			return err
		}
		f.keys[i] = key
	}
	return nil
}

func (f *Formatter) Row(cells []cell.Cell) error {
	f.w.WriteByte('{')
	for i, c := range cells {
		if i >= len(f.keys) {
			break
		}
		if i > 0 {
			f.w.WriteByte(',')
		}
		encoded, err := c.MarshalJSON()
		if err != nil {
			return err
		}
		f.w.Write(f.keys[i])
		f.w.WriteByte(':')
		f.w.Write(encoded)
	}
	_, err := f.w.WriteString("}\n")
	return err
}

func (f *Formatter) End() error {
	return f.w.Flush()
}
