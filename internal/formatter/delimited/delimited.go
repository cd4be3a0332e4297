// Package delimited streams rows as CSV or TSV.
package delimited

import (
	"bufio"
	"encoding/csv"
	"io"
	"strings"

	"github.com/jacoelho/jtab/internal/cell"
	"github.com/jacoelho/jtab/internal/formatter"
)

// CSV writes RFC 4180 records with a header line.
type CSV struct {
	w *csv.Writer
}

func NewCSV(w io.Writer) *CSV {
	return &CSV{w: csv.NewWriter(w)}
}

var _ formatter.Formatter = (*CSV)(nil)

func (f *CSV) Begin(columns []string) error {
	return f.w.Write(columns)
}

func (f *CSV) Row(cells []cell.Cell) error {
	return f.w.Write(formatter.Strings(cells))
}

func (f *CSV) End() error {
	f.w.Flush()
	return f.w.Error()
}

// TSV writes tab separated lines. Tabs and line breaks inside values are
// escaped as \t, \n and \r so every record stays on one line.
type TSV struct {
	w *bufio.Writer
}

func NewTSV(w io.Writer) *TSV {
	return &TSV{w: bufio.NewWriter(w)}
}

var _ formatter.Formatter = (*TSV)(nil)

var tsvEscaper = strings.NewReplacer(`\`, `\\`, "\t", `\t`, "\n", `\n`, "\r", `\r`)

func (f *TSV) line(fields []string) error {
	for i, field := range fields {
		fields[i] = tsvEscaper.Replace(field)
	}
	_, err := f.w.WriteString(strings.Join(fields, "\t") + "\n")
	return err
}

func (f *TSV) Begin(columns []string) error {
	return f.line(append([]string(nil), columns...))
}

func (f *TSV) Row(cells []cell.Cell) error {
	return f.line(formatter.Strings(cells))
}

func (f *TSV) End() error {
	return f.w.Flush()
}
