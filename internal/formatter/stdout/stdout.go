// Package stdout renders aligned plain-text and markdown tables.
package stdout

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/jacoelho/jtab/internal/cell"
	"github.com/jacoelho/jtab/internal/formatter"
)

// Formatter buffers rows until End because column widths depend on every
// cell.
type Formatter struct {
	writer   io.Writer
	markdown bool
	columns  []string
	rows     [][]string
}

// New creates a plain formatter that outputs to stdout.
func New() *Formatter {
	return NewWithWriter(os.Stdout)
}

// NewWithWriter creates a plain formatter with a custom writer.
func NewWithWriter(writer io.Writer) *Formatter {
	return &Formatter{writer: writer}
}

// NewMarkdown creates a GitHub-flavoured markdown table formatter.
func NewMarkdown(writer io.Writer) *Formatter {
	return &Formatter{writer: writer, markdown: true}
}

var _ formatter.Formatter = (*Formatter)(nil)

func (f *Formatter) Begin(columns []string) error {
	f.columns = columns
	f.rows = f.rows[:0]
	return nil
}

func (f *Formatter) Row(cells []cell.Cell) error {
	row := formatter.Strings(cells)
	for i, s := range row {
		row[i] = f.clean(s)
	}
	f.rows = append(f.rows, row)
	return nil
}

func (f *Formatter) End() error {
	if len(f.columns) == 0 {
		return nil
	}

	header := make([]string, len(f.columns))
	for i, col := range f.columns {
		header[i] = f.clean(col)
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range f.rows {
		for i, c := range row {
			if w := runewidth.StringWidth(c); i < len(widths) && w > widths[i] {
				widths[i] = w
			}
		}
	}

	bw := bufio.NewWriter(f.writer)
	if f.markdown {
		f.writeMarkdown(bw, header, widths)
	} else {
		f.writePlain(bw, header, widths)
	}
	return bw.Flush()
}

// clean keeps every cell on a single line.
func (f *Formatter) clean(s string) string {
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(s)
	if f.markdown {
		s = strings.ReplaceAll(s, "|", `\|`)
	}
	return s
}

func pad(s string, width int) string {
	if gap := width - runewidth.StringWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func (f *Formatter) writePlain(w *bufio.Writer, header []string, widths []int) {
	line := func(cells []string) {
		padded := make([]string, len(widths))
		for i, width := range widths {
			if i < len(cells) {
				padded[i] = pad(cells[i], width)
			} else {
				padded[i] = pad("", width)
			}
		}
		w.WriteString(strings.TrimRight(strings.Join(padded, "  "), " "))
		w.WriteByte('\n')
	}

	line(header)
	for _, row := range f.rows {
		line(row)
	}
}

func (f *Formatter) writeMarkdown(w *bufio.Writer, header []string, widths []int) {
	for i := range widths {
		widths[i] = max(widths[i], 3)
	}

	line := func(cells []string) {
		padded := make([]string, len(widths))
		for i, width := range widths {
			c := ""
			if i < len(cells) {
				c = cells[i]
			}
			padded[i] = pad(c, width)
		}
		w.WriteString("| " + strings.Join(padded, " | ") + " |\n")
	}

	line(header)
	sep := make([]string, len(widths))
	for i, width := range widths {
		sep[i] = strings.Repeat("-", width)
	}
	w.WriteString("| " + strings.Join(sep, " | ") + " |\n")
	for _, row := range f.rows {
		line(row)
	}
}
