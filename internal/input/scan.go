package input

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/jacoelho/jtab/internal/value"
)

// ErrNotObject reports a record that decoded but is not a JSON object.
var ErrNotObject = errors.New("expected JSON object")

// DecodeError locates a record that could not be used. Line is set for
// line input, Element (1-based) for array input.
type DecodeError struct {
	Line    int
	Element int
	Offset  int64
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Element > 0 {
		return fmt.Sprintf("element %d: %v", e.Element, e.Err)
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Record is one accepted object with its position in the stream.
type Record struct {
	// Index counts accepted records from zero.
	Index  int
	Offset int64
	// Line is the 1-based line for line input and 0 for array input.
	Line  int
	Value value.Value
}

type Options struct {
	// Strict makes every DecodeError fatal. Otherwise it is passed to
	// OnSkip and the record is dropped.
	Strict bool
	OnSkip func(*DecodeError)
	// OnRead receives the number of bytes consumed so far.
	OnRead func(n int64)
}

// Scan yields records from r in input order. Malformed array syntax is
// always fatal because the element boundaries are lost.
func Scan(ctx context.Context, r io.Reader, opts Options) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		br := bufio.NewReaderSize(r, 64*1024)

		base, baseLine, err := skipSpace(br)
		if err != nil {
			yield(Record{}, fmt.Errorf("%w: %v", ErrInput, err))
			return
		}

		peek, err := br.Peek(1)
		if err != nil && !errors.Is(err, io.EOF) {
			yield(Record{}, fmt.Errorf("%w: %v", ErrInput, err))
			return
		}

		s := &scanner{ctx: ctx, opts: opts, yield: yield, base: base, baseLine: baseLine}
		if Sniff(peek) == FormatArray {
			s.array(br)
			return
		}
		s.lines(br)
	}
}

// skipSpace consumes leading whitespace, however long, and reports the
// bytes and newlines consumed.
func skipSpace(br *bufio.Reader) (int64, int, error) {
	var (
		n     int64
		lines int
	)
	for {
		b, err := br.ReadByte()
		if errors.Is(err, io.EOF) {
			return n, lines, nil
		}
		if err != nil {
			return n, lines, err
		}

		switch b {
		case '\n':
			lines++
			fallthrough
		case ' ', '\t', '\r':
			n++
			continue
		}
		return n, lines, br.UnreadByte()
	}
}

type scanner struct {
	ctx   context.Context
	opts  Options
	yield func(Record, error) bool
	index int

	// base and baseLine account for whitespace skipped before the first value.
	base     int64
	baseLine int
}

// reject reports whether scanning should continue after a bad record.
func (s *scanner) reject(derr *DecodeError) bool {
	if s.opts.Strict {
		s.yield(Record{}, derr)
		return false
	}
	if s.opts.OnSkip != nil {
		s.opts.OnSkip(derr)
	}
	return true
}

func (s *scanner) accept(rec Record) bool {
	rec.Index = s.index
	s.index++
	return s.yield(rec, nil)
}

func (s *scanner) progress(n int64) {
	if s.opts.OnRead != nil {
		s.opts.OnRead(n)
	}
}

func (s *scanner) lines(br *bufio.Reader) {
	offset, lineNo := s.base, s.baseLine

	for {
		if err := s.ctx.Err(); err != nil {
			s.yield(Record{}, err)
			return
		}

		line, err := br.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			s.yield(Record{}, fmt.Errorf("%w: %v", ErrInput, err))
			return
		}
		if len(line) == 0 && err != nil {
			return
		}

		start := offset
		offset += int64(len(line))
		lineNo++
		s.progress(offset)

		if len(bytes.TrimSpace(line)) > 0 {
			v, derr := value.Parse(line)
			switch {
			case derr != nil:
				if !s.reject(&DecodeError{Line: lineNo, Offset: start, Err: derr}) {
					return
				}
			case !v.IsObject():
				if !s.reject(&DecodeError{Line: lineNo, Offset: start, Err: ErrNotObject}) {
					return
				}
			default:
				if !s.accept(Record{Offset: start, Line: lineNo, Value: v}) {
					return
				}
			}
		}

		if err != nil {
			return
		}
	}
}

func (s *scanner) array(br *bufio.Reader) {
	dec := json.NewDecoder(br)
	dec.UseNumber()

	if _, err := dec.Token(); err != nil {
		s.yield(Record{}, &DecodeError{Element: 1, Err: err})
		return
	}

	element := 0
	for dec.More() {
		if err := s.ctx.Err(); err != nil {
			s.yield(Record{}, err)
			return
		}

		element++
		start := s.base + dec.InputOffset()
		v, err := value.Decode(dec)
		if err != nil {
			s.yield(Record{}, &DecodeError{Element: element, Offset: start, Err: err})
			return
		}
		s.progress(s.base + dec.InputOffset())

		if !v.IsObject() {
			if !s.reject(&DecodeError{Element: element, Offset: start, Err: ErrNotObject}) {
				return
			}
			continue
		}
		if !s.accept(Record{Offset: start, Value: v}) {
			return
		}
	}

	if _, err := dec.Token(); err != nil {
		s.yield(Record{}, &DecodeError{Element: element + 1, Offset: s.base + dec.InputOffset(), Err: err})
	}
}

// DecodeAt decodes the single value starting at offset, skipping leading
// whitespace and array separators.
func DecodeAt(r io.ReaderAt, offset int64) (value.Value, error) {
	br := bufio.NewReader(io.NewSectionReader(r, offset, 1<<62))

	for {
		b, err := br.ReadByte()
		if err != nil {
			return value.Value{}, fmt.Errorf("%w: no value at offset %d: %v", ErrInput, offset, err)
		}
		switch b {
		case ' ', '\t', '\r', '\n', ',':
			continue
		}
		if err := br.UnreadByte(); err != nil {
			return value.Value{}, err
		}
		break
	}

	dec := json.NewDecoder(br)
	dec.UseNumber()
	return value.Decode(dec)
}
