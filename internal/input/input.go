// Package input turns a byte stream into a sequence of decoded records.
package input

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// ErrInput reports an unreadable input stream.
var ErrInput = errors.New("input error")

// Format is the record framing of the input.
type Format uint8

const (
	// FormatLines is one JSON value per line.
	FormatLines Format = iota
	// FormatArray is a single top-level array of values.
	FormatArray
)

func (f Format) String() string {
	if f == FormatArray {
		return "array"
	}
	return "lines"
}

// Sniff looks at the first non-space byte of peek: '[' is an array,
// anything else is read as lines. Scan skips leading whitespace of any
// length before sniffing.
func Sniff(peek []byte) Format {
	trimmed := bytes.TrimLeft(peek, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return FormatArray
	}
	return FormatLines
}

// Compression of the raw input.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
)

func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	}
	return "none"
}

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

func DetectCompression(peek []byte) Compression {
	switch {
	case bytes.HasPrefix(peek, gzipMagic):
		return CompressionGzip
	case bytes.HasPrefix(peek, zstdMagic):
		return CompressionZstd
	}
	return CompressionNone
}

// Decompress wraps r in a gzip or zstd reader when its magic bytes say so.
// Plain input is returned buffered and unchanged.
func Decompress(r io.Reader) (io.ReadCloser, Compression, error) {
	br := bufio.NewReader(r)

	magic, err := br.Peek(len(zstdMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, CompressionNone, fmt.Errorf("%w: %v", ErrInput, err)
	}

	switch c := DetectCompression(magic); c {
	case CompressionGzip:
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, c, fmt.Errorf("%w: gzip: %v", ErrInput, err)
		}
		return zr, c, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, c, fmt.Errorf("%w: zstd: %v", ErrInput, err)
		}
		return zr.IOReadCloser(), c, nil
	}

	return io.NopCloser(br), CompressionNone, nil
}
