package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// ErrModeConflict reports an explicit Streaming request that cannot
// satisfy the run's requirements.
var ErrModeConflict = errors.New("mode conflict")

// ErrUnknownMode reports an unrecognised mode name.
var ErrUnknownMode = errors.New("unknown mode")

type Mode uint8

const (
	// ModeAuto picks Streaming unless a requirement forces Indexed.
	ModeAuto Mode = iota
	// ModeStreaming is one pass holding only the current record and the
	// schema of the first record.
	ModeStreaming
	// ModeIndexed records byte offsets in a first pass and re-reads
	// records from seekable storage afterwards.
	ModeIndexed
)

func (m Mode) String() string {
	switch m {
	case ModeStreaming:
		return "streaming"
	case ModeIndexed:
		return "indexed"
	}
	return "auto"
}

func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return ModeAuto, nil
	case "streaming", "stream":
		return ModeStreaming, nil
	case "indexed", "index":
		return ModeIndexed, nil
	}
	return ModeAuto, fmt.Errorf("%w: %q (expected auto, streaming or indexed)", ErrUnknownMode, name)
}

// Requirements are the features a run needs from its execution mode.
type Requirements struct {
	Sort         bool
	Flatten      bool
	Tail         bool
	Recursive    bool
	RandomAccess bool
}

// Reasons names the requirements that force Indexed mode.
func (r Requirements) Reasons() []string {
	var out []string
	if r.Sort {
		out = append(out, "sort")
	}
	if r.Flatten {
		out = append(out, "flatten")
	}
	if r.Tail {
		out = append(out, "tail")
	}
	if r.Recursive {
		out = append(out, "recursive")
	}
	if r.RandomAccess {
		out = append(out, "random access")
	}
	return out
}

func (r Requirements) NeedsIndex() bool {
	return len(r.Reasons()) > 0
}

// Select resolves hint against req. Sorting, schema-complete flattening,
// tail windows, child tables and random access all need Indexed mode.
func Select(hint Mode, req Requirements) (Mode, error) {
	switch hint {
	case ModeIndexed:
		return ModeIndexed, nil
	case ModeStreaming:
		if req.NeedsIndex() {
			return ModeStreaming, fmt.Errorf("%w: streaming cannot serve %s", ErrModeConflict, strings.Join(req.Reasons(), ", "))
		}
		return ModeStreaming, nil
	}

	if req.NeedsIndex() {
		return ModeIndexed, nil
	}
	return ModeStreaming, nil
}
