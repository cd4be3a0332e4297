// Package logging builds the process logger.
package logging

import (
	"io"
	"log/slog"
)

// LevelSilent is above every standard level.
const LevelSilent = slog.Level(100)

// New returns a text logger without timestamps, suited to a CLI's stderr.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// Discard drops everything.
func Discard() *slog.Logger {
	return New(io.Discard, LevelSilent)
}

// LevelFromVerbosity maps -v counts: none is warn, one is info, two or
// more is debug. quiet silences everything.
func LevelFromVerbosity(verbosity int, quiet bool) slog.Level {
	if quiet {
		return LevelSilent
	}
	switch verbosity {
	case 0:
		return slog.LevelWarn
	case 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
