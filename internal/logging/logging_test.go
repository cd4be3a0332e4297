package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLevelFromVerbosity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		verbosity int
		quiet     bool
		want      slog.Level
	}{
		{verbosity: 0, want: slog.LevelWarn},
		{verbosity: 1, want: slog.LevelInfo},
		{verbosity: 2, want: slog.LevelDebug},
		{verbosity: 5, want: slog.LevelDebug},
		{verbosity: 2, quiet: true, want: LevelSilent},
	}

	for _, tt := range tests {
		if got := LevelFromVerbosity(tt.verbosity, tt.quiet); got != tt.want {
			t.Errorf("LevelFromVerbosity(%d, %v) = %v, want %v", tt.verbosity, tt.quiet, got, tt.want)
		}
	}
}

func TestNewOmitsTime(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, slog.LevelInfo)
	logger.Info("mode selected", "mode", "indexed")
	logger.Debug("hidden")

	got := buf.String()
	if strings.Contains(got, "time=") {
		t.Errorf("output %q should not contain a timestamp", got)
	}
	if !strings.Contains(got, `msg="mode selected" mode=indexed`) {
		t.Errorf("output %q missing message and attribute", got)
	}
	if strings.Contains(got, "hidden") {
		t.Errorf("output %q should not contain debug records", got)
	}
}
