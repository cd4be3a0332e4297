package exit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestPrintAddsNewline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		message string
		want    string
	}{
		{message: "done", want: "done\n"},
		{message: "done\n", want: "done\n"},
		{message: "", want: ""},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		r := &Result{Output: &buf, Message: tt.message}
		r.Print()
		if buf.String() != tt.want {
			t.Errorf("Print(%q) wrote %q, want %q", tt.message, buf.String(), tt.want)
		}
	}
}

func TestFromError(t *testing.T) {
	t.Parallel()

	if FromError("jtab", nil) != nil {
		t.Error("FromError(nil) should be nil")
	}

	canceled := FromError("jtab", fmt.Errorf("scan: %w", context.Canceled))
	if canceled.ExitCode != CodeInterrupted {
		t.Errorf("FromError(canceled).ExitCode = %d, want %d", canceled.ExitCode, CodeInterrupted)
	}

	failed := FromError("jtab", errors.New("boom"))
	if failed.ExitCode != CodeFailure || failed.Message != "jtab: boom" {
		t.Errorf("FromError(boom) = %d %q, want 1 %q", failed.ExitCode, failed.Message, "jtab: boom")
	}
}

func TestConstructors(t *testing.T) {
	t.Parallel()

	if r := Success("ok"); r.ExitCode != CodeOK {
		t.Errorf("Success().ExitCode = %d", r.ExitCode)
	}
	if r := Errorf("bad %d", 1); r.ExitCode != CodeFailure || r.Message != "bad 1" {
		t.Errorf("Errorf() = %d %q", r.ExitCode, r.Message)
	}
	if r := Usage("usage"); r.ExitCode != CodeUsage {
		t.Errorf("Usage().ExitCode = %d", r.ExitCode)
	}
}
