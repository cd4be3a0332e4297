package exit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Process exit codes.
const (
	CodeOK          = 0
	CodeFailure     = 1
	CodeUsage       = 2
	CodeInterrupted = 130
)

// Result holds the output destination and exit code for program termination.
type Result struct {
	Output   io.Writer
	ExitCode int
	Message  string
}

// Print writes the message, ending it with a newline when it lacks one.
func (r *Result) Print() {
	if r.Message == "" {
		return
	}
	msg := r.Message
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprint(r.Output, msg)
}

// Success creates a result that outputs to stdout with exit code 0.
func Success(message string) *Result {
	return &Result{Output: os.Stdout, ExitCode: CodeOK, Message: message}
}

// Error creates a result that outputs to stderr with exit code 1.
func Error(message string) *Result {
	return &Result{Output: os.Stderr, ExitCode: CodeFailure, Message: message}
}

func Errorf(format string, a ...any) *Result {
	return Error(fmt.Sprintf(format, a...))
}

// Usage reports invalid invocation: stderr, exit code 2.
func Usage(message string) *Result {
	return &Result{Output: os.Stderr, ExitCode: CodeUsage, Message: message}
}

// FromError maps a run error to a result. A nil error yields nil.
func FromError(prog string, err error) *Result {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		return &Result{Output: os.Stderr, ExitCode: CodeInterrupted, Message: prog + ": interrupted"}
	}
	return Errorf("%s: %v", prog, err)
}
