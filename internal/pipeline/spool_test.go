package pipeline

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/jacoelho/jtab/internal/input"
)

type failingReader struct{ after int }

func (r *failingReader) Read(p []byte) (int, error) {
	if r.after <= 0 {
		return 0, errors.New("disk on fire")
	}
	n := min(len(p), r.after)
	for i := range n {
		p[i] = 'x'
	}
	r.after -= n
	return n, nil
}

func TestSpool(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := NewSpool(context.Background(), dir, strings.NewReader("hello spool"))
	if err != nil {
		t.Fatalf("NewSpool() error = %v", err)
	}

	if s.Size() != 11 {
		t.Errorf("Size() = %d, want 11", s.Size())
	}

	buf := make([]byte, 5)
	if _, err := s.ReadAt(buf, 6); err != nil && !errors.Is(err, io.EOF) {
		t.Fatalf("ReadAt() error = %v", err)
	}
	if got := string(buf); got != "spool" {
		t.Errorf("ReadAt() = %q, want %q", got, "spool")
	}

	if _, err := os.Stat(s.Path()); err != nil {
		t.Fatalf("spool file missing before Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := os.Stat(s.Path()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("spool file after Close: stat error = %v, want not exist", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestSpoolReadFailureIsInputError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := NewSpool(context.Background(), dir, &failingReader{after: 100})
	if !errors.Is(err, input.ErrInput) {
		t.Fatalf("NewSpool() error = %v, want %v", err, input.ErrInput)
	}
	if errors.Is(err, ErrSpool) {
		t.Errorf("NewSpool() error = %v, must not be %v", err, ErrSpool)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("dir has %d entries, want 0", len(entries))
	}
}

func TestSpoolCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	if _, err := NewSpool(ctx, dir, strings.NewReader("data")); !errors.Is(err, context.Canceled) {
		t.Errorf("NewSpool() error = %v, want %v", err, context.Canceled)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("dir has %d entries, want 0", len(entries))
	}
}

func TestSpoolMissingDir(t *testing.T) {
	t.Parallel()

	_, err := NewSpool(context.Background(), "/nonexistent/jtab/spool", strings.NewReader("x"))
	if !errors.Is(err, ErrSpool) {
		t.Errorf("NewSpool() error = %v, want %v", err, ErrSpool)
	}
}
