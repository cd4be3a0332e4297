package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/jacoelho/jtab/internal/input"
)

// ErrSpool reports that temporary storage could not be created or written.
var ErrSpool = errors.New("spool failure")

// Spool is a temporary seekable copy of a byte stream. It is owned by one
// run and removed by Close.
type Spool struct {
	file *os.File
	path string
	size int64
}

// NewSpool copies r into a uniquely named file under dir, or the system
// temporary directory when dir is empty. A failed copy leaves nothing
// behind. Failures reading r are reported as input.ErrInput, failures of
// the temporary file as ErrSpool.
func NewSpool(ctx context.Context, dir string, r io.Reader) (*Spool, error) {
	if dir == "" {
		dir = os.TempDir()
	}

	name := filepath.Join(dir, "jtab-"+uuid.NewString()+".spool")
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("%w: create: %v", ErrSpool, err)
	}

	src := &contextReader{ctx: ctx, r: r}
	n, err := io.Copy(f, src)
	if err != nil {
		f.Close()
		os.Remove(name)
		switch {
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case src.err != nil:
			return nil, fmt.Errorf("%w: %v", input.ErrInput, src.err)
		}
		return nil, fmt.Errorf("%w: write: %v", ErrSpool, err)
	}

	return &Spool{file: f, path: name, size: n}, nil
}

func (s *Spool) ReadAt(p []byte, off int64) (int, error) {
	return s.file.ReadAt(p, off)
}

func (s *Spool) Size() int64 { return s.size }

func (s *Spool) Path() string { return s.path }

// Close removes the spool file. It is safe to call more than once.
func (s *Spool) Close() error {
	if s.file == nil {
		return nil
	}
	closeErr := s.file.Close()
	removeErr := os.Remove(s.path)
	s.file = nil
	if removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
		return removeErr
	}
	return closeErr
}

// contextReader stops a copy once ctx is done and keeps the first read
// error of r apart from write errors.
type contextReader struct {
	ctx context.Context
	r   io.Reader
	err error
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := c.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) && c.err == nil {
		c.err = err
	}
	return n, err
}
