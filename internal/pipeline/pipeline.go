// Package pipeline runs records from an input stream through schema
// inference, filtering, flattening and sorting into a row sink.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jacoelho/jtab/internal/filter"
	"github.com/jacoelho/jtab/internal/flatten"
	"github.com/jacoelho/jtab/internal/formatter"
	"github.com/jacoelho/jtab/internal/input"
	"github.com/jacoelho/jtab/internal/logging"
	"github.com/jacoelho/jtab/internal/ratelimit"
	"github.com/jacoelho/jtab/internal/schema"
	"github.com/jacoelho/jtab/internal/sorter"
	"github.com/jacoelho/jtab/internal/table"
	"github.com/jacoelho/jtab/internal/value"
)

// ErrInvalidWindow reports a negative skip, limit or tail.
var ErrInvalidWindow = errors.New("invalid record window")

// ErrOptionConflict reports options that cannot be combined.
var ErrOptionConflict = errors.New("conflicting options")

// DefaultProgressRate is the number of progress reports per second used
// when Options.ProgressRate is zero.
const DefaultProgressRate = 4

// Progress is reported while input is being scanned.
type Progress struct {
	Records int
	Bytes   int64
}

// Stats summarises a finished run.
type Stats struct {
	Mode    Mode
	Scanned int
	Skipped int
	Rows    int
	Spooled bool

	// Children holds the non-empty child tables of a recursive run, ordered
	// by name. Parent indices refer to positions in the rendered table.
	Children []*table.ChildTable
}

type Options struct {
	Mode     Mode
	Columns  []string
	SortKeys []string
	Flat     bool
	Flatten  flatten.Config
	Filter   filter.Predicate

	// Recursive splits nested objects and arrays of each rendered row into
	// child tables, see Stats.Children.
	Recursive bool

	// Skip drops the first records after filtering. Limit caps the number
	// of records kept; 0 keeps everything. Tail keeps only the last Tail
	// records and takes precedence over Skip and Limit.
	Skip  int
	Limit int
	Tail  int

	Strict    bool
	SpoolDir  string
	CacheSize int

	Logger       *slog.Logger
	Progress     func(Progress)
	ProgressRate float64
}

func (o Options) requirements() Requirements {
	return Requirements{
		Sort:      len(o.SortKeys) > 0,
		Flatten:   o.Flat,
		Tail:      o.Tail > 0,
		Recursive: o.Recursive,
	}
}

// Pipeline is a validated, reusable run configuration.
type Pipeline struct {
	opts     Options
	mode     Mode
	selector *table.Selector
	sorter   *sorter.Sorter
	logger   *slog.Logger
}

// New validates opts eagerly: malformed paths, sort keys, flatten settings
// and mode conflicts are reported before any input is read.
func New(opts Options) (*Pipeline, error) {
	if opts.Skip < 0 || opts.Limit < 0 || opts.Tail < 0 {
		return nil, fmt.Errorf("%w: skip=%d limit=%d tail=%d", ErrInvalidWindow, opts.Skip, opts.Limit, opts.Tail)
	}
	if opts.Flat && opts.Recursive {
		return nil, fmt.Errorf("%w: flat and recursive", ErrOptionConflict)
	}
	if opts.Flat {
		if err := opts.Flatten.Validate(); err != nil {
			return nil, err
		}
	}

	sel, err := table.NewSelector(opts.Columns)
	if err != nil {
		return nil, err
	}

	keys, err := sorter.ParseKeys(opts.SortKeys)
	if err != nil {
		return nil, err
	}

	mode, err := Select(opts.Mode, opts.requirements())
	if err != nil {
		return nil, err
	}

	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.ProgressRate == 0 {
		opts.ProgressRate = DefaultProgressRate
	}

	return &Pipeline{
		opts:     opts,
		mode:     mode,
		selector: sel,
		sorter:   sorter.New(keys),
		logger:   opts.Logger,
	}, nil
}

// Mode is the execution mode chosen for this configuration.
func (p *Pipeline) Mode() Mode { return p.mode }

// Run reads src and writes the table to sink.
func (p *Pipeline) Run(ctx context.Context, src io.Reader, sink formatter.Formatter) (Stats, error) {
	stats := Stats{Mode: p.mode}
	p.logger.Info("pipeline mode selected", "mode", p.mode, "reasons", p.opts.requirements().Reasons())

	if p.mode == ModeStreaming {
		rc, compression, err := input.Decompress(src)
		if err != nil {
			return stats, err
		}
		defer rc.Close()
		p.logger.Debug("input opened", "compression", compression)

		return p.runStreaming(ctx, rc, sink, stats)
	}

	storage, size, release, err := p.storage(ctx, src, &stats)
	if err != nil {
		return stats, err
	}
	defer release()

	return p.runIndexed(ctx, storage, size, sink, stats)
}

// storage returns seekable uncompressed bytes for Indexed mode. Plain
// regular files are read in place; anything else is spooled.
func (p *Pipeline) storage(ctx context.Context, src io.Reader, stats *Stats) (io.ReaderAt, int64, func(), error) {
	noop := func() {}

	if f, ok := src.(*os.File); ok {
		if info, err := f.Stat(); err == nil && info.Mode().IsRegular() {
			magic := make([]byte, 4)
			n, _ := f.ReadAt(magic, 0)
			if input.DetectCompression(magic[:n]) == input.CompressionNone {
				p.logger.Debug("reading input in place", "file", f.Name(), "bytes", info.Size())
				return f, info.Size(), noop, nil
			}
		}
	}

	rc, compression, err := input.Decompress(src)
	if err != nil {
		return nil, 0, noop, err
	}
	defer rc.Close()

	spool, err := NewSpool(ctx, p.opts.SpoolDir, rc)
	if err != nil {
		return nil, 0, noop, err
	}
	stats.Spooled = true
	p.logger.Debug("input spooled", "path", spool.Path(), "bytes", spool.Size(), "compression", compression)

	release := func() {
		if err := spool.Close(); err != nil {
			p.logger.Warn("removing spool file", "path", spool.Path(), "error", err)
		}
	}
	return spool, spool.Size(), release, nil
}

func (p *Pipeline) match(v value.Value) bool {
	return p.opts.Filter == nil || p.opts.Filter.Match(v)
}

func (p *Pipeline) scanOptions(stats *Stats, bytesRead *int64) input.Options {
	return input.Options{
		Strict: p.opts.Strict,
		OnSkip: func(e *input.DecodeError) {
			stats.Skipped++
			p.logger.Warn("skipping invalid record", "error", e.Error())
		},
		OnRead: func(n int64) { *bytesRead = n },
	}
}

func (p *Pipeline) reporter() *ratelimit.Reporter[Progress] {
	return ratelimit.NewReporter(p.opts.ProgressRate, p.opts.Progress)
}

func (p *Pipeline) runStreaming(ctx context.Context, r io.Reader, sink formatter.Formatter, stats Stats) (Stats, error) {
	var (
		s         = schema.New()
		layout    *table.Layout
		bytesRead int64
		w         = window{skip: p.opts.Skip, limit: p.opts.Limit}
		progress  = p.reporter()
	)

	for rec, err := range input.Scan(ctx, r, p.scanOptions(&stats, &bytesRead)) {
		if err != nil {
			return stats, err
		}
		stats.Scanned++
		progress.Report(Progress{Records: stats.Scanned, Bytes: bytesRead})

		if !p.match(rec.Value) || !w.admit() {
			continue
		}

		schema.InferStreaming(rec.Value, s)
		if layout == nil {
			layout = table.NewLayout(p.selector.Resolve(s))
			if err := sink.Begin(layout.Columns()); err != nil {
				return stats, err
			}
		}

		if err := sink.Row(layout.Row(rec.Value)); err != nil {
			return stats, err
		}
		stats.Rows++

		if w.full() {
			break
		}
	}
	progress.Flush()

	if layout == nil {
		if err := sink.Begin(p.selector.Resolve(s)); err != nil {
			return stats, err
		}
	}
	return stats, sink.End()
}

func (p *Pipeline) runIndexed(ctx context.Context, storage io.ReaderAt, size int64, sink formatter.Formatter, stats Stats) (Stats, error) {
	var (
		kept      []entry
		tail      *ring
		fold      = p.newFolder()
		bytesRead int64
		w         = window{skip: p.opts.Skip, limit: p.opts.Limit}
		progress  = p.reporter()
		sorting   = len(p.sorter.Keys()) > 0
	)
	if p.opts.Tail > 0 {
		tail = newRing(p.opts.Tail)
	}

	src := io.NewSectionReader(storage, 0, size)
	for rec, err := range input.Scan(ctx, src, p.scanOptions(&stats, &bytesRead)) {
		if err != nil {
			return stats, err
		}
		stats.Scanned++
		progress.Report(Progress{Records: stats.Scanned, Bytes: bytesRead})

		if !p.match(rec.Value) {
			continue
		}

		e := entry{offset: rec.Offset}
		if sorting {
			e.tuple = p.sorter.Extract(rec.Value)
		}

		if tail != nil {
			tail.push(e)
			continue
		}
		if !w.admit() {
			continue
		}

		kept = append(kept, e)
		fold.add(rec.Value)
		if w.full() {
			break
		}
	}
	progress.Flush()

	if tail != nil {
		kept = tail.items()
	}

	offsets := make([]int64, len(kept))
	tuples := make([][]value.Value, len(kept))
	for i, e := range kept {
		offsets[i] = e.offset
		tuples[i] = e.tuple
	}
	index := NewIndex(storage, offsets, p.opts.CacheSize)

	if tail != nil {
		for i := range index.Len() {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			v, err := index.Record(i)
			if err != nil {
				return stats, err
			}
			fold.add(v)
		}
	}

	order := identity(len(kept))
	if sorting {
		order = p.sorter.SortIndices(tuples)
	}

	layout := fold.layout(p.selector)
	if err := sink.Begin(layout.Columns()); err != nil {
		return stats, err
	}

	var children *table.Children
	if p.opts.Recursive {
		children = table.NewChildren()
	}

	for _, i := range order {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		v, err := index.Record(i)
		if err != nil {
			return stats, err
		}
		if err := sink.Row(layout.Row(v)); err != nil {
			return stats, err
		}
		if children != nil {
			children.Add(stats.Rows, v)
		}
		stats.Rows++
	}

	if children != nil {
		stats.Children = children.Tables()
	}
	return stats, sink.End()
}

func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// window applies skip and limit to the filtered record sequence.
type window struct {
	skip, limit   int
	skipped, kept int
}

func (w *window) admit() bool {
	if w.skipped < w.skip {
		w.skipped++
		return false
	}
	w.kept++
	return true
}

func (w *window) full() bool {
	return w.limit > 0 && w.kept >= w.limit
}

type entry struct {
	offset int64
	tuple  []value.Value
}

// ring keeps the last n entries pushed.
type ring struct {
	buf         []entry
	start, size int
}

func newRing(n int) *ring {
	return &ring{buf: make([]entry, n)}
}

func (r *ring) push(e entry) {
	if r.size < len(r.buf) {
		r.buf[(r.start+r.size)%len(r.buf)] = e
		r.size++
		return
	}
	r.buf[r.start] = e
	r.start = (r.start + 1) % len(r.buf)
}

func (r *ring) items() []entry {
	out := make([]entry, r.size)
	for i := range out {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}

// folder accumulates the full schema of kept records for Indexed mode.
type folder struct {
	schema *schema.Schema
	flat   *flatten.Builder
	cfg    flatten.Config
}

func (p *Pipeline) newFolder() *folder {
	if p.opts.Flat {
		return &folder{flat: flatten.NewBuilder(p.opts.Flatten), cfg: p.opts.Flatten}
	}
	return &folder{schema: schema.New()}
}

func (f *folder) add(v value.Value) {
	if f.flat != nil {
		f.flat.Add(v)
		return
	}
	f.schema.Observe(v)
}

func (f *folder) layout(sel *table.Selector) *table.Layout {
	if f.flat != nil {
		fs := f.flat.Build()
		return table.NewFlatLayout(sel.Resolve(fs), fs, f.cfg)
	}
	return table.NewLayout(sel.Resolve(f.schema))
}
