package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jacoelho/jtab/internal/config"
	"github.com/jacoelho/jtab/internal/exit"
	"github.com/jacoelho/jtab/internal/filter"
	"github.com/jacoelho/jtab/internal/formatter"
	"github.com/jacoelho/jtab/internal/formatter/delimited"
	"github.com/jacoelho/jtab/internal/formatter/jsonl"
	"github.com/jacoelho/jtab/internal/formatter/stdout"
	"github.com/jacoelho/jtab/internal/logging"
	"github.com/jacoelho/jtab/internal/pipeline"
)

const prog = "jtab"

func main() {
	exitCode := run()
	os.Exit(exitCode)
}

func run() int {
	cfg, exitResult := config.Parse(os.Args)
	if exitResult != nil {
		exitResult.Print()
		return exitResult.ExitCode
	}

	logger := logging.New(os.Stderr, logging.LevelFromVerbosity(cfg.Verbosity, cfg.Quiet))

	p, err := newPipeline(cfg, logger)
	if err != nil {
		exitResult = exit.Usage(fmt.Sprintf("%s: %v", prog, err))
		exitResult.Print()
		return exitResult.ExitCode
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if exitResult := execute(ctx, cfg, p, os.Stdout, logger); exitResult != nil {
		exitResult.Print()
		return exitResult.ExitCode
	}
	return exit.CodeOK
}

func execute(ctx context.Context, cfg *config.Config, p *pipeline.Pipeline, w io.Writer, logger *slog.Logger) *exit.Result {
	src := io.Reader(os.Stdin)
	if cfg.File != "" {
		f, err := os.Open(cfg.File)
		if err != nil {
			return exit.FromError(prog, err)
		}
		defer f.Close()
		src = f
	}

	stats, err := p.Run(ctx, src, newFormatter(cfg.Style, w))
	if err != nil {
		return exit.FromError(prog, err)
	}

	for _, child := range stats.Children {
		if _, err := fmt.Fprintf(w, "\n## %s\n\n", child.Name); err != nil {
			return exit.FromError(prog, err)
		}
		if err := child.Table().Render(newFormatter(cfg.Style, w)); err != nil {
			return exit.FromError(prog, err)
		}
	}

	logger.Info("done", "mode", stats.Mode, "records", stats.Scanned, "rows", stats.Rows, "skipped", stats.Skipped)
	return nil
}

func newPipeline(cfg *config.Config, logger *slog.Logger) (*pipeline.Pipeline, error) {
	pred, err := newFilter(cfg)
	if err != nil {
		return nil, err
	}

	opts := pipeline.Options{
		Mode:      cfg.Mode,
		Columns:   cfg.Columns,
		SortKeys:  cfg.Sort,
		Flat:      cfg.Flat,
		Flatten:   cfg.FlattenConfig(),
		Filter:    pred,
		Recursive: cfg.Recursive,
		Skip:      cfg.Skip,
		Limit:     cfg.Limit,
		Tail:      cfg.Tail,
		Strict:    cfg.Strict,
		SpoolDir:  cfg.SpoolDir,
		Logger:    logger,
	}
	if cfg.Progress {
		opts.Progress = func(p pipeline.Progress) {
			logger.Info("reading", "records", p.Records, "bytes", p.Bytes)
		}
	}

	return pipeline.New(opts)
}

// newFilter combines --filter, --where and --search; a record must satisfy
// all of them.
func newFilter(cfg *config.Config) (filter.Predicate, error) {
	var preds []filter.Predicate

	if cfg.Filter != "" {
		expr, err := filter.Parse(cfg.Filter)
		if err != nil {
			return nil, err
		}
		preds = append(preds, expr)
	}

	if cfg.Where != "" {
		jp, err := filter.NewJSONPath(cfg.Where)
		if err != nil {
			return nil, err
		}
		preds = append(preds, jp)
	}

	if cfg.Search != "" {
		preds = append(preds, filter.NewSearch(cfg.Search))
	}

	return filter.All(preds...), nil
}

func newFormatter(style formatter.Style, w io.Writer) formatter.Formatter {
	switch style {
	case formatter.StyleMarkdown:
		return stdout.NewMarkdown(w)
	case formatter.StyleCSV:
		return delimited.NewCSV(w)
	case formatter.StyleTSV:
		return delimited.NewTSV(w)
	case formatter.StyleJSONL:
		return jsonl.New(w)
	}
	return stdout.NewWithWriter(w)
}
