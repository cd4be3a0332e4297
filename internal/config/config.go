// Package config turns command-line arguments and an optional YAML file
// into a validated Config.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/jacoelho/jtab/internal/exit"
	"github.com/jacoelho/jtab/internal/flatten"
	"github.com/jacoelho/jtab/internal/formatter"
	"github.com/jacoelho/jtab/internal/pipeline"
)

// Version is reported by --version. Release builds set it with -ldflags.
var Version = "dev"

var (
	ErrTooManyInputs  = errors.New("at most one input file may be given")
	ErrInvalidValue   = errors.New("invalid value")
	ErrWindowConflict = errors.New("--tail cannot be combined with --skip or --limit")
	ErrShapeConflict  = errors.New("--flat cannot be combined with --recursive")
	ErrConfigFile     = errors.New("config file")
)

// Config represents the complete configuration for the jtab tool.
type Config struct {
	// Input; empty reads stdin.
	File string

	// Table shape
	Columns    []string
	Sort       []string
	Flat       bool
	FlatDepth  int // flatten.Unbounded when no depth was given
	ArrayLimit int
	Recursive  bool

	// Execution
	Mode     pipeline.Mode
	Strict   bool
	SpoolDir string

	// Record selection
	Filter string
	Where  string
	Search string
	Skip   int
	Limit  int // 0 = unlimited
	Tail   int // 0 = disabled

	// Output
	Style     formatter.Style
	Progress  bool
	Verbosity int
	Quiet     bool

	ConfigFile string
}

// Default returns the configuration used when nothing is specified.
func Default() *Config {
	d := flatten.DefaultConfig()
	return &Config{
		FlatDepth:  d.MaxDepth,
		ArrayLimit: d.ArrayLimit,
		Strict:     true,
	}
}

// FlattenConfig returns the flattening settings.
func (c *Config) FlattenConfig() flatten.Config {
	return flatten.Config{MaxDepth: c.FlatDepth, ArrayLimit: c.ArrayLimit}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.Skip < 0 || c.Limit < 0 || c.Tail < 0 {
		return fmt.Errorf("%w: --skip, --limit and --tail must not be negative", ErrInvalidValue)
	}
	if c.Tail > 0 && (c.Skip > 0 || c.Limit > 0) {
		return ErrWindowConflict
	}
	if c.Flat && c.Recursive {
		return ErrShapeConflict
	}
	if c.ArrayLimit < 1 {
		return fmt.Errorf("%w: --array-limit must be at least 1, got %d", ErrInvalidValue, c.ArrayLimit)
	}
	if c.File != "" {
		if _, err := os.Stat(c.File); err != nil {
			return fmt.Errorf("input file %s not found: %w", c.File, err)
		}
	}
	return nil
}

// File is the YAML config file layout. Every field is optional.
type File struct {
	Columns    []string `yaml:"columns"`
	Sort       []string `yaml:"sort"`
	Flat       *bool    `yaml:"flat"`
	FlatDepth  *int     `yaml:"flat_depth"`
	ArrayLimit *int     `yaml:"array_limit"`
	Recursive  *bool    `yaml:"recursive"`
	Mode       string   `yaml:"mode"`
	Style      string   `yaml:"style"`
	Strict     *bool    `yaml:"strict"`
	Filter     string   `yaml:"filter"`
	Where      string   `yaml:"where"`
	Search     string   `yaml:"search"`
	SpoolDir   string   `yaml:"spool_dir"`
	Progress   *bool    `yaml:"progress"`
	Verbosity  *int     `yaml:"verbosity"`
}

// LoadFile decodes a config file. Unknown fields are rejected.
func LoadFile(r io.Reader) (*File, error) {
	var f File
	if err := yaml.NewDecoder(r, yaml.DisallowUnknownField()).Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigFile, err)
	}
	return &f, nil
}

// apply copies the fields set in f onto c.
func (f *File) apply(c *Config) error {
	if f.Columns != nil {
		c.Columns = f.Columns
	}
	if f.Sort != nil {
		c.Sort = f.Sort
	}
	if f.Flat != nil {
		c.Flat = *f.Flat
	}
	if f.FlatDepth != nil {
		if *f.FlatDepth < 0 {
			return fmt.Errorf("%w: flat_depth must not be negative", ErrConfigFile)
		}
		c.Flat = true
		c.FlatDepth = *f.FlatDepth
	}
	if f.ArrayLimit != nil {
		c.ArrayLimit = *f.ArrayLimit
	}
	if f.Recursive != nil {
		c.Recursive = *f.Recursive
	}
	if f.Mode != "" {
		m, err := pipeline.ParseMode(f.Mode)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrConfigFile, err)
		}
		c.Mode = m
	}
	if f.Style != "" {
		s, err := formatter.ParseStyle(f.Style)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrConfigFile, err)
		}
		c.Style = s
	}
	if f.Strict != nil {
		c.Strict = *f.Strict
	}
	if f.Filter != "" {
		c.Filter = f.Filter
	}
	if f.Where != "" {
		c.Where = f.Where
	}
	if f.Search != "" {
		c.Search = f.Search
	}
	if f.SpoolDir != "" {
		c.SpoolDir = f.SpoolDir
	}
	if f.Progress != nil {
		c.Progress = *f.Progress
	}
	if f.Verbosity != nil {
		c.Verbosity = *f.Verbosity
	}
	return nil
}

// listFlag implements flag.Value for comma-separated, repeatable lists. The
// first Set replaces any default so flags override the config file.
type listFlag struct {
	items *[]string
	set   bool
}

func (l *listFlag) String() string {
	if l.items == nil {
		return ""
	}
	return strings.Join(*l.items, ",")
}

func (l *listFlag) Set(value string) error {
	if !l.set {
		*l.items = nil
		l.set = true
	}
	for item := range strings.SplitSeq(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			*l.items = append(*l.items, item)
		}
	}
	return nil
}

// flatFlag implements --flat and --flat=DEPTH.
type flatFlag struct {
	flat  *bool
	depth *int
}

func (f *flatFlag) IsBoolFlag() bool { return true }

func (f *flatFlag) String() string {
	if f.flat == nil || !*f.flat {
		return "false"
	}
	if *f.depth < 0 {
		return "true"
	}
	return strconv.Itoa(*f.depth)
}

func (f *flatFlag) Set(value string) error {
	if n, err := strconv.Atoi(value); err == nil {
		if n < 0 {
			return fmt.Errorf("%w: --flat expects a non-negative depth, got %q", ErrInvalidValue, value)
		}
		*f.flat = true
		*f.depth = n
		return nil
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%w: --flat expects a non-negative depth, got %q", ErrInvalidValue, value)
	}
	*f.flat = b
	*f.depth = flatten.Unbounded
	return nil
}

// countFlag implements a repeatable -v.
type countFlag struct{ n *int }

func (c *countFlag) IsBoolFlag() bool { return true }

func (c *countFlag) String() string {
	if c.n == nil {
		return "0"
	}
	return strconv.Itoa(*c.n)
}

func (c *countFlag) Set(value string) error {
	if n, err := strconv.Atoi(value); err == nil && n >= 0 {
		*c.n = n
		return nil
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%w: verbosity %q", ErrInvalidValue, value)
	}
	if b {
		*c.n++
	} else {
		*c.n = 0
	}
	return nil
}

type modeFlag struct{ mode *pipeline.Mode }

func (m *modeFlag) String() string {
	if m.mode == nil {
		return ""
	}
	return m.mode.String()
}

func (m *modeFlag) Set(value string) error {
	mode, err := pipeline.ParseMode(value)
	if err != nil {
		return err
	}
	*m.mode = mode
	return nil
}

type styleFlag struct{ style *formatter.Style }

func (s *styleFlag) String() string {
	if s.style == nil {
		return ""
	}
	return s.style.String()
}

func (s *styleFlag) Set(value string) error {
	style, err := formatter.ParseStyle(value)
	if err != nil {
		return err
	}
	*s.style = style
	return nil
}

type cliFlags struct {
	fs      *flag.FlagSet
	version *bool
}

// newFlagSet binds every flag to a field of c.
func newFlagSet(name string, c *Config) cliFlags {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	// Suppress the default usage and error output since we handle it ourselves
	fs.Usage = func() {}
	fs.SetOutput(io.Discard)

	columns := &listFlag{items: &c.Columns}
	sort := &listFlag{items: &c.Sort}
	verbose := &countFlag{n: &c.Verbosity}

	fs.Var(columns, "columns", "Columns to show")
	fs.Var(columns, "c", "Columns to show")
	fs.Var(sort, "sort", "Sort keys")
	fs.Var(sort, "s", "Sort keys")
	fs.Var(&flatFlag{flat: &c.Flat, depth: &c.FlatDepth}, "flat", "Flatten nested objects")
	fs.IntVar(&c.ArrayLimit, "array-limit", c.ArrayLimit, "Array elements shown when flattening")
	fs.BoolVar(&c.Recursive, "recursive", c.Recursive, "Show nested values as child tables")
	fs.BoolVar(&c.Recursive, "r", c.Recursive, "Show nested values as child tables")
	fs.Var(&modeFlag{mode: &c.Mode}, "mode", "Execution mode")
	fs.Var(&styleFlag{style: &c.Style}, "style", "Output style")
	fs.BoolVar(&c.Strict, "strict", c.Strict, "Fail on invalid records")
	fs.BoolFunc("lenient", "Skip invalid records", func(string) error {
		c.Strict = false
		return nil
	})
	fs.StringVar(&c.Filter, "filter", c.Filter, "Column filter expression")
	fs.StringVar(&c.Where, "where", c.Where, "JSONPath filter expression")
	fs.StringVar(&c.Search, "search", c.Search, "Full-text search")
	fs.IntVar(&c.Skip, "skip", c.Skip, "Records to skip")
	fs.IntVar(&c.Limit, "limit", c.Limit, "Maximum records")
	fs.IntVar(&c.Tail, "tail", c.Tail, "Keep only the last N records")
	fs.StringVar(&c.SpoolDir, "spool-dir", c.SpoolDir, "Directory for temporary spool files")
	fs.BoolVar(&c.Progress, "progress", c.Progress, "Log read progress")
	fs.StringVar(&c.ConfigFile, "config", c.ConfigFile, "YAML config file")
	fs.Var(verbose, "verbose", "Increase log verbosity")
	fs.Var(verbose, "v", "Increase log verbosity")
	fs.BoolVar(&c.Quiet, "quiet", c.Quiet, "Suppress log output")

	return cliFlags{fs: fs, version: fs.Bool("version", false, "Show version information")}
}

// Parse parses command-line arguments and returns a validated Config.
// If parsing fails or help is requested, returns nil config and exit result.
func Parse(args []string) (*Config, *exit.Result) {
	name := "jtab"
	if len(args) > 0 {
		name = args[0]
		args = args[1:]
	}

	cfg := Default()
	flags := newFlagSet(name, cfg)
	rest, err := parseArgs(flags.fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, exit.Success(Usage())
		}
		return nil, exit.Usage(fmt.Sprintf("Error: failed to parse arguments: %v\n\n%s", err, Usage()))
	}
	if *flags.version {
		return nil, exit.Success("jtab " + Version)
	}

	// Explicit flags win over the config file: load the file into fresh
	// defaults, then parse the arguments again on top.
	if cfg.ConfigFile != "" {
		file := cfg.ConfigFile
		cfg = Default()

		if err := loadInto(cfg, file); err != nil {
			return nil, exit.Errorf("Error: %v", err)
		}

		flags = newFlagSet(name, cfg)
		if rest, err = parseArgs(flags.fs, args); err != nil {
			return nil, exit.Usage(fmt.Sprintf("Error: failed to parse arguments: %v\n\n%s", err, Usage()))
		}
	}

	switch len(rest) {
	case 0:
	case 1:
		if rest[0] != "-" {
			cfg.File = rest[0]
		}
	default:
		return nil, exit.Usage(fmt.Sprintf("Error: %v\n\n%s", ErrTooManyInputs, Usage()))
	}

	if err := cfg.Validate(); err != nil {
		return nil, exit.Usage(fmt.Sprintf("Error: %v\n\n%s", err, Usage()))
	}

	return cfg, nil
}

// parseArgs parses flags that may appear before or after positional
// arguments and returns the positional ones.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func loadInto(cfg *Config, name string) error {
	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfigFile, err)
	}
	defer f.Close()

	file, err := LoadFile(f)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return file.apply(cfg)
}

// Usage returns a usage string for the CLI tool.
func Usage() string {
	return `jtab - render JSON records as a table

Usage: jtab [options] [file]

Reads JSON Lines or a JSON array from file, or stdin when file is absent
or "-". Gzip and zstd input is detected automatically.

Options:
  -c, --columns LIST      Columns to show, comma separated (a.b, items[0], user.*)
  -s, --sort LIST         Sort keys, comma separated; prefix with - for descending
  --flat[=DEPTH]          Flatten nested objects into dotted columns
  --array-limit N         Array elements shown when flattening (default: 3)
  -r, --recursive         Print nested objects and arrays as child tables
                          linked by _parent_row
  --mode MODE             auto, streaming or indexed (default: auto)
  --style STYLE           plain, markdown, csv, tsv or jsonl (default: plain);
                          plain and markdown hold all rows to align columns,
                          csv, tsv and jsonl write each row as it is read
  --strict                Fail on invalid or non-object records (default)
  --lenient               Skip invalid or non-object records with a warning
  --filter EXPR           Column conditions: col=v, col!=v, col>n, col~text ...
  --where EXPR            JSONPath filter, e.g. '@.age > 30' or '$[?@.ok]'
  --search TEXT           Case-insensitive search across all values
  --skip N                Skip the first N matching records
  --limit N               Show at most N matching records
  --tail N                Show only the last N matching records
  --spool-dir DIR         Directory for temporary copies of piped input
  --progress              Log read progress
  --config FILE           YAML file with default settings
  -v, --verbose           Increase log verbosity (repeatable)
  --quiet                 Suppress log output
  -h, --help              Show this help message
  --version               Show version information

Examples:
  jtab events.jsonl                        # Table of every record
  jtab -c id,user.name -s -ts events.jsonl # Selected columns, newest first
  jtab --flat=1 --style md events.jsonl    # One level of flattening as markdown
  jtab -r orders.json                      # Orders plus one table per nested field
  zcat logs.gz | jtab --filter 'level=error' --tail 20`
}
