// Package linter runs the rule catalogue over files on disk or in memory.
//
// Files are analyzed in parallel, each by one goroutine holding its own
// parse tree and traversal state. Results are cached by file path, content
// hash and config hash, so re-linting an unchanged file is a map lookup.
package linter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sourcegraph/conc/pool"

	"github.com/gnana997/uilint/pkg/components"
	"github.com/gnana997/uilint/pkg/config"
	"github.com/gnana997/uilint/pkg/lint"
	"github.com/gnana997/uilint/pkg/parser"
	"github.com/gnana997/uilint/pkg/parser/queries"
	"github.com/gnana997/uilint/pkg/util"
)

// Mode selects what a run produces for each file.
type Mode uint8

const (
	// ModeLint runs the active rules.
	ModeLint Mode = iota
	// ModeInspect summarizes detected components.
	ModeInspect
)

// FileResult is the outcome for one file.
type FileResult struct {
	Path        string               `json:"path"`
	Diagnostics []lint.Diagnostic    `json:"diagnostics,omitempty"`
	Components  []components.Summary `json:"components,omitempty"`
	// SyntaxErrors is set when the tree had error nodes; the file is
	// still analyzed.
	SyntaxErrors bool `json:"syntaxErrors,omitempty"`
	// Err holds read, parse and rule failures for this file.
	Err error `json:"-"`
}

// Result is the outcome of a run over many files, sorted by path.
type Result struct {
	Files []FileResult
}

// Diagnostics returns every diagnostic in file order.
func (r *Result) Diagnostics() []lint.Diagnostic {
	var all []lint.Diagnostic
	for _, f := range r.Files {
		all = append(all, f.Diagnostics...)
	}
	return all
}

// Counts returns the number of error and warning diagnostics.
func (r *Result) Counts() (errorCount, warningCount int) {
	for _, f := range r.Files {
		for _, d := range f.Diagnostics {
			switch d.Severity {
			case lint.SeverityError:
				errorCount++
			case lint.SeverityWarning:
				warningCount++
			}
		}
	}
	return errorCount, warningCount
}

// Failed returns the files that could not be fully analyzed.
func (r *Result) Failed() []FileResult {
	var failed []FileResult
	for _, f := range r.Files {
		if f.Err != nil {
			failed = append(failed, f)
		}
	}
	return failed
}

// Stats are cumulative counters for a Linter.
type Stats struct {
	FilesAnalyzed int64
	CacheHits     int64
	CacheMisses   int64
}

// Linter owns the parser pools, compiled queries and caches shared by
// every run. It is safe for concurrent use.
type Linter struct {
	cfg      *config.Config
	rules    []config.ActiveRule
	settings lint.Settings
	filter   *FileFilter
	workers  int
	logger   *slog.Logger

	parsers *parser.ParserManager
	queries *queries.QueryManager
	sources *util.SourceCache
	results *lru.Cache[uint64, FileResult]
	cfgHash uint64

	analyzed    atomic.Int64
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
}

// New creates a linter for cfg. Logger can be nil.
func New(cfg *config.Config, logger *slog.Logger) (*Linter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	filter, err := NewFileFilter(cfg.Files)
	if err != nil {
		return nil, err
	}
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to hash config: %w", err)
	}
	sources, err := util.NewSourceCache(util.SourceCacheConfig{}, logger)
	if err != nil {
		return nil, err
	}

	workers := util.Workers(cfg.Lint.Workers)
	l := &Linter{
		cfg:      cfg,
		rules:    cfg.ActiveRules(),
		settings: cfg.LintSettings(),
		filter:   filter,
		workers:  workers,
		logger:   logger,
		parsers:  parser.NewParserManager(logger, parser.WithPoolSize(workers)),
		queries:  queries.NewQueryManager(logger),
		sources:  sources,
		cfgHash:  xxhash.Sum64(cfgJSON),
	}
	if cfg.Lint.CacheSize > 0 {
		l.results, err = lru.New[uint64, FileResult](cfg.Lint.CacheSize)
		if err != nil {
			l.Close()
			return nil, fmt.Errorf("failed to create result cache: %w", err)
		}
	}

	logger.Debug("linter ready",
		"rules", len(l.rules),
		"workers", l.workers,
		"cache_size", cfg.Lint.CacheSize)
	return l, nil
}

// Config returns the configuration the linter was built with.
func (l *Linter) Config() *config.Config { return l.cfg }

// Filter returns the file filter built from the files config section.
func (l *Linter) Filter() *FileFilter { return l.filter }

// Rules returns the active rules.
func (l *Linter) Rules() []config.ActiveRule { return l.rules }

// Stats returns the cumulative counters.
func (l *Linter) Stats() Stats {
	return Stats{
		FilesAnalyzed: l.analyzed.Load(),
		CacheHits:     l.cacheHits.Load(),
		CacheMisses:   l.cacheMisses.Load(),
	}
}

// Lint analyzes the given files and directories with the active rules.
func (l *Linter) Lint(ctx context.Context, paths []string) (*Result, error) {
	return l.run(ctx, paths, ModeLint)
}

// Inspect summarizes the components in the given files and directories.
func (l *Linter) Inspect(ctx context.Context, paths []string) (*Result, error) {
	return l.run(ctx, paths, ModeInspect)
}

// LintSource lints in-memory source. path selects the dialect and is used
// by filename-sensitive rules.
func (l *Linter) LintSource(path string, source []byte) FileResult {
	return l.analyze(path, source, ModeLint)
}

// InspectSource summarizes the components of in-memory source.
func (l *Linter) InspectSource(path string, source []byte) FileResult {
	return l.analyze(path, source, ModeInspect)
}

// Files runs mode over an explicit list of files without expanding
// directories. The watcher uses it for changed files.
func (l *Linter) Files(ctx context.Context, files []string, mode Mode) (*Result, error) {
	results := make([]FileResult, len(files))

	p := pool.New().WithContext(ctx).WithMaxGoroutines(l.workers)
	for i, path := range files {
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = l.analyzeFile(path, mode)
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return &Result{Files: results}, nil
}

func (l *Linter) run(ctx context.Context, paths []string, mode Mode) (*Result, error) {
	files, err := l.filter.Expand(paths)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("discovered files", "count", len(files), "mode", mode)
	return l.Files(ctx, files, mode)
}

func (l *Linter) analyzeFile(path string, mode Mode) FileResult {
	source, err := l.sources.Read(path)
	if err != nil {
		return FileResult{Path: path, Err: fmt.Errorf("failed to read file: %w", err)}
	}
	return l.analyze(path, source, mode)
}

// cacheKey hashes everything a result depends on.
func (l *Linter) cacheKey(path string, source []byte, mode Mode) uint64 {
	var seed [9]byte
	for i := 0; i < 8; i++ {
		seed[i] = byte(l.cfgHash >> (8 * i))
	}
	seed[8] = byte(mode)

	d := xxhash.New()
	_, _ = d.Write(seed[:])
	_, _ = d.WriteString(path)
	_, _ = d.Write([]byte{0})
	_, _ = d.Write(source)
	return d.Sum64()
}

func (l *Linter) analyze(path string, source []byte, mode Mode) FileResult {
	var key uint64
	if l.results != nil {
		key = l.cacheKey(path, source, mode)
		if cached, ok := l.results.Get(key); ok {
			l.cacheHits.Add(1)
			return cached
		}
		l.cacheMisses.Add(1)
	}

	result := l.analyzeUncached(path, source, mode)
	l.analyzed.Add(1)

	// Read and parse failures depend on more than the content.
	if l.results != nil && !errors.Is(result.Err, errUnparsable) {
		l.results.Add(key, result)
	}
	return result
}

var errUnparsable = errors.New("file could not be parsed")

func (l *Linter) analyzeUncached(path string, source []byte, mode Mode) FileResult {
	result := FileResult{Path: path}

	tree, dialect, err := l.parsers.ParseFile(source, path)
	if err != nil {
		result.Err = fmt.Errorf("%w: %v", errUnparsable, err)
		return result
	}
	defer tree.Close()

	if tree.RootNode().HasError() {
		result.SyntaxErrors = true
		l.logger.Warn("syntax errors in file, analyzing partial tree", "file", path)
	}

	file, err := lint.NewFile(path, source, dialect, tree, l.queries)
	if err != nil {
		result.Err = fmt.Errorf("%w: %v", errUnparsable, err)
		return result
	}

	switch mode {
	case ModeInspect:
		result.Components, result.Err = components.Inspect(file, l.settings, l.logger)
	default:
		result.Diagnostics, result.Err = l.lintFile(file)
	}

	l.logger.Debug("analyzed file",
		"file", path,
		"diagnostics", len(result.Diagnostics),
		"components", len(result.Components))
	return result
}

// lintFile runs every active rule. A failing rule does not stop the others.
func (l *Linter) lintFile(file *lint.File) ([]lint.Diagnostic, error) {
	var (
		diagnostics []lint.Diagnostic
		errs        []error
	)
	for _, ar := range l.rules {
		id := ar.Rule.Meta().ID
		diags, err := lint.Run(file, ar.Rule, ar.Severity, l.settings, ar.Options, l.logger)
		if err != nil {
			l.logger.Warn("rule failed", "rule", id, "file", file.Path, "error", err)
			errs = append(errs, fmt.Errorf("rule %s: %w", id, err))
			continue
		}
		diagnostics = append(diagnostics, diags...)
	}

	sort.SliceStable(diagnostics, func(i, j int) bool {
		a, b := diagnostics[i], diagnostics[j]
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.RuleID < b.RuleID
	})
	return diagnostics, errors.Join(errs...)
}

// FetchLine returns a 1-based line of a file through the source cache.
func (l *Linter) FetchLine(path string, line int) (string, error) {
	return l.sources.FetchLine(path, line)
}

// Invalidate drops cached source for path.
func (l *Linter) Invalidate(path string) {
	l.sources.Invalidate(path)
}

// Close releases parsers, queries and mapped files.
func (l *Linter) Close() error {
	var errs []error
	if l.sources != nil {
		errs = append(errs, l.sources.Close())
	}
	if l.queries != nil {
		errs = append(errs, l.queries.Close())
	}
	if l.parsers != nil {
		errs = append(errs, l.parsers.Close())
	}
	return errors.Join(errs...)
}

// String names the mode for logs.
func (m Mode) String() string {
	if m == ModeInspect {
		return "inspect"
	}
	return "lint"
}
