// Package watch re-lints source files as they change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gnana997/uilint/pkg/linter"
)

// DefaultDebounce groups the burst of events an editor save produces.
const DefaultDebounce = 200 * time.Millisecond

// Analyzer is the part of the linter the watcher drives.
type Analyzer interface {
	Files(ctx context.Context, files []string, mode linter.Mode) (*linter.Result, error)
	Filter() *linter.FileFilter
	Invalidate(path string)
}

// ResultFunc receives the result of re-linting one changed file.
type ResultFunc func(result *linter.Result)

// Options configure a Watcher.
type Options struct {
	// Debounce is the quiet period after the last event for a file
	// before it is re-linted.
	Debounce time.Duration
	// Mode selects linting or component inspection.
	Mode linter.Mode
}

// Watcher watches a directory tree and re-lints files the linter's filter
// selects, one debounced run per changed file.
//
// Usage:
//
//	w, err := watch.New(root, l, report, watch.Options{}, logger)
//	if err != nil {
//	    return err
//	}
//	if err := w.Start(ctx); err != nil {
//	    return err
//	}
//	defer w.Stop()
type Watcher struct {
	watcher  *fsnotify.Watcher
	analyzer Analyzer
	onResult ResultFunc
	root     string
	options  Options
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	// Debouncing
	timers  map[string]*time.Timer
	timerMu sync.Mutex
	running sync.WaitGroup

	relinted atomic.Int64
	started  atomic.Bool
	stopped  atomic.Bool
	done     chan struct{}
}

// New creates a watcher for root. Logger can be nil.
func New(root string, analyzer Analyzer, onResult ResultFunc, options Options, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if options.Debounce <= 0 {
		options.Debounce = DefaultDebounce
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		watcher:  fsw,
		analyzer: analyzer,
		onResult: onResult,
		root:     absRoot,
		options:  options,
		logger:   logger,
		timers:   make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}, nil
}

// Start registers the directory tree and processes events in the
// background until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if w.stopped.Load() {
		return errors.New("watcher already stopped")
	}
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("watcher already started")
	}

	if err := w.addTree(w.root); err != nil {
		w.started.Store(false)
		return err
	}

	w.ctx, w.cancel = context.WithCancel(ctx)
	go w.eventLoop()

	w.logger.Info("file watcher started", "root", w.root, "debounce", w.options.Debounce)
	return nil
}

// addTree watches dir and its subdirectories, skipping excluded ones.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.excluded(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			if path == dir {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) excluded(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	return w.analyzer.Filter().Excluded(filepath.ToSlash(rel))
}

// Stop ends event processing and waits for in-flight runs. It is safe to
// call more than once.
func (w *Watcher) Stop() error {
	if !w.stopped.CompareAndSwap(false, true) {
		return nil
	}

	w.timerMu.Lock()
	for path, timer := range w.timers {
		if timer.Stop() {
			w.running.Done()
		}
		delete(w.timers, path)
	}
	w.timerMu.Unlock()

	if w.cancel != nil {
		w.cancel()
	}
	err := w.watcher.Close()
	if w.started.Load() {
		<-w.done
	}
	w.running.Wait()

	w.logger.Info("file watcher stopped", "relinted", w.relinted.Load())
	return err
}

// Done is closed once the event loop has exited.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func (w *Watcher) eventLoop() {
	defer close(w.done)
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !w.excluded(path) {
				if err := w.addTree(path); err != nil {
					w.logger.Warn("failed to watch new directory", "path", path, "error", err)
				}
			}
			return
		}
	}

	if !w.analyzer.Filter().Match(w.root, path) {
		return
	}

	w.logger.Debug("file event", "op", event.Op.String(), "file", path)

	switch {
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		w.schedule(path)
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.cancelPending(path)
		w.analyzer.Invalidate(path)
	}
}

// schedule re-lints path after the debounce period. Further events for
// the same file restart the period.
func (w *Watcher) schedule(path string) {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.stopped.Load() {
		return
	}
	if timer, exists := w.timers[path]; exists && timer.Stop() {
		w.running.Done()
	}

	w.running.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(w.options.Debounce, func() {
		defer w.running.Done()

		w.timerMu.Lock()
		if w.timers[path] == timer {
			delete(w.timers, path)
		}
		w.timerMu.Unlock()

		w.relint(path)
	})
	w.timers[path] = timer
}

func (w *Watcher) cancelPending(path string) {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if timer, exists := w.timers[path]; exists {
		if timer.Stop() {
			w.running.Done()
		}
		delete(w.timers, path)
	}
}

func (w *Watcher) relint(path string) {
	w.analyzer.Invalidate(path)

	result, err := w.analyzer.Files(w.ctx, []string{path}, w.options.Mode)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			w.logger.Warn("failed to re-lint file", "file", path, "error", err)
		}
		return
	}
	w.relinted.Add(1)
	w.logger.Debug("file re-linted", "file", path)

	if w.onResult != nil {
		w.onResult(result)
	}
}

// Stats reports pending runs and the number of completed re-lints.
type Stats struct {
	Pending  int
	Relinted int64
	Running  bool
}

// Stats returns the current counters.
func (w *Watcher) Stats() Stats {
	w.timerMu.Lock()
	pending := len(w.timers)
	w.timerMu.Unlock()

	return Stats{
		Pending:  pending,
		Relinted: w.relinted.Load(),
		Running:  w.started.Load() && !w.stopped.Load(),
	}
}
