package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for a burst of events to settle.
const DefaultDebounce = 100 * time.Millisecond

// Batch is one settled set of changes.
type Batch struct {
	// Modules must be rebuilt.
	Modules []string
	// Removed modules no longer exist.
	Removed []string
	// Created are new files accepted by the source filter.
	Created []string
}

// Empty reports whether the batch carries no work.
func (b Batch) Empty() bool {
	return len(b.Modules) == 0 && len(b.Removed) == 0 && len(b.Created) == 0
}

// Handler processes a batch. An error is logged and watching goes on.
type Handler func(ctx context.Context, batch Batch) error

// Options configures a Watcher.
type Options struct {
	Debounce time.Duration
	// Roots are watched recursively for new sources.
	Roots []string
	// IsSource accepts new files as modules.
	IsSource func(path string) bool
	Logger   *slog.Logger
}

// Watcher turns file system events into rebuild batches using a DependencyGraph.
type Watcher struct {
	graph    *DependencyGraph
	watcher  *fsnotify.Watcher
	opts     Options
	logger   *slog.Logger
	mu       sync.Mutex
	watching map[string]bool
}

// NewWatcher creates a watcher over the files of graph and the directories below opts.Roots.
func NewWatcher(graph *DependencyGraph, opts Options) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.IsSource == nil {
		opts.IsSource = func(string) bool { return false }
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	w := &Watcher{
		graph:    graph,
		watcher:  fsw,
		opts:     opts,
		logger:   logger,
		watching: make(map[string]bool),
	}
	if err := w.Sync(); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Sync watches the directories of every file in the graph and every directory below the roots.
func (w *Watcher) Sync() error {
	dirs := make(map[string]bool)
	for _, file := range w.graph.Files() {
		dirs[filepath.Dir(file)] = true
	}
	for _, root := range w.opts.Roots {
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				dirs[path] = true
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("watch: scan %s: %w", root, err)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for dir := range dirs {
		if w.watching[dir] {
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("watch: add %s: %w", dir, err)
		}
		w.watching[dir] = true
	}
	return nil
}

// Run dispatches batches to handler until ctx is done.
func (w *Watcher) Run(ctx context.Context, handler Handler) error {
	defer w.watcher.Close()

	pending := make(map[string]fsnotify.Op)
	timer := time.NewTimer(w.opts.Debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			pending[filepath.Clean(event.Name)] |= event.Op
			timer.Reset(w.opts.Debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)

		case <-timer.C:
			batch := w.collect(pending)
			pending = make(map[string]fsnotify.Op)
			if batch.Empty() {
				continue
			}
			if err := handler(ctx, batch); err != nil {
				w.logger.Error("rebuild failed", "error", err)
			}
			if err := w.Sync(); err != nil {
				w.logger.Warn("watch sync failed", "error", err)
			}
		}
	}
}

// collect resolves pending events into a batch.
func (w *Watcher) collect(pending map[string]fsnotify.Op) Batch {
	modules := make(map[string]bool)
	removed := make(map[string]bool)
	var batch Batch

	for path, op := range pending {
		info, err := os.Stat(path)
		exists := err == nil

		if !exists && w.graph.IsModule(path) {
			removed[path] = true
		}
		if exists && info.IsDir() {
			continue
		}
		if exists && op.Has(fsnotify.Create) && !w.graph.IsModule(path) && w.opts.IsSource(path) {
			batch.Created = append(batch.Created, path)
		}
		for _, module := range w.graph.Affected(path) {
			modules[module] = true
		}
	}

	for module := range modules {
		if !removed[module] {
			batch.Modules = append(batch.Modules, module)
		}
	}
	for module := range removed {
		batch.Removed = append(batch.Removed, module)
	}
	sort.Strings(batch.Modules)
	sort.Strings(batch.Removed)
	sort.Strings(batch.Created)
	return batch
}
