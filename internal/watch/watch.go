// Package watch keeps the cross-run index current: it watches data roots
// for run directories and header files appearing or disappearing and
// invalidates the affected version.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pueo/pueonav/internal/locate"
	"github.com/pueo/pueonav/pkg/log"
)

// DefaultDebounce is how long a burst of changes must settle before the
// index is invalidated.
const DefaultDebounce = 500 * time.Millisecond

// Invalidator drops the cached tables of one version.
// *runindex.Registry satisfies this interface.
type Invalidator interface {
	Invalidate(v int)
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger. Defaults to no-op.
func WithLogger(l log.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// Watcher invalidates an index when the data roots it watches change.
type Watcher struct {
	inv    Invalidator
	roots  map[string]int
	logger log.Logger
	delay  time.Duration

	ready chan struct{}

	mu     sync.Mutex
	timers map[int]*time.Timer
}

// New returns a Watcher over roots, keyed by data root with the version
// each one serves.
func New(inv Invalidator, roots map[string]int, opts ...Option) *Watcher {
	w := &Watcher{
		inv:    inv,
		roots:  make(map[string]int, len(roots)),
		delay:  DefaultDebounce,
		ready:  make(chan struct{}),
		timers: make(map[int]*time.Timer),
	}
	for root, v := range roots {
		w.roots[filepath.Clean(root)] = v
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = log.OrNoop(w.logger)
	return w
}

// Ready is closed once every root and run directory is being watched.
func (w *Watcher) Ready() <-chan struct{} { return w.ready }

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()
	defer w.stopTimers()

	for root := range w.roots {
		if err := fsw.Add(root); err != nil {
			return fmt.Errorf("watch %s: %w", root, err)
		}
		runs, err := locate.Runs(root)
		if err != nil {
			return err
		}
		for _, run := range runs {
			w.addRunDir(fsw, locate.RunDir(root, run))
		}
		w.logger.Info("watching data root", log.Path(root), log.Int("runs", len(runs)))
	}
	close(w.ready)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handle(fsw, event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", log.Err(err))
		}
	}
}

func (w *Watcher) addRunDir(fsw *fsnotify.Watcher, dir string) {
	if err := fsw.Add(dir); err != nil {
		w.logger.Warn("cannot watch run directory", log.Path(dir), log.Err(err))
	}
}

func (w *Watcher) handle(fsw *fsnotify.Watcher, event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename|fsnotify.Write) == 0 {
		return
	}
	name := filepath.Clean(event.Name)
	parent := filepath.Dir(name)

	// run<N> directly under a root
	if v, ok := w.roots[parent]; ok {
		if _, isRun := locate.ParseRunDir(filepath.Base(name)); !isRun {
			return
		}
		if event.Op&fsnotify.Write != 0 {
			return
		}
		if event.Op&fsnotify.Create != 0 {
			w.addRunDir(fsw, name)
		}
		w.schedule(v, name)
		return
	}

	// header file inside a run directory
	v, ok := w.roots[filepath.Dir(parent)]
	if !ok {
		return
	}
	if _, isRun := locate.ParseRunDir(filepath.Base(parent)); !isRun {
		return
	}
	if isHeaderFile(filepath.Base(name)) {
		w.schedule(v, name)
	}
}

func isHeaderFile(base string) bool {
	for _, stem := range locate.HeaderNames {
		if strings.HasPrefix(base, stem) {
			return true
		}
	}
	return false
}

func (w *Watcher) schedule(v int, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[v]; ok {
		t.Stop()
	}
	w.logger.Debug("data root changed", log.Path(path), log.Epoch(v))
	w.timers[v] = time.AfterFunc(w.delay, func() {
		w.mu.Lock()
		delete(w.timers, v)
		w.mu.Unlock()
		w.inv.Invalidate(v)
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for v, t := range w.timers {
		t.Stop()
		delete(w.timers, v)
	}
}
