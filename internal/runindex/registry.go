package runindex

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pueo/pueonav/internal/locate"
	"github.com/pueo/pueonav/internal/metrics"
	"github.com/pueo/pueonav/pkg/log"
)

const (
	tableEvent = "event"
	tableTime  = "time"
)

// Option configures a Registry.
type Option func(*options)

type options struct {
	dataDir     func(v int) (string, error)
	cacheDir    string
	logger      log.Logger
	concurrency int
	readOnly    bool
}

// WithDataDir overrides data root resolution (default locate.DataDir).
func WithDataDir(fn func(v int) (string, error)) Option {
	return func(o *options) { o.dataDir = fn }
}

// WithCacheDir sets where cache files are read and written
// (default locate.CalibDir at build time).
func WithCacheDir(dir string) Option {
	return func(o *options) { o.cacheDir = dir }
}

// WithLogger sets the logger. Defaults to no-op.
func WithLogger(l log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithConcurrency bounds how many header files a scan opens at once.
func WithConcurrency(n int) Option {
	return func(o *options) { o.concurrency = n }
}

// WithReadOnlyCache stops scans from writing cache files.
func WithReadOnlyCache() Option {
	return func(o *options) { o.readOnly = true }
}

// Registry holds the cross-run tables for each version. Tables are built on
// first use under a lock and are immutable afterwards.
type Registry struct {
	opts options

	buildMu sync.Mutex

	mu     sync.RWMutex
	events map[int]*Table[uint64]
	times  map[int]*Table[float64]
}

// NewRegistry returns an empty Registry.
func NewRegistry(opts ...Option) *Registry {
	o := options{dataDir: locate.DataDir}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = log.OrNoop(o.logger)
	return &Registry{
		opts:   o,
		events: make(map[int]*Table[uint64]),
		times:  make(map[int]*Table[float64]),
	}
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the process-wide Registry.
func Default() *Registry {
	defaultOnce.Do(func() { defaultReg = NewRegistry() })
	return defaultReg
}

// DataDir resolves the data root scanned for version v.
func (r *Registry) DataDir(v int) (string, error) {
	return r.opts.dataDir(v)
}

func (r *Registry) cacheDir() string {
	if r.opts.cacheDir != "" {
		return r.opts.cacheDir
	}
	return locate.CalibDir()
}

// EventTable returns the event-range table for version v, building it if
// needed.
func (r *Registry) EventTable(ctx context.Context, v int) (*Table[uint64], error) {
	return getOrBuild(r, r.events, v, func() (*Table[uint64], error) {
		return buildTable(ctx, r, v, tableEvent, EventCacheName(v), true, parseEvent, formatEvent,
			func(b runBounds) Span[uint64] {
				return Span[uint64]{Run: b.run, Start: b.firstEvent, Stop: b.lastEvent}
			})
	})
}

// TimeTable returns the time-span table for version v, building it if
// needed. Spans stop one second after the run's last trigger.
func (r *Registry) TimeTable(ctx context.Context, v int) (*Table[float64], error) {
	return getOrBuild(r, r.times, v, func() (*Table[float64], error) {
		return buildTable(ctx, r, v, tableTime, TimeCacheName(v), false, parseTime, formatTime,
			func(b runBounds) Span[float64] {
				return Span[float64]{Run: b.run, Start: float64(b.firstTime), Stop: float64(b.lastTime + 1)}
			})
	})
}

func getOrBuild[T any](r *Registry, m map[int]*T, v int, build func() (*T, error)) (*T, error) {
	r.mu.RLock()
	t, ok := m[v]
	r.mu.RUnlock()
	if ok {
		return t, nil
	}

	r.buildMu.Lock()
	defer r.buildMu.Unlock()

	r.mu.RLock()
	t, ok = m[v]
	r.mu.RUnlock()
	if ok {
		return t, nil
	}

	t, err := build()
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	m[v] = t
	r.mu.Unlock()
	return t, nil
}

func buildTable[T cmp.Ordered](
	ctx context.Context,
	r *Registry,
	v int,
	table, cacheName string,
	stopInclusive bool,
	parse func(string) (T, error),
	format func(T) string,
	toSpan func(runBounds) Span[T],
) (*Table[T], error) {
	logger := r.opts.logger
	cachePath := filepath.Join(r.cacheDir(), cacheName)

	spans, err := readCache(cachePath, parse)
	if err == nil {
		t := NewTable(spans, stopInclusive)
		metrics.IndexBuilds.WithLabelValues(table, "cache").Inc()
		metrics.SetIndexRuns(table, v, t.Len())
		logger.Debug("loaded run index cache", log.Path(cachePath), log.Int("runs", t.Len()))
		return t, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		logger.Warn("ignoring unreadable run index cache", log.Path(cachePath), log.Err(err))
	}

	root, err := r.opts.dataDir(v)
	if err != nil {
		logger.Error("cannot build run index", log.Epoch(v), log.Err(err))
		return nil, err
	}
	bounds, err := scan(ctx, root, r.opts.concurrency, logger)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	spans = make([]Span[T], 0, len(bounds))
	for _, b := range bounds {
		spans = append(spans, toSpan(b))
	}
	t := NewTable(spans, stopInclusive)
	metrics.IndexBuilds.WithLabelValues(table, "scan").Inc()
	metrics.SetIndexRuns(table, v, t.Len())

	if !r.opts.readOnly {
		if err := writeCache(cachePath, t.spans, format); err != nil {
			logger.Warn("cannot write run index cache", log.Path(cachePath), log.Err(err))
		} else {
			logger.Info("wrote run index cache", log.Path(cachePath), log.Int("runs", t.Len()))
		}
	}
	return t, nil
}

// RunContaining returns the run whose event range holds ev.
func (r *Registry) RunContaining(ctx context.Context, v int, ev uint64) (int, error) {
	t, err := r.EventTable(ctx, v)
	if err != nil {
		return -1, err
	}
	run, miss := t.Find(ev)
	metrics.IndexLookups.WithLabelValues(tableEvent, miss.String()).Inc()
	if miss != Hit {
		r.opts.logger.Debug("no run contains event", log.Event(ev), log.Epoch(v), log.String("reason", miss.String()))
		return -1, fmt.Errorf("%w: event %d %s", ErrNoRun, ev, miss)
	}
	return run, nil
}

// RunAtTime returns the run whose time span holds unix time ts.
func (r *Registry) RunAtTime(ctx context.Context, v int, ts float64) (int, error) {
	t, err := r.TimeTable(ctx, v)
	if err != nil {
		return -1, err
	}
	run, miss := t.Find(ts)
	metrics.IndexLookups.WithLabelValues(tableTime, miss.String()).Inc()
	if miss != Hit {
		r.opts.logger.Debug("no run at time", log.Float64("time", ts), log.Epoch(v), log.String("reason", miss.String()))
		return -1, fmt.Errorf("%w: time %.9f %s", ErrNoRun, ts, miss)
	}
	return run, nil
}

// Invalidate drops the tables of version v and, unless the cache is
// read-only, their cache files, so the next lookup rescans.
func (r *Registry) Invalidate(v int) {
	r.buildMu.Lock()
	defer r.buildMu.Unlock()

	r.mu.Lock()
	delete(r.events, v)
	delete(r.times, v)
	r.mu.Unlock()

	if !r.opts.readOnly {
		dir := r.cacheDir()
		for _, name := range []string{EventCacheName(v), TimeCacheName(v)} {
			if err := os.Remove(filepath.Join(dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
				r.opts.logger.Warn("cannot remove run index cache", log.Path(name), log.Err(err))
			}
		}
	}
	metrics.Invalidations.Inc()
	r.opts.logger.Info("run index invalidated", log.Epoch(v))
}
