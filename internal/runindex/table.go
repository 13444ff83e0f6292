// Package runindex maps event numbers and trigger times to the run that
// holds them.
//
// Tables are built once per detector version, either from a cache file in
// the calibration directory or by scanning every run's header file, and are
// read-only afterwards. A Registry owns the tables for a process.
package runindex

import (
	"cmp"
	"errors"
	"slices"
)

// ErrNoRun is returned when a lookup finds no run.
var ErrNoRun = errors.New("runindex: no run contains key")

// Span is the key range [Start, Stop] (or [Start, Stop) for time tables)
// covered by one run.
type Span[T cmp.Ordered] struct {
	Run   int
	Start T
	Stop  T
}

// Miss explains a failed lookup.
type Miss int

const (
	Hit Miss = iota
	Empty
	BeforeFirst
	AfterLast
	InGap
)

func (m Miss) String() string {
	switch m {
	case Hit:
		return "hit"
	case Empty:
		return "empty"
	case BeforeFirst:
		return "before first run"
	case AfterLast:
		return "after last run"
	case InGap:
		return "between runs"
	}
	return "unknown"
}

// Table is a Start-sorted list of spans.
type Table[T cmp.Ordered] struct {
	spans         []Span[T]
	stopInclusive bool
}

// NewTable copies and sorts spans. Event tables include Stop; time tables
// exclude it.
func NewTable[T cmp.Ordered](spans []Span[T], stopInclusive bool) *Table[T] {
	sorted := slices.Clone(spans)
	slices.SortStableFunc(sorted, func(a, b Span[T]) int { return cmp.Compare(a.Start, b.Start) })
	return &Table[T]{spans: sorted, stopInclusive: stopInclusive}
}

// Len returns the number of runs.
func (t *Table[T]) Len() int { return len(t.spans) }

// Spans returns a copy of the sorted spans.
func (t *Table[T]) Spans() []Span[T] { return slices.Clone(t.spans) }

// Find returns the run whose span holds key, or -1 and the reason.
func (t *Table[T]) Find(key T) (int, Miss) {
	n := len(t.spans)
	if n == 0 {
		return -1, Empty
	}
	// upper_bound on Start, then step back one
	i, _ := slices.BinarySearchFunc(t.spans, key, func(s Span[T], k T) int {
		if s.Start <= k {
			return -1
		}
		return 1
	})
	if i == 0 {
		return -1, BeforeFirst
	}
	s := t.spans[i-1]
	if key < s.Stop || (t.stopInclusive && key == s.Stop) {
		return s.Run, Hit
	}
	if i == n {
		return -1, AfterLast
	}
	return -1, InGap
}
