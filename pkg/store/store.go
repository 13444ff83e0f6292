package store

import (
	"errors"
	"sort"
)

// Extensions lists the file extensions a store may carry, in the order a
// locator should try them.
var Extensions = []string{".jsonl.zst", ".jsonl"}

var (
	// ErrOutOfRange is returned by Get for a position outside [0, Len).
	ErrOutOfRange = errors.New("store: position out of range")

	// ErrNoIndex is returned when a lookup names a field with no built index.
	ErrNoIndex = errors.New("store: index not built")

	// ErrDuplicateKey is returned by BuildIndex when two records share a key.
	ErrDuplicateKey = errors.New("store: duplicate index key")

	// ErrMissingField is returned when a record lacks the indexed field.
	ErrMissingField = errors.New("store: record missing field")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store: closed")
)

// Store is an indexed table of records addressed by sequential position.
type Store interface {
	// Path returns the file the store was opened from.
	Path() string

	// Len returns the number of records.
	Len() int

	// Get decodes the record at pos into dst.
	Get(pos int, dst any) error

	// BuildIndex builds (or rebuilds) the index keyed by field.
	BuildIndex(field string) error

	// Index returns the index for field if it has been built.
	Index(field string) (*Index, bool)

	// PositionForKey returns the position whose field equals key, or -1.
	PositionForKey(field string, key int64) int

	// Close releases the underlying file.
	Close() error
}

// IndexEntry pairs a key with the position holding it.
type IndexEntry struct {
	Key int64
	Pos int
}

// Index is an immutable, key-sorted table of (key, position) pairs.
type Index struct {
	field   string
	entries []IndexEntry
	rank    map[int]int
}

// NewIndex sorts entries by key and rejects duplicate keys.
func NewIndex(field string, entries []IndexEntry) (*Index, error) {
	sorted := make([]IndexEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })
	rank := make(map[int]int, len(sorted))
	for i, e := range sorted {
		if i > 0 && sorted[i-1].Key == e.Key {
			return nil, ErrDuplicateKey
		}
		rank[e.Pos] = i
	}
	return &Index{field: field, entries: sorted, rank: rank}, nil
}

// Field returns the indexed field name.
func (ix *Index) Field() string { return ix.field }

// Len returns the number of entries.
func (ix *Index) Len() int { return len(ix.entries) }

// At returns the i-th entry in key order.
func (ix *Index) At(i int) IndexEntry { return ix.entries[i] }

// Lookup returns the position holding key, or -1.
func (ix *Index) Lookup(key int64) int {
	i := sort.Search(len(ix.entries), func(i int) bool { return ix.entries[i].Key >= key })
	if i < len(ix.entries) && ix.entries[i].Key == key {
		return ix.entries[i].Pos
	}
	return -1
}

// Best returns the position with the largest key not above key. Keys below
// the first entry resolve to the first entry; an empty index returns -1.
func (ix *Index) Best(key int64) int {
	if len(ix.entries) == 0 {
		return -1
	}
	i := sort.Search(len(ix.entries), func(i int) bool { return ix.entries[i].Key > key })
	if i == 0 {
		return ix.entries[0].Pos
	}
	return ix.entries[i-1].Pos
}

// Rank returns where pos sits in key order, or -1 if pos is not indexed.
func (ix *Index) Rank(pos int) int {
	if r, ok := ix.rank[pos]; ok {
		return r
	}
	return -1
}

// Min returns the smallest key. ok is false for an empty index.
func (ix *Index) Min() (int64, bool) {
	if len(ix.entries) == 0 {
		return 0, false
	}
	return ix.entries[0].Key, true
}

// Max returns the largest key. ok is false for an empty index.
func (ix *Index) Max() (int64, bool) {
	if len(ix.entries) == 0 {
		return 0, false
	}
	return ix.entries[len(ix.entries)-1].Key, true
}
