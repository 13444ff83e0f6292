package dataset

import (
	"sort"
	"strconv"
)

// Position is a navigator's place in its list: either resolved to an index
// or unknown, in which case it is found again by searching for the cursor.
type Position struct {
	i     int
	known bool
}

// Unknown is the unresolved Position.
var Unknown = Position{}

// Resolved returns a known Position.
func Resolved(i int) Position { return Position{i: i, known: true} }

// Get returns the index and whether it is known.
func (p Position) Get() (int, bool) { return p.i, p.known }

func (p Position) String() string {
	if !p.known {
		return "unknown"
	}
	return strconv.Itoa(p.i)
}

// floorIndex returns the largest i with sorted[i] <= v, or -1.
func floorIndex(sorted []int, v int) int {
	return sort.Search(len(sorted), func(i int) bool { return sorted[i] > v }) - 1
}
