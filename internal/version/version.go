// Package version maps acquisition times to detector epochs ("versions").
//
// An epoch is a coarse configuration selector: it chooses the data root
// environment variable, the cross-run index tables and whether blinding
// applies. Epochs are numbered from 1; 0 is reserved for simulated data and
// -1 means "unknown, use the default".
package version

import "sort"

const (
	// Unknown is returned when a time precedes every epoch.
	Unknown = -1

	// Simulated selects the Monte Carlo data directory.
	Simulated = 0

	// Default is the epoch assumed before any header has been read.
	Default = 1
)

// Table holds the start time of each epoch. Starts[i] is the first unix
// time (exclusive) belonging to epoch i+1, so Starts must be ascending.
type Table struct {
	Starts []uint32
}

// DefaultTable is the single-epoch table in use for current data.
var DefaultTable = Table{Starts: []uint32{0}}

// Count returns the number of epochs.
func (t Table) Count() int { return len(t.Starts) }

// FromUnixTime returns the epoch containing unix time ts, or Unknown.
func (t Table) FromUnixTime(ts uint32) int {
	i := sort.Search(len(t.Starts), func(i int) bool { return t.Starts[i] >= ts })
	if i == 0 {
		return Unknown
	}
	return i
}

// Valid reports whether v names a real (non-simulated) epoch of t.
func (t Table) Valid(v int) bool {
	return v >= 1 && v <= len(t.Starts)
}
