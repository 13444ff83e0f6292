// Package dataset navigates the records of detector runs.
//
// A Dataset owns the open record stores of one run at a time and a cursor
// into them. Loading a run finds its files, opens the mandatory header store
// and whichever of the GPS, event and truth stores exist, and primes the
// cursor on entry 0:
//
//	ds, err := dataset.Open(5, dataset.Options{Logger: logger})
//	if err != nil {
//	    return err
//	}
//	defer ds.Close()
//
//	for pos := 0; pos < ds.N(); pos++ {
//	    if _, err := ds.GetEntry(pos); err != nil {
//	        return err
//	    }
//	    h, _ := ds.Header()
//	    ...
//	}
//
// Records are served lazily. The calibrated event and the time-matched GPS
// sample are derived from the current header and recomputed only after the
// cursor moves or when a reload is forced, so repeated calls return the same
// data.
//
// Besides entry and event-number order, three secondary sequences can drive
// the cursor: a selection (entries matching a predicate), a playlist of
// (run, event) pairs that may span runs, and the minimum-bias filter which
// skips RF triggers and crosses into adjacent runs.
//
// Event numbers outside the loaded run are resolved through the cross-run
// index and the owning run is loaded transparently.
//
// When blinding is configured and the run's version is eligible, headers and
// events pass through the blinding layer before they are returned.
//
// A Dataset is not safe for concurrent use. The cross-run index it consults
// is shared and safe.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package dataset
