// Package store provides indexed, append-only record stores.
//
// A store is a file of records, one JSON document per line, optionally
// zstd-compressed when the file name ends in ".zst". Opening a store scans it
// once to build a position table, after which any record can be read by its
// zero-based position. Secondary indices map a named integer field (for
// example "eventNumber") to positions:
//
//	s, err := store.Open("/data/run5/headFile5.jsonl")
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	if err := s.BuildIndex("eventNumber"); err != nil {
//	    return err
//	}
//	var h record.Header
//	if pos := s.PositionForKey("eventNumber", 1234); pos >= 0 {
//	    err = s.Get(pos, &h)
//	}
//
// Stores are written with a Writer, which produces the same format.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package store
