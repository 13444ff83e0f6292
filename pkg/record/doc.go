// Package record defines the record kinds stored per run: trigger headers,
// raw and calibrated waveform events, navigation (attitude) samples and
// simulation truth.
//
// Records are plain structs with JSON tags matching the record store field
// names. The store indexes records by named integer fields, so the tag of a
// field used as an index key ("eventNumber", "realTime", "unixTime") is part
// of the on-disk contract.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// See version.go for version constants that can be used programmatically.
package record
