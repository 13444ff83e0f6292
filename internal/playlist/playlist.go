// Package playlist parses ordered (run, event) lists.
//
// A playlist file is whitespace separated integers. When the first token is
// below PairThreshold it is the number of entries, followed by that many
// "run event" pairs. Otherwise every token, the first included, is an event
// number whose run is found through a Resolver.
package playlist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

// PairThreshold separates an entry count from a bare event number.
const PairThreshold = 400

// ErrEmpty is returned for a playlist without entries.
var ErrEmpty = errors.New("playlist: empty")

// Entry is one playlist position.
type Entry struct {
	Run   int
	Event uint64
}

// Resolver returns the run holding an event number.
type Resolver func(ev uint64) (int, error)

// Parse reads a playlist. resolve is only called for bare event numbers and
// may be nil for pair playlists.
func Parse(r io.Reader, resolve Resolver) ([]Entry, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)

	var toks []uint64
	for sc.Scan() {
		v, err := strconv.ParseUint(sc.Text(), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("playlist token %d: %w", len(toks), err)
		}
		toks = append(toks, v)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, ErrEmpty
	}

	if toks[0] < PairThreshold {
		return parsePairs(toks[0], toks[1:])
	}
	return resolveEvents(toks, resolve)
}

func parsePairs(count uint64, toks []uint64) ([]Entry, error) {
	if len(toks)%2 != 0 {
		return nil, fmt.Errorf("playlist: odd number of tokens after count")
	}
	if uint64(len(toks)/2) != count {
		return nil, fmt.Errorf("playlist: declares %d entries, found %d", count, len(toks)/2)
	}
	if count == 0 {
		return nil, ErrEmpty
	}
	entries := make([]Entry, 0, count)
	for i := 0; i < len(toks); i += 2 {
		entries = append(entries, Entry{Run: int(toks[i]), Event: toks[i+1]})
	}
	return entries, nil
}

func resolveEvents(events []uint64, resolve Resolver) ([]Entry, error) {
	if resolve == nil {
		return nil, errors.New("playlist: event-number playlist needs a run resolver")
	}
	entries := make([]Entry, 0, len(events))
	for _, ev := range events {
		run, err := resolve(ev)
		if err != nil {
			return nil, fmt.Errorf("playlist: event %d: %w", ev, err)
		}
		if run < 0 {
			return nil, fmt.Errorf("playlist: no run holds event %d", ev)
		}
		entries = append(entries, Entry{Run: run, Event: ev})
	}
	return entries, nil
}

// Load parses the playlist file at path.
func Load(path string, resolve Resolver) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f, resolve)
}
