package state

import (
	"path/filepath"
	"time"
)

// Bookmark records the last playlist entry a replay visited.
type Bookmark struct {
	// Playlist is the absolute path of the playlist being replayed.
	Playlist string `json:"playlist"`

	// Index is the playlist position last visited.
	Index int `json:"index"`

	// Run and Event identify the record at Index.
	Run   int    `json:"run"`
	Event uint64 `json:"event"`

	// Visited counts entries visited across sessions.
	Visited int `json:"visited"`

	UpdatedAt time.Time `json:"updated_at"`
}

// IsEmpty returns true if the bookmark has never been written.
func (b Bookmark) IsEmpty() bool {
	return b.Playlist == ""
}

// Resume returns the playlist position a replay of playlist should start
// from. A bookmark taken on a different playlist restarts at 0.
func (b Bookmark) Resume(playlist string) int {
	if b.IsEmpty() || b.Playlist != canonical(playlist) {
		return 0
	}
	return b.Index + 1
}

// Advance records a visit to entry idx of playlist.
func (b *Bookmark) Advance(playlist string, idx, run int, event uint64) {
	p := canonical(playlist)
	if b.Playlist != p {
		b.Visited = 0
	}
	b.Playlist = p
	b.Index = idx
	b.Run = run
	b.Event = event
	b.Visited++
	b.UpdatedAt = time.Now()
}

func canonical(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
