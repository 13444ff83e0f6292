package dataset

import (
	"context"
	"fmt"

	"github.com/pueo/pueonav/internal/playlist"
	"github.com/pueo/pueonav/pkg/log"
)

// SetPlaylist loads a playlist file and returns its length. Bare event
// numbers are resolved through the cross-run index.
func (d *Dataset) SetPlaylist(path string) (int, error) {
	entries, err := playlist.Load(path, func(ev uint64) (int, error) {
		return d.opts.Registry.RunContaining(context.Background(), d.version, ev)
	})
	if err != nil {
		d.logger.Error("loading playlist", log.Path(path), log.Err(err))
		return -1, err
	}
	d.SetPlaylistEntries(entries)
	return len(entries), nil
}

// SetPlaylistEntries replaces the playlist.
func (d *Dataset) SetPlaylistEntries(entries []playlist.Entry) {
	d.playlist = append([]playlist.Entry(nil), entries...)
	d.plIdx = Unknown
}

// PlaylistLen returns the playlist length, or -1 without a playlist.
func (d *Dataset) PlaylistLen() int {
	if d.playlist == nil {
		return -1
	}
	return len(d.playlist)
}

// PlaylistIndex returns the current playlist index and whether it is known.
func (d *Dataset) PlaylistIndex() (int, bool) { return d.plIdx.Get() }

// NthInPlaylist moves to the i-th playlist entry, loading its run first if
// it is not the loaded one.
func (d *Dataset) NthInPlaylist(i int) (int, error) {
	if d.playlist == nil {
		return -1, ErrNoPlaylist
	}
	if i < 0 || i >= len(d.playlist) {
		return -1, fmt.Errorf("%w: playlist index %d not in [0,%d)", ErrOutOfRange, i, len(d.playlist))
	}
	e := d.playlist[i]
	if d.h == nil || d.run != e.Run {
		if err := d.Load(e.Run); err != nil {
			return -1, err
		}
	}
	pos, err := d.GetEvent(e.Event, false)
	if err != nil {
		return -1, err
	}
	d.plIdx = Resolved(i)
	return pos, nil
}

// FirstInPlaylist moves to the first playlist entry.
func (d *Dataset) FirstInPlaylist() (int, error) { return d.NthInPlaylist(0) }

// LastInPlaylist moves to the last playlist entry.
func (d *Dataset) LastInPlaylist() (int, error) { return d.NthInPlaylist(len(d.playlist) - 1) }

// NextInPlaylist moves to the next playlist entry, staying on the last one.
// An unknown index restarts at the first entry.
func (d *Dataset) NextInPlaylist() (int, error) {
	if d.playlist == nil {
		return -1, ErrNoPlaylist
	}
	i, known := d.plIdx.Get()
	switch {
	case !known:
		i = 0
	case i < len(d.playlist)-1:
		i++
	}
	return d.NthInPlaylist(i)
}

// PreviousInPlaylist moves to the previous playlist entry, staying on the
// first one.
func (d *Dataset) PreviousInPlaylist() (int, error) {
	if d.playlist == nil {
		return -1, ErrNoPlaylist
	}
	i, known := d.plIdx.Get()
	switch {
	case !known:
		i = 0
	case i > 0:
		i--
	}
	return d.NthInPlaylist(i)
}
