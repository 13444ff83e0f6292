package dataset

import "errors"

var (
	// ErrNotLoaded is returned when no run is loaded.
	ErrNotLoaded = errors.New("dataset: no run loaded")

	// ErrOutOfRange is returned for a position outside the loaded run or
	// a navigator's list.
	ErrOutOfRange = errors.New("dataset: position out of range")

	// ErrEventNotFound is returned when no run holds an event number.
	ErrEventNotFound = errors.New("dataset: event not found")

	// ErrInconsistent is returned when the cross-run index names a run that
	// does not contain the event.
	ErrInconsistent = errors.New("dataset: data inconsistency")

	// ErrNoSelection is returned by selection navigation before SetSelection.
	ErrNoSelection = errors.New("dataset: no selection")

	// ErrNoPlaylist is returned by playlist navigation before a playlist is set.
	ErrNoPlaylist = errors.New("dataset: no playlist")

	// ErrNoMinBias is returned when the minimum-bias scan finds nothing.
	ErrNoMinBias = errors.New("dataset: no minimum-bias event found")
)
