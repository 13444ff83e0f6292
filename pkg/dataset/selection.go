package dataset

import (
	"fmt"

	"github.com/pueo/pueonav/pkg/log"
	"github.com/pueo/pueonav/pkg/record"
)

// Predicate selects headers. It sees stored headers, before blinding.
type Predicate func(h *record.Header) bool

// SetSelection evaluates keep over every navigable header of the loaded
// run and returns the number selected. The selection is dropped when
// another run is loaded.
func (d *Dataset) SetSelection(keep Predicate) (int, error) {
	if d.h == nil {
		return -1, ErrNotLoaded
	}
	hs := d.h.headers()
	var sel []int
	for pos := 0; pos < hs.Len(); pos++ {
		var h record.Header
		if err := hs.Get(pos, &h); err != nil {
			d.logger.Error("reading header for selection", log.Run(d.run), log.Entry(pos), log.Err(err))
			return -1, err
		}
		if keep(&h) {
			sel = append(sel, pos)
		}
	}
	d.selection = sel
	if d.selection == nil {
		d.selection = []int{}
	}
	d.selIdx = Unknown
	d.logger.Debug("selection set", log.Run(d.run), log.Int("selected", len(sel)), log.Int("entries", hs.Len()))
	return len(sel), nil
}

// ClearSelection drops the selection.
func (d *Dataset) ClearSelection() {
	d.selection = nil
	d.selIdx = Unknown
}

// SelectionLen returns the number of selected entries, or -1 without a
// selection.
func (d *Dataset) SelectionLen() int {
	if d.selection == nil {
		return -1
	}
	return len(d.selection)
}

// NthInSelection moves to the i-th selected entry.
func (d *Dataset) NthInSelection(i int) (int, error) {
	if d.selection == nil {
		return -1, ErrNoSelection
	}
	if i < 0 || i >= len(d.selection) {
		return -1, fmt.Errorf("%w: selection index %d not in [0,%d)", ErrOutOfRange, i, len(d.selection))
	}
	pos, err := d.GetEntry(d.selection[i])
	if err != nil {
		return -1, err
	}
	d.selIdx = Resolved(i)
	return pos, nil
}

// FirstInSelection moves to the first selected entry.
func (d *Dataset) FirstInSelection() (int, error) { return d.NthInSelection(0) }

// LastInSelection moves to the last selected entry.
func (d *Dataset) LastInSelection() (int, error) { return d.NthInSelection(len(d.selection) - 1) }

// NextInSelection moves to the next selected entry after the cursor,
// staying on the last one.
func (d *Dataset) NextInSelection() (int, error) {
	if d.selection == nil {
		return -1, ErrNoSelection
	}
	i, known := d.selIdx.Get()
	if !known {
		i = floorIndex(d.selection, d.Current())
	}
	if i < len(d.selection)-1 {
		i++
	}
	return d.NthInSelection(i)
}

// PreviousInSelection moves to the previous selected entry before the
// cursor, staying on the first one.
func (d *Dataset) PreviousInSelection() (int, error) {
	if d.selection == nil {
		return -1, ErrNoSelection
	}
	i, known := d.selIdx.Get()
	if !known {
		cur := d.Current()
		i = floorIndex(d.selection, cur)
		// a floor strictly below an unselected cursor is already the previous entry
		if i >= 0 && d.selection[i] < cur {
			return d.NthInSelection(i)
		}
	}
	if i > 0 {
		i--
	}
	return d.NthInSelection(max(i, 0))
}
