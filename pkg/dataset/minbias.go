package dataset

import (
	"fmt"

	"github.com/pueo/pueonav/internal/locate"
	"github.com/pueo/pueonav/pkg/log"
	"github.com/pueo/pueonav/pkg/record"
)

// NextMinBias moves to the next entry whose RF trigger bit is clear,
// continuing into the following runs at the end of this one.
func (d *Dataset) NextMinBias() (int, error) { return d.scanMinBias(+1) }

// PreviousMinBias moves to the previous minimum-bias entry, continuing
// into the preceding runs at the start of this one.
func (d *Dataset) PreviousMinBias() (int, error) { return d.scanMinBias(-1) }

// navState is the cursor state a failed scan must give back.
type navState struct {
	run, pos  int
	selection []int
	selIdx    Position
	eventIdx  Position
	plIdx     Position
}

func (d *Dataset) saveNav() navState {
	return navState{
		run:       d.run,
		pos:       d.Current(),
		selection: d.selection,
		selIdx:    d.selIdx,
		eventIdx:  d.eventIdx,
		plIdx:     d.plIdx,
	}
}

// restoreNav reloads the saved run if the scan left it, then puts back the
// cursor and the navigator state bound to that run.
func (d *Dataset) restoreNav(s navState) {
	if d.h == nil || d.run != s.run {
		if err := d.Load(s.run); err != nil {
			return
		}
		if _, err := d.GetEntry(s.pos); err != nil {
			d.logger.Warn("restoring cursor", log.Run(s.run), log.Entry(s.pos), log.Err(err))
			return
		}
	}
	d.selection = s.selection
	d.selIdx = s.selIdx
	d.eventIdx = s.eventIdx
	d.plIdx = s.plIdx
}

// locatable reports whether run could be loaded, without unloading the
// current one.
func (d *Dataset) locatable(run int) error {
	if run < 0 {
		return fmt.Errorf("%w: run %d", locate.ErrMissingHeader, run)
	}
	root, err := d.opts.dataRoot()
	if err != nil {
		return err
	}
	_, err = locate.Locate(root, run, d.opts.Decimated)
	return err
}

// scanMinBias walks header positions in direction step, loading adjacent
// runs as it reaches either end. It fails only when an adjacent run cannot
// be loaded; the starting run, entry and navigator state are then restored.
func (d *Dataset) scanMinBias(step int) (int, error) {
	if d.h == nil {
		return -1, ErrNotLoaded
	}
	saved := d.saveNav()
	pos := saved.pos

	for {
		pos += step
		if pos < 0 || pos >= d.N() {
			next := d.run + step
			err := d.locatable(next)
			if err == nil {
				err = d.Load(next)
			}
			if err != nil {
				d.restoreNav(saved)
				d.logger.Warn("no minimum-bias event found", log.Run(saved.run), log.Int("adjacentRun", next))
				return -1, fmt.Errorf("%w: adjacent run %d: %w", ErrNoMinBias, next, err)
			}
			pos = 0
			if step < 0 {
				pos = d.N() - 1
			}
		}

		var h record.Header
		if err := d.h.headers().Get(pos, &h); err != nil {
			d.logger.Error("reading header in minimum-bias scan", log.Run(d.run), log.Entry(pos), log.Err(err))
			d.restoreNav(saved)
			return -1, err
		}
		if h.IsMinBias() {
			return d.GetEntry(pos)
		}
	}
}
