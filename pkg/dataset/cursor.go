package dataset

import (
	"context"
	"fmt"

	"github.com/pueo/pueonav/internal/metrics"
	"github.com/pueo/pueonav/internal/version"
	"github.com/pueo/pueonav/pkg/log"
	"github.com/pueo/pueonav/pkg/record"
)

// GetEntry moves the cursor to pos. In decimated mode pos addresses the
// decimated headers and the full-resolution entry is found by event number.
// An out of range pos leaves the cursor unchanged.
func (d *Dataset) GetEntry(pos int) (int, error) {
	if d.h == nil {
		return -1, ErrNotLoaded
	}
	n := d.N()
	if pos < 0 || pos >= n {
		d.logger.Warn("requested entry out of range", log.Run(d.run), log.Entry(pos), log.Int("entries", n))
		return -1, fmt.Errorf("%w: entry %d not in [0,%d)", ErrOutOfRange, pos, n)
	}

	var hdr record.Header
	if err := d.h.headers().Get(pos, &hdr); err != nil {
		d.logger.Error("reading header", log.Run(d.run), log.Entry(pos), log.Err(err))
		return -1, err
	}
	metrics.EntriesRead.WithLabelValues("header").Inc()

	wanted := pos
	if d.h.decimated != nil {
		wanted = d.h.headerIx.Lookup(int64(hdr.EventNumber))
		if wanted < 0 {
			d.logger.Error("decimated event missing from full headers", log.Run(d.run), log.Event(hdr.EventNumber))
			return -1, fmt.Errorf("%w: decimated event %d not in run %d", ErrInconsistent, hdr.EventNumber, d.run)
		}
		d.decPos = pos
	}
	d.wanted = wanted
	d.rawHeader = hdr
	d.headerDirty = true

	if !d.h.files.Useful {
		d.usefulDirty = true
	}
	if d.h.files.GPSByTime {
		d.gpsDirty = true
	}
	d.eventIdx = Unknown
	d.selIdx = Unknown

	if v := d.opts.Versions.FromUnixTime(hdr.RealTime); v != version.Unknown {
		d.version = v
	}
	return pos, nil
}

// GetEvent moves the cursor to eventNumber. An event outside the loaded
// run's range is looked up in the cross-run index, whose run is loaded and
// searched once more. quiet suppresses log output, not the returned error.
func (d *Dataset) GetEvent(eventNumber uint64, quiet bool) (int, error) {
	if d.h == nil {
		return -1, ErrNotLoaded
	}
	if pos := d.h.index().Lookup(int64(eventNumber)); pos >= 0 {
		return d.GetEntry(pos)
	}

	lo, _ := d.h.headerIx.Min()
	hi, _ := d.h.headerIx.Max()
	if key := int64(eventNumber); key >= lo && key <= hi {
		if !quiet {
			d.logger.Warn("event not in header index",
				log.Run(d.run), log.Event(eventNumber), log.Bool("decimated", d.opts.Decimated))
		}
		return -1, fmt.Errorf("%w: %d in run %d", ErrEventNotFound, eventNumber, d.run)
	}

	run, err := d.opts.Registry.RunContaining(context.Background(), d.version, eventNumber)
	if err != nil {
		if !quiet {
			d.logger.Warn("no run holds event", log.Event(eventNumber), log.Epoch(d.version), log.Err(err))
		}
		return -1, fmt.Errorf("%w: %w", ErrEventNotFound, err)
	}
	if run == d.run {
		if !quiet {
			d.logger.Error("run index points at loaded run", log.Run(run), log.Event(eventNumber))
		}
		return -1, fmt.Errorf("%w: run %d does not hold event %d", ErrInconsistent, run, eventNumber)
	}
	if err := d.load(run, quiet); err != nil {
		return -1, err
	}
	if !quiet {
		d.logger.Info("changed run", log.Run(run), log.Event(eventNumber))
	}
	pos := d.h.index().Lookup(int64(eventNumber))
	if pos < 0 {
		if !quiet {
			d.logger.Error("run index points at run without event", log.Run(run), log.Event(eventNumber))
		}
		return -1, fmt.Errorf("%w: run %d does not hold event %d", ErrInconsistent, run, eventNumber)
	}
	return d.GetEntry(pos)
}

// Header returns the current header. The record belongs to the Dataset and
// is valid until the cursor moves.
func (d *Dataset) Header() (*record.Header, error) {
	if d.h == nil {
		return nil, ErrNotLoaded
	}
	if d.headerDirty {
		d.header = d.rawHeader
		if _, err := d.h.blinder.ApplyHeader(&d.header); err != nil {
			return nil, err
		}
		d.headerDirty = false
	}
	return &d.header, nil
}

// readEvent loads the event store record at the cursor.
func (d *Dataset) readEvent() error {
	d.rawEvent, d.rawOut, d.useful = nil, nil, nil
	if d.h.files.Useful {
		var u record.UsefulEvent
		if err := d.h.event.Get(d.wanted, &u); err != nil {
			return err
		}
		raw := u.Clone().RawEvent
		d.rawEvent = &raw
		d.useful = &u
		if _, err := d.h.blinder.ApplyEvent(d.useful); err != nil {
			return err
		}
		d.usefulDirty = false
	} else {
		var r record.RawEvent
		if err := d.h.event.Get(d.wanted, &r); err != nil {
			return err
		}
		d.rawEvent = &r
		d.usefulDirty = true
	}
	metrics.EntriesRead.WithLabelValues("event").Inc()
	d.eventPos = d.wanted
	return nil
}

// Raw returns the uncalibrated event, or nil when the run has no event
// store.
func (d *Dataset) Raw() (*record.RawEvent, error) {
	if d.h == nil {
		return nil, ErrNotLoaded
	}
	if d.h.event == nil {
		return nil, nil
	}
	if d.eventPos != d.wanted {
		if err := d.readEvent(); err != nil {
			d.logger.Error("reading event", log.Run(d.run), log.Entry(d.wanted), log.Err(err))
			return nil, err
		}
	}
	if d.rawOut == nil {
		out := d.rawEvent
		if d.h.blinder != nil {
			c := (&record.UsefulEvent{RawEvent: *d.rawEvent}).Clone().RawEvent
			if _, err := d.h.blinder.ApplyRaw(&c); err != nil {
				return nil, err
			}
			out = &c
		}
		d.rawOut = out
	}
	return d.rawOut, nil
}

// Useful returns the calibrated event, or nil when the run has no event
// store. It is derived from the raw event and current header unless the
// store holds calibrated events, and is recomputed only after the cursor
// moves or when force is set.
func (d *Dataset) Useful(force bool) (*record.UsefulEvent, error) {
	if d.h == nil {
		return nil, ErrNotLoaded
	}
	if d.h.event == nil {
		return nil, nil
	}
	if d.eventPos != d.wanted || force {
		if err := d.readEvent(); err != nil {
			d.logger.Error("reading event", log.Run(d.run), log.Entry(d.wanted), log.Err(err))
			return nil, err
		}
	}
	if d.usefulDirty {
		h, err := d.Header()
		if err != nil {
			return nil, err
		}
		u := record.Calibrate(d.rawEvent, h)
		if _, err := d.h.blinder.ApplyEvent(u); err != nil {
			return nil, err
		}
		d.useful = u
		d.usefulDirty = false
	}
	return d.useful, nil
}

// GPS returns the navigation sample for the current entry, or nil when the
// run has no GPS store. Realtime-indexed stores are matched to the header's
// trigger time rounded to the second.
func (d *Dataset) GPS(force bool) (*record.Attitude, error) {
	if d.h == nil {
		return nil, ErrNotLoaded
	}
	if d.h.gps == nil {
		return nil, nil
	}
	if !d.h.files.GPSByTime {
		if d.gpsPos != d.wanted || force {
			var a record.Attitude
			if err := d.h.gps.Get(d.wanted, &a); err != nil {
				d.logger.Warn("reading gps", log.Run(d.run), log.Entry(d.wanted), log.Err(err))
				return nil, err
			}
			metrics.EntriesRead.WithLabelValues("gps").Inc()
			d.gps = &a
			d.gpsPos = d.wanted
		}
		return d.gps, nil
	}

	if d.gpsDirty || force {
		h, err := d.Header()
		if err != nil {
			return nil, err
		}
		pos := d.h.gpsIx.Best(h.TriggerSeconds())
		var a record.Attitude
		if err := d.h.gps.Get(pos, &a); err != nil {
			d.logger.Warn("reading gps", log.Run(d.run), log.Entry(pos), log.Err(err))
			return nil, err
		}
		metrics.EntriesRead.WithLabelValues("gps").Inc()
		d.gps = &a
		d.gpsPos = pos
		d.gpsDirty = false
	}
	return d.gps, nil
}

// Truth returns the simulation truth for the current entry, or nil when
// the run has none.
func (d *Dataset) Truth(force bool) (*record.Truth, error) {
	if d.h == nil {
		return nil, ErrNotLoaded
	}
	if d.h.truth == nil {
		return nil, nil
	}
	if d.truthPos != d.wanted || force {
		var t record.Truth
		if err := d.h.truth.Get(d.wanted, &t); err != nil {
			d.logger.Warn("reading truth", log.Run(d.run), log.Entry(d.wanted), log.Err(err))
			return nil, err
		}
		metrics.EntriesRead.WithLabelValues("truth").Inc()
		d.truth = &t
		d.truthPos = d.wanted
	}
	return d.truth, nil
}
