package dataset

import (
	"errors"
	"fmt"

	"github.com/pueo/pueonav/internal/blind"
	"github.com/pueo/pueonav/internal/locate"
	"github.com/pueo/pueonav/internal/metrics"
	"github.com/pueo/pueonav/internal/playlist"
	"github.com/pueo/pueonav/internal/version"
	"github.com/pueo/pueonav/pkg/log"
	"github.com/pueo/pueonav/pkg/record"
	"github.com/pueo/pueonav/pkg/store"
)

// Dataset is a cursor over the stores of one loaded run.
type Dataset struct {
	opts   Options
	logger log.Logger

	h       *runHandle
	run     int
	version int

	// wanted is the full-resolution header position; decPos the decimated
	// one when navigating decimated headers.
	wanted int
	decPos int

	rawHeader   record.Header
	header      record.Header
	headerDirty bool

	eventPos    int
	rawEvent    *record.RawEvent
	rawOut      *record.RawEvent
	useful      *record.UsefulEvent
	usefulDirty bool

	gps      *record.Attitude
	gpsPos   int
	gpsDirty bool

	truth    *record.Truth
	truthPos int

	eventIdx Position

	selection []int
	selIdx    Position

	playlist []playlist.Entry
	plIdx    Position

	hical      *store.FileStore
	hicalTried bool
}

// New returns a Dataset with no run loaded.
func New(opts Options) (*Dataset, error) {
	if err := validateModuleVersions(); err != nil {
		return nil, err
	}
	opts.setDefaults()
	d := &Dataset{
		opts:    opts,
		logger:  opts.Logger,
		run:     -1,
		version: version.Default,
	}
	if v := opts.Selector(); v > 0 {
		d.version = v
	}
	d.resetCursor()
	return d, nil
}

// Open returns a Dataset with run loaded.
func Open(run int, opts Options) (*Dataset, error) {
	d, err := New(opts)
	if err != nil {
		return nil, err
	}
	if err := d.Load(run); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func (d *Dataset) resetCursor() {
	d.wanted, d.decPos = -1, -1
	d.rawHeader, d.header = record.Header{}, record.Header{}
	d.headerDirty = false
	d.eventPos, d.gpsPos, d.truthPos = -1, -1, -1
	d.rawEvent, d.rawOut, d.useful, d.gps, d.truth = nil, nil, nil, nil, nil
	d.usefulDirty, d.gpsDirty = false, false
	d.eventIdx = Unknown
	d.selIdx = Unknown
}

// Load replaces the loaded run with run. The previous run is always
// unloaded first; on failure no run is loaded.
func (d *Dataset) Load(run int) error {
	return d.load(run, false)
}

// load is Load with failure logging suppressed when quiet.
func (d *Dataset) load(run int, quiet bool) error {
	d.Unload()

	root, err := d.opts.dataRoot()
	if err != nil {
		return d.loadFailed(run, "data_root", err, quiet)
	}
	files, err := locate.Locate(root, run, d.opts.Decimated)
	if err != nil {
		reason := "locate"
		switch {
		case errors.Is(err, locate.ErrMissingHeader):
			reason = "missing_header"
		case errors.Is(err, locate.ErrMissingDecimated):
			reason = "missing_decimated"
		}
		return d.loadFailed(run, reason, err, quiet)
	}
	h, err := openRun(files, d.logger)
	if err != nil {
		return d.loadFailed(run, "open", err, quiet)
	}
	d.h = h
	d.run = run
	d.resetCursor()

	if _, err := d.GetEntry(0); err != nil {
		d.Unload()
		return d.loadFailed(run, "prime", err, quiet)
	}
	if err := d.openBlinder(); err != nil {
		d.Unload()
		return d.loadFailed(run, "blind", err, quiet)
	}

	metrics.RunsLoaded.Inc()
	metrics.CurrentRun.Set(float64(run))
	if quiet {
		return nil
	}
	d.logger.Info("run loaded",
		log.Run(run),
		log.Path(files.Header),
		log.Int("entries", d.N()),
		log.Bool("simulated", files.Simulated),
		log.Bool("decimated", d.opts.Decimated),
		log.Epoch(d.version))
	return nil
}

func (d *Dataset) loadFailed(run int, reason string, err error, quiet bool) error {
	metrics.RunLoadFailures.WithLabelValues(reason).Inc()
	if !quiet {
		d.logger.Error("run load failed", log.Run(run), log.String("reason", reason), log.Err(err))
	}
	return fmt.Errorf("load run %d: %w", run, err)
}

// openBlinder attaches blinding to the loaded run when its version is
// eligible.
func (d *Dataset) openBlinder() error {
	s := d.opts.Blinding
	if !s.Active() {
		return nil
	}
	if !blind.Eligible(d.version) {
		d.logger.Debug("version not blinded", log.Epoch(d.version))
		return nil
	}
	b, err := blind.Open(d.opts.CalibDir, d.version, s, d.logger)
	if err != nil {
		return err
	}
	d.h.blinder = b
	d.headerDirty = true
	return nil
}

// Unload closes every store of the loaded run and clears the cursor and
// selection. It is safe to call when nothing is loaded.
func (d *Dataset) Unload() {
	if d.h != nil {
		if err := d.h.close(); err != nil {
			d.logger.Warn("closing run stores", log.Run(d.run), log.Err(err))
		}
		d.h = nil
	}
	d.run = -1
	d.selection = nil
	d.resetCursor()
}

// Close unloads the run and releases the HiCal store.
func (d *Dataset) Close() error {
	d.Unload()
	if d.hical != nil {
		err := d.hical.Close()
		d.hical = nil
		return err
	}
	return nil
}

// Loaded reports whether a run is loaded.
func (d *Dataset) Loaded() bool { return d.h != nil }

// Run returns the loaded run, or -1.
func (d *Dataset) Run() int { return d.run }

// Version returns the detector epoch of the current header.
func (d *Dataset) Version() int { return d.version }

// Simulated reports whether the loaded run is simulated data.
func (d *Dataset) Simulated() bool { return d.h != nil && d.h.files.Simulated }

// Blinding returns the strategy applied to the loaded run.
func (d *Dataset) Blinding() blind.Strategy {
	if d.h == nil {
		return blind.None
	}
	return d.h.blinder.Strategy()
}

// N returns the number of navigable entries in the loaded run.
func (d *Dataset) N() int {
	if d.h == nil {
		return 0
	}
	return d.h.headers().Len()
}

// Current returns the cursor position, or -1 when nothing is loaded.
func (d *Dataset) Current() int {
	if d.h == nil {
		return -1
	}
	if d.opts.Decimated {
		return d.decPos
	}
	return d.wanted
}
