// Package blind substitutes fake header and event records for selected
// event numbers and randomizes waveform polarity, both as pure functions of
// the event number.
package blind

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"slices"

	"github.com/pueo/pueonav/internal/metrics"
	"github.com/pueo/pueonav/internal/version"
	"github.com/pueo/pueonav/pkg/log"
	"github.com/pueo/pueonav/pkg/record"
	"github.com/pueo/pueonav/pkg/store"
)

// ErrNoBlindStore is returned when a strategy inserts events for a
// polarization whose blind stores cannot be found.
var ErrNoBlindStore = errors.New("blind: blind store missing")

// EligibleVersions lists the versions blinding applies to.
var EligibleVersions = []int{version.Default}

// Eligible reports whether version v is blinded.
func Eligible(v int) bool { return slices.Contains(EligibleVersions, v) }

// Blind store file stems in the calibration directory, per polarization.
var (
	headStems  = [record.NumPols]string{record.Horizontal: "insertedHeadHPol", record.Vertical: "insertedHeadVPol"}
	eventStems = [record.NumPols]string{record.Horizontal: "insertedEventHPol", record.Vertical: "insertedEventVPol"}
)

// polaritySalt is the second PCG seed word; changing it changes every
// polarity decision.
const polaritySalt = 0x70756530626c6e64

// Blinder applies a Strategy. A nil *Blinder applies nothing.
type Blinder struct {
	strategy Strategy
	subs     []Substitution
	heads    [record.NumPols]store.Store
	events   [record.NumPols]store.Store
	logger   log.Logger
}

// Open loads the control file and blind stores that s needs from calibDir.
// Stores already opened are closed again if a later one fails.
func Open(calibDir string, v int, s Strategy, logger log.Logger) (*Blinder, error) {
	b := &Blinder{strategy: s, logger: log.OrNoop(logger)}
	if !s.Inserts() {
		return b, nil
	}

	ctl := filepath.Join(calibDir, ControlFileName(v))
	subs, err := LoadControl(ctl)
	if err != nil {
		return nil, fmt.Errorf("blinding control file: %w", err)
	}
	b.subs = subs
	for _, pol := range []record.Pol{record.Horizontal, record.Vertical} {
		if !b.inserts(pol) {
			continue
		}
		if b.heads[pol], err = openBlindStore(calibDir, headStems[pol]); err != nil {
			b.Close()
			return nil, err
		}
		if b.events[pol], err = openBlindStore(calibDir, eventStems[pol]); err != nil {
			b.Close()
			return nil, err
		}
	}
	b.logger.Info("blinding enabled",
		log.String("strategy", s.Description()),
		log.Int("substitutions", len(b.subs)),
		log.Epoch(v))
	return b, nil
}

func openBlindStore(dir, stem string) (store.Store, error) {
	for _, ext := range store.Extensions {
		p := filepath.Join(dir, stem+ext)
		s, err := store.Open(p)
		if err == nil {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s in %s", ErrNoBlindStore, stem, dir)
}

// New returns a Blinder over already opened stores, for callers that
// manage blind data themselves. Missing stores disable the matching
// polarization.
func New(s Strategy, subs []Substitution, heads, events [record.NumPols]store.Store, logger log.Logger) *Blinder {
	return &Blinder{strategy: s, subs: subs, heads: heads, events: events, logger: log.OrNoop(logger)}
}

// Strategy returns the active strategy.
func (b *Blinder) Strategy() Strategy {
	if b == nil {
		return None
	}
	return b.strategy
}

func (b *Blinder) inserts(pol record.Pol) bool {
	switch pol {
	case record.Vertical:
		return b.strategy.InsertVPol
	case record.Horizontal:
		return b.strategy.InsertHPol
	}
	return false
}

// Close releases the blind stores.
func (b *Blinder) Close() error {
	if b == nil {
		return nil
	}
	var errs []error
	for i := range b.heads {
		if b.heads[i] != nil {
			errs = append(errs, b.heads[i].Close())
			b.heads[i] = nil
		}
		if b.events[i] != nil {
			errs = append(errs, b.events[i].Close())
			b.events[i] = nil
		}
	}
	return errors.Join(errs...)
}

// NeedsSubstitution returns the blind store position replacing ev for pol,
// or -1.
func (b *Blinder) NeedsSubstitution(pol record.Pol, ev uint64) int {
	if b == nil || !b.inserts(pol) {
		return -1
	}
	for _, s := range b.subs {
		if s.EventNumber == ev && s.Pol == pol {
			return s.Position
		}
	}
	return -1
}

// order in which polarizations are applied; a later match wins
var applyOrder = []record.Pol{record.Vertical, record.Horizontal}

// OverwriteHeader replaces h with the blind header at pos for pol, keeping
// the fields that identify the trigger.
func (b *Blinder) OverwriteHeader(h *record.Header, pol record.Pol, pos int) error {
	src := b.heads[pol]
	if src == nil {
		return fmt.Errorf("%w: %s header", ErrNoBlindStore, pol)
	}
	var fake record.Header
	if err := src.Get(pos, &fake); err != nil {
		return fmt.Errorf("blind header %d: %w", pos, err)
	}
	fake.RealTime = h.RealTime
	fake.TriggerTime = h.TriggerTime
	fake.TriggerTimeNs = h.TriggerTimeNs
	fake.EventNumber = h.EventNumber
	fake.Run = h.Run
	fake.TrigNum = h.TrigNum
	*h = fake
	metrics.Substitutions.WithLabelValues(pol.String(), "header").Inc()
	return nil
}

// OverwriteEvent replaces u with the blind event at pos for pol, keeping
// the event number and run.
func (b *Blinder) OverwriteEvent(u *record.UsefulEvent, pol record.Pol, pos int) error {
	src := b.events[pol]
	if src == nil {
		return fmt.Errorf("%w: %s event", ErrNoBlindStore, pol)
	}
	var fake record.UsefulEvent
	if err := src.Get(pos, &fake); err != nil {
		return fmt.Errorf("blind event %d: %w", pos, err)
	}
	fake.EventNumber = u.EventNumber
	fake.Run = u.Run
	*u = fake
	metrics.Substitutions.WithLabelValues(pol.String(), "event").Inc()
	return nil
}

// ApplyHeader overwrites h if its event number is blinded. It reports
// whether a substitution happened.
func (b *Blinder) ApplyHeader(h *record.Header) (bool, error) {
	if b == nil {
		return false, nil
	}
	done := false
	for _, pol := range applyOrder {
		pos := b.NeedsSubstitution(pol, h.EventNumber)
		if pos < 0 {
			continue
		}
		if err := b.OverwriteHeader(h, pol, pos); err != nil {
			b.logger.Error("header substitution failed", log.Event(h.EventNumber), log.Err(err))
			return done, err
		}
		done = true
	}
	return done, nil
}

// ApplyEvent overwrites u if blinded and then, if the strategy asks for
// it, inverts its polarity.
func (b *Blinder) ApplyEvent(u *record.UsefulEvent) (bool, error) {
	if b == nil {
		return false, nil
	}
	done := false
	for _, pol := range applyOrder {
		pos := b.NeedsSubstitution(pol, u.EventNumber)
		if pos < 0 {
			continue
		}
		if err := b.OverwriteEvent(u, pol, pos); err != nil {
			b.logger.Error("event substitution failed", log.Event(u.EventNumber), log.Err(err))
			return done, err
		}
		done = true
	}
	if b.strategy.RandomizePolarity && MaybeInvertPolarity(u.EventNumber) {
		u.InvertPolarity()
		metrics.PolarityInversions.Inc()
		done = true
	}
	return done, nil
}

// ApplyRaw overwrites r with the raw samples of the blind event if blinded.
// Polarity randomization applies to calibrated events only.
func (b *Blinder) ApplyRaw(r *record.RawEvent) (bool, error) {
	if b == nil {
		return false, nil
	}
	done := false
	for _, pol := range applyOrder {
		pos := b.NeedsSubstitution(pol, r.EventNumber)
		if pos < 0 {
			continue
		}
		u := record.UsefulEvent{RawEvent: *r}
		if err := b.OverwriteEvent(&u, pol, pos); err != nil {
			b.logger.Error("raw substitution failed", log.Event(r.EventNumber), log.Err(err))
			return done, err
		}
		*r = u.RawEvent
		done = true
	}
	return done, nil
}

// MaybeInvertPolarity decides from ev alone whether the event's polarity
// is inverted. The outcome is stable across calls and processes.
func MaybeInvertPolarity(ev uint64) bool {
	rng := rand.New(rand.NewPCG(ev, polaritySalt))
	return rng.Float64()*2-1 < 0
}
