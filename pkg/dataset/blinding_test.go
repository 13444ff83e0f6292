package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pueo/pueonav/internal/blind"
	"github.com/pueo/pueonav/internal/version"
	"github.com/pueo/pueonav/pkg/record"
	"github.com/pueo/pueonav/pkg/store"
)

// writeBlindData blinds event 101 with VPol fake 0.
func writeBlindData(t *testing.T, calib string) record.UsefulEvent {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(calib, blind.ControlFileName(1)),
		[]byte("eventNumber fakeEntry pol\n101 0 1\n"), 0o644))
	fakeHead := record.Header{Run: 999, EventNumber: 1, TrigType: 64, Priority: 9, RealTime: 5, TrigNum: 77}
	fakeEvent := record.UsefulEvent{
		RawEvent: record.RawEvent{Run: 999, EventNumber: 1, Data: [][]int16{{100, -100}}},
		Volts:    [][]float64{{50, -50}},
		T0:       []float64{0},
		DT:       []float64{record.SamplePeriodNs},
	}
	require.NoError(t, store.WriteAll(filepath.Join(calib, "insertedHeadVPol.jsonl"), []record.Header{fakeHead}))
	require.NoError(t, store.WriteAll(filepath.Join(calib, "insertedEventVPol.jsonl"), []record.UsefulEvent{fakeEvent}))
	return fakeEvent
}

func TestBlindedHeaderAndEvent(t *testing.T) {
	f := newFixture(t)
	hs := writeRun(t, f.root, runFixture{run: 1, events: seq(100, 3), raw: true})
	fake := writeBlindData(t, f.calib)
	strategy := blind.Strategy{InsertVPol: true, RandomizePolarity: true}
	d := f.open(t, 1, func(o *Options) { o.Blinding = strategy })
	assert.Equal(t, strategy, d.Blinding())

	_, err := d.GetEvent(101, false)
	require.NoError(t, err)
	h, err := d.Header()
	require.NoError(t, err)
	assert.Equal(t, uint32(64), h.TrigType)
	assert.Equal(t, uint8(9), h.Priority)
	assert.Equal(t, hs[1].EventNumber, h.EventNumber)
	assert.Equal(t, hs[1].RealTime, h.RealTime)
	assert.Equal(t, hs[1].TrigNum, h.TrigNum)
	assert.Equal(t, hs[1].Run, h.Run)

	want := fake.Clone()
	want.EventNumber = 101
	want.Run = 1
	if blind.MaybeInvertPolarity(101) {
		want.InvertPolarity()
	}
	u, err := d.Useful(false)
	require.NoError(t, err)
	assert.Equal(t, *want, *u)

	again, err := d.Useful(false)
	require.NoError(t, err)
	assert.Equal(t, *want, *again, "polarity is applied once per derivation")

	r, err := d.Raw()
	require.NoError(t, err)
	assert.Equal(t, fake.Data, r.Data)
	assert.Equal(t, uint64(101), r.EventNumber)

	// an unblinded neighbour only sees polarity randomization
	_, err = d.GetEvent(100, false)
	require.NoError(t, err)
	h, err = d.Header()
	require.NoError(t, err)
	assert.Equal(t, hs[0], *h)
	raw := rawFor(1, 100)
	plain := record.Calibrate(&raw, &hs[0])
	if blind.MaybeInvertPolarity(100) {
		plain.InvertPolarity()
	}
	u, err = d.Useful(false)
	require.NoError(t, err)
	assert.Equal(t, *plain, *u)
}

func TestIneligibleVersionIsNotBlinded(t *testing.T) {
	f := newFixture(t)
	hs := writeRun(t, f.root, runFixture{run: 1, events: seq(100, 3), raw: true})
	writeBlindData(t, f.calib)
	d := f.open(t, 1, func(o *Options) {
		o.Blinding = blind.Strategy{InsertVPol: true, RandomizePolarity: true}
		o.Versions = version.Table{Starts: []uint32{0, baseTime}}
	})
	assert.Equal(t, 2, d.Version())
	assert.Equal(t, blind.None, d.Blinding())

	_, err := d.GetEvent(101, false)
	require.NoError(t, err)
	h, err := d.Header()
	require.NoError(t, err)
	assert.Equal(t, hs[1], *h)

	raw := rawFor(1, 101)
	u, err := d.Useful(false)
	require.NoError(t, err)
	assert.Equal(t, *record.Calibrate(&raw, &hs[1]), *u)
}

func TestMissingBlindDataFailsLoad(t *testing.T) {
	f := newFixture(t)
	writeRun(t, f.root, runFixture{run: 1, events: seq(100, 3)})
	_, err := Open(1, Options{DataRoot: f.root, CalibDir: f.calib, Blinding: blind.Strategy{InsertHPol: true}})
	require.Error(t, err)
}
