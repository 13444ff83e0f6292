package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pueo/pueonav/internal/locate"
	"github.com/pueo/pueonav/internal/runindex"
	"github.com/pueo/pueonav/pkg/record"
	"github.com/pueo/pueonav/pkg/store"
)

func TestLoadPrimesFirstEntry(t *testing.T) {
	f := newFixture(t)
	hs := writeRun(t, f.root, runFixture{run: 3, events: seq(100, 4), raw: true, gpsEvent: true})

	d := f.open(t, 3)
	assert.True(t, d.Loaded())
	assert.Equal(t, 3, d.Run())
	assert.Equal(t, 4, d.N())
	assert.Equal(t, 0, d.Current())
	assert.Equal(t, 1, d.Version())
	assert.False(t, d.Simulated())

	h, err := d.Header()
	require.NoError(t, err)
	assert.Equal(t, hs[0], *h)
}

func TestGetEventThenHeader(t *testing.T) {
	f := newFixture(t)
	events := []uint64{510, 502, 507, 501}
	writeRun(t, f.root, runFixture{run: 4, events: events})
	d := f.open(t, 4)

	for _, ev := range events {
		_, err := d.GetEvent(ev, false)
		require.NoError(t, err)
		h, err := d.Header()
		require.NoError(t, err)
		assert.Equal(t, ev, h.EventNumber)
	}
}

func TestGetEntryOutOfRangeLeavesCursor(t *testing.T) {
	f := newFixture(t)
	writeRun(t, f.root, runFixture{run: 1, events: seq(10, 3)})
	d := f.open(t, 1)

	_, err := d.GetEntry(2)
	require.NoError(t, err)

	for _, p := range []int{-1, 3, 100} {
		pos, err := d.GetEntry(p)
		assert.ErrorIs(t, err, ErrOutOfRange)
		assert.Equal(t, -1, pos)
		assert.Equal(t, 2, d.Current())
	}
	h, err := d.Header()
	require.NoError(t, err)
	assert.Equal(t, uint64(12), h.EventNumber)
}

func TestUsefulIsIdempotent(t *testing.T) {
	f := newFixture(t)
	hs := writeRun(t, f.root, runFixture{run: 2, events: seq(40, 3), raw: true})
	d := f.open(t, 2)

	_, err := d.GetEntry(1)
	require.NoError(t, err)
	u1, err := d.Useful(false)
	require.NoError(t, err)
	snapshot := *u1.Clone()
	u2, err := d.Useful(false)
	require.NoError(t, err)
	assert.Same(t, u1, u2)
	assert.Equal(t, snapshot, *u2)

	raw := rawFor(2, 41)
	assert.Equal(t, *record.Calibrate(&raw, &hs[1]), *u2)

	forced, err := d.Useful(true)
	require.NoError(t, err)
	assert.Equal(t, snapshot, *forced)

	_, err = d.GetEntry(2)
	require.NoError(t, err)
	u3, err := d.Useful(false)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), u3.EventNumber)
}

func TestNativeUsefulStore(t *testing.T) {
	f := newFixture(t)
	hs := writeRun(t, f.root, runFixture{run: 8, events: seq(80, 2), useful: true})
	d := f.open(t, 8)

	_, err := d.GetEntry(1)
	require.NoError(t, err)
	u, err := d.Useful(false)
	require.NoError(t, err)
	raw := rawFor(8, 81)
	assert.Equal(t, *record.Calibrate(&raw, &hs[1]), *u)

	r, err := d.Raw()
	require.NoError(t, err)
	assert.Equal(t, raw.Data, r.Data)
}

func TestUnblindedRecordsAreVerbatim(t *testing.T) {
	f := newFixture(t)
	hs := writeRun(t, f.root, runFixture{run: 6, events: seq(60, 3), raw: true})
	d := f.open(t, 6)

	for i, want := range hs {
		_, err := d.GetEntry(i)
		require.NoError(t, err)
		h, err := d.Header()
		require.NoError(t, err)
		assert.Equal(t, want, *h)
		r, err := d.Raw()
		require.NoError(t, err)
		assert.Equal(t, rawFor(6, want.EventNumber), *r)
	}
}

func TestHeadersOnlyRun(t *testing.T) {
	f := newFixture(t)
	writeRun(t, f.root, runFixture{run: 5, events: seq(500, 3)})
	d := f.open(t, 5)

	h, err := d.Header()
	require.NoError(t, err)
	assert.Equal(t, uint64(500), h.EventNumber)

	r, err := d.Raw()
	require.NoError(t, err)
	assert.Nil(t, r)
	u, err := d.Useful(false)
	require.NoError(t, err)
	assert.Nil(t, u)
	g, err := d.GPS(false)
	require.NoError(t, err)
	assert.Nil(t, g)
	tr, err := d.Truth(false)
	require.NoError(t, err)
	assert.Nil(t, tr)
}

func TestLoadFailureLeavesNothingLoaded(t *testing.T) {
	f := newFixture(t)
	writeRun(t, f.root, runFixture{run: 1, events: seq(1, 2)})
	d := f.open(t, 1)

	err := d.Load(99)
	require.ErrorIs(t, err, locate.ErrMissingHeader)
	assert.False(t, d.Loaded())
	assert.Equal(t, -1, d.Run())
	assert.Equal(t, 0, d.N())
	assert.Equal(t, -1, d.Current())

	_, err = d.Header()
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, err = d.GetEntry(0)
	assert.ErrorIs(t, err, ErrNotLoaded)

	require.NoError(t, d.Load(1))
	assert.Equal(t, 1, d.Run())
}

func TestLoadRejectsEmptyHeaderFile(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.MkdirAll(locate.RunDir(f.root, 2), 0o755))
	require.NoError(t, os.WriteFile(runPath(f.root, 2, "headFile"), nil, 0o644))

	_, err := Open(2, f.options())
	require.Error(t, err)
}

func TestDataRootUnset(t *testing.T) {
	for _, name := range locate.DataDirEnv(-1) {
		t.Setenv(name, "")
	}
	_, err := Open(1, Options{CalibDir: t.TempDir()})
	require.ErrorIs(t, err, locate.ErrDataRootUnset)
}

func TestGetEventCrossesRuns(t *testing.T) {
	f := newFixture(t)
	writeRun(t, f.root, runFixture{run: 1, events: []uint64{100, 101, 103, 199}})
	writeRun(t, f.root, runFixture{run: 2, events: seq(200, 6)})
	d := f.open(t, 1)

	pos, err := d.GetEvent(203, false)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Run())
	assert.Equal(t, 3, pos)

	pos, err = d.GetEvent(101, true)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Run())
	assert.Equal(t, 1, pos)

	// inside run 1's range but absent
	_, err = d.GetEvent(102, false)
	assert.ErrorIs(t, err, ErrEventNotFound)
	assert.Equal(t, 1, d.Run())
	assert.Equal(t, 1, d.Current())

	_, err = d.GetEvent(9999, true)
	assert.ErrorIs(t, err, ErrEventNotFound)
	assert.ErrorIs(t, err, runindex.ErrNoRun)
}

func TestGetEventInconsistentIndex(t *testing.T) {
	f := newFixture(t)
	writeRun(t, f.root, runFixture{run: 1, events: seq(100, 3)})
	writeRun(t, f.root, runFixture{run: 2, events: seq(200, 3)})
	require.NoError(t, os.WriteFile(filepath.Join(f.calib, runindex.EventCacheName(1)),
		[]byte("1 100 102\n2 200 400\n"), 0o644))
	d := f.open(t, 1)

	_, err := d.GetEvent(350, false)
	assert.ErrorIs(t, err, ErrInconsistent)
	assert.NotErrorIs(t, err, ErrEventNotFound)
}

func TestQuietGetEventLogsNothing(t *testing.T) {
	f := newFixture(t)
	writeRun(t, f.root, runFixture{run: 1, events: seq(100, 3)})
	require.NoError(t, os.WriteFile(filepath.Join(f.calib, runindex.EventCacheName(1)),
		[]byte("1 100 102\n9 900 999\n"), 0o644))
	logger := &loudLogger{}
	d := f.open(t, 1, func(o *Options) { o.Logger = logger })

	_, err := d.GetEvent(5000, true)
	assert.ErrorIs(t, err, ErrEventNotFound)

	_, err = d.GetEvent(950, true)
	assert.ErrorIs(t, err, locate.ErrMissingHeader)
	assert.Empty(t, logger.msgs)
	assert.False(t, d.Loaded())

	require.NoError(t, d.Load(1))
	_, err = d.GetEvent(5000, false)
	assert.ErrorIs(t, err, ErrEventNotFound)
	assert.NotEmpty(t, logger.msgs)
}

func TestSimulatedRunTruth(t *testing.T) {
	f := newFixture(t)
	writeRun(t, f.root, runFixture{run: 7, events: seq(70, 3), simulated: true})
	d := f.open(t, 7)
	assert.True(t, d.Simulated())

	_, err := d.GetEntry(2)
	require.NoError(t, err)
	tr, err := d.Truth(false)
	require.NoError(t, err)
	require.NotNil(t, tr)
	assert.Equal(t, uint64(72), tr.EventNumber)
	assert.Equal(t, 2.5, tr.Weight)

	u, err := d.Useful(false)
	require.NoError(t, err)
	assert.Equal(t, uint64(72), u.EventNumber)

	g, err := d.GPS(false)
	require.NoError(t, err)
	assert.Equal(t, uint64(72), g.EventNumber)
}

func TestGPSByTimeUsesRoundedTriggerTime(t *testing.T) {
	f := newFixture(t)
	writeRun(t, f.root, runFixture{run: 9, events: seq(10, 8), gpsByTime: true})
	d := f.open(t, 9)

	// samples sit at even offsets 8,10,12,...; event 13 triggers at offset
	// 13 + 0.03s and takes the sample at 12
	_, err := d.GetEvent(13, false)
	require.NoError(t, err)
	g, err := d.GPS(false)
	require.NoError(t, err)
	assert.Equal(t, float32(12), g.Heading)

	again, err := d.GPS(false)
	require.NoError(t, err)
	assert.Same(t, g, again)

	_, err = d.GetEvent(16, false)
	require.NoError(t, err)
	g, err = d.GPS(false)
	require.NoError(t, err)
	assert.Equal(t, float32(16), g.Heading)
}

func TestGPSByEvent(t *testing.T) {
	f := newFixture(t)
	writeRun(t, f.root, runFixture{run: 9, events: seq(10, 3), gpsEvent: true})
	d := f.open(t, 9)

	_, err := d.GetEntry(2)
	require.NoError(t, err)
	g, err := d.GPS(false)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), g.EventNumber)
}

func TestDecimatedNavigation(t *testing.T) {
	f := newFixture(t)
	writeRun(t, f.root, runFixture{run: 3, events: seq(30, 6), raw: true, decimated: []int{1, 4}})
	d := f.open(t, 3, func(o *Options) { o.Decimated = true })

	assert.Equal(t, 2, d.N())
	h, err := d.Header()
	require.NoError(t, err)
	assert.Equal(t, uint64(31), h.EventNumber)

	pos, err := d.GetEntry(1)
	require.NoError(t, err)
	assert.Equal(t, 1, pos)
	assert.Equal(t, 1, d.Current())
	u, err := d.Useful(false)
	require.NoError(t, err)
	assert.Equal(t, uint64(34), u.EventNumber)

	_, err = d.GetEvent(32, true)
	assert.ErrorIs(t, err, ErrEventNotFound)

	_, err = Open(4, Options{DataRoot: f.root, CalibDir: f.calib, Decimated: true})
	assert.ErrorIs(t, err, locate.ErrMissingHeader)

	writeRun(t, f.root, runFixture{run: 4, events: seq(40, 2)})
	_, err = Open(4, Options{DataRoot: f.root, CalibDir: f.calib, Decimated: true})
	assert.ErrorIs(t, err, locate.ErrMissingDecimated)
}

func TestHiCal(t *testing.T) {
	f := newFixture(t)
	writeRun(t, f.root, runFixture{run: 1, events: seq(1, 2)})
	fixes := []record.HiCalFix{
		{UnixTime: baseTime + 1, Longitude: 10, Latitude: -80, Altitude: 1000},
		{UnixTime: baseTime + 2, Longitude: 11, Latitude: -81, Altitude: 2000},
	}
	require.NoError(t, store.WriteAll(filepath.Join(f.calib, HiCalStem+".jsonl"), fixes))
	d := f.open(t, 1)

	lon, lat, alt := d.HiCalNow()
	assert.Equal(t, 10.0, lon)
	assert.Equal(t, -80.0, lat)
	assert.InDelta(t, 304.8, alt, 1e-9)

	lon, lat, alt = d.HiCal(baseTime + 50)
	assert.Equal(t, [3]float64{HiCalMissing, HiCalMissing, HiCalMissing}, [3]float64{lon, lat, alt})
}

func TestHiCalWithoutTrack(t *testing.T) {
	f := newFixture(t)
	writeRun(t, f.root, runFixture{run: 1, events: seq(1, 2)})
	d := f.open(t, 1)
	lon, _, _ := d.HiCal(baseTime + 1)
	assert.Equal(t, float64(HiCalMissing), lon)
}

func TestModuleVersions(t *testing.T) {
	require.NoError(t, validateModuleVersions())
	assert.True(t, isVersionCompatible("1.2.0", "1.1.9"))
	assert.True(t, isVersionCompatible("1.0.0", "1.0.0"))
	assert.False(t, isVersionCompatible("1.0.0", "2.0.0"))
	assert.False(t, isVersionCompatible("1.0.3", "1.1.0"))

	names := make([]string, 0)
	for _, m := range linkedModules() {
		names = append(names, m.name)
	}
	assert.Contains(t, names, "state")
}

func TestCheckModulesRejectsIncompatible(t *testing.T) {
	want := map[string]string{"state": "1.0.0"}

	err := checkModules([]moduleVersion{{"state", "2.0.0", "2.0.0"}}, want)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "built against 1.0.0")

	err = checkModules([]moduleVersion{{"store", "1.0.0", "1.1.0"}}, want)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "below minimum")

	assert.NoError(t, checkModules([]moduleVersion{{"state", "1.4.0", "1.0.0"}}, want))
}
