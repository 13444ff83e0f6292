package blind

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pueo/pueonav/pkg/record"
	"github.com/pueo/pueonav/pkg/store"
)

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in   string
		want Strategy
		desc string
	}{
		{"", None, "No blinding. "},
		{"none", None, "No blinding. "},
		{"vpol", Strategy{InsertVPol: true}, "VPol events inserted. "},
		{"hpol, polarity", Strategy{InsertHPol: true, RandomizePolarity: true}, "HPol events inserted. Polarity randomized. "},
		{"VPOL,hpol,polarity", Strategy{InsertVPol: true, InsertHPol: true, RandomizePolarity: true}, "VPol events inserted. HPol events inserted. Polarity randomized. "},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStrategy(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.desc, got.Description())

			again, err := ParseStrategy(got.String())
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}

	_, err := ParseStrategy("vpol,xpol")
	assert.Error(t, err)
}

func TestParseControl(t *testing.T) {
	in := "eventNumber fakeTreeEntry pol\n1001 0 1\n1002 3 0\n\n1003\t1 1\n"
	subs, err := ParseControl(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []Substitution{
		{EventNumber: 1001, Position: 0, Pol: record.Vertical},
		{EventNumber: 1002, Position: 3, Pol: record.Horizontal},
		{EventNumber: 1003, Position: 1, Pol: record.Vertical},
	}, subs)

	_, err = ParseControl(strings.NewReader("hdr\n1 2\n"))
	assert.Error(t, err)

	_, err = ParseControl(strings.NewReader("hdr\n1 2 7\n"))
	assert.Error(t, err)

	subs, err = ParseControl(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, subs)
}

// blindFixture writes a calibration directory with a VPol blind store of
// two records and a control file blinding event 1001.
func blindFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ControlFileName(1)),
		[]byte("eventNumber entry pol\n1001 1 1\n1002 0 0\n"), 0o644))

	heads := []record.Header{
		{Run: 900, EventNumber: 1, TrigType: 1, Priority: 1},
		{Run: 900, EventNumber: 2, TrigType: 64, Priority: 7, RealTime: 5, TrigNum: 99, TriggerTime: 5, TriggerTimeNs: 6},
	}
	events := []record.UsefulEvent{
		{RawEvent: record.RawEvent{EventNumber: 1, Run: 900}, Volts: [][]float64{{9}}},
		{RawEvent: record.RawEvent{EventNumber: 2, Run: 900, Data: [][]int16{{4, 4}}}, Volts: [][]float64{{1, 2}}},
	}
	require.NoError(t, store.WriteAll(filepath.Join(dir, "insertedHeadVPol.jsonl"), heads))
	require.NoError(t, store.WriteAll(filepath.Join(dir, "insertedEventVPol.jsonl.zst"), events))
	return dir
}

func TestOpenAndApply(t *testing.T) {
	dir := blindFixture(t)
	b, err := Open(dir, 1, Strategy{InsertVPol: true}, nil)
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, 1, b.NeedsSubstitution(record.Vertical, 1001))
	assert.Equal(t, -1, b.NeedsSubstitution(record.Horizontal, 1002), "hpol not enabled")
	assert.Equal(t, -1, b.NeedsSubstitution(record.Vertical, 1002))

	h := record.Header{Run: 5, EventNumber: 1001, RealTime: 1700000000, TriggerTime: 1700000000, TriggerTimeNs: 123, TrigNum: 42, TrigType: 1, Priority: 3}
	done, err := b.ApplyHeader(&h)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, uint32(64), h.TrigType)
	assert.Equal(t, uint8(7), h.Priority)
	assert.Equal(t, 5, h.Run)
	assert.Equal(t, uint64(1001), h.EventNumber)
	assert.Equal(t, uint32(1700000000), h.RealTime)
	assert.Equal(t, uint32(1700000000), h.TriggerTime)
	assert.Equal(t, uint32(123), h.TriggerTimeNs)
	assert.Equal(t, uint32(42), h.TrigNum)

	u := record.UsefulEvent{RawEvent: record.RawEvent{EventNumber: 1001, Run: 5}, Volts: [][]float64{{0, 0}}}
	done, err = b.ApplyEvent(&u)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, uint64(1001), u.EventNumber)
	assert.Equal(t, 5, u.Run)
	assert.Equal(t, [][]float64{{1, 2}}, u.Volts)

	r := record.RawEvent{EventNumber: 1001, Run: 5}
	done, err = b.ApplyRaw(&r)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, [][]int16{{4, 4}}, r.Data)
	assert.Equal(t, uint64(1001), r.EventNumber)

	untouched := record.Header{EventNumber: 77, TrigType: 1}
	done, err = b.ApplyHeader(&untouched)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, record.Header{EventNumber: 77, TrigType: 1}, untouched)
}

func TestOpenMissingStore(t *testing.T) {
	dir := blindFixture(t)
	_, err := Open(dir, 1, Strategy{InsertHPol: true}, nil)
	require.ErrorIs(t, err, ErrNoBlindStore)

	_, err = Open(t.TempDir(), 1, Strategy{InsertVPol: true}, nil)
	require.Error(t, err)
}

func TestOpenWithoutInsertsNeedsNoFiles(t *testing.T) {
	b, err := Open(t.TempDir(), 1, Strategy{RandomizePolarity: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, -1, b.NeedsSubstitution(record.Vertical, 1))
	require.NoError(t, b.Close())
}

func TestNilBlinderIsPassThrough(t *testing.T) {
	var b *Blinder
	h := record.Header{EventNumber: 1001}
	done, err := b.ApplyHeader(&h)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, None, b.Strategy())
	assert.NoError(t, b.Close())
}

func TestMaybeInvertPolarityDeterministic(t *testing.T) {
	inverted := 0
	for ev := uint64(0); ev < 2000; ev++ {
		first := MaybeInvertPolarity(ev)
		assert.Equal(t, first, MaybeInvertPolarity(ev))
		if first {
			inverted++
		}
	}
	assert.InDelta(t, 1000, inverted, 150)
}

func TestApplyEventRandomizesPolarity(t *testing.T) {
	b := New(Strategy{RandomizePolarity: true}, nil, [record.NumPols]store.Store{}, [record.NumPols]store.Store{}, nil)

	var ev uint64
	for !MaybeInvertPolarity(ev) {
		ev++
	}
	u := record.UsefulEvent{RawEvent: record.RawEvent{EventNumber: ev, Data: [][]int16{{3, -2}}}, Volts: [][]float64{{1.5, -2}}}
	done, err := b.ApplyEvent(&u)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, [][]float64{{-1.5, 2}}, u.Volts)

	ev++
	for MaybeInvertPolarity(ev) {
		ev++
	}
	keep := record.UsefulEvent{RawEvent: record.RawEvent{EventNumber: ev}, Volts: [][]float64{{1.5}}}
	done, err = b.ApplyEvent(&keep)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, [][]float64{{1.5}}, keep.Volts)
}

func TestEligible(t *testing.T) {
	assert.True(t, Eligible(1))
	assert.False(t, Eligible(0))
}
