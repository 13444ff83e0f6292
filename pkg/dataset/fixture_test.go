package dataset

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pueo/pueonav/internal/locate"
	"github.com/pueo/pueonav/pkg/log"
	"github.com/pueo/pueonav/pkg/record"
	"github.com/pueo/pueonav/pkg/store"
)

const baseTime = 1_700_000_000

// runFixture describes a run written by writeRun. Events are stored in the
// given order.
type runFixture struct {
	run       int
	events    []uint64
	trigTypes []uint32

	raw       bool
	useful    bool
	gpsEvent  bool
	gpsByTime bool
	simulated bool
	decimated []int // positions copied into a decimated header file
}

func runPath(root string, run int, stem string) string {
	return filepath.Join(locate.RunDir(root, run), stem+strconv.Itoa(run)+".jsonl")
}

func headerFor(run int, i int, ev uint64, trig uint32) record.Header {
	return record.Header{
		Run:           run,
		EventNumber:   ev,
		RealTime:      uint32(baseTime + ev),
		TriggerTime:   uint32(baseTime + ev),
		TriggerTimeNs: uint32(i) * 10_000_000,
		TrigType:      trig,
		TrigNum:       uint32(i),
	}
}

func rawFor(run int, ev uint64) record.RawEvent {
	return record.RawEvent{
		Run:         run,
		EventNumber: ev,
		Data:        [][]int16{{int16(ev % 100), 2, -4}, {0, 6, 8}},
	}
}

func writeRun(t *testing.T, root string, rf runFixture) []record.Header {
	t.Helper()
	require.NoError(t, os.MkdirAll(locate.RunDir(root, rf.run), 0o755))

	headStem, eventStem, gpsStem := "headFile", "eventFile", "gpsEvent"
	if rf.simulated {
		headStem, eventStem, gpsStem = "SimulatedPueoHeadFile", "SimulatedPueoEventFile", "SimulatedPueoGpsFile"
	}

	hs := make([]record.Header, len(rf.events))
	for i, ev := range rf.events {
		var trig uint32 = 1
		if rf.trigTypes != nil {
			trig = rf.trigTypes[i]
		}
		hs[i] = headerFor(rf.run, i, ev, trig)
	}
	require.NoError(t, store.WriteAll(runPath(root, rf.run, headStem), hs))

	if rf.decimated != nil {
		dec := make([]record.Header, 0, len(rf.decimated))
		for _, p := range rf.decimated {
			dec = append(dec, hs[p])
		}
		require.NoError(t, store.WriteAll(runPath(root, rf.run, "decimatedHeadFile"), dec))
	}

	if rf.raw || rf.simulated {
		raws := make([]record.RawEvent, len(hs))
		for i, h := range hs {
			raws[i] = rawFor(rf.run, h.EventNumber)
		}
		require.NoError(t, store.WriteAll(runPath(root, rf.run, eventStem), raws))
	}
	if rf.useful {
		us := make([]record.UsefulEvent, len(hs))
		for i := range hs {
			r := rawFor(rf.run, hs[i].EventNumber)
			us[i] = *record.Calibrate(&r, &hs[i])
		}
		require.NoError(t, store.WriteAll(runPath(root, rf.run, "usefulEventFile"), us))
	}

	if rf.gpsEvent || rf.simulated {
		gs := make([]record.Attitude, len(hs))
		for i, h := range hs {
			gs[i] = record.Attitude{Run: rf.run, EventNumber: h.EventNumber, RealTime: uint64(h.RealTime), Heading: float32(i)}
		}
		require.NoError(t, store.WriteAll(runPath(root, rf.run, gpsStem), gs))
	}
	if rf.gpsByTime {
		// one sample every other second, covering the run
		var gs []record.Attitude
		for ts := uint64(baseTime) + rf.events[0] - 2; ts <= uint64(baseTime)+rf.events[len(rf.events)-1]+2; ts += 2 {
			gs = append(gs, record.Attitude{Run: rf.run, RealTime: ts, Heading: float32(ts - baseTime)})
		}
		require.NoError(t, store.WriteAll(runPath(root, rf.run, "gpsFile"), gs))
	}

	if rf.simulated {
		ts := make([]record.Truth, len(hs))
		for i, h := range hs {
			ts[i] = record.Truth{Run: rf.run, EventNumber: h.EventNumber, Weight: float64(i) + 0.5}
		}
		require.NoError(t, store.WriteAll(runPath(root, rf.run, "SimulatedPueoTruthFile"), ts))
	}
	return hs
}

func seq(first uint64, n int) []uint64 {
	out := make([]uint64, n)
	for i := range out {
		out[i] = first + uint64(i)
	}
	return out
}

type fixture struct {
	root  string
	calib string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	return fixture{root: t.TempDir(), calib: t.TempDir()}
}

func (f fixture) options() Options {
	return Options{DataRoot: f.root, CalibDir: f.calib}
}

func (f fixture) open(t *testing.T, run int, mutate ...func(*Options)) *Dataset {
	t.Helper()
	opts := f.options()
	for _, m := range mutate {
		m(&opts)
	}
	d, err := Open(run, opts)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

// loudLogger records Warn and Error messages.
type loudLogger struct {
	msgs []string
}

func (l *loudLogger) Debug(msg string, fields ...log.Field) {}
func (l *loudLogger) Info(msg string, fields ...log.Field)  {}
func (l *loudLogger) Warn(msg string, fields ...log.Field)  { l.msgs = append(l.msgs, msg) }
func (l *loudLogger) Error(msg string, fields ...log.Field) { l.msgs = append(l.msgs, msg) }
