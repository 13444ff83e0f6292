// Package locate resolves the data and calibration directories and finds
// the files that make up one run.
package locate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pueo/pueonav/internal/version"
	"github.com/pueo/pueonav/pkg/store"
)

var (
	// ErrDataRootUnset is returned when no environment selector names a data root.
	ErrDataRootUnset = errors.New("locate: data root not configured")

	// ErrMissingHeader is returned when a run has no header file.
	ErrMissingHeader = errors.New("locate: no header file for run")

	// ErrMissingDecimated is returned in decimated mode when a run has no
	// decimated header file.
	ErrMissingDecimated = errors.New("locate: no decimated header file for run")
)

// SimulatedMarker in a file name flags the run as simulated.
const SimulatedMarker = "Simulated"

// Candidate file stems per record kind, in priority order.
var (
	HeaderNames    = []string{"eventHeadFile", "timedHeadFile", "headFile", "SimulatedHeadFile", "SimulatedPueoHeadFile"}
	DecimatedNames = []string{"decimatedHeadFile"}
	GPSEventNames  = []string{"gpsEvent", "SimulatedGpsFile", "SimulatedPueoGpsFile"}
	GPSTimeNames   = []string{"gpsFile"}
	UsefulNames    = []string{"usefulEventFile", "SimulatedEventFile", "SimulatedPueoEventFile"}
	RawNames       = []string{"eventFile"}
	TruthNames     = []string{"SimulatedTruthFile", "SimulatedPueoTruthFile"}
)

// DataDirEnv returns the environment variables consulted for selector v,
// in priority order.
func DataDirEnv(v int) []string {
	var names []string
	switch {
	case v > 0:
		names = append(names, fmt.Sprintf("PUEO%d_ROOT_DATA", v))
	case v == version.Simulated:
		names = append(names, "PUEO_MC_DATA")
	}
	return append(names, "PUEO_ROOT_DATA", fmt.Sprintf("PUEO%d_ROOT_DATA", version.Default))
}

// DataDir resolves the data root for selector v.
func DataDir(v int) (string, error) {
	for _, name := range DataDirEnv(v) {
		if dir := os.Getenv(name); dir != "" {
			return dir, nil
		}
	}
	return "", fmt.Errorf("%w (tried %s)", ErrDataRootUnset, strings.Join(DataDirEnv(v), ", "))
}

// CalibDir resolves the calibration directory. It never fails; the last
// resort is "calib" relative to the working directory.
func CalibDir() string {
	if dir := os.Getenv("PUEO_CALIB_DIR"); dir != "" {
		return dir
	}
	if inst := os.Getenv("PUEO_UTIL_INSTALL_DIR"); inst != "" {
		return filepath.Join(inst, "share", "pueoCalib")
	}
	return "calib"
}

// RunDir returns <root>/run<N>.
func RunDir(root string, run int) string {
	return filepath.Join(root, "run"+strconv.Itoa(run))
}

// Find returns the first existing <dir>/<stem><run><ext> over stems and
// store.Extensions, or "".
func Find(dir string, run int, stems []string) string {
	for _, stem := range stems {
		for _, ext := range store.Extensions {
			p := filepath.Join(dir, stem+strconv.Itoa(run)+ext)
			if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
				return p
			}
		}
	}
	return ""
}

// RunFiles lists the files found for one run. Empty paths mean the kind is
// unavailable.
type RunFiles struct {
	Run       int
	Dir       string
	Header    string
	Decimated string

	// GPS is event-indexed unless GPSByTime is set.
	GPS       string
	GPSByTime bool

	// Event holds calibrated events when Useful is set, raw events otherwise.
	Event  string
	Useful bool

	Truth     string
	Simulated bool
}

// Locate finds the files of run under root. The header file is mandatory,
// as is the decimated header in decimated mode.
func Locate(root string, run int, decimated bool) (RunFiles, error) {
	dir := RunDir(root, run)
	rf := RunFiles{Run: run, Dir: dir}

	rf.Header = Find(dir, run, HeaderNames)
	if rf.Header == "" {
		return RunFiles{}, fmt.Errorf("%w %d in %s", ErrMissingHeader, run, dir)
	}
	rf.Simulated = strings.Contains(filepath.Base(rf.Header), SimulatedMarker)

	if decimated {
		rf.Decimated = Find(dir, run, DecimatedNames)
		if rf.Decimated == "" {
			return RunFiles{}, fmt.Errorf("%w %d in %s", ErrMissingDecimated, run, dir)
		}
	}

	if rf.GPS = Find(dir, run, GPSEventNames); rf.GPS == "" {
		if rf.GPS = Find(dir, run, GPSTimeNames); rf.GPS != "" {
			rf.GPSByTime = true
		}
	}

	if rf.Event = Find(dir, run, UsefulNames); rf.Event != "" {
		rf.Useful = true
	} else {
		rf.Event = Find(dir, run, RawNames)
	}
	if strings.Contains(filepath.Base(rf.Event), SimulatedMarker) {
		rf.Simulated = true
	}

	if rf.Simulated {
		rf.Truth = Find(dir, run, TruthNames)
	}
	return rf, nil
}

// Runs lists the run numbers with a run<N> directory under root, ascending.
func Runs(root string) ([]int, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read data root: %w", err)
	}
	var runs []int
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		n, ok := ParseRunDir(e.Name())
		if ok {
			runs = append(runs, n)
		}
	}
	sort.Ints(runs)
	return runs, nil
}

// ParseRunDir parses a "run<N>" directory name.
func ParseRunDir(name string) (int, bool) {
	digits, ok := strings.CutPrefix(name, "run")
	if !ok || digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
