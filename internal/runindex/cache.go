package runindex

import (
	"bufio"
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// EventCacheName is the event-range cache file for version v.
func EventCacheName(v int) string { return fmt.Sprintf("runToEvP%d.txt", v) }

// TimeCacheName is the time-span cache file for version v.
func TimeCacheName(v int) string { return fmt.Sprintf("timerunmap_%d.txt", v) }

func parseEvent(s string) (uint64, error) { return strconv.ParseUint(s, 10, 64) }
func formatEvent(v uint64) string         { return strconv.FormatUint(v, 10) }

func parseTime(s string) (float64, error) { return strconv.ParseFloat(s, 64) }
func formatTime(v float64) string         { return strconv.FormatFloat(v, 'f', 9, 64) }

// readCache parses "run start stop" lines. Blank lines and lines starting
// with '#' are skipped.
func readCache[T cmp.Ordered](path string, parse func(string) (T, error)) ([]Span[T], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var spans []Span[T]
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if len(fields) != 3 {
			return nil, fmt.Errorf("%s:%d: want 3 fields, got %d", path, line, len(fields))
		}
		run, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: run: %w", path, line, err)
		}
		start, err := parse(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: start: %w", path, line, err)
		}
		stop, err := parse(fields[2])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: stop: %w", path, line, err)
		}
		spans = append(spans, Span[T]{Run: run, Start: start, Stop: stop})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return spans, nil
}

// writeCache persists spans atomically (temp file, then rename).
func writeCache[T cmp.Ordered](path string, spans []Span[T], format func(T) string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for _, s := range spans {
		fmt.Fprintf(w, "%d %s %s\n", s.Run, format(s.Start), format(s.Stop))
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
