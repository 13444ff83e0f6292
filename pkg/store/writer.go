package store

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Writer appends records to a new store file.
type Writer struct {
	f   *os.File
	bw  *bufio.Writer
	zw  *zstd.Encoder
	out io.Writer
	n   int
}

// Create truncates path and returns a Writer. Paths ending in ".zst" are
// written zstd-compressed.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := &Writer{f: f, bw: bufio.NewWriterSize(f, 64*1024)}
	w.out = w.bw
	if strings.HasSuffix(path, ".zst") {
		zw, err := zstd.NewWriter(w.bw)
		if err != nil {
			f.Close()
			return nil, err
		}
		w.zw = zw
		w.out = zw
	}
	return w, nil
}

// Append writes rec as the next record.
func (w *Writer) Append(rec any) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if _, err := w.out.Write(b); err != nil {
		return err
	}
	w.n++
	return nil
}

// Count returns the number of records appended so far.
func (w *Writer) Count() int { return w.n }

// Close flushes and closes the file.
func (w *Writer) Close() error {
	var errs []error
	if w.zw != nil {
		errs = append(errs, w.zw.Close())
	}
	errs = append(errs, w.bw.Flush(), w.f.Close())
	return errors.Join(errs...)
}

// WriteAll creates path holding recs in order.
func WriteAll[T any](path string, recs []T) error {
	w, err := Create(path)
	if err != nil {
		return err
	}
	for i := range recs {
		if err := w.Append(&recs[i]); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}
