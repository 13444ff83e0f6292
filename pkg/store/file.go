package store

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/klauspost/compress/zstd"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// span locates one record line inside the store file.
type span struct {
	off int64
	len int
}

// FileStore implements Store over a JSON-lines file.
type FileStore struct {
	path    string
	src     io.ReaderAt
	closer  io.Closer
	spans   []span
	indices map[string]*Index
}

// Open opens the store at path and scans its position table. Files ending
// in ".zst" are decompressed into memory; plain files are read on demand.
func Open(path string) (*FileStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	s := &FileStore{path: path, indices: make(map[string]*Index)}
	if strings.HasSuffix(path, ".zst") {
		data, err := decompress(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("decompress %s: %w", path, err)
		}
		s.src = bytes.NewReader(data)
	} else {
		s.src = f
		s.closer = f
	}

	spans, err := scanSpans(io.NewSectionReader(s.src, 0, 1<<62))
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	s.spans = spans
	return s, nil
}

func decompress(r io.Reader) ([]byte, error) {
	dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return io.ReadAll(dec)
}

// scanSpans records the offset and length of every non-empty line.
func scanSpans(r io.Reader) ([]span, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	var spans []span
	var off int64
	for {
		line, err := br.ReadBytes('\n')
		n := len(line)
		if n > 0 {
			body := bytes.TrimRight(line, "\r\n")
			if len(bytes.TrimSpace(body)) > 0 {
				spans = append(spans, span{off: off, len: len(body)})
			}
			off += int64(n)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return spans, nil
			}
			return nil, err
		}
	}
}

// Path returns the file the store was opened from.
func (s *FileStore) Path() string { return s.path }

// Len returns the number of records.
func (s *FileStore) Len() int { return len(s.spans) }

// line reads [off, off+len) for the record at pos.
func (s *FileStore) line(pos int) ([]byte, error) {
	if s.src == nil {
		return nil, ErrClosed
	}
	if pos < 0 || pos >= len(s.spans) {
		return nil, fmt.Errorf("%w: %d not in [0,%d)", ErrOutOfRange, pos, len(s.spans))
	}
	sp := s.spans[pos]
	buf := make([]byte, sp.len)
	if _, err := s.src.ReadAt(buf, sp.off); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf, nil
}

// Get decodes the record at pos into dst.
func (s *FileStore) Get(pos int, dst any) error {
	b, err := s.line(pos)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decode %s[%d]: %w", s.path, pos, err)
	}
	return nil
}

// Keys returns the integer value of field for every record in position order.
func (s *FileStore) Keys(field string) ([]int64, error) {
	keys := make([]int64, len(s.spans))
	for pos := range s.spans {
		b, err := s.line(pos)
		if err != nil {
			return nil, err
		}
		v := json.Get(b, field)
		if v.ValueType() != jsoniter.NumberValue {
			return nil, fmt.Errorf("%w: %s[%d].%s", ErrMissingField, s.path, pos, field)
		}
		keys[pos] = v.ToInt64()
	}
	return keys, nil
}

// BuildIndex builds the index keyed by field.
func (s *FileStore) BuildIndex(field string) error {
	keys, err := s.Keys(field)
	if err != nil {
		return err
	}
	entries := make([]IndexEntry, len(keys))
	for pos, k := range keys {
		entries[pos] = IndexEntry{Key: k, Pos: pos}
	}
	ix, err := NewIndex(field, entries)
	if err != nil {
		return fmt.Errorf("index %s on %s: %w", s.path, field, err)
	}
	s.indices[field] = ix
	return nil
}

// Index returns the index for field if it has been built.
func (s *FileStore) Index(field string) (*Index, bool) {
	ix, ok := s.indices[field]
	return ix, ok
}

// PositionForKey returns the position whose field equals key, or -1.
func (s *FileStore) PositionForKey(field string, key int64) int {
	ix, ok := s.indices[field]
	if !ok {
		return -1
	}
	return ix.Lookup(key)
}

// MinMax scans field and returns its extreme values. ok is false for an
// empty store.
func (s *FileStore) MinMax(field string) (lo, hi int64, ok bool, err error) {
	if ix, built := s.indices[field]; built {
		lo, ok = ix.Min()
		hi, _ = ix.Max()
		return lo, hi, ok, nil
	}
	keys, err := s.Keys(field)
	if err != nil || len(keys) == 0 {
		return 0, 0, false, err
	}
	lo, hi = keys[0], keys[0]
	for _, k := range keys[1:] {
		if k < lo {
			lo = k
		}
		if k > hi {
			hi = k
		}
	}
	return lo, hi, true, nil
}

// Close releases the underlying file. It is safe to call more than once.
func (s *FileStore) Close() error {
	s.src = nil
	s.spans = nil
	s.indices = nil
	if s.closer == nil {
		return nil
	}
	c := s.closer
	s.closer = nil
	return c.Close()
}
