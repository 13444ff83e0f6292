package state

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultFileName is used when a directory rather than a file is given.
const DefaultFileName = "bookmark.json"

// FileRepository implements Repository using a JSON file.
type FileRepository struct {
	path string
}

// NewFileRepository creates a FileRepository writing to path. If path is an
// existing directory the bookmark is kept in DefaultFileName inside it.
func NewFileRepository(path string) *FileRepository {
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, DefaultFileName)
	}
	return &FileRepository{path: path}
}

// Load retrieves the last saved bookmark from disk.
func (r *FileRepository) Load(ctx context.Context) (Bookmark, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Bookmark{}, nil
		}
		return Bookmark{}, err
	}

	var b Bookmark
	if err := json.Unmarshal(data, &b); err != nil {
		return Bookmark{}, err
	}
	return b, nil
}

// Save persists the bookmark atomically (write to temp file, then rename).
func (r *FileRepository) Save(ctx context.Context, b Bookmark) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return err
	}

	tmp := r.path + ".tmp"
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}

// Path returns the full path to the bookmark file.
func (r *FileRepository) Path() string {
	return r.path
}
