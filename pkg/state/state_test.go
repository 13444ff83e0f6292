package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingIsEmpty(t *testing.T) {
	repo := NewFileRepository(filepath.Join(t.TempDir(), "bm.json"))
	b, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, b.IsEmpty())
	assert.Equal(t, 0, b.Resume("list.txt"))
}

func TestSaveAndResume(t *testing.T) {
	dir := t.TempDir()
	repo := NewFileRepository(filepath.Join(dir, "nested", "bm.json"))
	list := filepath.Join(dir, "list.txt")

	var b Bookmark
	b.Advance(list, 0, 1, 100)
	b.Advance(list, 1, 1, 103)
	require.NoError(t, repo.Save(context.Background(), b))

	_, err := os.Stat(repo.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, got.Index)
	assert.Equal(t, uint64(103), got.Event)
	assert.Equal(t, 2, got.Visited)
	assert.Equal(t, 2, got.Resume(list))
	assert.Equal(t, 0, got.Resume(filepath.Join(dir, "other.txt")))
}

func TestAdvanceOnNewPlaylistResetsCount(t *testing.T) {
	var b Bookmark
	b.Advance("a.txt", 4, 1, 100)
	b.Advance("b.txt", 0, 2, 200)
	assert.Equal(t, 1, b.Visited)
	assert.Equal(t, 1, b.Resume("b.txt"))
}

func TestDirectoryPathUsesDefaultName(t *testing.T) {
	dir := t.TempDir()
	repo := NewFileRepository(dir)
	assert.Equal(t, filepath.Join(dir, DefaultFileName), repo.Path())
}

func TestLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bm.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
	_, err := NewFileRepository(path).Load(context.Background())
	assert.Error(t, err)
}
