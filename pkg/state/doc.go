// Package state persists replay bookmarks so that walking a playlist can
// resume where a previous session stopped.
//
// # Usage
//
//	repo := state.NewFileRepository("/path/to/bookmark.json")
//
//	b, err := repo.Load(ctx)
//	if err != nil {
//	    return err
//	}
//	start := b.Resume(playlistPath)
//
//	// ... step through the playlist ...
//
//	b.Advance(playlistPath, idx, run, event)
//	if err := repo.Save(ctx, b); err != nil {
//	    return err
//	}
//
// Bookmark JSON uses snake_case field names.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// See version.go for version constants that can be used programmatically.
package state
