package state

import "context"

// Repository handles bookmark persistence.
type Repository interface {
	// Load retrieves the last saved bookmark.
	// Returns an empty bookmark and nil error if none exists.
	Load(ctx context.Context) (Bookmark, error)

	// Save persists the bookmark atomically.
	Save(ctx context.Context, b Bookmark) error
}
