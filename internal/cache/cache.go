package cache

import (
	"context"
	"time"
)

// Cache remembers which remote file id holds an uploaded copy of a document,
// keyed by document identity.
type Cache interface {
	// GetFileRef returns the cached file id, or "" when not found.
	GetFileRef(ctx context.Context, docIdentity string) (string, error)

	// SetFileRef stores a file id with TTL.
	SetFileRef(ctx context.Context, docIdentity, fileID string, ttl time.Duration) error

	// Invalidate removes the reference for a document.
	Invalidate(ctx context.Context, docIdentity string) error

	// Close closes the cache connection
	Close() error
}
