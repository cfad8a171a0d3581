package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is a process-local Cache.
type MemoryCache struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]memoryEntry
}

type memoryEntry struct {
	fileID  string
	expires time.Time // zero means no expiry
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{now: time.Now, entries: make(map[string]memoryEntry)}
}

func (c *MemoryCache) GetFileRef(_ context.Context, docIdentity string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[docIdentity]
	if !ok {
		return "", nil
	}
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		delete(c.entries, docIdentity)
		return "", nil
	}
	return e.fileID, nil
}

func (c *MemoryCache) SetFileRef(_ context.Context, docIdentity, fileID string, ttl time.Duration) error {
	e := memoryEntry{fileID: fileID}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[docIdentity] = e
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context, docIdentity string) error {
	c.mu.Lock()
	delete(c.entries, docIdentity)
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Close() error {
	return nil
}
