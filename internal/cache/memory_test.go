package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	// Miss
	id, err := c.GetFileRef(ctx, "doc#1")
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if id != "" {
		t.Errorf("Expected cache miss, got %q", id)
	}

	if err := c.SetFileRef(ctx, "doc#1", "file-abc", time.Hour); err != nil {
		t.Fatalf("Expected no error on SetFileRef, got %v", err)
	}
	id, _ = c.GetFileRef(ctx, "doc#1")
	if id != "file-abc" {
		t.Errorf("Expected file-abc, got %q", id)
	}

	if err := c.Invalidate(ctx, "doc#1"); err != nil {
		t.Errorf("Expected no error on Invalidate, got %v", err)
	}
	id, _ = c.GetFileRef(ctx, "doc#1")
	if id != "" {
		t.Errorf("Expected miss after invalidate, got %q", id)
	}

	if err := c.Close(); err != nil {
		t.Errorf("Expected no error on Close, got %v", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.SetFileRef(ctx, "doc#1", "file-abc", time.Minute)

	now = now.Add(59 * time.Second)
	if id, _ := c.GetFileRef(ctx, "doc#1"); id != "file-abc" {
		t.Errorf("Expected hit before expiry, got %q", id)
	}

	now = now.Add(time.Second)
	if id, _ := c.GetFileRef(ctx, "doc#1"); id != "" {
		t.Errorf("Expected miss at expiry, got %q", id)
	}
}

func TestMemoryCacheNoTTL(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	_ = c.SetFileRef(ctx, "doc#1", "file-abc", 0)

	c.now = func() time.Time { return time.Now().Add(100 * 24 * time.Hour) }
	if id, _ := c.GetFileRef(ctx, "doc#1"); id != "file-abc" {
		t.Errorf("Expected entry without TTL to persist, got %q", id)
	}
}
