package selector

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"doc-qa/internal/cache"
	"doc-qa/internal/document"
)

// Uploader stores a document copy with the model vendor.
type Uploader interface {
	UploadFile(ctx context.Context, name string, data []byte) (string, error)
}

// RemotePolicy uploads the whole document once per document identity and
// forwards only the resulting file id.
type RemotePolicy struct {
	Log      *slog.Logger
	Uploader Uploader
	Cache    cache.Cache
	TTL      time.Duration
}

func (p RemotePolicy) Select(ctx context.Context, _ string, doc *document.Document) (Context, error) {
	if doc.IsEmpty() {
		return empty(PolicyRemote), nil
	}

	fileID, err := p.Cache.GetFileRef(ctx, doc.Identity)
	if err != nil {
		// A broken cache only costs an extra upload.
		p.Log.Warn("file reference lookup failed", "identity", doc.Identity, "err", err)
	}
	if fileID == "" {
		name, data := payload(doc)
		fileID, err = p.Uploader.UploadFile(ctx, name, data)
		if err != nil {
			return Context{}, fmt.Errorf("upload document: %w", err)
		}
		if err := p.Cache.SetFileRef(ctx, doc.Identity, fileID, p.TTL); err != nil {
			p.Log.Warn("failed to cache file reference", "identity", doc.Identity, "err", err)
		}
		p.Log.Info("document uploaded", "identity", doc.Identity, "file_id", fileID)
	}

	pages := make([]int, len(doc.Pages))
	for i, pg := range doc.Pages {
		pages[i] = pg.Number
	}
	return Context{Policy: PolicyRemote, FileID: fileID, Pages: pages}, nil
}

// Forget drops the cached file reference for doc so the next Select
// uploads a fresh copy.
func (p RemotePolicy) Forget(ctx context.Context, doc *document.Document) error {
	if doc == nil {
		return nil
	}
	p.Log.Info("file reference dropped", "identity", doc.Identity)
	return p.Cache.Invalidate(ctx, doc.Identity)
}

// payload prefers the original file for documents read from disk. Anything
// else, or a file that cannot be read, is uploaded as page-marked text.
func payload(doc *document.Document) (string, []byte) {
	if doc.Path != "" {
		if data, err := os.ReadFile(doc.Path); err == nil {
			return filepath.Base(doc.Path), data
		}
	}
	return "document.txt", []byte(doc.Text())
}
