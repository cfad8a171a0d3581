package document

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"doc-qa/internal/chunker"
)

// ErrUnsupportedFormat is returned for files that are neither PDF nor text.
var ErrUnsupportedFormat = errors.New("unsupported document format")

type entry struct {
	doc     *Document
	modTime time.Time
	size    int64
}

// Loader extracts documents from disk and caches them by path. A cached entry
// is reused only while the file's modification time and size are unchanged.
type Loader struct {
	log     *slog.Logger
	mu      sync.RWMutex
	entries map[string]entry
}

// NewLoader creates an empty loader.
func NewLoader(log *slog.Logger) *Loader {
	return &Loader{log: log, entries: make(map[string]entry)}
}

// Load returns the document at path, extracting it on first use or after the
// file changed.
func (l *Loader) Load(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat document: %w", err)
	}

	l.mu.RLock()
	e, ok := l.entries[path]
	l.mu.RUnlock()
	if ok && e.modTime.Equal(info.ModTime()) && e.size == info.Size() {
		return e.doc, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	texts, err := extract(path, content)
	if err != nil {
		return nil, err
	}

	doc := &Document{Source: path, Path: path, Identity: identity(path, xxhash.Sum64(content))}
	doc.Pages = make([]Page, len(texts))
	empty := 0
	for i, t := range texts {
		doc.Pages[i] = Page{Number: i + 1, Text: t}
		if strings.TrimSpace(t) == "" {
			empty++
		}
	}

	l.mu.Lock()
	l.entries[path] = entry{doc: doc, modTime: info.ModTime(), size: info.Size()}
	l.mu.Unlock()

	l.log.Info("document loaded", "path", path, "pages", len(doc.Pages), "empty_pages", empty, "identity", doc.Identity)
	return doc, nil
}

// Invalidate drops the cached entry for path.
func (l *Loader) Invalidate(path string) {
	l.mu.Lock()
	_, ok := l.entries[path]
	delete(l.entries, path)
	l.mu.Unlock()
	if ok {
		l.log.Info("document cache invalidated", "path", path)
	}
}

func (l *Loader) cached(path string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.entries[path]
	return ok
}

func extract(path string, content []byte) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return ExtractPDF(content)
	case ".txt", ".md":
		chunks := chunker.Paginate(string(content), chunker.DefaultWordsPerPage)
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Text
		}
		return texts, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}
