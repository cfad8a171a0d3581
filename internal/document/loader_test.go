package document

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-qa/internal/logger"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoaderCachesUntilFileChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regs.txt")
	writeFile(t, path, "annual leave\fbusiness travel")

	l := NewLoader(logger.Discard())

	first, err := l.Load(path)
	require.NoError(t, err)
	require.Len(t, first.Pages, 2)

	second, err := l.Load(path)
	require.NoError(t, err)
	assert.Same(t, first, second, "unchanged file should hit the cache")

	writeFile(t, path, "annual leave\fbusiness travel\fovertime")
	// Make sure the modification time moves even on coarse filesystems.
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	third, err := l.Load(path)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Len(t, third.Pages, 3)
	assert.NotEqual(t, first.Identity, third.Identity)
	assert.Equal(t, path, third.Path)
}

func TestLoaderInvalidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regs.txt")
	writeFile(t, path, "content")

	l := NewLoader(logger.Discard())
	first, err := l.Load(path)
	require.NoError(t, err)
	require.True(t, l.cached(path))

	l.Invalidate(path)
	assert.False(t, l.cached(path))

	second, err := l.Load(path)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, first.Identity, second.Identity)
}

func TestLoaderMissingFile(t *testing.T) {
	l := NewLoader(logger.Discard())
	_, err := l.Load(filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoaderUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regs.docx")
	writeFile(t, path, "content")

	l := NewLoader(logger.Discard())
	_, err := l.Load(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
