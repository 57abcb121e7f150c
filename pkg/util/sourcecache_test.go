package util

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestCache(t *testing.T, maxFiles int) *SourceCache {
	t.Helper()
	sc, err := NewSourceCache(SourceCacheConfig{MaxFiles: maxFiles}, NopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { sc.Close() })
	return sc
}

func TestSourceCacheRead(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.jsx", "const A = () => <div />;\n")
	sc := newTestCache(t, 4)

	data, err := sc.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "const A = () => <div />;\n", string(data))

	_, err = sc.Read(path)
	require.NoError(t, err)

	stats := sc.Stats()
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, 1, stats.Files)
}

func TestSourceCacheFetchCode(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.js", "let foo = bar;")
	sc := newTestCache(t, 4)

	code, err := sc.FetchCode(path, 4, 7)
	require.NoError(t, err)
	assert.Equal(t, "foo", code)

	_, err = sc.FetchCode(path, 5, 100)
	assert.Error(t, err)
	_, err = sc.FetchCode(path, 7, 4)
	assert.Error(t, err)
}

func TestSourceCacheFetchLine(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.js", "one\r\ntwo\nthree")
	sc := newTestCache(t, 4)

	line, err := sc.FetchLine(path, 1)
	require.NoError(t, err)
	assert.Equal(t, "one", line)

	line, err = sc.FetchLine(path, 3)
	require.NoError(t, err)
	assert.Equal(t, "three", line)

	_, err = sc.FetchLine(path, 4)
	assert.Error(t, err)
	_, err = sc.FetchLine(path, 0)
	assert.Error(t, err)
}

func TestSourceCacheEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "empty.js", "")
	sc := newTestCache(t, 4)

	data, err := sc.Read(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestSourceCacheMissingFile(t *testing.T) {
	sc := newTestCache(t, 4)
	_, err := sc.Read(filepath.Join(t.TempDir(), "missing.js"))
	assert.Error(t, err)
}

func TestSourceCacheEviction(t *testing.T) {
	dir := t.TempDir()
	sc := newTestCache(t, 2)

	for _, name := range []string{"a.js", "b.js", "c.js"} {
		_, err := sc.Read(writeFile(t, dir, name, name))
		require.NoError(t, err)
	}
	assert.Equal(t, 2, sc.Size())
}

func TestSourceCacheReloadsChangedFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.js", "old")
	sc := newTestCache(t, 4)

	data, err := sc.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	require.NoError(t, os.WriteFile(path, []byte("newer"), 0o644))
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	data, err = sc.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "newer", string(data))
}

func TestSourceCacheInvalidate(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.js", "x")
	sc := newTestCache(t, 4)

	_, err := sc.Read(path)
	require.NoError(t, err)
	sc.Invalidate(path)
	assert.Equal(t, 0, sc.Size())
}

func TestParseLogLevel(t *testing.T) {
	lvl, ok := ParseLogLevel("DEBUG")
	assert.True(t, ok)
	assert.Equal(t, LevelDebug, lvl)

	lvl, ok = ParseLogLevel("warning")
	assert.True(t, ok)
	assert.Equal(t, LevelWarn, lvl)

	_, ok = ParseLogLevel("loud")
	assert.False(t, ok)
}

func TestWorkers(t *testing.T) {
	size := DefaultWorkers()
	assert.GreaterOrEqual(t, size, minWorkers)
	assert.LessOrEqual(t, size, maxWorkers)
	assert.Equal(t, 7, Workers(7))
	assert.Equal(t, size, Workers(0))
	assert.Equal(t, size, Workers(-3))
}
