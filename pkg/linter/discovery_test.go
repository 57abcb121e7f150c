package linter

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/uilint/pkg/config"
)

func TestDiscoverAppliesGlobs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/a.jsx", "")
	writeFile(t, dir, "src/b.tsx", "")
	writeFile(t, dir, "src/types.d.ts", "")
	writeFile(t, dir, "src/vendor.min.js", "")
	writeFile(t, dir, "dist/out.js", "")
	writeFile(t, dir, "node_modules/pkg/index.js", "")
	writeFile(t, dir, "style.css", "")

	filter, err := NewFileFilter(config.Default().Files)
	require.NoError(t, err)

	files, err := filter.Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "src/a.jsx"),
		filepath.Join(dir, "src/b.tsx"),
	}, files)
}

func TestDiscoverIncludeNarrows(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/a.jsx", "")
	writeFile(t, dir, "lib/b.js", "")

	filter, err := NewFileFilter(config.FilesConfig{Include: []string{"src/**"}})
	require.NoError(t, err)

	files, err := filter.Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "src/a.jsx")}, files)
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.js", "")
	b := writeFile(t, dir, "sub/b.ts", "")
	writeFile(t, dir, "notes.txt", "")

	filter, err := NewFileFilter(config.Default().Files)
	require.NoError(t, err)

	files, err := filter.Expand([]string{dir, a, filepath.Join(dir, "notes.txt")})
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, files, "deduplicated, unsupported files dropped")

	_, err = filter.Expand([]string{filepath.Join(dir, "missing")})
	assert.Error(t, err)
}

func TestFilterMatch(t *testing.T) {
	dir := t.TempDir()
	filter, err := NewFileFilter(config.Default().Files)
	require.NoError(t, err)

	assert.True(t, filter.Match(dir, filepath.Join(dir, "src/a.tsx")))
	assert.False(t, filter.Match(dir, filepath.Join(dir, "node_modules/x/a.js")))
	assert.False(t, filter.Match(dir, filepath.Join(dir, "a.css")))
	assert.False(t, filter.Match(filepath.Join(dir, "src"), filepath.Join(dir, "other/a.js")))
}

func TestNewFileFilterRejectsBadPatterns(t *testing.T) {
	_, err := NewFileFilter(config.FilesConfig{Include: []string{"src/[a"}})
	assert.Error(t, err)
}
