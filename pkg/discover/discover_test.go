package discover

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestWalk(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.txt"))
	touch(t, filepath.Join(dir, "sub", "b.txt"))
	touch(t, filepath.Join(dir, "sub", "c.min.js"))

	files, err := Walk(context.Background(), []string{dir}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "sub", "b.txt"),
		filepath.Join(dir, "sub", "c.min.js"),
	}, files)
}

func TestWalk_IgnorePatterns(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.txt"))
	touch(t, filepath.Join(dir, "sub", "c.min.js"))
	touch(t, filepath.Join(dir, "node_modules", "dep.js"))

	files, err := Walk(context.Background(), []string{dir},
		[]string{"**/*.min.js", "**/node_modules"})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.txt")}, files)
}

func TestWalk_FileRoot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "only.txt")
	touch(t, path)

	files, err := Walk(context.Background(), []string{path}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)
}

func TestWalk_MissingRoot(t *testing.T) {
	_, err := Walk(context.Background(), []string{filepath.Join(t.TempDir(), "nope")}, nil)
	require.Error(t, err)
}
