package fonts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("font"), 0644))
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "Inter", "Inter-Bold.ttf"))
	touch(t, filepath.Join(dir, "Inter", "Inter-Regular.ttf"))
	touch(t, filepath.Join(dir, "Mono.OTF"))
	touch(t, filepath.Join(dir, "README.md"))

	list, err := ScanDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"Inter/Inter-Bold.ttf", "Inter/Inter-Regular.ttf", "Mono.OTF"}, list)

	list, err = ScanDir(filepath.Join(dir, "missing"))
	assert.NoError(t, err)
	assert.Empty(t, list)
}

func TestFindPrefersRegular(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "Google_Sans", "GoogleSans-Bold.ttf"))
	touch(t, filepath.Join(dir, "Google_Sans", "GoogleSans-Regular.ttf"))

	got, err := Find("Google Sans", []string{filepath.Join(dir, "nope"), dir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Google_Sans", "GoogleSans-Regular.ttf"), got)

	got, err = Find("googlesans-bold.ttf", []string{dir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Google_Sans", "GoogleSans-Bold.ttf"), got)
}

func TestFindExactPathAndMiss(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Hud.ttf")
	touch(t, path)

	got, err := Find(path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	_, err = Find("Comic", []string{dir})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = Find("  ", []string{dir})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDirs(t *testing.T) {
	assert.Equal(t, filepath.Join("assets", "fonts"), Dirs("")[0])
	assert.Equal(t, filepath.Join("res", "fonts"), Dirs("res")[0])
}
