package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := write(t, t.TempDir(), `
name: SPV3
version: 3.2.1
packages:
  - name: maps
    path: maps
    size: 1024
  - name: bitmaps
    path: bitmaps.pak
    size: 2048
`)
	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "SPV3", m.Name)
	assert.Len(t, m.Packages, 2)
	assert.EqualValues(t, 3072, m.TotalSize())
}

func TestLoadRejectsMissingVersion(t *testing.T) {
	path := write(t, t.TempDir(), "name: SPV3\n")
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrNoVersion)
}

func TestLoadRejectsBadVersion(t *testing.T) {
	path := write(t, t.TempDir(), "name: SPV3\nversion: three\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "invalid version")
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, Exists(filepath.Join(dir, "manifest.yaml")))
	assert.False(t, Exists(dir))
	assert.True(t, Exists(write(t, dir, "version: 1\n")))
}

func TestNewerThan(t *testing.T) {
	dir := t.TempDir()
	older, err := Load(write(t, dir, "version: 3.1.0\n"))
	require.NoError(t, err)
	newer, err := Load(write(t, dir, "version: 3.2\n"))
	require.NoError(t, err)

	assert.True(t, newer.NewerThan(older))
	assert.False(t, older.NewerThan(newer))
	assert.True(t, older.NewerThan(nil))
}
