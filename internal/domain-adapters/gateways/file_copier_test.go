package gateways

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileCopier_CopiesContentAndMode(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "libfoo.dylib")
	//nolint:gosec // G306: executable test fixture
	require.NoError(t, os.WriteFile(src, []byte("mach-o bytes"), 0755))

	dst := filepath.Join(dir, "out.dylib")
	require.NoError(t, NewFileCopier().CopyFile(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "mach-o bytes", string(data))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
}

func TestFileCopier_OverwritesReadOnlyDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.dylib")
	require.NoError(t, os.WriteFile(src, []byte("new"), 0444))

	dst := filepath.Join(dir, "dst.dylib")
	require.NoError(t, os.WriteFile(dst, []byte("old contents"), 0444))

	require.NoError(t, NewFileCopier().CopyFile(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0200, "copy must be owner-writable")
}

func TestFileCopier_FollowsSourceSymlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "libz.1.2.13.dylib")
	require.NoError(t, os.WriteFile(target, []byte("zlib"), 0600))
	link := filepath.Join(dir, "libz.1.dylib")
	require.NoError(t, os.Symlink("libz.1.2.13.dylib", link))

	dst := filepath.Join(dir, "copy.dylib")
	require.NoError(t, NewFileCopier().CopyFile(link, dst))

	info, err := os.Lstat(dst)
	require.NoError(t, err)
	assert.True(t, info.Mode().IsRegular())
}

func TestFileCopier_Errors(t *testing.T) {
	dir := t.TempDir()
	copier := NewFileCopier()

	assert.Error(t, copier.CopyFile(filepath.Join(dir, "missing"), filepath.Join(dir, "out")))
	assert.Error(t, copier.CopyFile(dir, filepath.Join(dir, "out")))

	src := filepath.Join(dir, "src")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0600))
	assert.Error(t, copier.CopyFile(src, filepath.Join(dir, "no-such-dir", "out")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".out.", "temporary files must be cleaned up")
	}
}
