package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveContents(t *testing.T) {
	t.Run("deletes nested files and directories but keeps the root", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "a", "b"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "top.txt"), []byte("x"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a", "b", "deep.txt"), []byte("y"), 0644))

		require.NoError(t, RemoveContents(dir))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("is a no-op when the directory does not exist", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "nope")
		assert.NoError(t, RemoveContents(missing))
	})

	t.Run("is idempotent", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "f"), []byte("z"), 0644))
		require.NoError(t, RemoveContents(dir))
		require.NoError(t, RemoveContents(dir))
	})
}

func TestResolveVars(t *testing.T) {
	assert.Equal(t, "tienda-pedidos-dev", ResolveVars("${service}-pedidos-${stage}", "tienda", "dev"))
	assert.Equal(t, "sin-variables", ResolveVars("sin-variables", "tienda", "dev"))
}

func TestSha256Hash(t *testing.T) {
	// echo -n hello | sha256sum
	assert.Equal(t,
		"2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		Sha256Hash("hello"))
}

func TestCopyFile(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	sourcePath := filepath.Join(src, "config.yml")
	require.NoError(t, os.WriteFile(sourcePath, []byte("service: demo\n"), 0600))

	require.NoError(t, CopyFile(sourcePath, dst))

	copied := filepath.Join(dst, "config.yml")
	data, err := os.ReadFile(copied)
	require.NoError(t, err)
	assert.Equal(t, "service: demo\n", string(data))

	info, err := os.Stat(copied)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
