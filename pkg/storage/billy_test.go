package storage

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBillyMemory(t *testing.T) {
	ctx := context.Background()
	b := NewMemory()

	require.NoError(t, b.Mkdir(ctx, "sub"))
	require.NoError(t, b.Write(ctx, "sub/a.txt", bytes.NewReader([]byte("hello")), 5))
	require.NoError(t, b.Write(ctx, "b.txt", bytes.NewReader([]byte("x")), 1))

	t.Run("ReadDir", func(t *testing.T) {
		entries, err := b.ReadDir(ctx, "")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "b.txt", entries[0].Name)
		assert.False(t, entries[0].IsDir)
		assert.Equal(t, "sub", entries[1].Name)
		assert.True(t, entries[1].IsDir)
	})

	t.Run("Read", func(t *testing.T) {
		r, err := b.Read(ctx, "sub/a.txt")
		require.NoError(t, err)
		defer r.Close()
		data, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
	})

	t.Run("StatRoot", func(t *testing.T) {
		info, err := b.Stat(ctx, "")
		require.NoError(t, err)
		assert.True(t, info.IsDir)
	})

	t.Run("MkdirExisting", func(t *testing.T) {
		assert.ErrorIs(t, b.Mkdir(ctx, "sub"), fs.ErrExist)
	})

	t.Run("RemoveAll", func(t *testing.T) {
		require.NoError(t, b.Mkdir(ctx, "gone"))
		require.NoError(t, b.Write(ctx, "gone/f", bytes.NewReader(nil), 0))
		require.NoError(t, b.RemoveAll(ctx, "gone"))

		exists, err := b.Exists(ctx, "gone")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("RemoveAllMissing", func(t *testing.T) {
		assert.ErrorIs(t, b.RemoveAll(ctx, "ghost"), fs.ErrNotExist)
	})

	t.Run("RemoveMissing", func(t *testing.T) {
		assert.ErrorIs(t, b.Remove(ctx, "ghost.txt"), fs.ErrNotExist)
	})
}

func TestBillyOS(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "file.txt"), []byte("data"), 0644))

	b, err := NewOS(dir)
	require.NoError(t, err)

	entries, err := b.ReadDir(ctx, "")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "file.txt", entries[0].Name)
	assert.Equal(t, int64(4), entries[0].Size)

	_, err = NewOS(filepath.Join(dir, "file.txt"))
	assert.Error(t, err)

	_, err = NewOS(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
