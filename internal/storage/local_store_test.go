package storage_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivemerge/internal/events"
	"drivemerge/internal/storage"
)

func testLogger() *events.Logger {
	return events.NewTestLogger(events.DebugLevel, "json", &bytes.Buffer{})
}

func TestLocalStore(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := storage.NewLocalStore(tmpDir, testLogger())
	require.NoError(t, err)

	t.Run("write and read", func(t *testing.T) {
		require.NoError(t, store.Write("notes/hello.txt", []byte("hello")))

		data, err := store.Read("notes/hello.txt")
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
	})

	t.Run("write leaves no temp files", func(t *testing.T) {
		require.NoError(t, store.Write("clean.txt", []byte("data")))

		entries, err := os.ReadDir(tmpDir)
		require.NoError(t, err)
		for _, entry := range entries {
			assert.NotContains(t, entry.Name(), ".tmp.")
		}
	})

	t.Run("overwrite replaces content", func(t *testing.T) {
		require.NoError(t, store.Write("over.txt", []byte("first")))
		require.NoError(t, store.Write("over.txt", []byte("second")))

		data, err := store.Read("over.txt")
		require.NoError(t, err)
		assert.Equal(t, "second", string(data))
	})

	t.Run("exists", func(t *testing.T) {
		require.NoError(t, store.Write("present.txt", []byte("x")))

		ok, err := store.Exists("present.txt")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.Exists("absent.txt")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("remove missing file is not an error", func(t *testing.T) {
		assert.NoError(t, store.Remove("never-written.txt"))
	})

	t.Run("list sorts and skips directories", func(t *testing.T) {
		require.NoError(t, store.Write("listed/b.txt", []byte("b")))
		require.NoError(t, store.Write("listed/a.txt", []byte("a")))
		require.NoError(t, store.Write("listed/sub/c.txt", []byte("c")))

		names, err := store.List("listed")
		require.NoError(t, err)
		assert.Equal(t, []string{"a.txt", "b.txt"}, names)
	})

	t.Run("list missing directory yields empty", func(t *testing.T) {
		names, err := store.List("no-such-dir")
		require.NoError(t, err)
		assert.Empty(t, names)
	})

	t.Run("rejects path traversal", func(t *testing.T) {
		assert.Error(t, store.Write("../escape.txt", []byte("x")))
		_, err := store.Read("../../etc/passwd")
		assert.Error(t, err)
	})

	t.Run("rejects absolute paths", func(t *testing.T) {
		assert.Error(t, store.Write("/tmp/abs.txt", []byte("x")))
	})
}

func TestTextCache(t *testing.T) {
	cache, err := storage.NewTextCache(t.TempDir(), testLogger())
	require.NoError(t, err)

	t.Run("put and get", func(t *testing.T) {
		ref, err := cache.Put("folder-1", "file-a", "extracted text")
		require.NoError(t, err)
		assert.Equal(t, "folder-1/file-a.txt", ref)

		text, err := cache.Get(ref)
		require.NoError(t, err)
		assert.Equal(t, "extracted text", text)
	})

	t.Run("put overwrites", func(t *testing.T) {
		ref, err := cache.Put("folder-1", "file-a", "newer text")
		require.NoError(t, err)

		text, err := cache.Get(ref)
		require.NoError(t, err)
		assert.Equal(t, "newer text", text)
	})

	t.Run("get missing ref fails", func(t *testing.T) {
		_, err := cache.Get("folder-1/ghost.txt")
		assert.Error(t, err)
	})

	t.Run("remove", func(t *testing.T) {
		ref, err := cache.Put("folder-1", "file-b", "short lived")
		require.NoError(t, err)
		require.NoError(t, cache.Remove(ref))

		_, err = cache.Get(ref)
		assert.Error(t, err)
		assert.NoError(t, cache.Remove(ref))
	})
}

func TestLocalStoreBaseDir(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := storage.NewLocalStore(tmpDir, testLogger())
	require.NoError(t, err)

	abs, err := filepath.Abs(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, abs, store.BaseDir())
}
