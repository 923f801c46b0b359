package merge_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivemerge/internal/events"
	"drivemerge/internal/merge"
	"drivemerge/internal/models"
	"drivemerge/internal/storage"
)

func newTestWriter(t *testing.T) (*merge.Writer, string) {
	t.Helper()
	tmpDir := t.TempDir()
	logger := events.NewTestLogger(events.DebugLevel, "json", &bytes.Buffer{})

	store, err := storage.NewLocalStore(tmpDir, logger)
	require.NoError(t, err)

	return merge.NewWriter(store, logger), tmpDir
}

func chunk(seq int, body string, members ...string) merge.Chunk {
	return merge.Chunk{
		MergedChunk: models.MergedChunk{
			SequenceIndex: seq,
			ByteSize:      int64(len(body)),
			MemberIDs:     members,
		},
		Body: body,
	}
}

func TestWriterWrite(t *testing.T) {
	t.Run("numbers parts from one", func(t *testing.T) {
		writer, tmpDir := newTestWriter(t)

		names, err := writer.Write("Reports", "Reports", []merge.Chunk{
			chunk(0, "first", "a"),
			chunk(1, "second", "b"),
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"Reports_part1.txt", "Reports_part2.txt"}, names)

		data, err := os.ReadFile(filepath.Join(tmpDir, "Reports", "Reports_part1.txt"))
		require.NoError(t, err)
		assert.Equal(t, "first", string(data))
	})

	t.Run("prunes stale parts from a larger earlier run", func(t *testing.T) {
		writer, tmpDir := newTestWriter(t)

		_, err := writer.Write("Reports", "Reports", []merge.Chunk{
			chunk(0, "one", "a"),
			chunk(1, "two", "b"),
			chunk(2, "three", "c"),
		})
		require.NoError(t, err)

		_, err = writer.Write("Reports", "Reports", []merge.Chunk{
			chunk(0, "smaller run", "a"),
		})
		require.NoError(t, err)

		entries, err := os.ReadDir(filepath.Join(tmpDir, "Reports"))
		require.NoError(t, err)
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		assert.Equal(t, []string{"Reports_part1.txt"}, names)
	})

	t.Run("leaves unrelated files alone", func(t *testing.T) {
		writer, tmpDir := newTestWriter(t)

		require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "Reports"), 0755))
		other := filepath.Join(tmpDir, "Reports", "Other_part9.txt")
		require.NoError(t, os.WriteFile(other, []byte("keep me"), 0644))
		notes := filepath.Join(tmpDir, "Reports", "notes.txt")
		require.NoError(t, os.WriteFile(notes, []byte("keep me too"), 0644))

		_, err := writer.Write("Reports", "Reports", []merge.Chunk{
			chunk(0, "body", "a"),
		})
		require.NoError(t, err)

		assert.FileExists(t, other)
		assert.FileExists(t, notes)
	})

	t.Run("no chunks removes all parts", func(t *testing.T) {
		writer, tmpDir := newTestWriter(t)

		_, err := writer.Write("Reports", "Reports", []merge.Chunk{
			chunk(0, "body", "a"),
		})
		require.NoError(t, err)

		names, err := writer.Write("Reports", "Reports", nil)
		require.NoError(t, err)
		assert.Empty(t, names)

		assert.NoFileExists(t, filepath.Join(tmpDir, "Reports", "Reports_part1.txt"))
	})
}
