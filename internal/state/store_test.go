package state_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivemerge/internal/events"
	"drivemerge/internal/models"
	"drivemerge/internal/state"
)

func testLogger() *events.Logger {
	return events.NewTestLogger(events.DebugLevel, "json", &bytes.Buffer{})
}

func sampleLedger(folderID string) *models.SyncLedger {
	led := models.NewSyncLedger(folderID, "Quarterly Reports")
	led.LastRunAt = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	led.Put(&models.RemoteFileRecord{
		ID:            "file-1",
		Name:          "q1.docx",
		Path:          "q1.docx",
		MimeType:      models.MimeDocx,
		ModifiedAt:    time.Date(2024, 2, 28, 9, 30, 0, 0, time.UTC),
		Fingerprint:   "md5:abc",
		Status:        models.StatusActive,
		TextRef:       folderID + "/file-1.txt",
		TextChecksum:  "c0ffee",
		FirstSyncedAt: time.Date(2024, 2, 28, 10, 0, 0, 0, time.UTC),
		LastSyncedAt:  led.LastRunAt,
	})
	deletedAt := time.Date(2024, 2, 29, 8, 0, 0, 0, time.UTC)
	led.Put(&models.RemoteFileRecord{
		ID:         "file-2",
		Name:       "old.pdf",
		Path:       "archive/old.pdf",
		MimeType:   models.MimePDF,
		ModifiedAt: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		Status:     models.StatusDeleted,
		DeletedAt:  &deletedAt,
	})
	led.Put(&models.RemoteFileRecord{
		ID:         "file-3",
		Name:       "legacy.doc",
		Path:       "legacy.doc",
		MimeType:   models.MimeMSWord,
		ModifiedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Status:     models.StatusUnsupported,
	})
	return led
}

func TestJSONStore(t *testing.T) {
	store, err := state.NewJSONStore(t.TempDir(), testLogger())
	require.NoError(t, err)
	defer store.Close()

	testStoreOperations(t, store)
}

func TestSQLiteStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ledgers.db")

	store, err := state.NewSQLiteStore(dbPath, testLogger())
	require.NoError(t, err)
	defer store.Close()

	testStoreOperations(t, store)
}

func testStoreOperations(t *testing.T, store state.Store) {
	folderID := "folder-abc123"

	t.Run("load non-existent", func(t *testing.T) {
		_, err := store.Load(folderID)
		assert.ErrorIs(t, err, state.ErrLedgerNotFound)
	})

	t.Run("save and load", func(t *testing.T) {
		led := sampleLedger(folderID)
		require.NoError(t, store.Save(folderID, led))

		loaded, err := store.Load(folderID)
		require.NoError(t, err)

		assert.Equal(t, led.FolderID, loaded.FolderID)
		assert.Equal(t, led.FolderName, loaded.FolderName)
		assert.Equal(t, led.LastRunAt.Unix(), loaded.LastRunAt.Unix())
		require.Len(t, loaded.Records, 3)

		rec := loaded.Record("file-1")
		require.NotNil(t, rec)
		assert.Equal(t, models.StatusActive, rec.Status)
		assert.Equal(t, "md5:abc", rec.Fingerprint)
		assert.Equal(t, folderID+"/file-1.txt", rec.TextRef)

		deleted := loaded.Record("file-2")
		require.NotNil(t, deleted)
		assert.Equal(t, models.StatusDeleted, deleted.Status)
		require.NotNil(t, deleted.DeletedAt)
		assert.Equal(t, time.Date(2024, 2, 29, 8, 0, 0, 0, time.UTC).Unix(), deleted.DeletedAt.Unix())

		unsupported := loaded.Record("file-3")
		require.NotNil(t, unsupported)
		assert.Equal(t, models.StatusUnsupported, unsupported.Status)
		assert.Nil(t, unsupported.DeletedAt)
	})

	t.Run("update existing", func(t *testing.T) {
		led := sampleLedger(folderID)
		led.Record("file-1").TextChecksum = "updated"
		delete(led.Records, "file-3")
		require.NoError(t, store.Save(folderID, led))

		loaded, err := store.Load(folderID)
		require.NoError(t, err)
		assert.Len(t, loaded.Records, 2)
		assert.Equal(t, "updated", loaded.Record("file-1").TextChecksum)
		assert.Nil(t, loaded.Record("file-3"))
	})

	t.Run("rejects invalid ledger", func(t *testing.T) {
		bad := models.NewSyncLedger(folderID, "Bad")
		bad.Put(&models.RemoteFileRecord{ID: "x", Status: models.StatusActive})
		assert.Error(t, store.Save(folderID, bad))
	})

	t.Run("list", func(t *testing.T) {
		other := sampleLedger("folder-other")
		other.FolderID = "folder-other"
		require.NoError(t, store.Save("folder-other", other))

		ids, err := store.List()
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{folderID, "folder-other"}, ids)
	})

	t.Run("reset", func(t *testing.T) {
		require.NoError(t, store.Reset(folderID))

		_, err := store.Load(folderID)
		assert.ErrorIs(t, err, state.ErrLedgerNotFound)

		ids, err := store.List()
		require.NoError(t, err)
		assert.Equal(t, []string{"folder-other"}, ids)
	})

	t.Run("reset non-existent is a no-op", func(t *testing.T) {
		assert.NoError(t, store.Reset("never-seen"))
	})
}

func TestJSONStoreCorruption(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := state.NewJSONStore(tmpDir, testLogger())
	require.NoError(t, err)
	defer store.Close()

	folderID := "folder-corrupt"
	ledgerPath := filepath.Join(tmpDir, folderID+".json")

	t.Run("corrupt file without backup", func(t *testing.T) {
		require.NoError(t, os.WriteFile(ledgerPath, []byte("{not json"), 0600))

		_, err := store.Load(folderID)
		assert.ErrorIs(t, err, state.ErrLedgerCorrupt)
	})

	t.Run("corrupt file falls back to backup", func(t *testing.T) {
		// Two saves leave the first version in the .backup file.
		require.NoError(t, os.Remove(ledgerPath))
		require.NoError(t, store.Save(folderID, sampleLedger(folderID)))
		require.NoError(t, store.Save(folderID, sampleLedger(folderID)))

		require.NoError(t, os.WriteFile(ledgerPath, []byte("{not json"), 0600))

		loaded, err := store.Load(folderID)
		require.NoError(t, err)
		assert.Equal(t, folderID, loaded.FolderID)
	})

	t.Run("checksum mismatch without backup", func(t *testing.T) {
		id := "folder-tampered"
		require.NoError(t, store.Save(id, sampleLedger(id)))

		path := filepath.Join(tmpDir, id+".json")
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		tampered := bytes.Replace(data, []byte("Quarterly Reports"), []byte("Tampered Reports!"), 1)
		require.NotEqual(t, data, tampered)
		require.NoError(t, os.WriteFile(path, tampered, 0600))

		_, err = store.Load(id)
		assert.ErrorIs(t, err, state.ErrLedgerCorrupt)
	})
}

func TestSQLiteStorePersistence(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ledgers.db")

	store, err := state.NewSQLiteStore(dbPath, testLogger())
	require.NoError(t, err)

	folderID := "folder-persist"
	require.NoError(t, store.Save(folderID, sampleLedger(folderID)))
	require.NoError(t, store.Close())

	reopened, err := state.NewSQLiteStore(dbPath, testLogger())
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load(folderID)
	require.NoError(t, err)
	assert.Len(t, loaded.Records, 3)
}

func TestSummarize(t *testing.T) {
	led := sampleLedger("folder-1")
	info := state.Summarize(led)

	assert.Equal(t, "folder-1", info.FolderID)
	assert.Equal(t, "Quarterly Reports", info.FolderName)
	assert.Equal(t, 3, info.Records)
	assert.Equal(t, 1, info.Active)
	assert.Equal(t, 1, info.Deleted)
	assert.Equal(t, led.LastRunAt, info.LastRunAt)
}

func TestMockStore(t *testing.T) {
	store := state.NewMockStore()
	folderID := "folder-mock"

	_, err := store.Load(folderID)
	assert.ErrorIs(t, err, state.ErrLedgerNotFound)

	led := sampleLedger(folderID)
	require.NoError(t, store.Save(folderID, led))
	assert.Equal(t, 1, store.SaveCount)

	// Mutating the loaded copy must not affect stored state.
	loaded, err := store.Load(folderID)
	require.NoError(t, err)
	loaded.Record("file-1").TextChecksum = "mutated"

	again, err := store.Load(folderID)
	require.NoError(t, err)
	assert.Equal(t, "c0ffee", again.Record("file-1").TextChecksum)

	store.SaveErr = fmt.Errorf("disk full")
	assert.Error(t, store.Save(folderID, led))
}
