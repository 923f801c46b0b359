package state

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"drivemerge/internal/events"
	"drivemerge/internal/models"
)

// SQLiteStore implements SQLite-based ledger storage.
type SQLiteStore struct {
	db     *sql.DB
	logger *events.Logger

	mu sync.RWMutex
}

// NewSQLiteStore creates a SQLite ledger store.
func NewSQLiteStore(dbPath string, logger *events.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &SQLiteStore{
		db:     db,
		logger: logger.WithField("component", "sqlite_ledger_store"),
	}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	return store, nil
}

// initialize creates tables and indexes.
func (s *SQLiteStore) initialize() error {
	schema := `
    CREATE TABLE IF NOT EXISTS ledgers (
        folder_id TEXT PRIMARY KEY,
        folder_name TEXT NOT NULL DEFAULT '',
        last_run_at TIMESTAMP,
        created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
        updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS ledger_records (
        folder_id TEXT NOT NULL,
        id TEXT NOT NULL,
        name TEXT NOT NULL,
        path TEXT NOT NULL,
        mime_type TEXT NOT NULL,
        modified_at TIMESTAMP,
        fingerprint TEXT NOT NULL,
        status TEXT NOT NULL,
        text_ref TEXT NOT NULL DEFAULT '',
        text_checksum TEXT NOT NULL DEFAULT '',
        first_synced_at TIMESTAMP,
        last_synced_at TIMESTAMP,
        deleted_at TIMESTAMP,
        PRIMARY KEY (folder_id, id),
        FOREIGN KEY (folder_id) REFERENCES ledgers(folder_id) ON DELETE CASCADE
    );

    CREATE INDEX IF NOT EXISTS idx_ledger_records_folder ON ledger_records(folder_id);

    CREATE TABLE IF NOT EXISTS schema_info (
        version INTEGER PRIMARY KEY
    );

    INSERT OR IGNORE INTO schema_info (version) VALUES (?);
    `

	if _, err := s.db.Exec(schema, CurrentSchemaVersion); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	if _, err := s.db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}

	return nil
}

// Load retrieves a ledger from the database.
func (s *SQLiteStore) Load(folderID string) (*models.SyncLedger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.logger.WithField("folder_id", folderID).Debug("Loading ledger from SQLite")

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	led := models.NewSyncLedger(folderID, "")
	var lastRunAt sql.NullTime

	err = tx.QueryRow(`
        SELECT folder_name, last_run_at
        FROM ledgers
        WHERE folder_id = ?
    `, folderID).Scan(&led.FolderName, &lastRunAt)

	if err == sql.ErrNoRows {
		return nil, ErrLedgerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}

	if lastRunAt.Valid {
		led.LastRunAt = lastRunAt.Time
	}

	rows, err := tx.Query(`
        SELECT id, name, path, mime_type, modified_at, fingerprint, status,
               text_ref, text_checksum, first_synced_at, last_synced_at, deleted_at
        FROM ledger_records
        WHERE folder_id = ?
    `, folderID)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec models.RemoteFileRecord
		var modifiedAt, firstSyncedAt, lastSyncedAt, deletedAt sql.NullTime
		var status string

		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Path, &rec.MimeType,
			&modifiedAt, &rec.Fingerprint, &status,
			&rec.TextRef, &rec.TextChecksum,
			&firstSyncedAt, &lastSyncedAt, &deletedAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}

		rec.Status = models.RecordStatus(status)
		if modifiedAt.Valid {
			rec.ModifiedAt = modifiedAt.Time
		}
		if firstSyncedAt.Valid {
			rec.FirstSyncedAt = firstSyncedAt.Time
		}
		if lastSyncedAt.Valid {
			rec.LastSyncedAt = lastSyncedAt.Time
		}
		if deletedAt.Valid {
			t := deletedAt.Time
			rec.DeletedAt = &t
		}

		led.Put(&rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	return led, nil
}

// Save persists a ledger inside one transaction, replacing its records.
func (s *SQLiteStore) Save(folderID string, ledger *models.SyncLedger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ledger.Validate(); err != nil {
		return fmt.Errorf("validate ledger: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"folder_id": folderID,
		"records":   len(ledger.Records),
	}).Debug("Saving ledger to SQLite")

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
        INSERT INTO ledgers (folder_id, folder_name, last_run_at, updated_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(folder_id) DO UPDATE SET
            folder_name = excluded.folder_name,
            last_run_at = excluded.last_run_at,
            updated_at = excluded.updated_at
    `, folderID, ledger.FolderName, ledger.LastRunAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert ledger: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM ledger_records WHERE folder_id = ?`, folderID); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}

	stmt, err := tx.Prepare(`
        INSERT INTO ledger_records
            (folder_id, id, name, path, mime_type, modified_at, fingerprint,
             status, text_ref, text_checksum, first_synced_at, last_synced_at, deleted_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range ledger.Records {
		var deletedAt interface{}
		if rec.DeletedAt != nil {
			deletedAt = *rec.DeletedAt
		}

		if _, err := stmt.Exec(folderID, rec.ID, rec.Name, rec.Path, rec.MimeType,
			rec.ModifiedAt, rec.Fingerprint, string(rec.Status),
			rec.TextRef, rec.TextChecksum,
			rec.FirstSyncedAt, rec.LastSyncedAt, deletedAt); err != nil {
			return fmt.Errorf("insert record %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

// Reset removes all ledger state for a folder.
func (s *SQLiteStore) Reset(folderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.WithField("folder_id", folderID).Info("Resetting ledger")

	if _, err := s.db.Exec(`DELETE FROM ledgers WHERE folder_id = ?`, folderID); err != nil {
		return fmt.Errorf("delete ledger: %w", err)
	}
	if _, err := s.db.Exec(`DELETE FROM ledger_records WHERE folder_id = ?`, folderID); err != nil {
		return fmt.Errorf("delete records: %w", err)
	}

	return nil
}

// List returns all folder IDs with a stored ledger.
func (s *SQLiteStore) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT folder_id FROM ledgers ORDER BY folder_id`)
	if err != nil {
		return nil, fmt.Errorf("query ledgers: %w", err)
	}
	defer rows.Close()

	var folderIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan folder id: %w", err)
		}
		folderIDs = append(folderIDs, id)
	}

	return folderIDs, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
