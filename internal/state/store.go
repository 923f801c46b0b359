package state

import (
	"errors"
	"time"

	"drivemerge/internal/models"
)

// Store manages ledger persistence, keyed by folder identity.
type Store interface {
	// Load retrieves the ledger for a folder.
	Load(folderID string) (*models.SyncLedger, error)

	// Save persists the ledger for a folder. The write is atomic; a
	// partially written ledger is never visible.
	Save(folderID string, ledger *models.SyncLedger) error

	// Reset removes all ledger state for a folder.
	Reset(folderID string) error

	// List returns all known folder IDs.
	List() ([]string, error)

	// Close releases resources.
	Close() error
}

// Errors
var (
	ErrLedgerNotFound = errors.New("ledger not found")
	ErrLedgerCorrupt  = errors.New("ledger file is corrupt")
)

// CurrentSchemaVersion for migrations.
const CurrentSchemaVersion = 1

// ledgerEnvelope wraps the ledger with store metadata.
type ledgerEnvelope struct {
	*models.SyncLedger

	SchemaVersion int       `json:"schema_version"`
	SavedAt       time.Time `json:"saved_at"`
	Checksum      string    `json:"checksum,omitempty"`
}

// LedgerInfo provides summary information about one folder's ledger.
type LedgerInfo struct {
	FolderID   string    `json:"folder_id"`
	FolderName string    `json:"folder_name"`
	Records    int       `json:"records"`
	Active     int       `json:"active"`
	Deleted    int       `json:"deleted"`
	LastRunAt  time.Time `json:"last_run_at"`
}

// Summarize builds a LedgerInfo from a loaded ledger.
func Summarize(led *models.SyncLedger) *LedgerInfo {
	counts := led.CountByStatus()
	return &LedgerInfo{
		FolderID:   led.FolderID,
		FolderName: led.FolderName,
		Records:    len(led.Records),
		Active:     counts[models.StatusActive],
		Deleted:    counts[models.StatusDeleted],
		LastRunAt:  led.LastRunAt,
	}
}
