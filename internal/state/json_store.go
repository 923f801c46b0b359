package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"drivemerge/internal/events"
	"drivemerge/internal/models"
)

// JSONStore implements file-based ledger storage, one file per folder.
type JSONStore struct {
	baseDir string
	logger  *events.Logger

	mu sync.RWMutex
}

// NewJSONStore creates a JSON-based ledger store.
func NewJSONStore(baseDir string, logger *events.Logger) (*JSONStore, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	return &JSONStore{
		baseDir: baseDir,
		logger:  logger.WithField("component", "json_ledger_store"),
	}, nil
}

// Load reads a ledger from its JSON file.
func (s *JSONStore) Load(folderID string) (*models.SyncLedger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.ledgerPath(folderID)

	s.logger.WithFields(map[string]interface{}{
		"folder_id": folderID,
		"path":      path,
	}).Debug("Loading ledger")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, ErrLedgerNotFound
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ledger file: %w", err)
	}

	var envelope ledgerEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		if led, err := s.loadBackup(folderID); err == nil {
			s.logger.Warn("Loaded ledger from backup due to corruption")
			return led, nil
		}
		return nil, ErrLedgerCorrupt
	}

	if envelope.SyncLedger == nil {
		return nil, ErrLedgerCorrupt
	}

	// Verify checksum if present
	if envelope.Checksum != "" {
		if calculated := envelopeChecksum(&envelope); calculated != envelope.Checksum {
			s.logger.WithFields(map[string]interface{}{
				"expected": envelope.Checksum,
				"actual":   calculated,
			}).Error("Ledger checksum mismatch")

			if led, err := s.loadBackup(folderID); err == nil {
				return led, nil
			}
			return nil, ErrLedgerCorrupt
		}
	}

	if envelope.SchemaVersion != CurrentSchemaVersion {
		s.logger.WithField("version", envelope.SchemaVersion).Warn("Ledger schema version mismatch")
	}

	return envelope.SyncLedger, nil
}

// Save writes a ledger atomically: marshal, write temp, fsync, rename.
func (s *JSONStore) Save(folderID string, ledger *models.SyncLedger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ledger.Validate(); err != nil {
		return fmt.Errorf("validate ledger: %w", err)
	}

	path := s.ledgerPath(folderID)

	s.logger.WithFields(map[string]interface{}{
		"folder_id": folderID,
		"records":   len(ledger.Records),
	}).Debug("Saving ledger")

	envelope := ledgerEnvelope{
		SyncLedger:    ledger,
		SchemaVersion: CurrentSchemaVersion,
		SavedAt:       time.Now().UTC(),
	}
	envelope.Checksum = envelopeChecksum(&envelope)

	jsonData, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	// Keep the previous version as backup before replacing
	if _, err := os.Stat(path); err == nil {
		if err := copyFile(path, path+".backup"); err != nil {
			s.logger.WithError(err).Warn("Failed to create ledger backup")
		}
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, jsonData, 0600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if file, err := os.Open(tmpPath); err == nil {
		_ = file.Sync()
		file.Close()
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename ledger file: %w", err)
	}

	return nil
}

// Reset removes ledger state for a folder.
func (s *JSONStore) Reset(folderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.WithField("folder_id", folderID).Info("Resetting ledger")

	path := s.ledgerPath(folderID)
	_ = os.Remove(path)
	_ = os.Remove(path + ".backup")

	return nil
}

// List returns all folder IDs with a stored ledger.
func (s *JSONStore) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read state directory: %w", err)
	}

	var folderIDs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if filepath.Ext(name) == ".json" && !strings.HasSuffix(name, ".backup.json") {
			folderIDs = append(folderIDs, strings.TrimSuffix(name, ".json"))
		}
	}

	return folderIDs, nil
}

// Close releases resources.
func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) ledgerPath(folderID string) string {
	return filepath.Join(s.baseDir, folderID+".json")
}

func (s *JSONStore) loadBackup(folderID string) (*models.SyncLedger, error) {
	data, err := os.ReadFile(s.ledgerPath(folderID) + ".backup")
	if err != nil {
		return nil, err
	}

	var envelope ledgerEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}
	if envelope.SyncLedger == nil {
		return nil, ErrLedgerCorrupt
	}

	return envelope.SyncLedger, nil
}

// envelopeChecksum hashes the envelope with its checksum field cleared.
func envelopeChecksum(e *ledgerEnvelope) string {
	stripped := ledgerEnvelope{
		SyncLedger:    e.SyncLedger,
		SchemaVersion: e.SchemaVersion,
		SavedAt:       e.SavedAt,
	}
	data, _ := json.Marshal(stripped)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
