package state

import (
	"sync"

	"drivemerge/internal/models"
)

// MockStore is an in-memory Store for tests.
type MockStore struct {
	mu      sync.RWMutex
	ledgers map[string]*models.SyncLedger

	// Error injection
	LoadErr  error
	SaveErr  error
	ResetErr error

	SaveCount int
}

// NewMockStore creates an empty in-memory store.
func NewMockStore() *MockStore {
	return &MockStore{
		ledgers: make(map[string]*models.SyncLedger),
	}
}

// Load returns a deep copy so tests cannot mutate stored state.
func (s *MockStore) Load(folderID string) (*models.SyncLedger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.LoadErr != nil {
		return nil, s.LoadErr
	}

	led, ok := s.ledgers[folderID]
	if !ok {
		return nil, ErrLedgerNotFound
	}
	return led.Clone(), nil
}

// Save stores a deep copy of the ledger.
func (s *MockStore) Save(folderID string, ledger *models.SyncLedger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SaveErr != nil {
		return s.SaveErr
	}

	s.ledgers[folderID] = ledger.Clone()
	s.SaveCount++
	return nil
}

// Reset removes a folder's ledger.
func (s *MockStore) Reset(folderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ResetErr != nil {
		return s.ResetErr
	}

	delete(s.ledgers, folderID)
	return nil
}

// List returns all stored folder IDs.
func (s *MockStore) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.ledgers))
	for id := range s.ledgers {
		ids = append(ids, id)
	}
	return ids, nil
}

// Close is a no-op.
func (s *MockStore) Close() error {
	return nil
}
