package models

import (
	"errors"
	"fmt"
)

// Error codes for structured error handling.
const (
	ErrCodeAuth      = "AUTH_ERROR"
	ErrCodeFolder    = "FOLDER_ERROR"
	ErrCodeLedger    = "LEDGER_ERROR"
	ErrCodeNetwork   = "NETWORK_ERROR"
	ErrCodeStorage   = "STORAGE_ERROR"
	ErrCodeConfig    = "CONFIG_ERROR"
	ErrCodeRateLimit = "RATE_LIMIT"
)

// Sentinel errors
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrFolderNotFound   = errors.New("folder not found")
	ErrInvalidFolderURL = errors.New("invalid Drive folder URL")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrRateLimited      = errors.New("rate limited")
)

// SyncError provides detailed sync failure information.
type SyncError struct {
	Code     string
	Phase    string
	FolderID string
	Path     string
	Err      error
}

func (e *SyncError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("sync %s [%s]: folder %s: %s: %v", e.Phase, e.Code, e.FolderID, e.Path, e.Err)
	}
	return fmt.Sprintf("sync %s [%s]: folder %s: %v", e.Phase, e.Code, e.FolderID, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// ExtractError represents a per-file extraction failure.
type ExtractError struct {
	Path     string
	MimeType string
	Err      error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extract %s (%s): %v", e.Path, e.MimeType, e.Err)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}
