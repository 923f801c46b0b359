package models

import (
	"time"
)

// RecordStatus is the lifecycle state of a tracked remote file.
type RecordStatus string

const (
	// StatusActive marks a file present remotely with extracted text.
	StatusActive RecordStatus = "active"
	// StatusDeleted marks a file that vanished from the remote listing.
	// The record is retained so repeated runs do not re-detect the same
	// deletion, and so merge output knows to exclude it.
	StatusDeleted RecordStatus = "deleted"
	// StatusUnsupported marks a file whose format the extractor rejected.
	// The record stays tracked so a content change re-triggers extraction.
	StatusUnsupported RecordStatus = "unsupported"
)

// RemoteFileRecord is the ledger's view of one tracked remote file.
type RemoteFileRecord struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Path        string       `json:"path"`
	MimeType    string       `json:"mime_type"`
	ModifiedAt  time.Time    `json:"modified_at"`
	Fingerprint string       `json:"fingerprint"`
	Status      RecordStatus `json:"status"`

	// TextRef points at the cached extracted text, relative to the text
	// cache root. Empty for unsupported records.
	TextRef string `json:"text_ref,omitempty"`

	// TextChecksum is the MD5 of the extracted text. It lets a run skip
	// rewriting the cache when a remote touch did not change content.
	TextChecksum string `json:"text_checksum,omitempty"`

	FirstSyncedAt time.Time  `json:"first_synced_at"`
	LastSyncedAt  time.Time  `json:"last_synced_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
}

// IsActive reports whether the record should appear in merge output.
func (r *RemoteFileRecord) IsActive() bool {
	return r.Status == StatusActive
}

// IsTracked reports whether the record still corresponds to a file we
// expect in the remote listing.
func (r *RemoteFileRecord) IsTracked() bool {
	return r.Status != StatusDeleted
}

// MarkDeleted flips the record to Deleted, keeping its fields for
// reference. Deleted records are never resurrected in place; a reused
// identity is treated as a fresh record.
func (r *RemoteFileRecord) MarkDeleted(now time.Time) {
	r.Status = StatusDeleted
	t := now
	r.DeletedAt = &t
}
