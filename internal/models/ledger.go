package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// SyncLedger is the durable change-tracking record for one synced folder.
// It owns its RemoteFileRecords; merged chunks only reference record IDs.
type SyncLedger struct {
	FolderID   string                       `json:"folder_id"`
	FolderName string                       `json:"folder_name"`
	Records    map[string]*RemoteFileRecord `json:"records"`
	LastRunAt  time.Time                    `json:"last_run_at"`
}

// NewSyncLedger creates an empty ledger for a folder.
func NewSyncLedger(folderID, folderName string) *SyncLedger {
	return &SyncLedger{
		FolderID:   folderID,
		FolderName: folderName,
		Records:    make(map[string]*RemoteFileRecord),
	}
}

// Record returns the record for an identity, or nil.
func (l *SyncLedger) Record(id string) *RemoteFileRecord {
	if l.Records == nil {
		return nil
	}
	return l.Records[id]
}

// Put inserts or replaces a record.
func (l *SyncLedger) Put(rec *RemoteFileRecord) {
	if l.Records == nil {
		l.Records = make(map[string]*RemoteFileRecord)
	}
	l.Records[rec.ID] = rec
}

// ActiveRecords returns all Active records sorted by path then name then
// identity. The stable order makes repeated merge passes byte-identical
// when nothing changed.
func (l *SyncLedger) ActiveRecords() []*RemoteFileRecord {
	var recs []*RemoteFileRecord
	for _, rec := range l.Records {
		if rec.IsActive() {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Path != recs[j].Path {
			return recs[i].Path < recs[j].Path
		}
		if recs[i].Name != recs[j].Name {
			return recs[i].Name < recs[j].Name
		}
		return recs[i].ID < recs[j].ID
	})
	return recs
}

// CountByStatus returns record counts keyed by status.
func (l *SyncLedger) CountByStatus() map[RecordStatus]int {
	counts := make(map[RecordStatus]int)
	for _, rec := range l.Records {
		counts[rec.Status]++
	}
	return counts
}

// Validate checks ledger structure before persisting.
func (l *SyncLedger) Validate() error {
	if strings.TrimSpace(l.FolderID) == "" {
		return fmt.Errorf("folder ID is required")
	}
	if l.Records == nil {
		return fmt.Errorf("records map cannot be nil")
	}
	for id, rec := range l.Records {
		if rec == nil {
			return fmt.Errorf("nil record for id %s", id)
		}
		if rec.ID != id {
			return fmt.Errorf("record key %s does not match record id %s", id, rec.ID)
		}
		switch rec.Status {
		case StatusActive, StatusDeleted, StatusUnsupported:
		default:
			return fmt.Errorf("record %s has invalid status %q", id, rec.Status)
		}
		if rec.Status == StatusActive && rec.TextRef == "" {
			return fmt.Errorf("active record %s has no text ref", id)
		}
	}
	return nil
}

// Clone creates a deep copy of the ledger.
func (l *SyncLedger) Clone() *SyncLedger {
	clone := &SyncLedger{
		FolderID:   l.FolderID,
		FolderName: l.FolderName,
		LastRunAt:  l.LastRunAt,
		Records:    make(map[string]*RemoteFileRecord, len(l.Records)),
	}
	for id, rec := range l.Records {
		cp := *rec
		if rec.DeletedAt != nil {
			t := *rec.DeletedAt
			cp.DeletedAt = &t
		}
		clone.Records[id] = &cp
	}
	return clone
}
