package ledger

import (
	"time"

	"drivemerge/internal/models"
)

// ExtractionResult is the per-file outcome of the download+extract step.
// Exactly one of the three shapes holds:
//   - success: TextRef and TextChecksum set, Err nil
//   - unsupported format: Unsupported true
//   - transient failure: Err set; the previous record stays untouched and
//     the file retries next run
type ExtractionResult struct {
	TextRef      string
	TextChecksum string
	Unsupported  bool
	Err          error
}

// Failed reports a transient error outcome.
func (r ExtractionResult) Failed() bool {
	return r.Err != nil && !r.Unsupported
}

// Apply folds a diff and its extraction results into the ledger, in
// memory only. Persistence is the orchestrator's job.
func Apply(led *models.SyncLedger, diff DiffResult, results map[string]ExtractionResult, now time.Time) {
	for _, file := range diff.Added {
		res, ok := results[file.ID]
		if !ok || res.Failed() {
			// No record yet and nothing extracted: leave the file for the
			// next run instead of inserting a half-built record.
			continue
		}
		rec := newRecord(file, res, now)
		rec.FirstSyncedAt = now
		led.Put(rec)
	}

	for _, file := range diff.Modified {
		rec := led.Record(file.ID)
		if rec == nil {
			continue
		}

		res, ok := results[file.ID]
		if !ok || res.Failed() {
			continue
		}

		rec.Name = file.Name
		rec.Path = file.NormalizedPath()
		rec.MimeType = file.MimeType
		rec.ModifiedAt = file.ModifiedAt
		rec.Fingerprint = file.Fingerprint
		rec.LastSyncedAt = now

		if res.Unsupported {
			rec.Status = models.StatusUnsupported
			rec.TextRef = ""
			rec.TextChecksum = ""
		} else {
			rec.Status = models.StatusActive
			rec.TextRef = res.TextRef
			rec.TextChecksum = res.TextChecksum
		}
	}

	for _, file := range diff.Unchanged {
		if rec := led.Record(file.ID); rec != nil {
			rec.LastSyncedAt = now
		}
	}

	for _, rec := range diff.Deleted {
		if live := led.Record(rec.ID); live != nil {
			live.MarkDeleted(now)
		}
	}
}

func newRecord(file models.RemoteFile, res ExtractionResult, now time.Time) *models.RemoteFileRecord {
	rec := &models.RemoteFileRecord{
		ID:           file.ID,
		Name:         file.Name,
		Path:         file.NormalizedPath(),
		MimeType:     file.MimeType,
		ModifiedAt:   file.ModifiedAt,
		Fingerprint:  file.Fingerprint,
		LastSyncedAt: now,
	}

	if res.Unsupported {
		rec.Status = models.StatusUnsupported
	} else {
		rec.Status = models.StatusActive
		rec.TextRef = res.TextRef
		rec.TextChecksum = res.TextChecksum
	}

	return rec
}
