// Package ledger implements the change-tracking logic of a sync run:
// a pure diff between the stored ledger and the current remote listing,
// and an apply step that folds extraction results back into the ledger.
package ledger

import (
	"sort"

	"drivemerge/internal/models"
)

// DiffResult classifies the remote listing against the stored ledger.
type DiffResult struct {
	// Added holds listing entries with no live ledger record. A reused
	// identity after deletion lands here too; it becomes a fresh record.
	Added []models.RemoteFile

	// Modified holds listing entries whose stored record differs in
	// modification time or fingerprint.
	Modified []models.RemoteFile

	// Deleted holds tracked records whose identity vanished from the
	// listing.
	Deleted []*models.RemoteFileRecord

	// Unchanged holds listing entries matching their stored record.
	Unchanged []models.RemoteFile
}

// Changed returns the files that need download and extraction this run.
func (d *DiffResult) Changed() []models.RemoteFile {
	out := make([]models.RemoteFile, 0, len(d.Added)+len(d.Modified))
	out = append(out, d.Added...)
	out = append(out, d.Modified...)
	return out
}

// Empty reports whether the diff found no work.
func (d *DiffResult) Empty() bool {
	return len(d.Added) == 0 && len(d.Modified) == 0 && len(d.Deleted) == 0
}

// Diff compares the current remote listing with the ledger. It is a pure
// comparison; neither input is mutated.
//
// Classification rules:
//   - added: identity absent from the ledger, or present only as a
//     Deleted record (never resurrected in place).
//   - modified: identity tracked and modified_at or fingerprint differs.
//     Unsupported records participate so a content change re-triggers
//     extraction.
//   - deleted: tracked record whose identity is absent from the listing.
//   - unchanged: everything else.
func Diff(led *models.SyncLedger, listing []models.RemoteFile) DiffResult {
	var result DiffResult

	seen := make(map[string]bool, len(listing))
	for _, file := range listing {
		seen[file.ID] = true

		rec := led.Record(file.ID)
		if rec == nil || !rec.IsTracked() {
			result.Added = append(result.Added, file)
			continue
		}

		if !rec.ModifiedAt.Equal(file.ModifiedAt) || rec.Fingerprint != file.Fingerprint {
			result.Modified = append(result.Modified, file)
			continue
		}

		result.Unchanged = append(result.Unchanged, file)
	}

	for _, rec := range led.Records {
		if rec.IsTracked() && !seen[rec.ID] {
			result.Deleted = append(result.Deleted, rec)
		}
	}
	sort.Slice(result.Deleted, func(i, j int) bool {
		return result.Deleted[i].ID < result.Deleted[j].ID
	})

	return result
}
