package models

import (
	"time"
)

// SyncReport summarizes one completed run.
type SyncReport struct {
	RunID      string    `json:"run_id"`
	FolderID   string    `json:"folder_id"`
	FolderName string    `json:"folder_name"`
	StartedAt  time.Time `json:"started_at"`
	Duration   time.Duration `json:"duration"`

	Added       int `json:"added"`
	Modified    int `json:"modified"`
	Deleted     int `json:"deleted"`
	Unchanged   int `json:"unchanged"`
	Unsupported int `json:"unsupported"`
	Failed      int `json:"failed"`

	// FailedPaths lists files skipped this run after transient errors.
	// They keep their previous ledger state and retry next run.
	FailedPaths []string `json:"failed_paths,omitempty"`

	Chunks           []MergedChunk `json:"chunks"`
	TotalMergedBytes int64         `json:"total_merged_bytes"`
	ActiveDocuments  int           `json:"active_documents"`
	TotalDocuments   int           `json:"total_documents"`
}

// HasFailures reports whether any file was skipped this run.
func (r *SyncReport) HasFailures() bool {
	return r.Failed > 0
}
