// Package sync drives one end-to-end run: list the remote folder, diff
// against the ledger, extract what changed, fold results back into the
// ledger, and regenerate the merged chunk files.
package sync

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"drivemerge/internal/drive"
	"drivemerge/internal/events"
	"drivemerge/internal/extract"
	"drivemerge/internal/ledger"
	"drivemerge/internal/merge"
	"drivemerge/internal/models"
	"drivemerge/internal/state"
	"drivemerge/internal/storage"
)

// Service orchestrates sync runs. One folder's files are processed
// sequentially; the ledger is loaded once, mutated in memory, and
// persisted atomically at run end.
type Service struct {
	lister     drive.Lister
	downloader drive.Downloader
	extractor  extract.Extractor
	store      state.Store
	texts      *storage.TextCache
	planner    *merge.Planner
	writer     *merge.Writer
	logger     *events.Logger

	clock func() time.Time
}

// NewService creates a sync service.
func NewService(
	lister drive.Lister,
	downloader drive.Downloader,
	extractor extract.Extractor,
	store state.Store,
	texts *storage.TextCache,
	planner *merge.Planner,
	writer *merge.Writer,
	logger *events.Logger,
) *Service {
	return &Service{
		lister:     lister,
		downloader: downloader,
		extractor:  extractor,
		store:      store,
		texts:      texts,
		planner:    planner,
		writer:     writer,
		logger:     logger.WithField("service", "sync"),
		clock:      time.Now,
	}
}

// SetClock overrides the time source for tests.
func (s *Service) SetClock(clock func() time.Time) {
	s.clock = clock
}

// Run performs one sync of the folder behind folderURL. Per-file
// failures are reported, never fatal; ledger and listing failures abort
// before any local writes.
func (s *Service) Run(ctx context.Context, folderURL string) (*models.SyncReport, error) {
	start := s.clock()

	folderID, kind, err := drive.ParseFolderURL(folderURL)
	if err != nil {
		return nil, &models.SyncError{
			Code: models.ErrCodeConfig, Phase: "resolve", Err: err,
		}
	}

	ctx = events.WithFolderID(ctx, folderID)

	logger := s.logger.WithField("folder_id", folderID)
	logger.WithFields(map[string]interface{}{
		"url":  folderURL,
		"kind": string(kind),
	}).Info("Starting sync")

	report := &models.SyncReport{
		RunID:     uuid.NewString(),
		FolderID:  folderID,
		StartedAt: start,
	}

	folderName, err := s.lister.ResolveName(ctx, folderID)
	if err != nil {
		return nil, &models.SyncError{
			Code: models.ErrCodeFolder, Phase: "resolve", FolderID: folderID, Err: err,
		}
	}
	report.FolderName = folderName

	led, err := s.store.Load(folderID)
	switch {
	case errors.Is(err, state.ErrLedgerNotFound):
		logger.Info("No ledger found, starting fresh")
		led = models.NewSyncLedger(folderID, folderName)
	case err != nil:
		// A corrupt ledger would silently lose delete-tracking history if
		// the run continued, so nothing is written.
		return nil, &models.SyncError{
			Code: models.ErrCodeLedger, Phase: "load", FolderID: folderID, Err: err,
		}
	default:
		led.FolderName = folderName
	}

	listing, err := s.lister.ListFolder(ctx, folderID)
	if err != nil {
		code := models.ErrCodeNetwork
		if errors.Is(err, models.ErrRateLimited) {
			code = models.ErrCodeRateLimit
		}
		return nil, &models.SyncError{
			Code: code, Phase: "list", FolderID: folderID, Err: err,
		}
	}

	diff := ledger.Diff(led, listing)
	logger.WithFields(map[string]interface{}{
		"added":     len(diff.Added),
		"modified":  len(diff.Modified),
		"deleted":   len(diff.Deleted),
		"unchanged": len(diff.Unchanged),
	}).Info("Computed diff")

	results, err := s.processChanged(ctx, led, diff)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	ledger.Apply(led, diff, results, now)
	s.countOutcomes(diff, results, report)

	if err := s.writeChunks(led, report, now); err != nil {
		return nil, err
	}

	led.LastRunAt = now
	if err := s.store.Save(folderID, led); err != nil {
		return nil, &models.SyncError{
			Code: models.ErrCodeLedger, Phase: "save", FolderID: folderID, Err: err,
		}
	}

	report.Duration = s.clock().Sub(start)
	logger.WithFields(map[string]interface{}{
		"added":    report.Added,
		"modified": report.Modified,
		"deleted":  report.Deleted,
		"failed":   report.Failed,
		"chunks":   len(report.Chunks),
	}).Info("Sync completed")

	return report, nil
}

// processChanged downloads and extracts every added or modified file.
// Transient fetch errors skip the file for this run; extraction
// rejections become terminal Unsupported outcomes.
func (s *Service) processChanged(ctx context.Context, led *models.SyncLedger, diff ledger.DiffResult) (map[string]ledger.ExtractionResult, error) {
	results := make(map[string]ledger.ExtractionResult)

	for _, file := range diff.Changed() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		logger := s.logger.WithFields(map[string]interface{}{
			"path": file.Path,
			"mime": file.MimeType,
		})
		logger.Info("Processing file")

		data, err := s.downloader.Download(ctx, file)
		if err != nil {
			logger.WithError(err).Warn("Download failed, will retry next run")
			results[file.ID] = ledger.ExtractionResult{Err: err}
			continue
		}

		text, err := s.extractor.Extract(ctx, file, data)
		if err != nil {
			if !errors.Is(err, extract.ErrUnsupportedFormat) {
				logger.WithError(err).Warn("Extraction failed, marking unsupported")
			}
			results[file.ID] = ledger.ExtractionResult{
				Unsupported: true,
				Err:         &models.ExtractError{Path: file.Path, MimeType: file.MimeType, Err: err},
			}
			continue
		}

		sum := md5.Sum([]byte(text))
		checksum := hex.EncodeToString(sum[:])

		// A remote touch with identical content keeps the cached text.
		if rec := led.Record(file.ID); rec != nil && rec.TextChecksum == checksum && rec.TextRef != "" {
			logger.Debug("Content unchanged, reusing cached text")
			results[file.ID] = ledger.ExtractionResult{TextRef: rec.TextRef, TextChecksum: checksum}
			continue
		}

		ref, err := s.texts.Put(led.FolderID, file.ID, text)
		if err != nil {
			logger.WithError(err).Warn("Text cache write failed, will retry next run")
			results[file.ID] = ledger.ExtractionResult{Err: err}
			continue
		}

		results[file.ID] = ledger.ExtractionResult{TextRef: ref, TextChecksum: checksum}
	}

	return results, nil
}

// countOutcomes folds the diff and extraction outcomes into the report.
func (s *Service) countOutcomes(diff ledger.DiffResult, results map[string]ledger.ExtractionResult, report *models.SyncReport) {
	tally := func(files []models.RemoteFile, succeeded *int) {
		for _, file := range files {
			res, ok := results[file.ID]
			switch {
			case !ok || res.Failed():
				report.Failed++
				report.FailedPaths = append(report.FailedPaths, file.Path)
			case res.Unsupported:
				report.Unsupported++
			default:
				*succeeded++
			}
		}
	}

	tally(diff.Added, &report.Added)
	tally(diff.Modified, &report.Modified)
	report.Deleted = len(diff.Deleted)
	report.Unchanged = len(diff.Unchanged)
}

// writeChunks regenerates the folder's merged output files from the
// current active set.
func (s *Service) writeChunks(led *models.SyncLedger, report *models.SyncReport, now time.Time) error {
	actives := led.ActiveRecords()

	docs := make([]merge.Document, 0, len(actives))
	for _, rec := range actives {
		text, err := s.texts.Get(rec.TextRef)
		if err != nil {
			// Cache entry lost out from under us. Clearing the fingerprint
			// and checksum makes the next diff classify the file as
			// modified, so it is re-downloaded; this run excludes it.
			s.logger.WithError(err).WithField("path", rec.Path).Error("Cached text missing")
			rec.Fingerprint = ""
			rec.TextChecksum = ""
			report.Failed++
			report.FailedPaths = append(report.FailedPaths, rec.Path)
			continue
		}
		docs = append(docs, merge.Document{Record: rec, Text: text})
	}

	report.TotalDocuments = len(led.Records)
	report.ActiveDocuments = len(docs)

	preamble := merge.RenderPreamble(now, report.TotalDocuments, report.ActiveDocuments,
		report.Added+report.Modified, report.Deleted)

	chunks := s.planner.Plan(docs, preamble)

	stem := fsSafeName(led.FolderName)
	if stem == "" {
		stem = led.FolderID
	}

	if _, err := s.writer.Write(stem, stem, chunks); err != nil {
		return &models.SyncError{
			Code: models.ErrCodeStorage, Phase: "write", FolderID: led.FolderID, Err: err,
		}
	}

	for _, chunk := range chunks {
		report.Chunks = append(report.Chunks, chunk.MergedChunk)
		report.TotalMergedBytes += chunk.ByteSize
	}

	return nil
}

// fsSafeName strips characters that would break a directory name.
func fsSafeName(name string) string {
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_",
		"?", "_", "\"", "_", "<", "_", ">", "_", "|", "_",
	)
	return strings.TrimSpace(replacer.Replace(name))
}
