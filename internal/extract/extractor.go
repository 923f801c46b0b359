// Package extract turns downloaded document bytes into plain text.
// Google-native documents arrive already exported as DOCX; anything the
// dispatcher does not understand yields ErrUnsupportedFormat, which is a
// terminal status rather than an error for the run.
package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"drivemerge/internal/events"
	"drivemerge/internal/models"
)

// ErrUnsupportedFormat signals a mime type the extractor cannot handle.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Extractor produces plain text from a remote file's raw bytes.
type Extractor interface {
	Extract(ctx context.Context, file models.RemoteFile, data []byte) (string, error)
}

// Service dispatches extraction by mime type.
type Service struct {
	logger  *events.Logger
	tempDir string
}

// NewService creates the extraction service.
func NewService(logger *events.Logger) *Service {
	tempDir := filepath.Join(os.TempDir(), "drivemerge-extract")
	_ = os.MkdirAll(tempDir, 0700)

	return &Service{
		logger:  logger.WithField("component", "extractor"),
		tempDir: tempDir,
	}
}

// Extract returns the file's plain text, or ErrUnsupportedFormat.
func (s *Service) Extract(ctx context.Context, file models.RemoteFile, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.logger.WithFields(map[string]interface{}{
		"path": file.Path,
		"mime": file.MimeType,
		"size": len(data),
	}).Debug("Extracting text")

	switch file.MimeType {
	case models.MimeGoogleDoc, models.MimeDocx:
		// Google Docs are exported as DOCX before reaching here.
		return extractDOCX(data)
	case models.MimePDF:
		return s.extractPDF(data)
	case models.MimeMSWord:
		// Legacy binary .doc has no reliable Go decoder.
		return "", ErrUnsupportedFormat
	default:
		return "", ErrUnsupportedFormat
	}
}
