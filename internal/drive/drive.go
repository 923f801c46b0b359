// Package drive is the remote listing provider: it resolves folder
// URLs, walks a folder tree on Google Drive, and downloads file content
// for extraction. The rest of the program only sees the Lister and
// Downloader interfaces.
package drive

import (
	"context"

	"drivemerge/internal/models"
)

// Lister enumerates remote files for a sync target.
type Lister interface {
	// ResolveName returns the target folder's display name.
	ResolveName(ctx context.Context, folderID string) (string, error)

	// ListFolder walks the folder and its subfolders breadth-first and
	// returns descriptors for every non-trashed document of a supported
	// type.
	ListFolder(ctx context.Context, folderID string) ([]models.RemoteFile, error)
}

// Downloader fetches one remote file's raw bytes. Google-native
// documents are exported as DOCX.
type Downloader interface {
	Download(ctx context.Context, file models.RemoteFile) ([]byte, error)
}
