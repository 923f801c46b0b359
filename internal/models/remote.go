package models

import (
	"strings"
	"time"
)

// Mime types the listing layer returns. Google-native documents are
// exported as DOCX before extraction.
const (
	MimeGoogleDoc    = "application/vnd.google-apps.document"
	MimeGoogleFolder = "application/vnd.google-apps.folder"
	MimeDocx         = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeMSWord       = "application/msword"
	MimePDF          = "application/pdf"
)

// RemoteFile describes one file in the current remote listing.
type RemoteFile struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	MimeType    string    `json:"mime_type"`
	ModifiedAt  time.Time `json:"modified_at"`
	Fingerprint string    `json:"fingerprint"`
}

// NormalizedPath returns the cleaned, forward-slash path.
func (f *RemoteFile) NormalizedPath() string {
	return strings.ReplaceAll(strings.TrimPrefix(f.Path, "/"), "\\", "/")
}

// IsSyncable reports whether the file's format is one the extractor
// understands well enough to try.
func (f *RemoteFile) IsSyncable() bool {
	switch f.MimeType {
	case MimeGoogleDoc, MimeDocx, MimeMSWord, MimePDF:
		return true
	}
	return false
}
