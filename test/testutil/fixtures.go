// Package testutil provides shared fixtures for integration tests:
// DOCX builders and a scripted in-memory Drive.
package testutil

import (
	"archive/zip"
	"bytes"
	"crypto/md5"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"drivemerge/internal/events"
	"drivemerge/internal/models"
)

// NewLogger returns a debug logger writing into a discarded buffer.
func NewLogger() *events.Logger {
	return events.NewTestLogger(events.DebugLevel, "json", &bytes.Buffer{})
}

// BuildDocx assembles a minimal DOCX archive with one paragraph per
// line of text.
func BuildDocx(t *testing.T, lines ...string) []byte {
	t.Helper()

	var body strings.Builder
	for _, line := range lines {
		body.WriteString(fmt.Sprintf("<w:p><w:r><w:t>%s</w:t></w:r></w:p>", line))
	}

	documentXML := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>%s</w:body>
</w:document>`, body.String())

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)

	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// DocxFile describes one fixture document living in the fake Drive.
type DocxFile struct {
	ID         string
	Name       string
	Lines      []string
	ModifiedAt time.Time
}

// RemoteFile renders the fixture's listing entry. The fingerprint is
// derived from the content lines so edits change it.
func (f DocxFile) RemoteFile() models.RemoteFile {
	return models.RemoteFile{
		ID:          f.ID,
		Name:        f.Name,
		Path:        f.Name,
		MimeType:    models.MimeDocx,
		ModifiedAt:  f.ModifiedAt,
		Fingerprint: fmt.Sprintf("fp-%x", md5.Sum([]byte(strings.Join(f.Lines, "\n")))),
	}
}
