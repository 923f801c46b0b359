package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"drivemerge/internal/models"
)

// FakeDrive is a scripted, mutable Drive backend. Tests add, edit, and
// remove documents between runs to model remote activity.
type FakeDrive struct {
	t *testing.T

	mu         sync.Mutex
	folderName string
	files      map[string]DocxFile

	Downloads int
}

// NewFakeDrive creates a fake Drive with a single named folder.
func NewFakeDrive(t *testing.T, folderName string) *FakeDrive {
	return &FakeDrive{
		t:          t,
		folderName: folderName,
		files:      make(map[string]DocxFile),
	}
}

// Put adds or replaces a document.
func (d *FakeDrive) Put(file DocxFile) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.files[file.ID] = file
}

// Delete removes a document.
func (d *FakeDrive) Delete(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.files, id)
}

// ResolveName returns the folder's display name.
func (d *FakeDrive) ResolveName(_ context.Context, _ string) (string, error) {
	return d.folderName, nil
}

// ListFolder lists every document currently in the folder.
func (d *FakeDrive) ListFolder(_ context.Context, _ string) ([]models.RemoteFile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var listing []models.RemoteFile
	for _, f := range d.files {
		listing = append(listing, f.RemoteFile())
	}
	return listing, nil
}

// Download returns the document rendered as DOCX bytes.
func (d *FakeDrive) Download(_ context.Context, file models.RemoteFile) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	f, ok := d.files[file.ID]
	if !ok {
		return nil, fmt.Errorf("file %s vanished mid-run", file.ID)
	}

	d.Downloads++
	return BuildDocx(d.t, f.Lines...), nil
}
