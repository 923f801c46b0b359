package drive

import (
	"context"

	"github.com/stretchr/testify/mock"

	"drivemerge/internal/models"
)

// MockDrive mocks the Lister and Downloader interfaces for tests.
type MockDrive struct {
	mock.Mock
}

// NewMockDrive creates a mock Drive client.
func NewMockDrive() *MockDrive {
	return &MockDrive{}
}

func (m *MockDrive) ResolveName(ctx context.Context, folderID string) (string, error) {
	args := m.Called(ctx, folderID)
	return args.String(0), args.Error(1)
}

func (m *MockDrive) ListFolder(ctx context.Context, folderID string) ([]models.RemoteFile, error) {
	args := m.Called(ctx, folderID)
	if files := args.Get(0); files != nil {
		return files.([]models.RemoteFile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDrive) Download(ctx context.Context, file models.RemoteFile) ([]byte, error) {
	args := m.Called(ctx, file)
	if data := args.Get(0); data != nil {
		return data.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}
