package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"time"

	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"drivemerge/internal/config"
	"drivemerge/internal/events"
	"drivemerge/internal/models"
)

const listFields = "nextPageToken, files(id, name, mimeType, modifiedTime, md5Checksum, headRevisionId)"

// Client implements Lister and Downloader against the Drive v3 API.
type Client struct {
	svc      *drivev3.Service
	pageSize int64
	logger   *events.Logger
}

// NewClient creates an authenticated Drive client from config.
func NewClient(ctx context.Context, cfg *config.DriveConfig, logger *events.Logger) (*Client, error) {
	httpClient, err := authorizedHTTPClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	svc, err := drivev3.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	return &Client{
		svc:      svc,
		pageSize: cfg.PageSize,
		logger:   logger.WithField("component", "drive_client"),
	}, nil
}

// ResolveName returns the folder's display name.
func (c *Client) ResolveName(ctx context.Context, folderID string) (string, error) {
	file, err := c.svc.Files.Get(folderID).
		SupportsAllDrives(true).
		Fields("name").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("resolve folder %s: %w", folderID, apiError(err))
	}
	return file.Name, nil
}

// ListFolder walks the folder tree breadth-first, skipping trashed
// items, and returns descriptors for supported document types.
func (c *Client) ListFolder(ctx context.Context, folderID string) ([]models.RemoteFile, error) {
	type folder struct {
		id   string
		path string
	}

	var files []models.RemoteFile
	queue := []folder{{id: folderID, path: ""}}
	visited := make(map[string]bool)

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if visited[cur.id] {
			continue
		}
		visited[cur.id] = true

		c.logger.WithFields(map[string]interface{}{
			"folder_id": cur.id,
			"path":      cur.path,
		}).Debug("Scanning folder")

		query := fmt.Sprintf("'%s' in parents and trashed=false", cur.id)
		pageToken := ""

		for {
			call := c.svc.Files.List().
				Q(query).
				PageSize(c.pageSize).
				Fields(listFields).
				Spaces("drive").
				SupportsAllDrives(true).
				IncludeItemsFromAllDrives(true).
				Context(ctx)
			if pageToken != "" {
				call = call.PageToken(pageToken)
			}

			result, err := call.Do()
			if err != nil {
				return nil, fmt.Errorf("list folder %s: %w", cur.id, apiError(err))
			}

			for _, item := range result.Files {
				if item.MimeType == models.MimeGoogleFolder {
					queue = append(queue, folder{
						id:   item.Id,
						path: path.Join(cur.path, item.Name),
					})
					continue
				}

				file := models.RemoteFile{
					ID:          item.Id,
					Name:        item.Name,
					Path:        path.Join(cur.path, item.Name),
					MimeType:    item.MimeType,
					Fingerprint: fingerprint(item),
				}
				if !file.IsSyncable() {
					continue
				}

				if t, err := time.Parse(time.RFC3339, item.ModifiedTime); err == nil {
					file.ModifiedAt = t
				}

				files = append(files, file)
			}

			pageToken = result.NextPageToken
			if pageToken == "" {
				break
			}
		}
	}

	c.logger.WithField("count", len(files)).Info("Remote listing complete")
	return files, nil
}

// Download fetches a file's bytes, exporting Google-native documents as
// DOCX.
func (c *Client) Download(ctx context.Context, file models.RemoteFile) ([]byte, error) {
	var body io.ReadCloser

	if file.MimeType == models.MimeGoogleDoc {
		resp, err := c.svc.Files.Export(file.ID, models.MimeDocx).Context(ctx).Download()
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", file.Path, apiError(err))
		}
		body = resp.Body
	} else {
		resp, err := c.svc.Files.Get(file.ID).SupportsAllDrives(true).Context(ctx).Download()
		if err != nil {
			return nil, fmt.Errorf("download %s: %w", file.Path, apiError(err))
		}
		body = resp.Body
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file.Path, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"path": file.Path,
		"size": len(data),
	}).Debug("Downloaded file")

	return data, nil
}

// apiError maps recognizable Drive API status codes onto sentinel
// errors callers can match with errors.Is.
func apiError(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}
	switch gerr.Code {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %v", models.ErrFolderNotFound, err)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %v", models.ErrRateLimited, err)
	}
	return err
}

// fingerprint picks the most stable content marker Drive exposes for a
// file. md5Checksum covers binary uploads; Google-native documents only
// carry a revision id; modifiedTime is the fallback of last resort.
func fingerprint(item *drivev3.File) string {
	if item.Md5Checksum != "" {
		return item.Md5Checksum
	}
	if item.HeadRevisionId != "" {
		return item.HeadRevisionId
	}
	return item.ModifiedTime
}
