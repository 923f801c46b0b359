package drive

import (
	"fmt"
	"regexp"

	"drivemerge/internal/models"
)

// TargetKind distinguishes what a Drive URL points at.
type TargetKind string

const (
	// TargetFolder is a regular folder (or My Drive root).
	TargetFolder TargetKind = "folder"
	// TargetDrive is a shared drive root.
	TargetDrive TargetKind = "drive"
)

// MyDriveID is Drive's alias for the user's own root folder.
const MyDriveID = "root"

var (
	folderPattern  = regexp.MustCompile(`drive/folders/([0-9A-Za-z_-]+)`)
	shortPattern   = regexp.MustCompile(`folders/([0-9A-Za-z_-]+)`)
	myDrivePattern = regexp.MustCompile(`drive/u/\d+/my-drive`)
	drivePattern   = regexp.MustCompile(`drive/([0-9A-Za-z_-]+)`)
)

// ParseFolderURL extracts the target identity from a Drive folder URL.
// Accepted shapes:
//
//	https://drive.google.com/drive/folders/<id>
//	https://drive.google.com/.../folders/<id>
//	https://drive.google.com/drive/u/0/my-drive
//	https://drive.google.com/drive/<shared-drive-id>
//
// Anything else, including single-file URLs, is rejected.
func ParseFolderURL(url string) (string, TargetKind, error) {
	if m := folderPattern.FindStringSubmatch(url); m != nil {
		return m[1], TargetFolder, nil
	}

	if m := shortPattern.FindStringSubmatch(url); m != nil {
		return m[1], TargetFolder, nil
	}

	if myDrivePattern.MatchString(url) {
		return MyDriveID, TargetFolder, nil
	}

	if m := drivePattern.FindStringSubmatch(url); m != nil {
		return m[1], TargetDrive, nil
	}

	return "", "", fmt.Errorf("%w: %s", models.ErrInvalidFolderURL, url)
}
