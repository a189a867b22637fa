package gcp

import (
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	folderMimeType     = "application/vnd.google-apps.folder"
	googleAppsMimeType = "application/vnd.google-apps."
)

// NewDriveService creates a read-only Drive client.
func NewDriveService(ctx context.Context, credentialsFile string, extra ...option.ClientOption) (*drive.Service, error) {
	opts := append(clientOptions(credentialsFile, drive.DriveReadonlyScope), extra...)
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive client: %w", err)
	}
	return svc, nil
}

// DriveSource reads the direct children of one Drive folder.
type DriveSource struct {
	svc      *drive.Service
	folderID string
}

func NewDriveSource(svc *drive.Service, folderID string) *DriveSource {
	return &DriveSource{svc: svc, folderID: folderID}
}

// List returns every non-trashed file in the folder. Sub-folders and native
// Google documents, which have no downloadable content, are left out.
func (s *DriveSource) List(ctx context.Context) ([]RemoteFile, error) {
	q := fmt.Sprintf("'%s' in parents and trashed = false", strings.ReplaceAll(s.folderID, "'", `\'`))
	call := s.svc.Files.List().
		Q(q).
		Spaces("drive").
		Fields("nextPageToken, files(id, name, mimeType)").
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		PageSize(1000)

	var files []RemoteFile
	err := call.Pages(ctx, func(page *drive.FileList) error {
		for _, f := range page.Files {
			if f.MimeType == folderMimeType || strings.HasPrefix(f.MimeType, googleAppsMimeType) {
				continue
			}
			files = append(files, RemoteFile{
				ID:       f.Id,
				Name:     SanitizeFilename(f.Name),
				MimeType: f.MimeType,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list Drive folder %s: %w", s.folderID, err)
	}
	return files, nil
}

// Open streams the file content.
func (s *DriveSource) Open(ctx context.Context, f RemoteFile) (io.ReadCloser, error) {
	resp, err := s.svc.Files.Get(f.ID).SupportsAllDrives(true).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to download Drive file %s: %w", f.ID, err)
	}
	return resp.Body, nil
}
