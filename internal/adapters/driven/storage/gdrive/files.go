package gdrive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

// MimeTypeFolder is the Drive MIME type of folders.
const MimeTypeFolder = "application/vnd.google-apps.folder"

// remoteFile is the subset of Drive file metadata the backend needs.
type remoteFile struct {
	ID   string
	Name string
	Link string
}

// fileService is the narrow set of Drive calls used by the backend.
// driveFiles implements it over the real API; tests substitute a fake.
type fileService interface {
	// Find returns the first non-trashed child of parentID named name,
	// or nil when there is none. folder selects folders or plain files.
	Find(ctx context.Context, parentID, name string, folder bool) (*remoteFile, error)
	CreateFolder(ctx context.Context, parentID, name string) (*remoteFile, error)
	Create(ctx context.Context, parentID, name, contentType string, data []byte) (*remoteFile, error)
	Update(ctx context.Context, fileID, contentType string, data []byte) error
	Download(ctx context.Context, fileID string) ([]byte, error)
}

// driveFiles implements fileService with the Drive v3 API.
// Every call is shared-drive aware.
type driveFiles struct {
	svc *drive.Service
}

// Find implements fileService.
func (d *driveFiles) Find(ctx context.Context, parentID, name string, folder bool) (*remoteFile, error) {
	q := childQuery(parentID, name, folder)
	list, err := d.svc.Files.List().
		Q(q).
		Fields("files(id, name, webViewLink)").
		PageSize(1).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	if len(list.Files) == 0 {
		return nil, nil
	}
	return toRemote(list.Files[0]), nil
}

// CreateFolder implements fileService.
func (d *driveFiles) CreateFolder(ctx context.Context, parentID, name string) (*remoteFile, error) {
	f, err := d.svc.Files.Create(&drive.File{
		Name:     name,
		MimeType: MimeTypeFolder,
		Parents:  []string{parentID},
	}).
		Fields("id, name, webViewLink").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return toRemote(f), nil
}

// Create implements fileService.
func (d *driveFiles) Create(
	ctx context.Context, parentID, name, contentType string, data []byte,
) (*remoteFile, error) {
	f, err := d.svc.Files.Create(&drive.File{
		Name:     name,
		MimeType: contentType,
		Parents:  []string{parentID},
	}).
		Media(bytes.NewReader(data), googleapi.ContentType(contentType)).
		Fields("id, name, webViewLink").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return toRemote(f), nil
}

// Update implements fileService.
func (d *driveFiles) Update(ctx context.Context, fileID, contentType string, data []byte) error {
	_, err := d.svc.Files.Update(fileID, &drive.File{}).
		Media(bytes.NewReader(data), googleapi.ContentType(contentType)).
		Fields("id").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	return err
}

// Download implements fileService.
func (d *driveFiles) Download(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := d.svc.Files.Get(fileID).
		SupportsAllDrives(true).
		Context(ctx).
		Download()
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file content: %w", err)
	}
	return data, nil
}

func toRemote(f *drive.File) *remoteFile {
	return &remoteFile{ID: f.Id, Name: f.Name, Link: f.WebViewLink}
}

// childQuery builds a Drive search query for a named child of parentID.
func childQuery(parentID, name string, folder bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "name = '%s' and '%s' in parents and trashed = false",
		escapeQuery(name), escapeQuery(parentID))
	if folder {
		fmt.Fprintf(&b, " and mimeType = '%s'", MimeTypeFolder)
	} else {
		fmt.Fprintf(&b, " and mimeType != '%s'", MimeTypeFolder)
	}
	return b.String()
}

// escapeQuery escapes a value for a single-quoted Drive query literal.
func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
