package gdrive

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/api/drive/v3"

	"github.com/custodia-labs/receiptsync/internal/connectors/google"
	"github.com/custodia-labs/receiptsync/internal/core/domain"
	"github.com/custodia-labs/receiptsync/internal/core/ports/driven"
	"github.com/custodia-labs/receiptsync/internal/logger"
)

// Ensure Backend implements the interfaces.
var (
	_ driven.StorageBackend = (*Backend)(nil)
	_ driven.Describer      = (*Backend)(nil)
	_ driven.FolderLinker   = (*Backend)(nil)
)

const (
	folderURLPrefix = "https://drive.google.com/drive/folders/"
	blobContentType = "application/json"
)

// Backend stores period folders as sub-folders of a Drive parent folder.
// Sub-folders are created on first write. Writes update an existing
// same-named file in place so Drive keeps a single copy with revisions.
type Backend struct {
	files    fileService
	parentID string
	meta     *google.RateLimiter
	upload   *google.RateLimiter

	mu      sync.Mutex
	folders map[string]*remoteFile
}

// NewBackend creates a Drive backend rooted at the parent folder ID.
func NewBackend(svc *drive.Service, parentID string) (*Backend, error) {
	if svc == nil {
		return nil, fmt.Errorf("%w: drive service is nil", domain.ErrBackendNotConfigured)
	}
	if parentID == "" {
		return nil, fmt.Errorf("%w: google drive folder id not set", domain.ErrBackendNotConfigured)
	}
	return newBackend(&driveFiles{svc: svc}, parentID), nil
}

func newBackend(files fileService, parentID string) *Backend {
	return &Backend{
		files:    files,
		parentID: parentID,
		meta:     google.NewRateLimiter(google.ServiceDrive),
		upload:   google.NewRateLimiter(google.ServiceDriveUpload),
		folders:  make(map[string]*remoteFile),
	}
}

// Describe returns the parent folder location.
func (b *Backend) Describe() string {
	return "Google Drive folder " + folderURLPrefix + b.parentID
}

// FolderURL returns a link to the period folder, or "" if it does not exist yet.
func (b *Backend) FolderURL(ctx context.Context, period domain.Period) string {
	f, err := b.folder(ctx, period, false)
	if err != nil {
		logger.Debug("gdrive: resolve folder link for %s: %v", period, err)
		return ""
	}
	if f == nil {
		return ""
	}
	if f.Link != "" {
		return f.Link
	}
	return folderURLPrefix + f.ID
}

// ReadBlob downloads a named blob from the period folder.
func (b *Backend) ReadBlob(ctx context.Context, period domain.Period, name string) ([]byte, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty blob name", domain.ErrInvalidInput)
	}
	folder, err := b.folder(ctx, period, false)
	if err != nil {
		return nil, err
	}
	if folder == nil {
		return nil, fmt.Errorf("%s/%s: %w", period.FolderName(), name, domain.ErrNotFound)
	}

	f, err := b.find(ctx, folder.ID, name)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, fmt.Errorf("%s/%s: %w", period.FolderName(), name, domain.ErrNotFound)
	}

	var data []byte
	err = b.call(ctx, b.meta, func() error {
		var dlErr error
		data, dlErr = b.files.Download(ctx, f.ID)
		return dlErr
	})
	if err != nil {
		return nil, fmt.Errorf("download %s/%s: %w", period.FolderName(), name, err)
	}
	return data, nil
}

// WriteBlob creates or replaces a named blob.
func (b *Backend) WriteBlob(ctx context.Context, period domain.Period, name string, data []byte) error {
	return b.write(ctx, period, name, blobContentType, data)
}

// WriteFile creates or replaces an attachment file.
func (b *Backend) WriteFile(ctx context.Context, period domain.Period, fileName string, data []byte) error {
	return b.write(ctx, period, fileName, domain.ContentType(fileName, ""), data)
}

// FileExists reports whether a file exists in the period folder.
func (b *Backend) FileExists(ctx context.Context, period domain.Period, fileName string) (bool, error) {
	if fileName == "" {
		return false, fmt.Errorf("%w: empty file name", domain.ErrInvalidInput)
	}
	folder, err := b.folder(ctx, period, false)
	if err != nil || folder == nil {
		return false, err
	}
	f, err := b.find(ctx, folder.ID, fileName)
	if err != nil {
		return false, err
	}
	return f != nil, nil
}

func (b *Backend) write(ctx context.Context, period domain.Period, name, contentType string, data []byte) error {
	if name == "" {
		return fmt.Errorf("%w: empty file name", domain.ErrInvalidInput)
	}
	folder, err := b.folder(ctx, period, true)
	if err != nil {
		return err
	}

	existing, err := b.find(ctx, folder.ID, name)
	if err != nil {
		return err
	}

	if existing != nil {
		logger.Debug("gdrive: updating %s/%s (%s)", period.FolderName(), name, existing.ID)
		err = b.call(ctx, b.upload, func() error {
			return b.files.Update(ctx, existing.ID, contentType, data)
		})
		if err != nil {
			return fmt.Errorf("update %s/%s: %w", period.FolderName(), name, err)
		}
		return nil
	}

	logger.Debug("gdrive: uploading %s/%s (%d bytes)", period.FolderName(), name, len(data))
	err = b.call(ctx, b.upload, func() error {
		_, createErr := b.files.Create(ctx, folder.ID, name, contentType, data)
		return createErr
	})
	if err != nil {
		return fmt.Errorf("upload %s/%s: %w", period.FolderName(), name, err)
	}
	return nil
}

// folder resolves the period sub-folder, creating it when create is set.
// Returns nil without error when the folder is absent and create is false.
func (b *Backend) folder(ctx context.Context, period domain.Period, create bool) (*remoteFile, error) {
	name := period.FolderName()

	b.mu.Lock()
	defer b.mu.Unlock()

	if f, ok := b.folders[name]; ok {
		return f, nil
	}

	var f *remoteFile
	err := b.call(ctx, b.meta, func() error {
		var findErr error
		f, findErr = b.files.Find(ctx, b.parentID, name, true)
		return findErr
	})
	if err != nil {
		return nil, fmt.Errorf("find folder %s: %w", name, err)
	}

	if f == nil && create {
		logger.Debug("gdrive: creating folder %s under %s", name, b.parentID)
		err = b.call(ctx, b.meta, func() error {
			var createErr error
			f, createErr = b.files.CreateFolder(ctx, b.parentID, name)
			return createErr
		})
		if err != nil {
			return nil, fmt.Errorf("create folder %s: %w", name, err)
		}
	}

	if f != nil {
		b.folders[name] = f
	}
	return f, nil
}

func (b *Backend) find(ctx context.Context, folderID, name string) (*remoteFile, error) {
	var f *remoteFile
	err := b.call(ctx, b.meta, func() error {
		var findErr error
		f, findErr = b.files.Find(ctx, folderID, name, false)
		return findErr
	})
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", name, err)
	}
	return f, nil
}

// call runs fn under the limiter and maps Drive errors.
func (b *Backend) call(ctx context.Context, limiter *google.RateLimiter, fn func() error) error {
	if err := limiter.Wait(ctx); err != nil {
		return err
	}
	return google.WrapError(limiter.Observe(fn()))
}
