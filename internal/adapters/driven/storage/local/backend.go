// Package local provides a storage backend writing to a local directory.
// Each period is a sub-directory named YYYY-MM.
package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/receiptsync/internal/core/domain"
	"github.com/custodia-labs/receiptsync/internal/core/ports/driven"
)

// Ensure Backend implements the interfaces.
var (
	_ driven.StorageBackend = (*Backend)(nil)
	_ driven.Describer      = (*Backend)(nil)
)

// Backend stores files under <root>/<YYYY-MM>/<name>.
type Backend struct {
	root string
}

// NewBackend creates a backend rooted at dir.
// The directory is created if it does not exist.
func NewBackend(dir string) (*Backend, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: local directory is empty", domain.ErrBackendNotConfigured)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create root directory: %w", err)
	}
	return &Backend{root: abs}, nil
}

// Root returns the absolute root path.
func (b *Backend) Root() string {
	return b.root
}

// Describe returns the root directory.
func (b *Backend) Describe() string {
	return b.root
}

// ReadBlob reads a named blob from the period folder.
func (b *Backend) ReadBlob(_ context.Context, period domain.Period, name string) ([]byte, error) {
	path, err := b.resolve(period, name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// WriteBlob atomically replaces a named blob.
func (b *Backend) WriteBlob(_ context.Context, period domain.Period, name string, data []byte) error {
	return b.write(period, name, data)
}

// WriteFile atomically replaces an attachment file.
func (b *Backend) WriteFile(_ context.Context, period domain.Period, fileName string, data []byte) error {
	return b.write(period, fileName, data)
}

// FileExists reports whether a regular file exists in the period folder.
func (b *Backend) FileExists(_ context.Context, period domain.Period, fileName string) (bool, error) {
	path, err := b.resolve(period, fileName)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.Mode().IsRegular(), nil
}

// write stores data through a temp file in the same directory and a
// rename, so readers never observe a partial file.
func (b *Backend) write(period domain.Period, name string, data []byte) error {
	path, err := b.resolve(period, name)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create period directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}

// resolve maps a period and file name to an absolute path, ensuring the
// result stays within the period directory.
func (b *Backend) resolve(period domain.Period, name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\\`) {
		return "", fmt.Errorf("%w: file name %q", domain.ErrInvalidInput, name)
	}
	dir := filepath.Join(b.root, period.FolderName())
	abs := filepath.Join(dir, name)
	// Prevent path traversal
	if filepath.Dir(abs) != dir {
		return "", fmt.Errorf("%w: file name %q escapes period folder", domain.ErrInvalidInput, name)
	}
	return abs, nil
}
