package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/receiptsync/internal/core/domain"
	"github.com/custodia-labs/receiptsync/internal/core/ports/driven"
)

// Ensure Backend implements the interfaces.
var (
	_ driven.StorageBackend = (*Backend)(nil)
	_ driven.Describer      = (*Backend)(nil)
)

// Backend is an in-memory implementation of driven.StorageBackend.
// Failures can be injected per operation for tests and dry experiments.
type Backend struct {
	mu      sync.RWMutex
	folders map[string]map[string][]byte

	readErr  error
	blobErr  error
	fileErrs map[string]error

	blobWrites int
	fileWrites int
}

// NewBackend creates an empty in-memory backend.
func NewBackend() *Backend {
	return &Backend{
		folders:  make(map[string]map[string][]byte),
		fileErrs: make(map[string]error),
	}
}

// ReadBlob reads a named blob from the period folder.
func (b *Backend) ReadBlob(_ context.Context, period domain.Period, name string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.readErr != nil {
		return nil, b.readErr
	}
	data, ok := b.folders[period.FolderName()][name]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", period.FolderName(), name, domain.ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}

// WriteBlob creates or replaces a named blob.
func (b *Backend) WriteBlob(_ context.Context, period domain.Period, name string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.blobErr != nil {
		return b.blobErr
	}
	b.blobWrites++
	b.put(period, name, data)
	return nil
}

// WriteFile creates or replaces an attachment file.
func (b *Backend) WriteFile(_ context.Context, period domain.Period, fileName string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err, ok := b.fileErrs[fileName]; ok {
		return err
	}
	b.fileWrites++
	b.put(period, fileName, data)
	return nil
}

// FileExists reports whether a file exists in the period folder.
func (b *Backend) FileExists(_ context.Context, period domain.Period, fileName string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.folders[period.FolderName()][fileName]
	return ok, nil
}

// Describe returns a human-readable location.
func (b *Backend) Describe() string {
	return "memory"
}

// Put seeds a blob or file without counting it as a write.
func (b *Backend) Put(period domain.Period, name string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.put(period, name, data)
}

// Get returns stored bytes.
func (b *Backend) Get(period domain.Period, name string) ([]byte, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.folders[period.FolderName()][name]
	return data, ok
}

// Names lists the names stored in a period folder in sorted order.
func (b *Backend) Names(period domain.Period) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	folder := b.folders[period.FolderName()]
	names := make([]string, 0, len(folder))
	for name := range folder {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BlobWrites returns the number of successful WriteBlob calls.
func (b *Backend) BlobWrites() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.blobWrites
}

// FileWrites returns the number of successful WriteFile calls.
func (b *Backend) FileWrites() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.fileWrites
}

// FailReads makes every ReadBlob return err. A nil err clears the failure.
func (b *Backend) FailReads(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.readErr = err
}

// FailBlobWrites makes every WriteBlob return err. A nil err clears the failure.
func (b *Backend) FailBlobWrites(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobErr = err
}

// FailFile makes WriteFile for fileName return err. A nil err clears the failure.
func (b *Backend) FailFile(fileName string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.fileErrs, fileName)
		return
	}
	b.fileErrs[fileName] = err
}

func (b *Backend) put(period domain.Period, name string, data []byte) {
	folder, ok := b.folders[period.FolderName()]
	if !ok {
		folder = make(map[string][]byte)
		b.folders[period.FolderName()] = folder
	}
	folder[name] = append([]byte(nil), data...)
}
