package s3

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/custodia-labs/receiptsync/internal/core/domain"
	"github.com/custodia-labs/receiptsync/internal/core/ports/driven"
	"github.com/custodia-labs/receiptsync/internal/logger"
)

// Ensure Backend implements the interfaces.
var (
	_ driven.StorageBackend = (*Backend)(nil)
	_ driven.Describer      = (*Backend)(nil)
)

const blobContentType = "application/json"

// Config holds the connection settings of an S3-compatible bucket.
type Config struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	Region    string
	Prefix    string
	UseSSL    bool
}

// Backend stores period folders as key prefixes in a bucket:
// <prefix>/<YYYY-MM>/<name>.
type Backend struct {
	objects  objectStore
	endpoint string
	bucket   string
	prefix   string
	secure   bool
}

// NewBackend connects to the bucket described by cfg.
// No request is made until the first operation.
func NewBackend(cfg Config) (*Backend, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: s3 endpoint and bucket are required", domain.ErrBackendNotConfigured)
	}

	opts := &minio.Options{
		Secure:       cfg.UseSSL,
		Region:       cfg.Region,
		BucketLookup: minio.BucketLookupAuto,
	}
	if cfg.AccessKey != "" {
		opts.Creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	}

	client, err := minio.New(cfg.Endpoint, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: s3 client: %w", domain.ErrBackendNotConfigured, err)
	}

	return newBackend(&minioObjects{client: client, bucket: cfg.Bucket}, cfg), nil
}

func newBackend(objects objectStore, cfg Config) *Backend {
	return &Backend{
		objects:  objects,
		endpoint: cfg.Endpoint,
		bucket:   cfg.Bucket,
		prefix:   strings.Trim(cfg.Prefix, "/"),
		secure:   cfg.UseSSL,
	}
}

// Describe returns the bucket location as a URL.
func (b *Backend) Describe() string {
	scheme := "http"
	if b.secure {
		scheme = "https"
	}
	loc := fmt.Sprintf("%s://%s/%s", scheme, b.endpoint, b.bucket)
	if b.prefix != "" {
		loc += "/" + b.prefix
	}
	return loc
}

// ReadBlob reads a named blob from the period folder.
func (b *Backend) ReadBlob(ctx context.Context, period domain.Period, name string) ([]byte, error) {
	key, err := b.key(period, name)
	if err != nil {
		return nil, err
	}
	return b.objects.Get(ctx, key)
}

// WriteBlob creates or replaces a named blob.
// Object PUTs replace the whole object, so readers never see a partial blob.
func (b *Backend) WriteBlob(ctx context.Context, period domain.Period, name string, data []byte) error {
	key, err := b.key(period, name)
	if err != nil {
		return err
	}
	return b.objects.Put(ctx, key, blobContentType, data)
}

// WriteFile creates or replaces an attachment file.
func (b *Backend) WriteFile(ctx context.Context, period domain.Period, fileName string, data []byte) error {
	key, err := b.key(period, fileName)
	if err != nil {
		return err
	}
	logger.Debug("s3: put %s/%s (%d bytes)", b.bucket, key, len(data))
	return b.objects.Put(ctx, key, domain.ContentType(fileName, ""), data)
}

// FileExists reports whether the object exists.
func (b *Backend) FileExists(ctx context.Context, period domain.Period, fileName string) (bool, error) {
	key, err := b.key(period, fileName)
	if err != nil {
		return false, err
	}
	return b.objects.Exists(ctx, key)
}

// key builds the object key, rejecting names that would escape the period prefix.
func (b *Backend) key(period domain.Period, name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: invalid object name %q", domain.ErrInvalidInput, name)
	}
	if b.prefix == "" {
		return path.Join(period.FolderName(), name), nil
	}
	return path.Join(b.prefix, period.FolderName(), name), nil
}
