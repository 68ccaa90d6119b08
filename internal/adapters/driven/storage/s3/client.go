package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/minio/minio-go/v7"

	"github.com/custodia-labs/receiptsync/internal/core/domain"
)

// objectStore is the narrow set of bucket operations used by the backend.
// minioObjects implements it; tests substitute a fake.
type objectStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key, contentType string, data []byte) error
	Exists(ctx context.Context, key string) (bool, error)
}

// minioObjects implements objectStore with minio-go.
type minioObjects struct {
	client *minio.Client
	bucket string
}

// Get implements objectStore.
// Missing keys are reported as domain.ErrNotFound.
func (m *minioObjects) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapError(key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, mapError(key, err)
	}
	return data, nil
}

// Put implements objectStore.
func (m *minioObjects) Put(ctx context.Context, key, contentType string, data []byte) error {
	_, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return mapError(key, err)
	}
	return nil
}

// Exists implements objectStore.
func (m *minioObjects) Exists(ctx context.Context, key string) (bool, error) {
	_, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if err = mapError(key, err); errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// mapError turns a missing key into domain.ErrNotFound and keeps the
// S3 error code in the message otherwise.
func mapError(key string, err error) error {
	resp := minio.ToErrorResponse(err)
	switch {
	case resp.Code == "NoSuchKey", resp.Code == "" && resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", key, domain.ErrNotFound)
	case resp.Code != "":
		return fmt.Errorf("%s: %s: %s", key, resp.Code, resp.Message)
	default:
		return fmt.Errorf("%s: %w", key, err)
	}
}
