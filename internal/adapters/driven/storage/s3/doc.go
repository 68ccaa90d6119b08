// Package s3 implements the storage backend on S3-compatible object storage
// (AWS S3 or MinIO) using minio-go.
package s3
