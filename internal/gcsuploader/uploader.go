// Package gcsuploader moves document bytes in and out of Google Cloud
// Storage. Metadata lives in the documents table; this package only handles
// the blobs.
package gcsuploader

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

const uploadTimeout = 2 * time.Minute

// StorageService is the blob storage surface the handlers consume.
type StorageService interface {
	Upload(ctx context.Context, bucket, objectName, contentType string, r io.Reader) (int64, error)
	Fetch(ctx context.Context, gcsURI string) ([]byte, error)
}

// GCSStorageService is the StorageService implementation backed by GCS.
// It assumes Application Default Credentials are configured.
type GCSStorageService struct{}

// NewGCSStorageService creates a GCS-backed storage service.
func NewGCSStorageService() *GCSStorageService {
	return &GCSStorageService{}
}

// Upload streams r into gs://bucket/objectName and returns the byte count.
func (s *GCSStorageService) Upload(ctx context.Context, bucket, objectName, contentType string, r io.Reader) (int64, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return 0, fmt.Errorf("Upload: create storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := client.Bucket(bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType

	written, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		return 0, fmt.Errorf("Upload: copy to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("Upload: finalize upload: %w", err)
	}

	return written, nil
}

// Fetch downloads the file bytes from the given GCS URI
// (gs://bucket/path/to/file).
func (s *GCSStorageService) Fetch(ctx context.Context, gcsURI string) ([]byte, error) {
	bucket, object, err := splitGCSURI(gcsURI)
	if err != nil {
		return nil, fmt.Errorf("Fetch: %w", err)
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("Fetch: create storage client: %w", err)
	}
	defer client.Close()

	rc, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading object %s/%s: %w", bucket, object, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading bytes: %w", err)
	}
	return data, nil
}

func splitGCSURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

// FilenameFromGCSURI extracts the filename from a GCS URI.
// e.g., "gs://bucket/folder/file.pdf" -> "file.pdf"
func FilenameFromGCSURI(uri string) string {
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}
	return path.Base(parts[1])
}
