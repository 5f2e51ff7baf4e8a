package repository

import (
	"context"
	"io"
	"time"
)

// ObjectStorage defines the interface for media file storage.
// Implementations should be provided by the infrastructure layer (e.g. MinIO, S3).
type ObjectStorage interface {
	// Upload stores a media file under the given key
	// (e.g. "videos/{video_id}/raw/{name}").
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// GeneratePresignedDownloadURL creates a presigned URL for serving a
	// stored media file. The URL is valid for the specified duration.
	GeneratePresignedDownloadURL(ctx context.Context, key string, expiry time.Duration) (string, error)

	// Delete removes a stored media file.
	Delete(ctx context.Context, key string) error

	// Exists checks whether a media file is stored under the key.
	Exists(ctx context.Context, key string) (bool, error)
}
