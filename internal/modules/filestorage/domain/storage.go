package domain

import (
	"context"
	"io"
	"time"
)

// BlobStorage abstracts where attachment bytes live. Backed by S3 or
// MinIO in deployments, by the local filesystem in development.
type BlobStorage interface {
	// Upload stores the content under key and returns a URL for it.
	Upload(ctx context.Context, key string, content io.Reader, contentType string) (string, error)

	// Delete removes the object. Deleting a missing key is an error.
	Delete(ctx context.Context, key string) error

	// PresignedURL returns a time-limited URL for viewing the object inline.
	PresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error)

	// PresignedDownloadURL returns a time-limited URL that forces a download
	// with the given filename.
	PresignedDownloadURL(ctx context.Context, key, filename string, expiration time.Duration) (string, error)
}
