package storage

import (
	"context"
	"io"
	"time"
)

// ObjectStore is the contract the upload flow depends on: write bytes
// under a caller-chosen key, get back a durable URL. A StoredFile record
// must never reference a key whose Write has not succeeded.
type ObjectStore interface {
	// Write stores content from the reader under the given key.
	// The size parameter is the expected content size (-1 if unknown).
	Write(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Read retrieves content for the given key.
	// The caller is responsible for closing the returned ReadCloser.
	Read(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the content with the given key.
	Delete(ctx context.Context, key string) error

	// Exists checks if content with the given key exists.
	Exists(ctx context.Context, key string) (bool, error)

	// URL returns a URL for accessing the content. For S3 this is a
	// public or presigned URL; for local storage a serving path.
	URL(ctx context.Context, key string, expires time.Duration) (string, error)
}
