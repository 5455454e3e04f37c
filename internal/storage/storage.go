// Package storage defines the interface for object storage operations.
// Swap implementations by changing the concrete type injected at startup —
// the MinIO implementation works with any S3-compatible provider (MinIO,
// Cloudflare R2, AWS S3).
package storage

import (
	"context"
	"io"
)

// Storage is the interface for uploading, checking, and removing objects.
type Storage interface {
	// Upload streams data to the store under the given key. metadata is
	// attached as user metadata on the stored object; pass nil for none.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string, metadata map[string]string) error
	// Delete removes an object identified by key. Deleting an absent key
	// is not an error.
	Delete(ctx context.Context, key string) error
	// Exists reports whether an object is present under the given key.
	Exists(ctx context.Context, key string) (bool, error)
	// PublicURL constructs the browser-accessible URL for a given key.
	PublicURL(key string) string
}
