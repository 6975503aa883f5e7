// Package storage defines the object storage contract the upload pipeline
// talks to. The MinIO implementation works with any S3-compatible provider
// (MinIO, Alibaba OSS, AWS S3); swap providers by changing the endpoint and
// credentials injected at startup.
package storage

import (
	"context"
	"io"
)

// Storage is the interface for uploading and removing stored objects.
type Storage interface {
	// Upload writes data to the store under the given key with public-read
	// visibility. size must be the exact byte count.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// Delete removes the object identified by key.
	Delete(ctx context.Context, key string) error
	// PublicURL constructs the browser-accessible URL for a given key.
	PublicURL(key string) string
}
