package storage

import (
	"context"
	"io"
	"time"
)

// ObjectStore is the blob storage capability the marketplace depends on.
// Concrete adapters exist per deployment target; the core never talks to a
// vendor SDK directly.
type ObjectStore interface {
	// Put uploads an object and returns a URL it can be fetched from
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)

	// PresignedGet returns a time-limited download URL for an object
	PresignedGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}
