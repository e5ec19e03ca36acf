package storage

import (
	"context"
	"io"
)

// ObjectStorage is the object store the sprite mirror writes into.
type ObjectStorage interface {
	// Upload stores an object under key, replacing any existing object
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Exists reports whether an object is stored under key
	Exists(ctx context.Context, key string) (bool, error)

	// GetURL returns the public URL of key
	GetURL(key string) string
}
