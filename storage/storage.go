package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by ReadText when no blob is stored under key
var ErrNotFound = errors.New("blob not found")

// Well known blob keys
const (
	RatesKey       = "rates"
	PreferencesKey = "preferences"
)

// BlobStore interface describes durable
// key-value storage for text blobs
type BlobStore interface {
	// ReadText returns the blob stored under key
	// or ErrNotFound
	ReadText(ctx context.Context, key string) (string, error)

	// WriteText replaces the blob under key as a whole.
	// A failed write leaves no partial artifact behind.
	WriteText(ctx context.Context, key, text string) error

	// Delete removes the blob, deleting a missing
	// key is not an error
	Delete(ctx context.Context, key string) error

	// Exists reports whether a blob is stored under key
	Exists(ctx context.Context, key string) (bool, error)
}
