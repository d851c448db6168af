// Package blob defines the artifact object-store boundary used by the build
// worker to upload produced files. Keys are slash-separated paths; the store
// is a flat key-prefix namespace with no directory semantics.
package blob

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Get when no object exists under the key.
var ErrNotFound = errors.New("blob not found")

// Store is a minimal blob store: put bytes under a key, read them back.
type Store interface {
	// Put stores the object under key with the given content type,
	// overwriting any existing object.
	Put(ctx context.Context, key string, r io.Reader, contentType string) error

	// Get returns the object's contents and content type.
	// Returns ErrNotFound if the key does not exist.
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
}
