package driven

import (
	"context"
	"io"
)

// FileStore keeps the original bytes of uploaded documents.
type FileStore interface {
	// Save writes r under key and returns the number of bytes written.
	Save(ctx context.Context, key string, r io.Reader) (int64, error)

	// Open returns a reader for key.
	// Returns domain.ErrNotFound if key does not exist.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
