package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/playground/internal/core/domain"
)

// DocumentService manages uploaded documents.
type DocumentService interface {
	// Upload stores the bytes of a new document and records it.
	// Returns domain.ErrUnsupportedType if no normaliser handles the file.
	Upload(ctx context.Context, name string, r io.Reader) (*domain.Document, error)

	// List returns all documents, newest first.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// Open returns the original bytes of a document.
	// The caller must close the reader.
	Open(ctx context.Context, documentID string) (io.ReadCloser, *domain.Document, error)

	// Delete removes a document, its cached embeddings and every playground
	// that contains it. Returns the IDs of the deleted playgrounds.
	Delete(ctx context.Context, documentID string) ([]string, error)
}
