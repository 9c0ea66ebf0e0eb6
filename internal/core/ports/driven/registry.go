package driven

import (
	"context"

	"github.com/custodia-labs/playground/internal/core/domain"
)

// NormaliserRegistry selects the appropriate normaliser for a document.
// It maintains a priority-ordered list of normalisers and dispatches
// based on MIME type.
type NormaliserRegistry interface {
	// Normalise extracts text using the best matching normaliser.
	// Returns domain.ErrUnsupportedType if none matches.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// SupportedMIMETypes returns all MIME types that can be normalised.
	SupportedMIMETypes() []string

	// Supports reports whether some normaliser handles mimeType.
	Supports(mimeType string) bool

	// DetectMIMEType guesses a MIME type from a file name and its first bytes.
	DetectMIMEType(name string, head []byte) string
}
