package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	// Stores return it when two creators race on the same key; the loser
	// re-reads the existing entry.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown service or document format.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrNoContent indicates a playground has no chunks to search or plot.
	ErrNoContent = errors.New("playground has no content")

	// ErrProviderFailure indicates an embedding or vector store call failed or timed out.
	ErrProviderFailure = errors.New("provider failure")

	// ErrProjectionFailure indicates the projection could not be fitted.
	ErrProjectionFailure = errors.New("projection failure")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// IsClientError reports whether err was caused by the caller.
// Everything else is treated as a server-side failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrNoContent) ||
		errors.Is(err, ErrUnsupportedType)
}
