package memory

import "errors"

var (
	// ErrDimensionMismatch signals that an embedding does not have the
	// dimension the Index was established with. It points at an inconsistent
	// embedder and is not recoverable by retrying.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmbeddingFailure wraps any error returned by an Embedder.
	// It fails the current request only.
	ErrEmbeddingFailure = errors.New("embedding failed")
)
