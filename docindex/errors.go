package docindex

import "errors"

var (
	// ErrInvalidInput reports an empty batch, mismatched embedding and
	// chunk counts, a zero-norm vector, or an invalid chunk.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDimensionMismatch reports a query whose dimension differs from the
	// index dimension, usually an embedding model change without a rebuild.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrCorruptArtifact reports artifacts that exist but cannot be read
	// back into a consistent index.
	ErrCorruptArtifact = errors.New("corrupt artifact")
)
