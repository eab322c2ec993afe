package index

// Index defines a vector index over positional rows. Rows are addressed by
// their insertion position so callers can keep metadata in a parallel slice.
type Index interface {
	// Build replaces the index content with the given vectors. All vectors
	// must share one dimension.
	Build(vectors [][]float32) error

	// Query returns up to k row positions with their scores, best first.
	// Higher score means more similar.
	Query(query []float32, k int) (positions []int, scores []float64, err error)

	// Len returns the number of indexed rows.
	Len() int

	// Dimension returns the vector dimension, or 0 for an empty index.
	Dimension() int

	// MarshalBinary serializes the index into a byte slice.
	MarshalBinary() ([]byte, error)

	// UnmarshalBinary reconstructs the index from a serialized byte slice.
	UnmarshalBinary(data []byte) error
}
