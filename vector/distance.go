package vector

import (
	"errors"
	"fmt"
	"math"

	"github.com/viant/vec/search"
)

// ErrZeroVector is returned when a vector has no direction (zero magnitude)
// or contains non-finite components.
var ErrZeroVector = errors.New("vector: zero or non-finite vector")

// Dot returns the inner product of a and b accumulated in float64. The
// caller guarantees equal lengths.
func Dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

// Magnitude returns the L2 norm of v.
func Magnitude(v []float32) float32 {
	if len(v) == 0 {
		return 0
	}
	return search.Float32s(v).Magnitude()
}

// Normalize returns a unit-length copy of v. It fails with ErrZeroVector
// when v is empty, all zero, or holds NaN/Inf values.
func Normalize(v []float32) ([]float32, error) {
	for _, x := range v {
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return nil, ErrZeroVector
		}
	}
	m := Magnitude(v)
	if m == 0 || math.IsNaN(float64(m)) || math.IsInf(float64(m), 0) {
		return nil, ErrZeroVector
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / m
	}
	return out, nil
}

// CosineSimilarity computes the cosine similarity between two vectors. It
// returns an error if the vectors have different lengths or if either vector
// has zero magnitude.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector: cosine similarity dimension mismatch: %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("vector: cosine similarity on empty vectors")
	}
	var dot, na2, nb2 float64
	for i := range a {
		va := float64(a[i])
		vb := float64(b[i])
		dot += va * vb
		na2 += va * va
		nb2 += vb * vb
	}
	if na2 == 0 || nb2 == 0 {
		return 0, fmt.Errorf("vector: cosine similarity with zero-magnitude vector")
	}
	return dot / (math.Sqrt(na2) * math.Sqrt(nb2)), nil
}
