package vector

import (
	"errors"
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	c := []float32{1, 0}

	// Orthogonal vectors -> similarity 0
	if sim, err := CosineSimilarity(a, b); err != nil || sim != 0 {
		t.Fatalf("CosineSimilarity(a,b) = %v, %v; want 0, nil", sim, err)
	}

	// Identical vectors -> similarity 1
	if sim, err := CosineSimilarity(a, c); err != nil || sim != 1 {
		t.Fatalf("CosineSimilarity(a,c) = %v, %v; want 1, nil", sim, err)
	}

	if _, err := CosineSimilarity(a, []float32{1, 2, 3}); err == nil {
		t.Fatalf("expected dimension mismatch error")
	}
}

func TestNormalize(t *testing.T) {
	got, err := Normalize([]float32{3, 4})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if math.Abs(float64(got[0])-0.6) > 1e-6 || math.Abs(float64(got[1])-0.8) > 1e-6 {
		t.Fatalf("Normalize(3,4) = %v, want [0.6 0.8]", got)
	}
	if m := Magnitude(got); math.Abs(float64(m)-1) > 1e-6 {
		t.Fatalf("magnitude after Normalize = %v, want 1", m)
	}
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	in := []float32{0, 2}
	if _, err := Normalize(in); err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if in[1] != 2 {
		t.Fatalf("input mutated: %v", in)
	}
}

func TestNormalize_Rejects(t *testing.T) {
	nan := float32(math.NaN())
	for _, v := range [][]float32{nil, {0, 0, 0}, {1, nan}} {
		if _, err := Normalize(v); !errors.Is(err, ErrZeroVector) {
			t.Fatalf("Normalize(%v) err = %v, want ErrZeroVector", v, err)
		}
	}
}

func TestDot(t *testing.T) {
	if d := Dot([]float32{1, 2, 3}, []float32{4, 5, 6}); d != 32 {
		t.Fatalf("Dot = %v, want 32", d)
	}
}
