package match

import (
	"errors"
	"math"
	"testing"
)

const simEpsilon = 1e-6

func TestCosineSimilarityIdentical(t *testing.T) {
	tests := []struct {
		name string
		v    Vector
	}{
		{"unit", Vector{1, 0, 0}},
		{"unnormalized", Vector{3, 4, 12}},
		{"negative components", Vector{-1, 2, -3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim, err := CosineSimilarity(tt.v, tt.v)
			if err != nil {
				t.Fatalf("CosineSimilarity() error: %v", err)
			}
			if math.Abs(sim-1.0) > simEpsilon {
				t.Errorf("CosineSimilarity(v, v) = %v, want 1.0", sim)
			}
		})
	}
}

func TestCosineSimilarityOrthogonal(t *testing.T) {
	a := Vector{1, 0, 0}
	b := Vector{0, 1, 0}

	sim, err := CosineSimilarity(a, b)
	if err != nil {
		t.Fatalf("CosineSimilarity() error: %v", err)
	}
	if math.Abs(sim) > simEpsilon {
		t.Errorf("CosineSimilarity(orthogonal) = %v, want 0.0", sim)
	}
}

func TestCosineSimilarityOpposite(t *testing.T) {
	a := Vector{2, 1}
	b := Vector{-2, -1}

	sim, err := CosineSimilarity(a, b)
	if err != nil {
		t.Fatalf("CosineSimilarity() error: %v", err)
	}
	if math.Abs(sim-(-1.0)) > simEpsilon {
		t.Errorf("CosineSimilarity(opposite) = %v, want -1.0", sim)
	}
}

func TestCosineSimilaritySymmetric(t *testing.T) {
	a := Vector{0.3, -0.7, 0.12, 0.99}
	b := Vector{-0.1, 0.5, 0.42, -0.2}

	ab, err := CosineSimilarity(a, b)
	if err != nil {
		t.Fatalf("CosineSimilarity(a, b) error: %v", err)
	}
	ba, err := CosineSimilarity(b, a)
	if err != nil {
		t.Fatalf("CosineSimilarity(b, a) error: %v", err)
	}
	if ab != ba {
		t.Errorf("similarity not symmetric: %v != %v", ab, ba)
	}
}

func TestCosineSimilarityIgnoresMagnitude(t *testing.T) {
	a := Vector{1, 2, 3}
	scaled := Vector{10, 20, 30}

	sim, err := CosineSimilarity(a, scaled)
	if err != nil {
		t.Fatalf("CosineSimilarity() error: %v", err)
	}
	if math.Abs(sim-1.0) > simEpsilon {
		t.Errorf("CosineSimilarity(v, 10v) = %v, want 1.0", sim)
	}
}

func TestCosineSimilarityClamped(t *testing.T) {
	// Nearly parallel vectors can overshoot 1.0 in floating point.
	a := make(Vector, 512)
	b := make(Vector, 512)
	for i := range a {
		a[i] = 0.0441941738
		b[i] = 0.0441941738
	}

	sim, err := CosineSimilarity(a, b)
	if err != nil {
		t.Fatalf("CosineSimilarity() error: %v", err)
	}
	if sim > 1.0 || sim < -1.0 {
		t.Errorf("CosineSimilarity() = %v, outside [-1, 1]", sim)
	}
}

func TestCosineSimilarityDimensionMismatch(t *testing.T) {
	_, err := CosineSimilarity(Vector{1, 2, 3}, Vector{1, 2})
	var mismatch *DimensionMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("error = %v, want DimensionMismatchError", err)
	}
}

func TestCosineSimilarityDegenerate(t *testing.T) {
	tests := []struct {
		name string
		a    Vector
		b    Vector
	}{
		{"zero first", Vector{0, 0, 0}, Vector{1, 2, 3}},
		{"zero second", Vector{1, 2, 3}, Vector{0, 0, 0}},
		{"both zero", Vector{0, 0}, Vector{0, 0}},
		{"both empty", Vector{}, Vector{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CosineSimilarity(tt.a, tt.b)
			if !errors.Is(err, ErrDegenerateVector) {
				t.Errorf("error = %v, want ErrDegenerateVector", err)
			}
		})
	}
}
