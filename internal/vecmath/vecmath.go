// Package vecmath holds the vector primitives used for embedding similarity.
package vecmath

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrDegenerateVector is returned for zero-norm input; such a vector has no direction.
	ErrDegenerateVector = errors.New("degenerate vector: zero norm")
	// ErrDimensionMismatch is returned when vectors differ in length or are empty.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrEmptyInput is returned by MeanPool when given no vectors.
	ErrEmptyInput = errors.New("no vectors to pool")
)

// Norm returns the L2 norm of v.
func Norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Normalize returns v scaled to unit length. v is not modified.
func Normalize(v []float64) ([]float64, error) {
	n := Norm(v)
	if n == 0 || math.IsNaN(n) {
		return nil, ErrDegenerateVector
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x / n
	}
	return out, nil
}

// Dot returns the inner product of a and b, which must share a non-zero length.
func Dot(a, b []float64) (float64, error) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot, nil
}

// CosineSimilarity returns the cosine of the angle between a and b, clamped to [-1, 1].
func CosineSimilarity(a, b []float64) (float64, error) {
	dot, err := Dot(a, b)
	if err != nil {
		return 0, err
	}
	na, nb := Norm(a), Norm(b)
	if na == 0 || nb == 0 {
		return 0, ErrDegenerateVector
	}
	return clamp(dot / (na * nb)), nil
}

// UnitCosine is CosineSimilarity for inputs already normalized by Normalize.
func UnitCosine(a, b []float64) (float64, error) {
	dot, err := Dot(a, b)
	if err != nil {
		return 0, err
	}
	return clamp(dot), nil
}

// MeanPool averages equal-length vectors element-wise.
func MeanPool(vs [][]float64) ([]float64, error) {
	if len(vs) == 0 {
		return nil, ErrEmptyInput
	}
	dim := len(vs[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: empty vector at 0", ErrDimensionMismatch)
	}
	sum := make([]float64, dim)
	for i, v := range vs {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has %d dims, want %d", ErrDimensionMismatch, i, len(v), dim)
		}
		for j, x := range v {
			sum[j] += x
		}
	}
	n := float64(len(vs))
	for j := range sum {
		sum[j] /= n
	}
	return sum, nil
}

// FromFloat32 widens v to float64. A nil input stays nil.
func FromFloat32(v []float32) []float64 {
	if v == nil {
		return nil
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

func clamp(x float64) float64 {
	switch {
	case x > 1:
		return 1
	case x < -1:
		return -1
	default:
		return x
	}
}
