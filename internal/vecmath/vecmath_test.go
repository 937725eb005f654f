package vecmath

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestNormalizeSelfCosineIsOne(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		v := make([]float64, 768)
		for j := range v {
			v[j] = rng.NormFloat64()
		}
		u, err := Normalize(v)
		if err != nil {
			t.Fatalf("Normalize: %v", err)
		}
		got, err := CosineSimilarity(u, u)
		if err != nil {
			t.Fatalf("CosineSimilarity: %v", err)
		}
		if math.Abs(got-1) > 1e-9 {
			t.Fatalf("self cosine: want=1 got=%v", got)
		}
		if n := Norm(u); math.Abs(n-1) > 1e-9 {
			t.Fatalf("unit norm: got=%v", n)
		}
	}
}

func TestNormalizeZeroVector(t *testing.T) {
	_, err := Normalize(make([]float64, 768))
	if !errors.Is(err, ErrDegenerateVector) {
		t.Fatalf("want ErrDegenerateVector got=%v", err)
	}
}

func TestNormalizeDoesNotMutate(t *testing.T) {
	v := []float64{3, 4}
	u, err := Normalize(v)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if v[0] != 3 || v[1] != 4 {
		t.Fatalf("input mutated: %v", v)
	}
	if math.Abs(u[0]-0.6) > 1e-12 || math.Abs(u[1]-0.8) > 1e-12 {
		t.Fatalf("unit: got=%v", u)
	}
}

func TestCosineSimilarity(t *testing.T) {
	cases := []struct {
		name string
		a, b []float64
		want float64
		err  error
	}{
		{name: "orthogonal", a: []float64{1, 0}, b: []float64{0, 2}, want: 0},
		{name: "opposite", a: []float64{1, 1}, b: []float64{-2, -2}, want: -1},
		{name: "scaled", a: []float64{1, 2, 3}, b: []float64{2, 4, 6}, want: 1},
		{name: "length mismatch", a: []float64{1, 2}, b: []float64{1, 2, 3}, err: ErrDimensionMismatch},
		{name: "empty", a: nil, b: nil, err: ErrDimensionMismatch},
		{name: "zero", a: []float64{0, 0}, b: []float64{1, 0}, err: ErrDegenerateVector},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CosineSimilarity(tc.a, tc.b)
			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Fatalf("err: want=%v got=%v", tc.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tc.want) > 1e-12 {
				t.Fatalf("cosine: want=%v got=%v", tc.want, got)
			}
		})
	}
}

func TestMeanPool(t *testing.T) {
	got, err := MeanPool([][]float64{{1, 2}, {3, 6}})
	if err != nil {
		t.Fatalf("MeanPool: %v", err)
	}
	if got[0] != 2 || got[1] != 4 {
		t.Fatalf("mean: got=%v", got)
	}

	if _, err := MeanPool(nil); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("empty: want ErrEmptyInput got=%v", err)
	}
	if _, err := MeanPool([][]float64{{1, 2}, {1}}); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("ragged: want ErrDimensionMismatch got=%v", err)
	}
}
