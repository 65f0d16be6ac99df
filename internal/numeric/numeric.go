// Package numeric holds the small vector kernels shared by every engine.
// Callers guarantee non-empty, equal-length inputs; the kernels do not validate.
package numeric

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean of xs. It is NaN for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return stat.Mean(xs, nil)
}

// SumSquaredDeviations returns Σ(xᵢ−m)².
func SumSquaredDeviations(xs []float64, m float64) float64 {
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return ss
}

// CenteredCrossProduct returns Σ(xᵢ−mx)(yᵢ−my).
func CenteredCrossProduct(x, y []float64, mx, my float64) float64 {
	if len(x) != len(y) {
		panic("numeric: slice length mismatch")
	}
	var s float64
	for i := range x {
		s += (x[i] - mx) * (y[i] - my)
	}
	return s
}

// Norm returns the Euclidean norm of v.
func Norm(v []float64) float64 {
	return floats.Norm(v, 2)
}

// Normalize returns v scaled to unit length in a new slice.
// A zero vector is divided by 1 and so comes back unchanged.
func Normalize(v []float64) []float64 {
	n := Norm(v)
	if n == 0 {
		n = 1
	}
	out := make([]float64, len(v))
	floats.ScaleTo(out, 1/n, v)
	return out
}

// Dot returns the inner product of a and b.
func Dot(a, b []float64) float64 {
	return floats.Dot(a, b)
}

// Sum returns Σxᵢ.
func Sum(xs []float64) float64 {
	return floats.Sum(xs)
}

// AllFinite reports whether every value is neither NaN nor ±Inf.
func AllFinite(xs []float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
