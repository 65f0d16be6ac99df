package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.InDelta(t, 2.5, Mean([]float64{1, 2, 3, 4}), 1e-12)
	assert.InDelta(t, -1, Mean([]float64{-1}), 1e-12)
	assert.True(t, math.IsNaN(Mean(nil)))
}

func TestSumSquaredDeviations(t *testing.T) {
	xs := []float64{1, 2, 3, 4}
	assert.InDelta(t, 5, SumSquaredDeviations(xs, Mean(xs)), 1e-12)
	assert.InDelta(t, 0, SumSquaredDeviations([]float64{7, 7, 7}, 7), 1e-12)
}

func TestCenteredCrossProduct(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	y := []float64{2, 4, 6, 8}
	assert.InDelta(t, 10, CenteredCrossProduct(x, y, Mean(x), Mean(y)), 1e-12)
	assert.InDelta(t, -10, CenteredCrossProduct(x, []float64{8, 6, 4, 2}, 2.5, 5), 1e-12)
	assert.Panics(t, func() { CenteredCrossProduct([]float64{1}, []float64{1, 2}, 0, 0) })
}

func TestNormAndNormalize(t *testing.T) {
	v := []float64{3, 4}
	assert.InDelta(t, 5, Norm(v), 1e-12)

	u := Normalize(v)
	assert.InDelta(t, 0.6, u[0], 1e-12)
	assert.InDelta(t, 0.8, u[1], 1e-12)
	assert.InDelta(t, 1, Norm(u), 1e-12)
	assert.Equal(t, []float64{3, 4}, v, "input must not be mutated")
}

func TestNormalizeZeroVector(t *testing.T) {
	z := Normalize([]float64{0, 0, 0})
	assert.Equal(t, []float64{0, 0, 0}, z)
	for _, x := range z {
		assert.False(t, math.IsNaN(x))
	}
}

func TestDotAndSum(t *testing.T) {
	assert.InDelta(t, 32, Dot([]float64{1, 2, 3}, []float64{4, 5, 6}), 1e-12)
	assert.InDelta(t, 6, Sum([]float64{1, 2, 3}), 1e-12)
}

func TestAllFinite(t *testing.T) {
	assert.True(t, AllFinite([]float64{1, -2, 0}))
	assert.False(t, AllFinite([]float64{1, math.NaN()}))
	assert.False(t, AllFinite([]float64{math.Inf(-1)}))
}
