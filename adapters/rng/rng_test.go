package rng

import (
	"context"
	"testing"

	"statlab/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.RNGPort = (*StreamAdapter)(nil)

func draw(t *testing.T, name string, seed int64) []float64 {
	t.Helper()
	r, err := NewStreamAdapter().Stream(context.Background(), name, seed)
	require.NoError(t, err)
	out := make([]float64, 5)
	for i := range out {
		out[i] = r.Float64()
	}
	return out
}

func TestStream_SeededIsReproducible(t *testing.T) {
	assert.Equal(t, draw(t, "pca", 42), draw(t, "pca", 42))
	assert.NotEqual(t, draw(t, "pca", 42), draw(t, "pca", 43))
	assert.NotEqual(t, draw(t, "pca", 42), draw(t, "batch/job-1", 42))
}

func TestStream_ZeroSeedUsesEntropy(t *testing.T) {
	assert.NotEqual(t, draw(t, "pca", 0), draw(t, "pca", 0))
}

func TestStream_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewStreamAdapter().Stream(ctx, "pca", 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDeriveSeed(t *testing.T) {
	assert.Equal(t, int64(7), DeriveSeed("", 7))
	assert.Equal(t, DeriveSeed("pca", 7), DeriveSeed("pca", 7))
	assert.NotEqual(t, DeriveSeed("pca", 7), DeriveSeed("anova", 7))
}
