package config

import (
	"testing"

	"statlab/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "UI_PORT", "GIN_MODE", "LOG_LEVEL", "PCA_SEED", "PCA_COMPONENTS", "PCA_MAX_ITER", "PCA_TOLERANCE", "BATCH_CONCURRENCY"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("PCA_SEED", "42")
	t.Setenv("PCA_COMPONENTS", "3")
	t.Setenv("PCA_TOLERANCE", "1e-9")
	t.Setenv("BATCH_CONCURRENCY", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, int64(42), cfg.PCA.Seed)
	assert.Equal(t, 3, cfg.PCA.Components)
	assert.InDelta(t, 1e-9, cfg.PCA.Tolerance, 1e-15)
	assert.Equal(t, 4, cfg.Batch.Concurrency, "unparseable values fall back to the default")
}

func TestLoadRejectsInvalidPCASettings(t *testing.T) {
	t.Setenv("PCA_COMPONENTS", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}
