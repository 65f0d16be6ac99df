package ports

import (
	"context"

	"statlab/domain/stats"
)

// AnalysisRunner runs the statistical procedures and wraps each result in an
// Analysis envelope. Invalid input is reported as an error wrapping
// core.ErrInvalidInput; degenerate but valid input yields warnings instead.
type AnalysisRunner interface {
	RunAnova(ctx context.Context, groups []stats.Group) (*stats.Analysis, error)
	RunChiSquare(ctx context.Context, table [][]float64) (*stats.Analysis, error)
	RunCorrelation(ctx context.Context, x, y []float64) (*stats.Analysis, error)
	RunPCA(ctx context.Context, data [][]float64) (*stats.Analysis, error)
	RunPCARequest(ctx context.Context, req PCARequest) (*stats.Analysis, error)
}

// PCARequest parameterises one PCA run. Zero fields fall back to the runner's
// defaults: stream "pca", the configured seed and component count.
type PCARequest struct {
	Data       [][]float64 // observations × variables
	Stream     string      // RNG stream name
	Seed       int64
	Components int
}
