// Package pca extracts the leading principal components of an observation
// matrix by power iteration on its covariance matrix, deflating each found
// component (Hotelling) before solving for the next.
package pca

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/mat"

	"statlab/domain/core"
	"statlab/domain/stats"
	"statlab/internal/numeric"
)

const (
	DefaultComponents    = 2
	DefaultMaxIterations = 1000
	DefaultTolerance     = 1e-6
)

// Options tunes the solver. Zero fields take the defaults.
type Options struct {
	Components    int
	MaxIterations int
	Tolerance     float64
}

// DefaultOptions returns the biplot-oriented defaults (2 components, 1000 iterations, 1e-6).
func DefaultOptions() Options {
	return Options{
		Components:    DefaultComponents,
		MaxIterations: DefaultMaxIterations,
		Tolerance:     DefaultTolerance,
	}
}

func (o Options) withDefaults() Options {
	if o.Components <= 0 {
		o.Components = DefaultComponents
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if !(o.Tolerance > 0) {
		o.Tolerance = DefaultTolerance
	}
	return o
}

// Engine runs principal component analysis. It holds no mutable state; the
// random source for the start vectors is supplied per call.
type Engine struct {
	opts Options
}

// NewEngine creates a PCA engine with the given options
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts.withDefaults()}
}

// Name returns the engine name
func (e *Engine) Name() string {
	return string(core.KindPCA)
}

// Options returns the effective solver options.
func (e *Engine) Options() Options {
	return e.opts
}

// Validate checks that data has at least 2 observations, at least 1 variable,
// consistent row lengths and only finite values.
func Validate(data [][]float64) error {
	if len(data) < 2 {
		return core.NewFieldError(core.ErrInsufficientData, "matrix", "need at least 2 observations, got %d", len(data))
	}
	p := len(data[0])
	if p < 1 {
		return core.NewFieldError(core.ErrEmptyInput, "matrix", "observations have no variables")
	}
	for i, row := range data {
		if len(row) != p {
			return core.NewFieldError(core.ErrRaggedMatrix, "matrix", "row %d has %d columns, want %d", i+1, len(row), p)
		}
		if !numeric.AllFinite(row) {
			return core.NewFieldError(core.ErrNonFinite, "matrix", "row %d contains NaN or Inf", i+1)
		}
	}
	return nil
}

// Compute decomposes data (rows = observations, columns = variables) into
// k = min(Components, p) components. rng seeds the start vectors; a nil rng is
// replaced by a generator seeded from the clock, so pass a seeded one for
// reproducible output.
func (e *Engine) Compute(data [][]float64, rng *rand.Rand) (*stats.PCAResult, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	n, p := len(data), len(data[0])
	k := e.opts.Components
	if p < k {
		k = p
	}

	centered, means := center(data)

	var cov mat.SymDense
	cov.SymOuterK(1/float64(n-1), centered.T())
	totalVariance := mat.Trace(&cov)

	result := &stats.PCAResult{
		Means:         means,
		Covariance:    symToRows(&cov),
		TotalVariance: totalVariance,
		Components:    make([]stats.Component, 0, k),
		Cumulative:    make([]float64, 0, k),
	}
	if totalVariance == 0 {
		result.Warnings = append(result.Warnings, stats.Warning{
			Code:    stats.WarningZeroTotalVariance,
			Message: "every variable is constant; explained-variance ratios are undefined",
		})
	}

	work := mat.NewSymDense(p, nil)
	work.CopySym(&cov)

	var cumulative float64
	for c := 0; c < k; c++ {
		comp := e.powerIteration(work, rng)
		comp.Explained = comp.Eigenvalue / totalVariance
		cumulative += comp.Explained

		if !comp.Converged {
			result.Warnings = append(result.Warnings, stats.Warning{
				Code:    stats.WarningNotConverged,
				Message: fmt.Sprintf("component %d did not converge within %d iterations", c+1, e.opts.MaxIterations),
			})
		}

		result.Components = append(result.Components, comp)
		result.Cumulative = append(result.Cumulative, cumulative)

		// Hotelling deflation: C ← C − λ·vvᵀ
		work.SymRankOne(work, -comp.Eigenvalue, mat.NewVecDense(p, comp.Vector))
	}

	result.Loadings = loadings(result.Components, p)
	result.Scores = project(centered, result.Components)

	return result, nil
}

// powerIteration finds the dominant eigenpair of a, starting from a random unit vector.
func (e *Engine) powerIteration(a *mat.SymDense, rng *rand.Rand) stats.Component {
	p, _ := a.Dims()

	v := mat.NewVecDense(p, numeric.Normalize(startVector(p, rng)))

	var lambda float64
	comp := stats.Component{}
	var w mat.VecDense
	for iter := 1; iter <= e.opts.MaxIterations; iter++ {
		w.MulVec(a, v)
		v = mat.NewVecDense(p, numeric.Normalize(w.RawVector().Data))
		next := mat.Inner(v, a, v)
		comp.Iterations = iter

		if math.Abs(next-lambda) < e.opts.Tolerance {
			lambda = next
			comp.Converged = true
			break
		}
		lambda = next
	}

	comp.Eigenvalue = lambda
	comp.Vector = append([]float64(nil), v.RawVector().Data...)
	return comp
}

// startVector draws each entry uniformly from [-0.5, 0.5) so the start can lie
// in any orthant.
func startVector(p int, rng *rand.Rand) []float64 {
	start := make([]float64, p)
	for i := range start {
		start[i] = rng.Float64() - 0.5
	}
	return start
}

// center subtracts each column mean and returns the centered matrix and the means.
func center(data [][]float64) (*mat.Dense, []float64) {
	n, p := len(data), len(data[0])
	x := mat.NewDense(n, p, nil)
	for i, row := range data {
		x.SetRow(i, row)
	}

	means := make([]float64, p)
	col := make([]float64, n)
	for j := 0; j < p; j++ {
		mat.Col(col, j, x)
		means[j] = numeric.Mean(col)
	}

	x.Apply(func(_, j int, v float64) float64 {
		return v - means[j]
	}, x)
	return x, means
}

// loadings stacks the eigenvectors as columns: variables × k.
func loadings(components []stats.Component, p int) [][]float64 {
	out := make([][]float64, p)
	for i := range out {
		out[i] = make([]float64, len(components))
		for c, comp := range components {
			out[i][c] = comp.Vector[i]
		}
	}
	return out
}

// project expresses each centered observation in component space: Xc · V.
func project(centered *mat.Dense, components []stats.Component) [][]float64 {
	n, p := centered.Dims()
	k := len(components)

	basis := mat.NewDense(p, k, nil)
	for c, comp := range components {
		basis.SetCol(c, comp.Vector)
	}

	var scores mat.Dense
	scores.Mul(centered, basis)

	out := make([][]float64, n)
	for i := range out {
		out[i] = mat.Row(nil, i, &scores)
	}
	return out
}

func symToRows(s *mat.SymDense) [][]float64 {
	p := s.SymmetricDim()
	out := make([][]float64, p)
	for i := range out {
		out[i] = make([]float64, p)
		for j := range out[i] {
			out[i][j] = s.At(i, j)
		}
	}
	return out
}
