package correlation

import (
	"math"

	"statlab/domain/core"
	"statlab/domain/stats"
	"statlab/internal/numeric"
)

// Engine computes Pearson's r and the ordinary least squares line of Y on X.
type Engine struct{}

// NewEngine creates a new correlation engine
func NewEngine() *Engine {
	return &Engine{}
}

// Name returns the engine name
func (e *Engine) Name() string {
	return string(core.KindCorrelation)
}

// Validate checks the paired series preconditions.
func Validate(x, y []float64) error {
	if len(x) != len(y) {
		return core.NewFieldError(core.ErrLengthMismatch, "x,y", "x has %d values, y has %d", len(x), len(y))
	}
	if len(x) < 2 {
		return core.NewFieldError(core.ErrInsufficientData, "x,y", "need at least 2 pairs, got %d", len(x))
	}
	if !numeric.AllFinite(x) || !numeric.AllFinite(y) {
		return core.NewFieldError(core.ErrNonFinite, "x,y", "series contain NaN or Inf")
	}
	return nil
}

// Compute correlates x with y and fits y = intercept + slope·x.
// Zero variance leaves r (and, for x, the slope) NaN with a warning rather than failing.
func (e *Engine) Compute(x, y []float64) (*stats.CorrelationResult, error) {
	if err := Validate(x, y); err != nil {
		return nil, err
	}

	n := len(x)
	mx := numeric.Mean(x)
	my := numeric.Mean(y)
	sxx := numeric.SumSquaredDeviations(x, mx)
	syy := numeric.SumSquaredDeviations(y, my)
	sxy := numeric.CenteredCrossProduct(x, y, mx, my)

	result := &stats.CorrelationResult{
		N:         n,
		MeanX:     mx,
		MeanY:     my,
		VarianceX: sxx / float64(n-1),
		VarianceY: syy / float64(n-1),
		Sxx:       sxx,
		Syy:       syy,
		Sxy:       sxy,
	}
	result.StdDevX = math.Sqrt(result.VarianceX)
	result.StdDevY = math.Sqrt(result.VarianceY)

	denom := math.Sqrt(sxx * syy)
	if denom == 0 {
		result.R = math.NaN()
		result.Warnings = append(result.Warnings, stats.Warning{
			Code:    stats.WarningUndefinedCorrelation,
			Message: "one of the series has zero variance; Pearson's r is undefined",
		})
	} else {
		// rounding can push |r| a hair past 1 for collinear data
		result.R = clamp(sxy/denom, -1, 1)
	}
	result.RSquared = result.R * result.R

	if sxx == 0 {
		result.Slope = math.NaN()
		result.Warnings = append(result.Warnings, stats.Warning{
			Code:    stats.WarningUndefinedSlope,
			Message: "x has zero variance; the regression slope is undefined",
		})
	} else {
		result.Slope = sxy / sxx
	}
	result.Intercept = my - result.Slope*mx

	return result, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
