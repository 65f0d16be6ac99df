package stats

import (
	"fmt"
	"math"
	"time"

	"statlab/domain/core"
)

// WarningCode represents structured warning types
type WarningCode string

const (
	WarningZeroExpected         WarningCode = "ZERO_EXPECTED_FREQUENCY" // E = 0, cell divided by 1 instead
	WarningUndefinedCorrelation WarningCode = "UNDEFINED_CORRELATION"   // Sxx·Syy = 0
	WarningUndefinedSlope       WarningCode = "UNDEFINED_SLOPE"         // Sxx = 0
	WarningZeroWithinVariance   WarningCode = "ZERO_WITHIN_VARIANCE"    // MSW = 0, F non-finite
	WarningZeroTotalVariance    WarningCode = "ZERO_TOTAL_VARIANCE"     // trace(C) = 0
	WarningNotConverged         WarningCode = "NOT_CONVERGED"           // iteration cap reached
)

// CellRef addresses one cell of a contingency table (zero-based).
type CellRef struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// Warning flags a degenerate but mathematically valid outcome.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
	Cell    *CellRef    `json:"cell,omitempty"`
}

func (w Warning) String() string {
	if w.Cell != nil {
		return fmt.Sprintf("%s at (%d,%d): %s", w.Code, w.Cell.Row, w.Cell.Column, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}

// Group is one labelled sample of a one-way design.
type Group struct {
	Label  string    `json:"label" yaml:"label"`
	Values []float64 `json:"values" yaml:"values"`
}

// GroupSummary describes one ANOVA group.
type GroupSummary struct {
	Label  string  `json:"label"`
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"` // sample (n-1); NaN for a single observation
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
}

// AnovaResult is the one-way ANOVA decomposition.
type AnovaResult struct {
	GrandMean  float64        `json:"grand_mean"`
	SSB        float64        `json:"ssb"`
	SSW        float64        `json:"ssw"`
	SST        float64        `json:"sst"`
	MSB        float64        `json:"msb"`
	MSW        float64        `json:"msw"`
	F          float64        `json:"f"`
	EtaSquared float64        `json:"eta_squared"`
	DFBetween  int            `json:"df_between"`
	DFWithin   int            `json:"df_within"`
	DFTotal    int            `json:"df_total"`
	Groups     []GroupSummary `json:"groups"`
	Warnings   []Warning      `json:"warnings,omitempty"`
}

// ChiSquareResult is the test of independence on an R×C table.
type ChiSquareResult struct {
	Observed   [][]float64 `json:"observed"`
	Expected   [][]float64 `json:"expected"`
	RowTotals  []float64   `json:"row_totals"`
	ColTotals  []float64   `json:"col_totals"`
	GrandTotal float64     `json:"grand_total"`
	ChiSquare  float64     `json:"chi_square"`
	DF         int         `json:"df"`
	CramersV   float64     `json:"cramers_v"`
	Warnings   []Warning   `json:"warnings,omitempty"`
}

// ZeroExpectedCells lists the cells whose expected frequency was zero.
func (r ChiSquareResult) ZeroExpectedCells() []CellRef {
	var cells []CellRef
	for _, w := range r.Warnings {
		if w.Code == WarningZeroExpected && w.Cell != nil {
			cells = append(cells, *w.Cell)
		}
	}
	return cells
}

// CorrelationResult holds Pearson's r and the OLS line y = Intercept + Slope·x.
type CorrelationResult struct {
	N         int       `json:"n"`
	MeanX     float64   `json:"mean_x"`
	MeanY     float64   `json:"mean_y"`
	VarianceX float64   `json:"variance_x"`
	VarianceY float64   `json:"variance_y"`
	StdDevX   float64   `json:"std_dev_x"`
	StdDevY   float64   `json:"std_dev_y"`
	Sxx       float64   `json:"sxx"`
	Syy       float64   `json:"syy"`
	Sxy       float64   `json:"sxy"`
	R         float64   `json:"r"`
	RSquared  float64   `json:"r_squared"`
	Slope     float64   `json:"slope"`
	Intercept float64   `json:"intercept"`
	Warnings  []Warning `json:"warnings,omitempty"`
}

// Predict evaluates the fitted regression line at x.
func (r CorrelationResult) Predict(x float64) float64 {
	return r.Intercept + r.Slope*x
}

// Component is one eigenpair of the covariance matrix.
type Component struct {
	Eigenvalue float64   `json:"eigenvalue"`
	Vector     []float64 `json:"vector"`
	Explained  float64   `json:"explained"`
	Iterations int       `json:"iterations"`
	Converged  bool      `json:"converged"`
}

// PCAResult is the principal component decomposition of an observation matrix.
type PCAResult struct {
	Means         []float64   `json:"means"`
	Covariance    [][]float64 `json:"covariance"`
	TotalVariance float64     `json:"total_variance"`
	Components    []Component `json:"components"`
	Cumulative    []float64   `json:"cumulative"`
	Loadings      [][]float64 `json:"loadings"` // variables × k
	Scores        [][]float64 `json:"scores"`   // observations × k
	Warnings      []Warning   `json:"warnings,omitempty"`
}

// Explained returns the explained-variance proportion of each component.
func (r PCAResult) Explained() []float64 {
	out := make([]float64, len(r.Components))
	for i, c := range r.Components {
		out[i] = c.Explained
	}
	return out
}

// Score2D returns observation i in the plane of the first two components.
// With a single component the second coordinate is zero.
func (r PCAResult) Score2D(i int) (float64, float64) {
	row := r.Scores[i]
	var x, y float64
	if len(row) > 0 {
		x = row[0]
	}
	if len(row) > 1 {
		y = row[1]
	}
	return x, y
}

// Loading2D returns the biplot arrow of variable j.
func (r PCAResult) Loading2D(j int) (float64, float64) {
	row := r.Loadings[j]
	var x, y float64
	if len(row) > 0 {
		x = row[0]
	}
	if len(row) > 1 {
		y = row[1]
	}
	return x, y
}

// Analysis wraps one engine invocation with its identity and timing.
// Exactly one of the result pointers is set, matching Kind.
type Analysis struct {
	ID          core.ID            `json:"id"`
	Kind        core.AnalysisKind  `json:"kind"`
	InputHash   core.Hash          `json:"input_hash"`
	StartedAt   time.Time          `json:"started_at"`
	Elapsed     time.Duration      `json:"elapsed_ns"`
	Anova       *AnovaResult       `json:"anova,omitempty"`
	ChiSquare   *ChiSquareResult   `json:"chisquare,omitempty"`
	Correlation *CorrelationResult `json:"correlation,omitempty"`
	PCA         *PCAResult         `json:"pca,omitempty"`
}

// Warnings returns the warnings of whichever result is set.
func (a *Analysis) Warnings() []Warning {
	switch {
	case a.Anova != nil:
		return a.Anova.Warnings
	case a.ChiSquare != nil:
		return a.ChiSquare.Warnings
	case a.Correlation != nil:
		return a.Correlation.Warnings
	case a.PCA != nil:
		return a.PCA.Warnings
	}
	return nil
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
