package chisquare

import (
	"fmt"
	"math"

	"statlab/domain/core"
	"statlab/domain/stats"
	"statlab/internal/numeric"
)

// Engine computes expected frequencies and Pearson's chi-square statistic
// for a contingency table under the independence hypothesis.
type Engine struct{}

// NewEngine creates a new chi-square engine
func NewEngine() *Engine {
	return &Engine{}
}

// Name returns the engine name
func (e *Engine) Name() string {
	return string(core.KindChiSquare)
}

// Validate checks that table is at least 2×2, rectangular, finite, non-negative
// and has a positive total.
func Validate(table [][]float64) error {
	if len(table) < 2 {
		return core.NewFieldError(core.ErrInsufficientData, "table", "need at least 2 rows, got %d", len(table))
	}
	cols := len(table[0])
	if cols < 2 {
		return core.NewFieldError(core.ErrInsufficientData, "table", "need at least 2 columns, got %d", cols)
	}
	var total float64
	for i, row := range table {
		if len(row) != cols {
			return core.NewFieldError(core.ErrRaggedMatrix, "table", "row %d has %d columns, want %d", i+1, len(row), cols)
		}
		if !numeric.AllFinite(row) {
			return core.NewFieldError(core.ErrNonFinite, "table", "row %d contains NaN or Inf", i+1)
		}
		for j, v := range row {
			if v < 0 {
				return core.NewFieldError(core.ErrNegativeCount, "table", "cell (%d,%d) is %g", i+1, j+1, v)
			}
		}
		total += numeric.Sum(row)
	}
	if total <= 0 {
		return core.NewFieldError(core.ErrZeroTotal, "table", "grand total is %g", total)
	}
	return nil
}

// Compute runs the test of independence.
//
// A cell whose expected frequency is exactly zero contributes (O−0)²/1 instead of
// dividing by zero, and is reported as a ZERO_EXPECTED_FREQUENCY warning. This is a
// compatibility approximation, not a statistical correction.
func (e *Engine) Compute(table [][]float64) (*stats.ChiSquareResult, error) {
	if err := Validate(table); err != nil {
		return nil, err
	}

	rows, cols := len(table), len(table[0])
	rowTotals := make([]float64, rows)
	colTotals := make([]float64, cols)
	var grandTotal float64
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			rowTotals[i] += table[i][j]
			colTotals[j] += table[i][j]
		}
		grandTotal += rowTotals[i]
	}

	result := &stats.ChiSquareResult{
		Observed:   copyTable(table),
		Expected:   make([][]float64, rows),
		RowTotals:  rowTotals,
		ColTotals:  colTotals,
		GrandTotal: grandTotal,
		DF:         (rows - 1) * (cols - 1),
	}

	var chiSq float64
	for i := 0; i < rows; i++ {
		result.Expected[i] = make([]float64, cols)
		for j := 0; j < cols; j++ {
			expected := rowTotals[i] * colTotals[j] / grandTotal
			result.Expected[i][j] = expected

			observed := table[i][j]
			divisor := expected
			if expected == 0 {
				divisor = 1
				result.Warnings = append(result.Warnings, stats.Warning{
					Code:    stats.WarningZeroExpected,
					Message: fmt.Sprintf("expected frequency is zero; observed %g divided by 1", observed),
					Cell:    &stats.CellRef{Row: i, Column: j},
				})
			}
			diff := observed - expected
			chiSq += diff * diff / divisor
		}
	}
	result.ChiSquare = chiSq

	minDim := math.Min(float64(rows-1), float64(cols-1))
	result.CramersV = math.Sqrt(chiSq / (grandTotal * minDim))

	return result, nil
}

// ClampNegative returns a copy of table with negative entries replaced by zero.
func ClampNegative(table [][]float64) [][]float64 {
	out := copyTable(table)
	for _, row := range out {
		for j, v := range row {
			if v < 0 {
				row[j] = 0
			}
		}
	}
	return out
}

func copyTable(table [][]float64) [][]float64 {
	out := make([][]float64, len(table))
	for i, row := range table {
		out[i] = append([]float64(nil), row...)
	}
	return out
}
