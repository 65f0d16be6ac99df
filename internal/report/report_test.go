package report

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"statlab/domain/core"
	"statlab/domain/stats"
)

func TestNumber(t *testing.T) {
	assert.Equal(t, "undefined", Number(math.NaN()))
	assert.Equal(t, "∞", Number(math.Inf(1)))
	assert.Equal(t, "-∞", Number(math.Inf(-1)))
	assert.Equal(t, "2.5", Number(2.5))
	assert.Equal(t, "3", Number(3))
	assert.Equal(t, "0.3333", Number(1.0/3))
	assert.Equal(t, "0", Number(-0.00001))
}

func TestAnova_UndefinedF(t *testing.T) {
	res := &stats.AnovaResult{
		GrandMean: 2,
		SSB:       6, SSW: 0, SST: 6,
		MSB: 6, MSW: 0, F: math.Inf(1),
		DFBetween: 1, DFWithin: 2, DFTotal: 3,
		Groups:   []stats.GroupSummary{{Label: "a", N: 2, Mean: 1}, {Label: "b", N: 2, Mean: 3}},
		Warnings: []stats.Warning{{Code: stats.WarningZeroWithinVariance, Message: "no variance within groups"}},
	}

	md := Anova(res)
	assert.Contains(t, md, "F(1, 2) = ∞")
	assert.Contains(t, md, "| Between | 6 | 1 | 6 | ∞ |")
	assert.Contains(t, md, "ZERO_WITHIN_VARIANCE")
}

func TestChiSquare_ShowsExpected(t *testing.T) {
	res := &stats.ChiSquareResult{
		Observed:   [][]float64{{10, 20}, {30, 40}},
		Expected:   [][]float64{{12, 18}, {28, 42}},
		RowTotals:  []float64{30, 70},
		ColTotals:  []float64{40, 60},
		GrandTotal: 100,
		ChiSquare:  0.7937,
		DF:         1,
		CramersV:   0.0891,
	}

	md := ChiSquare(res)
	assert.Contains(t, md, "| R1 | 10 (12) | 20 (18) | 30 |")
	assert.Contains(t, md, "| Total | 40 | 60 | 100 |")
	assert.Contains(t, md, "df = 1")
	assert.NotContains(t, md, "Warnings")
}

func TestCorrelation_Undefined(t *testing.T) {
	res := &stats.CorrelationResult{N: 3, R: math.NaN(), RSquared: math.NaN(), Slope: math.NaN(), Intercept: math.NaN()}
	md := Correlation(res)
	assert.Contains(t, md, "| r | undefined |")
	assert.Contains(t, md, "Undefined linear relationship")
}

func TestStrength(t *testing.T) {
	assert.Equal(t, "Very strong", strength(-0.95))
	assert.Equal(t, "Moderate", strength(0.5))
	assert.Equal(t, "Negligible", strength(0.05))
}

func TestPCA_VariableLabels(t *testing.T) {
	res := &stats.PCAResult{
		Means:         []float64{1, 2},
		TotalVariance: 2,
		Components: []stats.Component{
			{Eigenvalue: 1.5, Explained: 0.75, Iterations: 4, Converged: true},
			{Eigenvalue: 0.5, Explained: 0.25, Iterations: 3, Converged: true},
		},
		Cumulative: []float64{0.75, 1},
		Loadings:   [][]float64{{0.7071, -0.7071}, {0.7071, 0.7071}},
		Scores:     [][]float64{{0, 0}, {1, 1}, {-1, -1}},
	}

	md := PCA(res, []string{"height"})
	assert.Contains(t, md, "| PC1 | 1.5 | 75.00% | 75.00% | 4 |")
	assert.Contains(t, md, "| height | 1 | 0.7071 | -0.7071 |")
	assert.Contains(t, md, "| V2 | 2 |")
	assert.Contains(t, md, "across 2 variables and 3 observations")
}

func TestAnalysis_Footer(t *testing.T) {
	a := &stats.Analysis{
		ID:          core.NewID(),
		Kind:        core.KindCorrelation,
		Elapsed:     2 * time.Millisecond,
		Correlation: &stats.CorrelationResult{N: 2, R: 1, RSquared: 1, Slope: 2, Intercept: 0},
	}
	md := Analysis(a, nil)
	assert.True(t, strings.HasPrefix(md, "## Correlation"))
	assert.Contains(t, md, a.ID.String())
	assert.Contains(t, md, "2ms")
}

func TestHTML_RendersTables(t *testing.T) {
	out := string(HTML("## Title\n\n| a | b |\n| --- | --- |\n| 1 | 2 |\n"))
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<td>1</td>")
	assert.Contains(t, out, "Title</h2>")
}

func TestHTML_EscapesLabels(t *testing.T) {
	res := &stats.PCAResult{
		Components: []stats.Component{{Eigenvalue: 2, Explained: 1, Iterations: 3}},
		Cumulative: []float64{1},
		Means:      []float64{0, 0},
		Loadings:   [][]float64{{0.6}, {0.8}},
	}
	md := PCA(res, []string{"<script>alert(1)</script>", "a|b"})
	out := string(HTML(md))

	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "<td>a|b</td>")
	assert.Contains(t, out, "<td>0.6</td>")
}

func TestHTML_SkipsRawHTML(t *testing.T) {
	out := string(HTML("before <img src=x onerror=alert(1)> after\n"))
	assert.NotContains(t, out, "<img")
	assert.Contains(t, out, "before")
}
