// Package report renders analysis results as Markdown tables with a one-line
// interpretation, and converts Markdown to HTML for the web surfaces.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"statlab/domain/core"
	"statlab/domain/stats"
)

// Number formats v for display; non-finite values become "undefined" or "∞".
func Number(v float64) string {
	switch {
	case math.IsNaN(v):
		return "undefined"
	case math.IsInf(v, 1):
		return "∞"
	case math.IsInf(v, -1):
		return "-∞"
	}
	s := fmt.Sprintf("%.4f", v)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "-0" {
		s = "0"
	}
	return s
}

// Percent formats a proportion as a percentage.
func Percent(v float64) string {
	if !stats.IsFinite(v) {
		return Number(v)
	}
	return fmt.Sprintf("%.2f%%", v*100)
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "|", `\|`, "<", `\<`, ">", `\>`,
	"*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`,
)

// Text escapes user-supplied labels so they render literally inside Markdown
// table cells.
func Text(s string) string {
	return markdownEscaper.Replace(s)
}

type table struct {
	b *strings.Builder
}

func (t table) header(cols ...string) {
	t.row(cols...)
	seps := make([]string, len(cols))
	for i := range seps {
		seps[i] = "---"
	}
	t.row(seps...)
}

func (t table) row(cells ...string) {
	t.b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
}

func writeWarnings(b *strings.Builder, warnings []stats.Warning) {
	if len(warnings) == 0 {
		return
	}
	b.WriteString("\n**Warnings**\n\n")
	for _, w := range warnings {
		b.WriteString("- " + w.String() + "\n")
	}
}

// Anova renders the ANOVA source table and group summaries.
func Anova(res *stats.AnovaResult) string {
	var b strings.Builder
	b.WriteString("## One-way ANOVA\n\n")

	t := table{&b}
	t.header("Group", "n", "Mean", "SD", "Min", "Max")
	for _, g := range res.Groups {
		t.row(Text(g.Label), fmt.Sprint(g.N), Number(g.Mean), Number(g.StdDev), Number(g.Min), Number(g.Max))
	}

	b.WriteString("\n")
	t.header("Source", "SS", "df", "MS", "F")
	t.row("Between", Number(res.SSB), fmt.Sprint(res.DFBetween), Number(res.MSB), Number(res.F))
	t.row("Within", Number(res.SSW), fmt.Sprint(res.DFWithin), Number(res.MSW), "")
	t.row("Total", Number(res.SST), fmt.Sprint(res.DFTotal), "", "")

	fmt.Fprintf(&b, "\nGrand mean %s. F(%d, %d) = %s, η² = %s.\n",
		Number(res.GrandMean), res.DFBetween, res.DFWithin, Number(res.F), Number(res.EtaSquared))
	writeWarnings(&b, res.Warnings)
	return b.String()
}

// ChiSquare renders observed and expected frequencies side by side.
func ChiSquare(res *stats.ChiSquareResult) string {
	var b strings.Builder
	b.WriteString("## Chi-square test of independence\n\n")

	cols := len(res.ColTotals)
	head := []string{""}
	for j := 0; j < cols; j++ {
		head = append(head, fmt.Sprintf("C%d", j+1))
	}
	head = append(head, "Total")

	t := table{&b}
	t.header(head...)
	for i, row := range res.Observed {
		cells := []string{fmt.Sprintf("R%d", i+1)}
		for j, o := range row {
			cells = append(cells, fmt.Sprintf("%s (%s)", Number(o), Number(res.Expected[i][j])))
		}
		cells = append(cells, Number(res.RowTotals[i]))
		t.row(cells...)
	}
	totals := []string{"Total"}
	for _, c := range res.ColTotals {
		totals = append(totals, Number(c))
	}
	totals = append(totals, Number(res.GrandTotal))
	t.row(totals...)

	fmt.Fprintf(&b, "\nCells show observed (expected). χ² = %s with df = %d, Cramér's V = %s.\n",
		Number(res.ChiSquare), res.DF, Number(res.CramersV))
	writeWarnings(&b, res.Warnings)
	return b.String()
}

// Correlation renders the correlation and fitted line.
func Correlation(res *stats.CorrelationResult) string {
	var b strings.Builder
	b.WriteString("## Correlation and linear regression\n\n")

	t := table{&b}
	t.header("Statistic", "X", "Y")
	t.row("Mean", Number(res.MeanX), Number(res.MeanY))
	t.row("SD", Number(res.StdDevX), Number(res.StdDevY))
	t.row("Sum of squares", Number(res.Sxx), Number(res.Syy))

	b.WriteString("\n")
	t.header("Statistic", "Value")
	t.row("n", fmt.Sprint(res.N))
	t.row("Sxy", Number(res.Sxy))
	t.row("r", Number(res.R))
	t.row("r²", Number(res.RSquared))
	t.row("Slope", Number(res.Slope))
	t.row("Intercept", Number(res.Intercept))

	fmt.Fprintf(&b, "\n%s linear relationship: ŷ = %s + %s·x.\n", strength(res.R), Number(res.Intercept), Number(res.Slope))
	writeWarnings(&b, res.Warnings)
	return b.String()
}

func strength(r float64) string {
	a := math.Abs(r)
	switch {
	case math.IsNaN(r):
		return "Undefined"
	case a >= 0.8:
		return "Very strong"
	case a >= 0.6:
		return "Strong"
	case a >= 0.4:
		return "Moderate"
	case a >= 0.2:
		return "Weak"
	}
	return "Negligible"
}

// PCA renders eigenvalues, explained variance and loadings. variables labels the
// loading rows; missing labels fall back to V1, V2, ...
func PCA(res *stats.PCAResult, variables []string) string {
	var b strings.Builder
	b.WriteString("## Principal component analysis\n\n")

	t := table{&b}
	t.header("Component", "Eigenvalue", "Explained", "Cumulative", "Iterations")
	for i, c := range res.Components {
		t.row(fmt.Sprintf("PC%d", i+1), Number(c.Eigenvalue), Percent(c.Explained), Percent(res.Cumulative[i]), fmt.Sprint(c.Iterations))
	}

	b.WriteString("\n")
	head := []string{"Variable", "Mean"}
	for i := range res.Components {
		head = append(head, fmt.Sprintf("PC%d", i+1))
	}
	t.header(head...)
	for j, row := range res.Loadings {
		name := fmt.Sprintf("V%d", j+1)
		if j < len(variables) && variables[j] != "" {
			name = Text(variables[j])
		}
		cells := []string{name, Number(res.Means[j])}
		for _, l := range row {
			cells = append(cells, Number(l))
		}
		t.row(cells...)
	}

	fmt.Fprintf(&b, "\nTotal variance %s across %d variables and %d observations.\n",
		Number(res.TotalVariance), len(res.Loadings), len(res.Scores))
	writeWarnings(&b, res.Warnings)
	return b.String()
}

// Analysis renders whichever result the envelope carries, headed by its ID.
func Analysis(a *stats.Analysis, variables []string) string {
	var body string
	switch a.Kind {
	case core.KindAnova:
		body = Anova(a.Anova)
	case core.KindChiSquare:
		body = ChiSquare(a.ChiSquare)
	case core.KindCorrelation:
		body = Correlation(a.Correlation)
	case core.KindPCA:
		body = PCA(a.PCA, variables)
	}
	return body + fmt.Sprintf("\n_Analysis %s, computed in %s._\n", a.ID, a.Elapsed)
}

// HTML converts Markdown (with tables) to an HTML fragment. Raw HTML in the
// source is dropped.
func HTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML})
	return markdown.Render(doc, renderer)
}
