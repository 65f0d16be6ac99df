package ui

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"statlab/adapters/stats/anova"
	"statlab/domain/core"
	"statlab/domain/stats"
	"statlab/internal/errors"
	"statlab/internal/parsing"
	"statlab/internal/report"
	"statlab/ports"
)

// indexPage is the data for index.html
type indexPage struct {
	Samples Samples
	Active  string
	Error   string
}

// reportPage is the data for report.html
type reportPage struct {
	Title    string
	Kind     core.AnalysisKind
	Body     template.HTML
	Biplot   *Biplot
	Warnings []stats.Warning
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	a.renderTemplate(w, http.StatusOK, "index.html", indexPage{Samples: a.samples})
}

func (a *App) handleReport(w http.ResponseWriter, r *http.Request) {
	kind, err := core.ParseAnalysisKind(chi.URLParam(r, "kind"))
	if err != nil {
		a.renderError(w, r, "", errors.NotFound("analysis "+chi.URLParam(r, "kind")))
		return
	}
	if err := r.ParseForm(); err != nil {
		a.renderError(w, r, kind, errors.WithCode(errors.CodeValidationError, err))
		return
	}

	var (
		analysis  *stats.Analysis
		variables []string
	)
	ctx := r.Context()
	switch kind {
	case core.KindAnova:
		samples, _ := parsing.ParseGroups(r.FormValue("groups"))
		analysis, err = a.runner.RunAnova(ctx, anova.Groups(samples...))
	case core.KindChiSquare:
		var table [][]float64
		if table, err = parsing.ParseContingencyTable(r.FormValue("table")); err == nil {
			analysis, err = a.runner.RunChiSquare(ctx, table)
		}
	case core.KindCorrelation:
		x, _ := parsing.ParseNumberList(r.FormValue("x"))
		y, _ := parsing.ParseNumberList(r.FormValue("y"))
		analysis, err = a.runner.RunCorrelation(ctx, x, y)
	case core.KindPCA:
		var data [][]float64
		if data, err = parsing.ParseMatrix(r.FormValue("matrix")); err == nil {
			variables = splitNames(r.FormValue("variables"))
			seed, _ := strconv.ParseInt(strings.TrimSpace(r.FormValue("seed")), 10, 64)
			analysis, err = a.runner.RunPCARequest(ctx, ports.PCARequest{Data: data, Seed: seed})
		}
	}
	if err != nil {
		a.renderError(w, r, kind, err)
		return
	}

	page := reportPage{
		Title:    title(kind),
		Kind:     kind,
		Body:     template.HTML(report.HTML(report.Analysis(analysis, variables))),
		Warnings: analysis.Warnings(),
	}
	if analysis.PCA != nil {
		page.Biplot = NewBiplot(analysis.PCA, variables)
	}
	a.renderTemplate(w, http.StatusOK, "report.html", page)
}

// renderError shows the form again with the error, keeping the submitted input.
func (a *App) renderError(w http.ResponseWriter, r *http.Request, kind core.AnalysisKind, err error) {
	a.logger.Debug("report %s rejected: %v", kind, err)
	samples := a.samples
	switch kind {
	case core.KindAnova:
		samples.Groups = r.FormValue("groups")
	case core.KindChiSquare:
		samples.Table = r.FormValue("table")
	case core.KindCorrelation:
		samples.X, samples.Y = r.FormValue("x"), r.FormValue("y")
	case core.KindPCA:
		samples.Matrix, samples.Variables = r.FormValue("matrix"), r.FormValue("variables")
	}
	a.renderTemplate(w, errors.HTTPStatus(err), "index.html", indexPage{Samples: samples, Active: string(kind), Error: err.Error()})
}

func title(kind core.AnalysisKind) string {
	switch kind {
	case core.KindAnova:
		return "One-way ANOVA"
	case core.KindChiSquare:
		return "Chi-square test"
	case core.KindCorrelation:
		return "Correlation & regression"
	default:
		return "Principal component analysis"
	}
}

func splitNames(s string) []string {
	var names []string
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' }) {
		names = append(names, strings.TrimSpace(f))
	}
	return names
}
