package ui

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statlab/adapters/rng"
	"statlab/adapters/stats/pca"
	"statlab/app"
	"statlab/internal"
	"statlab/internal/testkit"
)

func newTestApp(t *testing.T) http.Handler {
	t.Helper()
	logger := internal.NewLogger(internal.LogLevelError).WithOutput(log.New(&bytes.Buffer{}, "", 0))
	svc := app.NewAnalysisService(rng.NewStreamAdapter(), pca.DefaultOptions(), 1, logger)
	a, err := NewApp(svc, logger)
	require.NoError(t, err)
	return a.Handler()
}

func postForm(h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestIndex_PrefillsSamples(t *testing.T) {
	w := httptest.NewRecorder()
	newTestApp(t).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `action="/report/pca"`)
	assert.Contains(t, body, "V1, V2, V3, V4")
}

func TestStaticFiles(t *testing.T) {
	w := httptest.NewRecorder()
	newTestApp(t).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/style.css", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), ".biplot")
}

func TestReport_Anova(t *testing.T) {
	w := postForm(newTestApp(t), "/report/anova", url.Values{"groups": {"1 2 3\n4 5 6"}})
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<table>")
	assert.Contains(t, body, "F(1, 4) = 13.5")
}

func TestReport_ChiSquareAlias(t *testing.T) {
	w := postForm(newTestApp(t), "/report/chi-square", url.Values{"table": {"10 20\n30 40"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "df = 1")
}

func TestReport_CorrelationUndefined(t *testing.T) {
	w := postForm(newTestApp(t), "/report/correlation", url.Values{"x": {"1, 1, 1"}, "y": {"1, 2, 3"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "undefined")
}

func TestReport_PCABiplot(t *testing.T) {
	form := url.Values{
		"matrix":    {"2.5 2.4\n0.5 0.7\n2.2 2.9\n1.9 2.2\n3.1 3.0"},
		"variables": {"height, weight"},
		"seed":      {"3"},
	}
	w := postForm(newTestApp(t), "/report/pca", form)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<svg")
	assert.Equal(t, 5, strings.Count(body, "<circle"))
	assert.Contains(t, body, ">weight</text>")
}

func TestReport_InvalidInputKeepsForm(t *testing.T) {
	w := postForm(newTestApp(t), "/report/pca", url.Values{"matrix": {"1 2\n3 x"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `role="alert"`)
	assert.Contains(t, body, "3 x")
	assert.Contains(t, body, `<section class="active">`)
}

func TestReport_UnknownKind(t *testing.T) {
	w := postForm(newTestApp(t), "/report/t-test", url.Values{})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReport_PrefilledSamplesRender(t *testing.T) {
	samples := newSamples(testkit.NewDemo(testkit.DefaultGeneratorConfig()))
	h := newTestApp(t)

	forms := map[string]url.Values{
		"anova":       {"groups": {samples.Groups}},
		"chisquare":   {"table": {samples.Table}},
		"correlation": {"x": {samples.X}, "y": {samples.Y}},
		"pca":         {"matrix": {samples.Matrix}, "variables": {samples.Variables}, "seed": {"1"}},
	}
	for kind, form := range forms {
		w := postForm(h, "/report/"+kind, form)
		assert.Equal(t, http.StatusOK, w.Code, kind)
	}
}

func TestReport_EscapesVariableNames(t *testing.T) {
	form := url.Values{
		"matrix":    {"2.5 2.4\n0.5 0.7\n2.2 2.9\n1.9 2.2"},
		"variables": {"<img src=x onerror=alert(1)>, b"},
		"seed":      {"3"},
	}
	w := postForm(newTestApp(t), "/report/pca", form)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "<img")
}
