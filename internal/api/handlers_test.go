package api

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statlab/adapters/rng"
	"statlab/adapters/stats/pca"
	"statlab/app"
	"statlab/internal"
	"statlab/internal/batch"
)

func newTestRouter() *gin.Engine {
	logger := internal.NewLogger(internal.LogLevelError).WithOutput(log.New(&bytes.Buffer{}, "", 0))
	svc := app.NewAnalysisService(rng.NewStreamAdapter(), pca.DefaultOptions(), 42, logger)
	h := NewAnalysisHandler(svc, batch.NewRunner(svc, 4, logger), logger)
	return NewRouter(h, gin.TestMode, logger)
}

func post(t *testing.T, r http.Handler, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded), w.Body.String())
	}
	return w, decoded
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"pca"`)
}

func TestAnova(t *testing.T) {
	w, body := post(t, newTestRouter(), "/api/v1/anova", `{"groups": [[1,2,3],[4,5,6]], "labels": ["low", "high"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, "anova", body["kind"])
	assert.NotEmpty(t, body["id"])
	result := body["anova"].(map[string]interface{})
	assert.InDelta(t, 13.5, result["f"].(float64), 1e-12)
	groups := result["groups"].([]interface{})
	assert.Equal(t, "high", groups[1].(map[string]interface{})["label"])
}

func TestAnova_TextAndInfiniteF(t *testing.T) {
	w, body := post(t, newTestRouter(), "/api/v1/anova", `{"text": "1 1 1\n2 2 2"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	result := body["anova"].(map[string]interface{})
	assert.Equal(t, "Infinity", result["f"])
	assert.NotEmpty(t, result["warnings"])
}

func TestAnova_InvalidInput(t *testing.T) {
	w, body := post(t, newTestRouter(), "/api/v1/anova", `{"groups": [[1,2,3]]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	errBody := body["error"].(map[string]interface{})
	assert.Equal(t, "INVALID_INPUT", errBody["code"])
	assert.Contains(t, errBody["message"], "at least 2 groups")
}

func TestMalformedBody(t *testing.T) {
	w, body := post(t, newTestRouter(), "/api/v1/correlation", `{"x": [1,2`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", body["error"].(map[string]interface{})["code"])
}

func TestChiSquare_Text(t *testing.T) {
	w, body := post(t, newTestRouter(), "/api/v1/chisquare", `{"text": "10 20\n30 40"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := body["chisquare"].(map[string]interface{})
	assert.Equal(t, float64(1), result["df"])
	assert.InDelta(t, 0.79365, result["chi_square"].(float64), 1e-4)
}

func TestChiSquare_RaggedText(t *testing.T) {
	w, _ := post(t, newTestRouter(), "/api/v1/chisquare", `{"text": "10 20\n30"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCorrelation_UndefinedIsNull(t *testing.T) {
	w, body := post(t, newTestRouter(), "/api/v1/correlation", `{"x_text": "2, 2, 2", "y_text": "1 2 3"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := body["correlation"].(map[string]interface{})
	assert.Contains(t, result, "r")
	assert.Nil(t, result["r"])
	assert.Nil(t, result["slope"])
}

func TestCorrelation_Markdown(t *testing.T) {
	w, _ := post(t, newTestRouter(), "/api/v1/correlation?format=markdown", `{"x": [1,2,3], "y": [2,4,6]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, w.Body.String(), "| r | 1 |")
}

func TestPCA_SeededAndHTML(t *testing.T) {
	r := newTestRouter()
	body := `{"text": "2.5 2.4\n0.5 0.7\n2.2 2.9\n1.9 2.2\n3.1 3.0", "seed": 9, "variables": ["a", "b"]}`

	_, first := post(t, r, "/api/v1/pca", body)
	_, second := post(t, r, "/api/v1/pca", body)
	assert.Equal(t, first["pca"], second["pca"])

	w, _ := post(t, r, "/api/v1/pca?format=html", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<table>")
	assert.Contains(t, w.Body.String(), "<td>a</td>")
}

func TestBatch(t *testing.T) {
	doc := "jobs:\n  - name: one\n    kind: correlation\n    x: [1, 2, 3]\n    y: [1, 2, 4]\n  - name: two\n    kind: anova\n    groups: [[1]]\n"
	w, body := post(t, newTestRouter(), "/api/v1/batch", doc)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, float64(1), body["failed"])
	outcomes := body["outcomes"].([]interface{})
	require.Len(t, outcomes, 2)
	assert.Equal(t, "one", outcomes[0].(map[string]interface{})["job"])
	assert.NotEmpty(t, outcomes[1].(map[string]interface{})["error"])
}

func TestBatch_RejectsFileInputs(t *testing.T) {
	w, body := post(t, newTestRouter(), "/api/v1/batch", "jobs:\n  - kind: pca\n    file: /etc/passwd\n")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", body["error"].(map[string]interface{})["code"])
}
