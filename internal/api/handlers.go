package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"statlab/adapters/stats/anova"
	"statlab/domain/core"
	"statlab/domain/stats"
	"statlab/internal"
	"statlab/internal/batch"
	"statlab/internal/errors"
	"statlab/internal/parsing"
	"statlab/internal/report"
	"statlab/ports"
)

// maxBatchBody caps the size of a posted job file.
const maxBatchBody = 8 << 20

// AnalysisHandler serves the analysis endpoints
type AnalysisHandler struct {
	runner ports.AnalysisRunner
	batch  *batch.Runner
	logger *internal.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(runner ports.AnalysisRunner, batchRunner *batch.Runner, logger *internal.Logger) *AnalysisHandler {
	if logger == nil {
		logger = internal.NewDefaultLogger()
	}
	return &AnalysisHandler{
		runner: runner,
		batch:  batchRunner,
		logger: logger.WithPrefix("api"),
	}
}

// AnovaRequest carries groups inline or as text, one group per line.
type AnovaRequest struct {
	Groups [][]float64 `json:"groups"`
	Labels []string    `json:"labels"`
	Text   string      `json:"text"`
}

// ChiSquareRequest carries a contingency table inline or as text rows.
type ChiSquareRequest struct {
	Table [][]float64 `json:"table"`
	Text  string      `json:"text"`
}

// CorrelationRequest carries paired samples inline or as number lists.
type CorrelationRequest struct {
	X     []float64 `json:"x"`
	Y     []float64 `json:"y"`
	XText string    `json:"x_text"`
	YText string    `json:"y_text"`
}

// PCARequest carries an observation matrix inline or as text rows.
type PCARequest struct {
	Matrix     [][]float64 `json:"matrix"`
	Text       string      `json:"text"`
	Variables  []string    `json:"variables"`
	Seed       int64       `json:"seed"`
	Components int         `json:"components"`
}

// Health reports liveness
func (h *AnalysisHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "kinds": core.AllKinds()})
}

// Anova runs a one-way ANOVA
func (h *AnalysisHandler) Anova(c *gin.Context) {
	var req AnovaRequest
	if !h.bind(c, &req) {
		return
	}
	samples := req.Groups
	if len(samples) == 0 && req.Text != "" {
		var dropped []string
		samples, dropped = parsing.ParseGroups(req.Text)
		h.logDropped(dropped)
	}
	groups := anova.Groups(samples...)
	for i := range groups {
		if i < len(req.Labels) && req.Labels[i] != "" {
			groups[i].Label = req.Labels[i]
		}
	}

	a, err := h.runner.RunAnova(c.Request.Context(), groups)
	h.respond(c, a, nil, err)
}

// ChiSquare runs a chi-square test of independence
func (h *AnalysisHandler) ChiSquare(c *gin.Context) {
	var req ChiSquareRequest
	if !h.bind(c, &req) {
		return
	}
	table := req.Table
	if len(table) == 0 && req.Text != "" {
		var err error
		if table, err = parsing.ParseContingencyTable(req.Text); err != nil {
			h.fail(c, errors.Wrap(err, "invalid table text"))
			return
		}
	}

	a, err := h.runner.RunChiSquare(c.Request.Context(), table)
	h.respond(c, a, nil, err)
}

// Correlation runs Pearson correlation with a least-squares fit
func (h *AnalysisHandler) Correlation(c *gin.Context) {
	var req CorrelationRequest
	if !h.bind(c, &req) {
		return
	}
	x, y := req.X, req.Y
	if len(x) == 0 && req.XText != "" {
		var dropped []string
		x, dropped = parsing.ParseNumberList(req.XText)
		h.logDropped(dropped)
	}
	if len(y) == 0 && req.YText != "" {
		var dropped []string
		y, dropped = parsing.ParseNumberList(req.YText)
		h.logDropped(dropped)
	}

	a, err := h.runner.RunCorrelation(c.Request.Context(), x, y)
	h.respond(c, a, nil, err)
}

// PCA runs principal component analysis
func (h *AnalysisHandler) PCA(c *gin.Context) {
	var req PCARequest
	if !h.bind(c, &req) {
		return
	}
	data := req.Matrix
	if len(data) == 0 && req.Text != "" {
		var err error
		if data, err = parsing.ParseMatrix(req.Text); err != nil {
			h.fail(c, errors.Wrap(err, "invalid matrix text"))
			return
		}
	}

	a, err := h.runner.RunPCARequest(c.Request.Context(), ports.PCARequest{
		Data:       data,
		Seed:       req.Seed,
		Components: req.Components,
	})
	h.respond(c, a, req.Variables, err)
}

// Batch runs a posted job file (YAML or JSON). Jobs that reference files are
// rejected; file inputs are a CLI feature.
func (h *AnalysisHandler) Batch(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBatchBody))
	if err != nil {
		h.fail(c, errors.WithCode(errors.CodeValidationError, err))
		return
	}
	f, err := batch.Parse(body)
	if err != nil {
		h.fail(c, err)
		return
	}
	for _, job := range f.Jobs {
		if job.File != "" {
			h.fail(c, errors.ValidationError(fmt.Sprintf("job %s: file inputs are not accepted over HTTP", job.Name)))
			return
		}
	}

	outcomes, err := h.batch.Run(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"outcomes": report.Sanitize(outcomes),
		"failed":   failed,
	})
}

func (h *AnalysisHandler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.fail(c, errors.WithCode(errors.CodeValidationError, fmt.Errorf("invalid request body: %w", err)))
		return false
	}
	return true
}

// respond writes the analysis as JSON, or as a Markdown or HTML report when
// ?format=markdown|html is given.
func (h *AnalysisHandler) respond(c *gin.Context, a *stats.Analysis, variables []string, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	switch c.Query("format") {
	case "markdown", "md":
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Analysis(a, variables)))
	case "html":
		c.Data(http.StatusOK, "text/html; charset=utf-8", report.HTML(report.Analysis(a, variables)))
	default:
		c.JSON(http.StatusOK, report.Sanitize(a))
	}
}

func (h *AnalysisHandler) fail(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	} else {
		h.logger.Debug("%s %s rejected: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    errors.GetCode(err),
			"message": err.Error(),
		},
	})
}

func (h *AnalysisHandler) logDropped(dropped []string) {
	if len(dropped) > 0 {
		h.logger.Debug("ignored %d non-numeric tokens: %v", len(dropped), dropped)
	}
}
