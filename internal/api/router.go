package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"statlab/internal"
)

// NewRouter builds the gin engine with recovery, request logging and the
// analysis routes.
func NewRouter(h *AnalysisHandler, mode string, logger *internal.Logger) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}
	if logger == nil {
		logger = internal.NewDefaultLogger()
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger.WithPrefix("http")))

	r.GET("/healthz", h.Health)
	v1 := r.Group("/api/v1")
	{
		v1.POST("/anova", h.Anova)
		v1.POST("/chisquare", h.ChiSquare)
		v1.POST("/correlation", h.Correlation)
		v1.POST("/pca", h.PCA)
		v1.POST("/batch", h.Batch)
	}
	return r
}

func requestLogger(logger *internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
