package container

import (
	"fmt"

	"statlab/adapters/rng"
	"statlab/app"
	"statlab/internal"
	"statlab/internal/batch"
	"statlab/internal/config"
	"statlab/ports"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	RNG ports.RNGPort

	// Services
	Analysis *app.AnalysisService
	Batch    *batch.Runner
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	logger := internal.NewLogger(internal.ParseLogLevel(cfg.Logging.Level))
	rngPort := rng.NewStreamAdapter()
	analysis := app.NewAnalysisServiceFromConfig(cfg, rngPort, logger)

	c := &Container{
		Config:   cfg,
		Logger:   logger,
		RNG:      rngPort,
		Analysis: analysis,
		Batch:    batch.NewRunner(analysis, cfg.Batch.Concurrency, logger),
	}

	logger.Debug("container ready: pca components=%d max_iter=%d tol=%g seed=%d batch=%d",
		cfg.PCA.Components, cfg.PCA.MaxIterations, cfg.PCA.Tolerance, cfg.PCA.Seed, cfg.Batch.Concurrency)
	return c, nil
}
