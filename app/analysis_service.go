package app

import (
	"context"
	"time"

	"statlab/adapters/stats/anova"
	"statlab/adapters/stats/chisquare"
	"statlab/adapters/stats/correlation"
	"statlab/adapters/stats/pca"
	"statlab/domain/core"
	"statlab/domain/stats"
	"statlab/internal"
	"statlab/internal/config"
	"statlab/internal/errors"
	"statlab/ports"
)

// AnalysisService runs the four engines and wraps each result in an Analysis
// envelope carrying its ID, input fingerprint and timing.
type AnalysisService struct {
	anova       *anova.Engine
	chiSquare   *chisquare.Engine
	correlation *correlation.Engine
	pca         *pca.Engine
	rngPort     ports.RNGPort
	seed        int64
	logger      *internal.Logger
}

var _ ports.AnalysisRunner = (*AnalysisService)(nil)

// NewAnalysisService creates an analysis service. seed is the default PCA seed;
// zero asks the RNG port for an entropy-seeded stream on every run.
func NewAnalysisService(rngPort ports.RNGPort, pcaOpts pca.Options, seed int64, logger *internal.Logger) *AnalysisService {
	if logger == nil {
		logger = internal.NewDefaultLogger()
	}
	return &AnalysisService{
		anova:       anova.NewEngine(),
		chiSquare:   chisquare.NewEngine(),
		correlation: correlation.NewEngine(),
		pca:         pca.NewEngine(pcaOpts),
		rngPort:     rngPort,
		seed:        seed,
		logger:      logger.WithPrefix("analysis"),
	}
}

// NewAnalysisServiceFromConfig wires the service from loaded configuration.
func NewAnalysisServiceFromConfig(cfg *config.Config, rngPort ports.RNGPort, logger *internal.Logger) *AnalysisService {
	opts := pca.Options{
		Components:    cfg.PCA.Components,
		MaxIterations: cfg.PCA.MaxIterations,
		Tolerance:     cfg.PCA.Tolerance,
	}
	return NewAnalysisService(rngPort, opts, cfg.PCA.Seed, logger)
}

// PCAOptions reports the effective solver options.
func (s *AnalysisService) PCAOptions() pca.Options {
	return s.pca.Options()
}

// RunAnova performs a one-way ANOVA across groups.
func (s *AnalysisService) RunAnova(ctx context.Context, groups []anova.Group) (*stats.Analysis, error) {
	a, err := s.begin(ctx, core.KindAnova, groupRows(groups)...)
	if err != nil {
		return nil, err
	}
	res, err := s.anova.Compute(groups)
	if err != nil {
		return nil, s.fail(a, err)
	}
	a.Anova = res
	return s.finish(a), nil
}

// RunChiSquare performs a chi-square test of independence on a contingency table.
func (s *AnalysisService) RunChiSquare(ctx context.Context, table [][]float64) (*stats.Analysis, error) {
	a, err := s.begin(ctx, core.KindChiSquare, table...)
	if err != nil {
		return nil, err
	}
	res, err := s.chiSquare.Compute(table)
	if err != nil {
		return nil, s.fail(a, err)
	}
	a.ChiSquare = res
	return s.finish(a), nil
}

// RunCorrelation computes Pearson's r and the least-squares line of y on x.
func (s *AnalysisService) RunCorrelation(ctx context.Context, x, y []float64) (*stats.Analysis, error) {
	a, err := s.begin(ctx, core.KindCorrelation, x, y)
	if err != nil {
		return nil, err
	}
	res, err := s.correlation.Compute(x, y)
	if err != nil {
		return nil, s.fail(a, err)
	}
	a.Correlation = res
	return s.finish(a), nil
}

// RunPCA extracts principal components using the service defaults.
func (s *AnalysisService) RunPCA(ctx context.Context, data [][]float64) (*stats.Analysis, error) {
	return s.RunPCARequest(ctx, ports.PCARequest{Data: data})
}

// RunPCARequest extracts principal components drawing start vectors from the
// requested RNG stream. The same stream, non-zero seed and data always
// reproduce the same result.
func (s *AnalysisService) RunPCARequest(ctx context.Context, req ports.PCARequest) (*stats.Analysis, error) {
	if req.Stream == "" {
		req.Stream = "pca"
	}
	if req.Seed == 0 {
		req.Seed = s.seed
	}
	engine := s.pca
	if req.Components > 0 && req.Components != engine.Options().Components {
		opts := engine.Options()
		opts.Components = req.Components
		engine = pca.NewEngine(opts)
	}

	a, err := s.begin(ctx, core.KindPCA, req.Data...)
	if err != nil {
		return nil, err
	}
	if err := pca.Validate(req.Data); err != nil {
		return nil, s.fail(a, err)
	}
	rng, err := s.rngPort.Stream(ctx, req.Stream, req.Seed)
	if err != nil {
		s.logger.Error("rng stream %s unavailable: %v", req.Stream, err)
		return nil, errors.WithCode(errors.CodeInternalError, errors.Wrapf(err, "failed to open rng stream %s", req.Stream))
	}
	res, err := engine.Compute(req.Data, rng)
	if err != nil {
		return nil, s.fail(a, err)
	}
	a.PCA = res
	return s.finish(a), nil
}

func (s *AnalysisService) begin(ctx context.Context, kind core.AnalysisKind, rows ...[]float64) (*stats.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrapf(err, "%s cancelled", kind)
	}
	a := &stats.Analysis{
		ID:        core.NewID(),
		Kind:      kind,
		InputHash: core.HashRows(kind, rows...),
		StartedAt: time.Now().UTC(),
	}
	s.logger.Debug("%s %s started (input %s)", kind, a.ID, a.InputHash.Short())
	return a, nil
}

func (s *AnalysisService) fail(a *stats.Analysis, err error) error {
	s.logger.Debug("%s %s rejected: %v", a.Kind, a.ID, err)
	return errors.Wrapf(err, "%s failed", a.Kind)
}

func (s *AnalysisService) finish(a *stats.Analysis) *stats.Analysis {
	a.Elapsed = time.Since(a.StartedAt)
	for _, w := range a.Warnings() {
		s.logger.Warn("%s %s: %s", a.Kind, a.ID, w)
	}
	s.logger.Info("%s %s completed in %s", a.Kind, a.ID, a.Elapsed)
	return a
}

func groupRows(groups []anova.Group) [][]float64 {
	rows := make([][]float64, len(groups))
	for i, g := range groups {
		rows[i] = g.Values
	}
	return rows
}
