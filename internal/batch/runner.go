package batch

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"statlab/adapters/excel"
	"statlab/domain/core"
	"statlab/domain/stats"
	"statlab/internal"
	"statlab/internal/errors"
	"statlab/ports"
)

// Outcome is the result of one job. Exactly one of Analysis and Err is set.
type Outcome struct {
	Job       string            `json:"job"`
	Kind      core.AnalysisKind `json:"kind,omitempty"`
	Analysis  *stats.Analysis   `json:"analysis,omitempty"`
	Variables []string          `json:"variables,omitempty"`
	Err       error             `json:"-"`
	Error     string            `json:"error,omitempty"`
}

// Runner executes job files against an analysis runner.
type Runner struct {
	service     ports.AnalysisRunner
	concurrency int64
	logger      *internal.Logger
}

// NewRunner creates a batch runner. concurrency is the semaphore capacity in
// weight units; values below 1 mean 1.
func NewRunner(service ports.AnalysisRunner, concurrency int, logger *internal.Logger) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = internal.NewDefaultLogger()
	}
	return &Runner{
		service:     service,
		concurrency: int64(concurrency),
		logger:      logger.WithPrefix("batch"),
	}
}

type loadedSheet struct {
	sheet *excel.Sheet
	err   error
}

// Run executes every job in f and returns the outcomes in job order. A failing
// job does not stop the others. The error is non-nil only when ctx ends
// before all jobs could start.
func (r *Runner) Run(ctx context.Context, f *File) ([]Outcome, error) {
	capacity := r.concurrency
	if f.Concurrency > 0 {
		capacity = int64(f.Concurrency)
	}
	start := time.Now()
	r.logger.Info("running %d jobs with capacity %d", len(f.Jobs), capacity)

	sheets := r.loadSheets(ctx, f.Jobs, int(capacity))

	sem := semaphore.NewWeighted(capacity)
	outcomes := make([]Outcome, len(f.Jobs))
	var wg sync.WaitGroup
	var runErr error
	for i, job := range f.Jobs {
		weight := job.Weight()
		if weight > capacity {
			weight = capacity
		}
		if err := sem.Acquire(ctx, weight); err != nil {
			runErr = errors.Wrap(err, "batch interrupted")
			for k := i; k < len(f.Jobs); k++ {
				outcomes[k] = Outcome{Job: f.Jobs[k].Name, Err: err, Error: err.Error()}
			}
			break
		}
		wg.Add(1)
		go func(i int, job Job, weight int64) {
			defer wg.Done()
			defer sem.Release(weight)
			if job.File != "" {
				loaded := sheets[job.File]
				if loaded.err != nil {
					outcomes[i] = r.failed(job, errors.Wrapf(loaded.err, "job %s: failed to load %s", job.Name, job.File))
					return
				}
				if err := job.ResolveSheet(loaded.sheet); err != nil {
					outcomes[i] = r.failed(job, errors.Wrapf(err, "job %s: %s", job.Name, job.File))
					return
				}
				job.File = ""
			}
			outcomes[i] = r.RunJob(ctx, job, f.Seed)
		}(i, job, weight)
	}
	wg.Wait()

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	r.logger.Info("batch finished in %s: %d ok, %d failed", time.Since(start), len(outcomes)-failed, failed)
	return outcomes, runErr
}

// loadSheets reads every distinct input file once, at most limit at a time.
// Read failures are kept per file so only the jobs using that file fail.
func (r *Runner) loadSheets(ctx context.Context, jobs []Job, limit int) map[string]loadedSheet {
	var paths []string
	seen := make(map[string]bool)
	for _, job := range jobs {
		if job.File != "" && !seen[job.File] {
			seen[job.File] = true
			paths = append(paths, job.File)
		}
	}
	results := make([]loadedSheet, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = loadedSheet{err: err}
				return nil
			}
			sheet, err := excel.NewDataReader(path).ReadSheet()
			results[i] = loadedSheet{sheet: sheet, err: err}
			return nil
		})
	}
	_ = g.Wait()

	sheets := make(map[string]loadedSheet, len(paths))
	for i, path := range paths {
		sheets[path] = results[i]
		if results[i].err == nil {
			r.logger.Debug("loaded %s (%d rows)", path, len(results[i].sheet.Rows))
		}
	}
	return sheets
}

// RunJob resolves and executes a single job. PCA start vectors come from the
// stream "batch/<name>" seeded by the job seed, else baseSeed.
func (r *Runner) RunJob(ctx context.Context, job Job, baseSeed int64) Outcome {
	analysis, err := r.execute(ctx, &job, baseSeed)
	if err != nil {
		return r.failed(job, err)
	}
	return Outcome{
		Job:       job.Name,
		Kind:      analysis.Kind,
		Analysis:  analysis,
		Variables: job.Variables,
	}
}

func (r *Runner) failed(job Job, err error) Outcome {
	r.logger.Warn("job %s failed: %v", job.Name, err)
	return Outcome{Job: job.Name, Err: err, Error: err.Error()}
}

func (r *Runner) execute(ctx context.Context, job *Job, baseSeed int64) (*stats.Analysis, error) {
	kind, err := job.AnalysisKind()
	if err != nil {
		return nil, errors.Wrapf(err, "job %s", job.Name)
	}
	if err := job.Resolve(); err != nil {
		return nil, errors.Wrapf(err, "job %s: failed to load %s", job.Name, job.File)
	}

	switch kind {
	case core.KindAnova:
		return r.service.RunAnova(ctx, job.AnovaGroups())
	case core.KindChiSquare:
		return r.service.RunChiSquare(ctx, job.Table)
	case core.KindCorrelation:
		return r.service.RunCorrelation(ctx, job.X, job.Y)
	default:
		seed := job.Seed
		if seed == 0 {
			seed = baseSeed
		}
		return r.service.RunPCARequest(ctx, ports.PCARequest{
			Data:       job.Matrix,
			Stream:     "batch/" + job.Name,
			Seed:       seed,
			Components: job.Components,
		})
	}
}
