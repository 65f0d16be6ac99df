package anova

import (
	"fmt"
	"math"

	"statlab/domain/core"
	"statlab/domain/stats"
	"statlab/internal/numeric"

	mstats "github.com/montanaflynn/stats"
)

// Group is one labelled sample of a one-way design.
type Group = stats.Group

// Engine decomposes the total variation of a group set into between-group
// and within-group sums of squares.
type Engine struct{}

// NewEngine creates a one-way ANOVA engine
func NewEngine() *Engine {
	return &Engine{}
}

// Name returns the engine name
func (e *Engine) Name() string {
	return string(core.KindAnova)
}

// Groups wraps raw samples as groups labelled "Group 1", "Group 2", ...
func Groups(samples ...[]float64) []Group {
	groups := make([]Group, len(samples))
	for i, s := range samples {
		groups[i] = Group{Label: fmt.Sprintf("Group %d", i+1), Values: s}
	}
	return groups
}

// Validate checks the preconditions: at least two groups, none empty, all values finite.
func Validate(groups []Group) error {
	if len(groups) < 2 {
		return core.NewFieldError(core.ErrInsufficientData, "groups", "need at least 2 groups, got %d", len(groups))
	}
	for i, g := range groups {
		if len(g.Values) == 0 {
			return core.NewFieldError(core.ErrEmptyInput, "groups", "group %d is empty", i+1)
		}
		if !numeric.AllFinite(g.Values) {
			return core.NewFieldError(core.ErrNonFinite, "groups", "group %d contains NaN or Inf", i+1)
		}
	}
	return nil
}

// Compute performs the one-way ANOVA.
// With one observation per group df_within is 0; MSW is then reported as 0 and F
// is left non-finite.
func (e *Engine) Compute(groups []Group) (*stats.AnovaResult, error) {
	if err := Validate(groups); err != nil {
		return nil, err
	}

	var pooled []float64
	for _, g := range groups {
		pooled = append(pooled, g.Values...)
	}
	grandMean := numeric.Mean(pooled)
	totalN := len(pooled)
	k := len(groups)

	var ssb, ssw float64
	summaries := make([]stats.GroupSummary, k)
	for i, g := range groups {
		m := numeric.Mean(g.Values)
		n := float64(len(g.Values))
		ssb += n * (m - grandMean) * (m - grandMean)
		ssw += numeric.SumSquaredDeviations(g.Values, m)
		summaries[i] = summarize(g, m)
	}

	dfBetween := k - 1
	dfWithin := totalN - k
	msb := ssb / float64(dfBetween)
	var msw float64
	if dfWithin > 0 {
		msw = ssw / float64(dfWithin)
	}
	sst := numeric.SumSquaredDeviations(pooled, grandMean)

	result := &stats.AnovaResult{
		GrandMean:  grandMean,
		SSB:        ssb,
		SSW:        ssw,
		SST:        sst,
		MSB:        msb,
		MSW:        msw,
		F:          msb / msw,
		EtaSquared: ssb / sst,
		DFBetween:  dfBetween,
		DFWithin:   dfWithin,
		DFTotal:    totalN - 1,
		Groups:     summaries,
	}

	if msw == 0 {
		result.Warnings = append(result.Warnings, stats.Warning{
			Code:    stats.WarningZeroWithinVariance,
			Message: fmt.Sprintf("within-group mean square is zero (df_within=%d); F is %v", dfWithin, result.F),
		})
	}

	return result, nil
}

// summarize builds the descriptive row for one group.
func summarize(g Group, mean float64) stats.GroupSummary {
	data := mstats.Float64Data(g.Values)
	min, _ := mstats.Min(data)
	max, _ := mstats.Max(data)
	median, _ := mstats.Median(data)

	// the sample deviation of a single observation is undefined
	sd, err := mstats.StandardDeviationSample(data)
	if err != nil || len(g.Values) < 2 {
		sd = math.NaN()
	}

	return stats.GroupSummary{
		Label:  g.Label,
		N:      len(g.Values),
		Mean:   mean,
		StdDev: sd,
		Min:    min,
		Max:    max,
		Median: median,
	}
}
