package testkit

import (
	"fmt"
	"math"
	"math/rand"

	"statlab/adapters/excel"
	"statlab/adapters/stats/anova"
)

// GeneratorConfig configures the synthetic data generator
type GeneratorConfig struct {
	Observations int     `json:"observations" yaml:"observations"`
	Noise        float64 `json:"noise" yaml:"noise"`
	Seed         int64   `json:"seed" yaml:"seed"`
}

// DefaultGeneratorConfig returns sensible defaults for fixture generation
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Observations: 30,
		Noise:        1.0,
		Seed:         42,
	}
}

// Generator produces reproducible inputs for every analysis kind. The same
// config always yields the same data.
type Generator struct {
	config GeneratorConfig
	rng    *rand.Rand
}

// NewGenerator creates a new data generator
func NewGenerator(config GeneratorConfig) *Generator {
	if config.Observations < 2 {
		config.Observations = DefaultGeneratorConfig().Observations
	}
	return &Generator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Groups draws one normal sample per mean, each of Observations values with
// standard deviation Noise.
func (g *Generator) Groups(means ...float64) []anova.Group {
	groups := make([]anova.Group, len(means))
	for i, mu := range means {
		values := make([]float64, g.config.Observations)
		for j := range values {
			values[j] = round(mu + g.rng.NormFloat64()*g.config.Noise)
		}
		groups[i] = anova.Group{Label: fmt.Sprintf("Group %d", i+1), Values: values}
	}
	return groups
}

// ContingencyTable spreads total counts over a rows×cols table. association in
// [0,1] pulls mass onto the diagonal; 0 gives independent margins.
func (g *Generator) ContingencyTable(rows, cols, total int, association float64) [][]float64 {
	table := make([][]float64, rows)
	for i := range table {
		table[i] = make([]float64, cols)
	}
	for n := 0; n < total; n++ {
		i := g.rng.Intn(rows)
		j := g.rng.Intn(cols)
		if g.rng.Float64() < association {
			j = i % cols
		}
		table[i][j]++
	}
	return table
}

// Line draws Observations pairs on y = intercept + slope·x plus normal noise.
func (g *Generator) Line(slope, intercept float64) (x, y []float64) {
	n := g.config.Observations
	x = make([]float64, n)
	y = make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = round(float64(i) + g.rng.Float64())
		y[i] = round(intercept + slope*x[i] + g.rng.NormFloat64()*g.config.Noise)
	}
	return x, y
}

// Factors draws an Observations×len(loadings) matrix driven by one latent
// factor: column j = loadings[j]·z + noise. Larger loadings dominate PC1.
func (g *Generator) Factors(loadings ...float64) [][]float64 {
	data := make([][]float64, g.config.Observations)
	for i := range data {
		z := g.rng.NormFloat64() * 3
		row := make([]float64, len(loadings))
		for j, l := range loadings {
			row[j] = round(l*z + g.rng.NormFloat64()*g.config.Noise)
		}
		data[i] = row
	}
	return data
}

// WriteWorkbook saves a Factors matrix as a workbook with headers V1..Vp.
func (g *Generator) WriteWorkbook(path string, loadings ...float64) error {
	headers := make([]string, len(loadings))
	for j := range headers {
		headers[j] = fmt.Sprintf("V%d", j+1)
	}
	return excel.WriteWorkbook(path, headers, g.Factors(loadings...))
}

func round(v float64) float64 {
	return math.Round(v*100) / 100
}
