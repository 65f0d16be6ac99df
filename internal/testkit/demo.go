package testkit

import "statlab/adapters/stats/anova"

// Demo bundles one input per analysis kind, used by the demo command and the UI
// sample buttons.
type Demo struct {
	Groups    []anova.Group
	Table     [][]float64
	X, Y      []float64
	Matrix    [][]float64
	Variables []string
}

// NewDemo generates the demo inputs from config.
func NewDemo(config GeneratorConfig) *Demo {
	g := NewGenerator(config)
	x, y := g.Line(0.8, 2)
	return &Demo{
		Groups:    g.Groups(10, 12, 15),
		Table:     g.ContingencyTable(3, 3, 300, 0.4),
		X:         x,
		Y:         y,
		Matrix:    g.Factors(2, 1.5, 0.5, 0),
		Variables: []string{"V1", "V2", "V3", "V4"},
	}
}
