package testkit

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statlab/adapters/excel"
	"statlab/adapters/stats/anova"
	"statlab/adapters/stats/chisquare"
	"statlab/adapters/stats/correlation"
	"statlab/adapters/stats/pca"
)

func TestGenerator_Reproducible(t *testing.T) {
	a := NewDemo(DefaultGeneratorConfig())
	b := NewDemo(DefaultGeneratorConfig())
	assert.Equal(t, a, b)

	other := DefaultGeneratorConfig()
	other.Seed = 7
	assert.NotEqual(t, a.Matrix, NewDemo(other).Matrix)
}

func TestGenerator_Shapes(t *testing.T) {
	g := NewGenerator(GeneratorConfig{Observations: 12, Noise: 0.5, Seed: 1})

	groups := g.Groups(1, 2)
	require.Len(t, groups, 2)
	assert.Len(t, groups[1].Values, 12)
	assert.Equal(t, "Group 2", groups[1].Label)

	table := g.ContingencyTable(2, 3, 60, 0)
	require.Len(t, table, 2)
	var total float64
	for _, row := range table {
		assert.Len(t, row, 3)
		for _, v := range row {
			total += v
		}
	}
	assert.Equal(t, 60.0, total)

	x, y := g.Line(1, 0)
	assert.Len(t, x, 12)
	assert.Len(t, y, 12)

	m := g.Factors(1, 1, 1)
	require.Len(t, m, 12)
	assert.Len(t, m[0], 3)
}

func TestDemo_FeedsEveryEngine(t *testing.T) {
	d := NewDemo(DefaultGeneratorConfig())

	a, err := anova.NewEngine().Compute(d.Groups)
	require.NoError(t, err)
	assert.Greater(t, a.F, 1.0)

	c, err := chisquare.NewEngine().Compute(d.Table)
	require.NoError(t, err)
	assert.Empty(t, c.Warnings)

	r, err := correlation.NewEngine().Compute(d.X, d.Y)
	require.NoError(t, err)
	assert.Greater(t, r.R, 0.9)

	p, err := pca.NewEngine(pca.DefaultOptions()).Compute(d.Matrix, nil)
	require.NoError(t, err)
	assert.Greater(t, p.Components[0].Explained, 0.8)
}

func TestGenerator_WriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "factors.xlsx")
	g := NewGenerator(GeneratorConfig{Observations: 5, Noise: 1, Seed: 3})
	require.NoError(t, g.WriteWorkbook(path, 1, 2))

	sheet, err := excel.NewDataReader(path).ReadSheet()
	require.NoError(t, err)
	assert.Equal(t, []string{"V1", "V2"}, sheet.Headers)
	assert.Len(t, sheet.Rows, 5)
}
