package ui

import (
	"strconv"
	"strings"

	"statlab/internal/testkit"
)

// Samples pre-fills the forms with generated demo input.
type Samples struct {
	Groups    string
	Table     string
	X         string
	Y         string
	Matrix    string
	Variables string
}

func newSamples(d *testkit.Demo) Samples {
	groups := make([][]float64, len(d.Groups))
	for i, g := range d.Groups {
		groups[i] = g.Values
	}
	return Samples{
		Groups:    formatRows(groups, " "),
		Table:     formatRows(d.Table, " "),
		X:         formatRow(d.X, ", "),
		Y:         formatRow(d.Y, ", "),
		Matrix:    formatRows(d.Matrix, " "),
		Variables: strings.Join(d.Variables, ", "),
	}
}

func formatRows(rows [][]float64, sep string) string {
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = formatRow(row, sep)
	}
	return strings.Join(lines, "\n")
}

func formatRow(row []float64, sep string) string {
	cells := make([]string, len(row))
	for i, v := range row {
		cells[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(cells, sep)
}
