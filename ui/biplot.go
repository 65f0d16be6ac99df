package ui

import (
	"fmt"
	"math"

	"statlab/domain/stats"
)

const (
	biplotSize    = 360.0
	biplotPadding = 24.0
)

// Biplot is an SVG-ready projection of PCA scores (points) and loadings
// (arrows) onto the first two components.
type Biplot struct {
	Size   float64
	Center float64
	XLabel string
	YLabel string
	Points []BiplotPoint
	Arrows []BiplotArrow
}

// BiplotPoint is one observation in SVG coordinates.
type BiplotPoint struct {
	X, Y float64
}

// BiplotArrow is one variable's loading vector in SVG coordinates.
type BiplotArrow struct {
	X, Y  float64
	Label string
}

// NewBiplot scales scores to fill the plot and loadings to 80% of its radius.
// Returns nil when there is nothing to draw.
func NewBiplot(res *stats.PCAResult, variables []string) *Biplot {
	if res == nil || len(res.Components) == 0 || len(res.Scores) == 0 {
		return nil
	}
	radius := biplotSize/2 - biplotPadding
	center := biplotSize / 2

	maxScore := 0.0
	for i := range res.Scores {
		x, y := res.Score2D(i)
		maxScore = math.Max(maxScore, math.Max(math.Abs(x), math.Abs(y)))
	}
	scale := 1.0
	if maxScore > 0 {
		scale = radius / maxScore
	}

	b := &Biplot{
		Size:   biplotSize,
		Center: center,
		XLabel: fmt.Sprintf("PC1 (%.1f%%)", res.Components[0].Explained*100),
		YLabel: "PC2",
	}
	if len(res.Components) > 1 {
		b.YLabel = fmt.Sprintf("PC2 (%.1f%%)", res.Components[1].Explained*100)
	}
	for i := range res.Scores {
		x, y := res.Score2D(i)
		b.Points = append(b.Points, BiplotPoint{X: center + x*scale, Y: center - y*scale})
	}
	for j := range res.Loadings {
		x, y := res.Loading2D(j)
		label := fmt.Sprintf("V%d", j+1)
		if j < len(variables) && variables[j] != "" {
			label = variables[j]
		}
		b.Arrows = append(b.Arrows, BiplotArrow{
			X:     center + x*radius*0.8,
			Y:     center - y*radius*0.8,
			Label: label,
		})
	}
	return b
}
