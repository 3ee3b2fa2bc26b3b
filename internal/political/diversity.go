// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package political

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pdiddy/discourse-engine/pkg/types"
)

const (
	// minDiversityItems is the smallest population with a diversity index.
	minDiversityItems = 10

	// diversityScale stretches the weighted mean distance, since real
	// populations rarely approach the corners of the cube.
	diversityScale = 1.5
)

// maxCubeDistance is the largest distance from the centroid normalized
// against: the diagonal of the unit cube.
var maxCubeDistance = math.Sqrt(3)

// point is one item's position plus its weight.
type point struct {
	coords [3]float64
	weight float64
}

// fullPoints returns the items that carry all three dimension scores.
func fullPoints(analyses []types.PoliticalAnalysis) []point {
	pts := make([]point, 0, len(analyses))
	for _, a := range analyses {
		e, s, g, ok := a.Vector()
		if !ok {
			continue
		}
		pts = append(pts, point{coords: [3]float64{e, s, g}, weight: a.AnalysisQuality})
	}
	return pts
}

// Diversity returns a confidence-weighted dispersion index in [0,1] over
// the items' (economic, social, governance) positions. Fewer than ten
// items with all three scores yield 0.
func Diversity(analyses []types.PoliticalAnalysis) float64 {
	pts := fullPoints(analyses)
	if len(pts) < minDiversityItems {
		return 0
	}

	var centroid [3]float64
	axis := make([]float64, len(pts))
	for d := 0; d < 3; d++ {
		for i, p := range pts {
			axis[i] = p.coords[d]
		}
		centroid[d] = stat.Mean(axis, nil)
	}

	distances := make([]float64, len(pts))
	weights := make([]float64, len(pts))
	for i, p := range pts {
		distances[i] = floats.Distance(p.coords[:], centroid[:], 2) / maxCubeDistance
		weights[i] = p.weight
	}

	// All-zero weights would make the weighted mean undefined; fall back
	// to the plain mean.
	if floats.Sum(weights) <= 0 {
		weights = nil
	}
	avg := stat.Mean(distances, weights)

	return math.Min(avg*diversityScale, 1)
}
