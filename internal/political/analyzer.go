// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package political

import (
	"strings"

	"github.com/pdiddy/discourse-engine/internal/topics"
	"github.com/pdiddy/discourse-engine/pkg/types"
)

const (
	// minAnalysisLength is the shortest stripped text that is analyzed.
	minAnalysisLength = 20

	// noSignalQuality marks an analysis that ran but found no evidence on
	// any axis, distinguishing it from a skipped (too short) text.
	noSignalQuality = 0.05
)

// Analyzer scores texts on all political dimensions. It holds only the
// immutable topic detector and is safe for concurrent use.
type Analyzer struct {
	detector *topics.Detector
}

// NewAnalyzer returns an analyzer that detects topics with detector.
func NewAnalyzer(detector *topics.Detector) *Analyzer {
	return &Analyzer{detector: detector}
}

// Detector returns the topic detector used by the analyzer.
func (a *Analyzer) Detector() *topics.Detector {
	return a.detector
}

// Analyze detects topics once and scores text on every dimension.
// Texts shorter than 20 characters after trimming return an empty
// analysis with quality 0.
func (a *Analyzer) Analyze(text string) types.PoliticalAnalysis {
	result := types.PoliticalAnalysis{
		Dimensions:     map[types.Dimension]types.DimensionResult{},
		DominantTopics: types.TopicScore{},
	}
	if len(strings.TrimSpace(text)) < minAnalysisLength {
		return result
	}

	detected := a.detector.DetectTopics(text)
	result.DominantTopics = detected

	var confidenceSum float64
	var fired int
	for _, spec := range dimensionSpecs {
		dr := scoreDimension(spec, text, detected)
		result.Dimensions[spec.dimension] = dr
		if dr.Confidence > 0 {
			confidenceSum += dr.Confidence
			fired++
		}
	}

	if fired == 0 {
		result.AnalysisQuality = noSignalQuality
	} else {
		result.AnalysisQuality = confidenceSum / float64(fired)
	}
	return result
}
