// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package political

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/discourse-engine/pkg/types"
)

func TestAggregate_Empty(t *testing.T) {
	got := Aggregate(nil, 5)
	assert.Zero(t, got.ItemCount)
	assert.Zero(t, got.AvgEconomicScore)
	assert.Zero(t, got.EconomicStdDev)
	assert.Zero(t, got.AvgSentiment)
	assert.Zero(t, got.PoliticalDiversityIndex)
	assert.True(t, got.Clusters.Insufficient())
	assert.Empty(t, got.TopTopics)
}

func TestAggregate_OnlyFiredDimensionsCount(t *testing.T) {
	items := []types.ItemAnalysis{
		{ItemID: "a", Political: analysisAt(0.5, 0.2, -0.4, 1), Sentiment: 0.6},
		{ItemID: "b", Political: analysisAt(-0.5, 0.4, -0.4, 1), Sentiment: -0.2},
		{
			ItemID: "c",
			Political: types.PoliticalAnalysis{
				Dimensions: map[types.Dimension]types.DimensionResult{
					types.DimensionEconomic:   {Score: 0, Confidence: 0},
					types.DimensionSocial:     {Score: 0, Confidence: 0},
					types.DimensionGovernance: {Score: 0, Confidence: 0},
				},
				AnalysisQuality: 0.05,
			},
			Sentiment: 0.2,
		},
	}

	got := Aggregate(items, 5)
	assert.Equal(t, 3, got.ItemCount)

	assert.InDelta(t, 0.0, got.AvgEconomicScore, 1e-12)
	assert.InDelta(t, 0.5, got.EconomicStdDev, 1e-12)
	assert.InDelta(t, 0.3, got.AvgSocialScore, 1e-12)
	assert.InDelta(t, 0.1, got.SocialStdDev, 1e-12)
	assert.InDelta(t, -0.4, got.AvgGovernanceScore, 1e-12)
	assert.InDelta(t, 0.0, got.GovernanceStdDev, 1e-12)

	assert.InDelta(t, 0.2, got.AvgSentiment, 1e-12)
	assert.Zero(t, got.PoliticalDiversityIndex, "three items are below the diversity minimum")
	assert.True(t, got.Clusters.Insufficient())
}

func TestAggregate_PopulationStatistics(t *testing.T) {
	var items []types.ItemAnalysis
	for i := 0; i < 12; i++ {
		v := 0.6
		if i%2 == 1 {
			v = -0.6
		}
		items = append(items, types.ItemAnalysis{
			ItemID:    fmt.Sprintf("p%d", i),
			Kind:      types.KindPost,
			Political: analysisAt(v, v, v, 1),
		})
	}

	got := Aggregate(items, 5)
	assert.InDelta(t, 0.0, got.AvgEconomicScore, 1e-12)
	assert.InDelta(t, 0.6, got.EconomicStdDev, 1e-12)
	assert.Greater(t, got.PoliticalDiversityIndex, 0.5)

	require.False(t, got.Clusters.Insufficient())
	assert.Equal(t, 2, got.Clusters.NumClusters)
	assert.Equal(t, 12, got.Clusters.TotalPoints)
}

func TestAggregate_TopTopics(t *testing.T) {
	var items []types.ItemAnalysis
	for i := 0; i < 4; i++ {
		a := analysisAt(0, 0, 0, 1)
		a.DominantTopics = types.TopicScore{"economy": 1.0}
		if i < 2 {
			a.DominantTopics["healthcare"] = 0.5
		}
		items = append(items, types.ItemAnalysis{ItemID: fmt.Sprintf("i%d", i), Political: a})
	}

	got := Aggregate(items, 5)
	assert.Equal(t, types.TopicScore{"economy": 1.0, "healthcare": 0.25}, got.TopTopics)
}

func TestTopTopics_Truncates(t *testing.T) {
	sums := make(map[string]float64)
	for i := 0; i < 15; i++ {
		sums[fmt.Sprintf("topic%02d", i)] = float64(i)
	}

	got := topTopics(sums, 1)
	require.Len(t, got, maxTopTopics)
	assert.Contains(t, got, "topic14")
	assert.NotContains(t, got, "topic04")
}
