// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package political

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pdiddy/discourse-engine/pkg/types"
)

// maxTopTopics bounds the topic summary of a corpus.
const maxTopTopics = 10

// Aggregate summarizes item analyses into corpus statistics. Per-axis
// means and population standard deviations only include items where that
// axis fired (nonzero confidence); an item with no signal would otherwise
// drag every mean toward zero. RunID, Subreddit and CreatedAt are left
// for the caller.
func Aggregate(items []types.ItemAnalysis, minClusterSize int) types.CorpusAnalysis {
	out := types.CorpusAnalysis{ItemCount: len(items)}

	analyses := make([]types.PoliticalAnalysis, len(items))
	axes := make(map[types.Dimension][]float64, len(types.Dimensions))
	sentiments := make([]float64, 0, len(items))
	topicSums := make(map[string]float64)

	for i, item := range items {
		analyses[i] = item.Political
		for _, d := range types.Dimensions {
			if dr, ok := item.Political.Dimensions[d]; ok && dr.Confidence > 0 {
				axes[d] = append(axes[d], dr.Score)
			}
		}
		sentiments = append(sentiments, item.Sentiment)
		for topic, s := range item.Political.DominantTopics {
			topicSums[topic] += s
		}
	}

	out.AvgEconomicScore, out.EconomicStdDev = meanStdDev(axes[types.DimensionEconomic])
	out.AvgSocialScore, out.SocialStdDev = meanStdDev(axes[types.DimensionSocial])
	out.AvgGovernanceScore, out.GovernanceStdDev = meanStdDev(axes[types.DimensionGovernance])

	if len(sentiments) > 0 {
		out.AvgSentiment = stat.Mean(sentiments, nil)
	}

	out.PoliticalDiversityIndex = Diversity(analyses)
	out.Clusters = IdentifyClusters(analyses, minClusterSize)
	out.TopTopics = topTopics(topicSums, len(items))

	return out
}

// meanStdDev returns the mean and population standard deviation of xs,
// or zeros for an empty slice.
func meanStdDev(xs []float64) (mean, std float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	return stat.PopMeanStdDev(xs, nil)
}

// topTopics averages topic scores over n items and keeps the strongest.
func topTopics(sums map[string]float64, n int) types.TopicScore {
	out := types.TopicScore{}
	if n == 0 || len(sums) == 0 {
		return out
	}

	names := make([]string, 0, len(sums))
	for topic := range sums {
		names = append(names, topic)
	}
	sort.Slice(names, func(i, j int) bool {
		if sums[names[i]] != sums[names[j]] {
			return sums[names[i]] > sums[names[j]]
		}
		return names[i] < names[j]
	})

	if len(names) > maxTopTopics {
		names = names[:maxTopTopics]
	}
	for _, topic := range names {
		out[topic] = sums[topic] / float64(n)
	}
	return out
}
