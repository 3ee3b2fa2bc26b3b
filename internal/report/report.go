// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders analysis results as terminal tables or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pdiddy/discourse-engine/internal/political"
	"github.com/pdiddy/discourse-engine/internal/topics"
	"github.com/pdiddy/discourse-engine/pkg/types"
)

// maxKeywordSample is how many keywords Topics shows per topic.
const maxKeywordSample = 6

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Analysis renders a single-text political analysis.
func Analysis(w io.Writer, a types.PoliticalAnalysis) error {
	if len(a.Dimensions) == 0 {
		_, err := fmt.Fprintln(w, Muted.Render("Text too short to analyze."))
		return err
	}

	t := newTable("Dimension", "Score", "Confidence", "Label", "Evidence")
	for _, d := range types.Dimensions {
		dr, ok := a.Dimensions[d]
		if !ok {
			continue
		}
		t.Row(string(d), signed(fmt.Sprintf("%+.3f", dr.Score), dr.Score),
			fmt.Sprintf("%.2f", dr.Confidence), dr.Label, strings.Join(dr.Evidence, "; "))
	}

	var b strings.Builder
	b.WriteString(t.String())
	b.WriteString("\n")
	fmt.Fprintf(&b, "Analysis quality: %.2f\n", a.AnalysisQuality)
	fmt.Fprintf(&b, "Topics: %s\n", formatTopics(a.DominantTopics))

	_, err := io.WriteString(w, b.String())
	return err
}

// Corpus renders the aggregate of one analysis run, including its
// clusters and top topics.
func Corpus(w io.Writer, ca types.CorpusAnalysis) error {
	scope := "all subreddits"
	if ca.Subreddit != "" {
		scope = "r/" + ca.Subreddit
	}

	var b strings.Builder
	b.WriteString(Title.Render(fmt.Sprintf("Corpus analysis: %s", scope)))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Run %s at %s, %d items\n", ca.RunID, ca.CreatedAt.Format("2006-01-02 15:04:05 MST"), ca.ItemCount)

	dims := newTable("Dimension", "Mean", "Std dev", "Label")
	for _, row := range []struct {
		d         types.Dimension
		mean, std float64
	}{
		{types.DimensionEconomic, ca.AvgEconomicScore, ca.EconomicStdDev},
		{types.DimensionSocial, ca.AvgSocialScore, ca.SocialStdDev},
		{types.DimensionGovernance, ca.AvgGovernanceScore, ca.GovernanceStdDev},
	} {
		dims.Row(string(row.d), signed(fmt.Sprintf("%+.3f", row.mean), row.mean),
			fmt.Sprintf("%.3f", row.std), political.Label(row.d, row.mean))
	}
	b.WriteString(dims.String())
	b.WriteString("\n")

	fmt.Fprintf(&b, "Political diversity index: %.3f\n", ca.PoliticalDiversityIndex)
	fmt.Fprintf(&b, "Average sentiment: %s\n", signed(fmt.Sprintf("%+.3f", ca.AvgSentiment), ca.AvgSentiment))
	fmt.Fprintf(&b, "Top topics: %s\n", formatTopics(ca.TopTopics))

	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	return Clusters(w, ca.Clusters)
}

// Clusters renders a cluster report, largest cluster first.
func Clusters(w io.Writer, r types.ClusterReport) error {
	var b strings.Builder
	b.WriteString(Title.Render("Political clusters"))
	b.WriteString("\n")

	switch {
	case r.Insufficient():
		b.WriteString(Muted.Render(r.Message))
		b.WriteString("\n")
	case len(r.Clusters) == 0:
		b.WriteString(Muted.Render(fmt.Sprintf("No octant reached the minimum size (%d scored items).", r.TotalPoints)))
		b.WriteString("\n")
	default:
		keys := make([]string, 0, len(r.Clusters))
		for k := range r.Clusters {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			ci, cj := r.Clusters[keys[i]], r.Clusters[keys[j]]
			if ci.Size != cj.Size {
				return ci.Size > cj.Size
			}
			return keys[i] < keys[j]
		})

		t := newTable("Cluster", "Label", "Size", "Share", "Economic", "Social", "Governance")
		for _, k := range keys {
			c := r.Clusters[k]
			t.Row(k, c.Label, fmt.Sprint(c.Size), fmt.Sprintf("%.1f%%", c.Percentage),
				fmt.Sprintf("%+.2f", c.Centroid.Economic),
				fmt.Sprintf("%+.2f", c.Centroid.Social),
				fmt.Sprintf("%+.2f", c.Centroid.Governance))
		}
		b.WriteString(t.String())
		b.WriteString("\n")
		fmt.Fprintf(&b, "%d clusters over %d scored items\n", r.NumClusters, r.TotalPoints)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Runs lists stored analysis runs, newest first as given.
func Runs(w io.Writer, runs []types.CorpusAnalysis) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, Muted.Render("No analysis runs stored."))
		return err
	}

	t := newTable("Run", "Subreddit", "Created", "Items", "Diversity", "Clusters")
	for _, ca := range runs {
		sub := ca.Subreddit
		if sub == "" {
			sub = "(all)"
		}
		clusters := "-"
		if !ca.Clusters.Insufficient() {
			clusters = fmt.Sprint(ca.Clusters.NumClusters)
		}
		t.Row(ca.RunID, sub, ca.CreatedAt.Format("2006-01-02 15:04"), fmt.Sprint(ca.ItemCount),
			fmt.Sprintf("%.3f", ca.PoliticalDiversityIndex), clusters)
	}
	_, err := fmt.Fprintln(w, t.String())
	return err
}

// Topics lists the taxonomy with a sample of each topic's keywords.
func Topics(w io.Writer, tax *topics.Taxonomy) error {
	t := newTable("Topic", "Keywords", "Sample")
	for _, name := range tax.Topics() {
		kws, err := tax.Keywords(name)
		if err != nil {
			return err
		}
		sample := kws
		if len(sample) > maxKeywordSample {
			sample = sample[:maxKeywordSample]
		}
		t.Row(name, fmt.Sprint(len(kws)), strings.Join(sample, ", "))
	}
	_, err := fmt.Fprintln(w, t.String())
	return err
}

// TopicSentiment renders the sentiment roll-up of one topic.
func TopicSentiment(w io.Writer, ts topics.TopicSentiment) error {
	if ts.Mentions == 0 {
		_, err := fmt.Fprintln(w, Muted.Render(fmt.Sprintf("No stored items mention %s.", ts.Topic)))
		return err
	}

	t := newTable("Topic", "Mentions", "Avg sentiment", "Avg relevance", "Positive", "Negative", "Neutral")
	t.Row(ts.Topic, fmt.Sprint(ts.Mentions),
		signed(fmt.Sprintf("%+.3f", ts.AvgSentiment), ts.AvgSentiment),
		fmt.Sprintf("%.2f", ts.AvgRelevance),
		fmt.Sprint(ts.Positive), fmt.Sprint(ts.Negative), fmt.Sprint(ts.Neutral))
	_, err := fmt.Fprintln(w, t.String())
	return err
}

// formatTopics lists topics by descending score, or "none".
func formatTopics(scores types.TopicScore) string {
	if len(scores) == 0 {
		return "none"
	}
	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if scores[names[i]] != scores[names[j]] {
			return scores[names[i]] > scores[names[j]]
		}
		return names[i] < names[j]
	})

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s (%.2f)", name, scores[name])
	}
	return strings.Join(parts, ", ")
}
