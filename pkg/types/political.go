// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Dimension names one of the three political axes.
type Dimension string

const (
	DimensionEconomic   Dimension = "economic"
	DimensionSocial     Dimension = "social"
	DimensionGovernance Dimension = "governance"
)

// Dimensions lists the axes in their fixed reporting order.
var Dimensions = []Dimension{DimensionEconomic, DimensionSocial, DimensionGovernance}

// TopicScore maps a topic name to a detection score in [0,1].
type TopicScore map[string]float64

// DimensionResult is a signed position on one axis with its supporting
// evidence. A zero Confidence always carries a zero Score.
type DimensionResult struct {
	// Score is the signed position in [-1,1].
	Score float64 `json:"score" yaml:"score"`

	// Confidence is the strength of evidence in [0,1]; 0 means no signal.
	Confidence float64 `json:"confidence" yaml:"confidence"`

	Evidence []string `json:"evidence" yaml:"evidence"`
	Label    string   `json:"label" yaml:"label"`
}

// PoliticalAnalysis is the per-text result of the dimensions analyzer.
type PoliticalAnalysis struct {
	Dimensions     map[Dimension]DimensionResult `json:"dimensions" yaml:"dimensions"`
	DominantTopics TopicScore                    `json:"dominant_topics" yaml:"dominant_topics"`

	// AnalysisQuality is the mean of nonzero dimension confidences. It is
	// 0.05 when analysis ran but no dimension fired, and 0 when the text
	// was too short to analyze.
	AnalysisQuality float64 `json:"analysis_quality" yaml:"analysis_quality"`
}

// Vector returns the economic, social and governance scores. ok is false
// unless all three dimensions are present.
func (a PoliticalAnalysis) Vector() (economic, social, governance float64, ok bool) {
	e, okE := a.Dimensions[DimensionEconomic]
	s, okS := a.Dimensions[DimensionSocial]
	g, okG := a.Dimensions[DimensionGovernance]
	if !okE || !okS || !okG {
		return 0, 0, 0, false
	}
	return e.Score, s.Score, g.Score, true
}

// ItemAnalysis is the persisted analysis of one stored post or comment.
type ItemAnalysis struct {
	ItemID    string            `json:"item_id" yaml:"item_id"`
	Kind      ItemKind          `json:"kind" yaml:"kind"`
	Subreddit string            `json:"subreddit" yaml:"subreddit"`
	Political PoliticalAnalysis `json:"political" yaml:"political"`

	// Sentiment is a compound polarity in [-1,1].
	Sentiment float64 `json:"sentiment" yaml:"sentiment"`
}

// Centroid is the mean position of a group of items in dimension space.
type Centroid struct {
	Economic   float64 `json:"economic" yaml:"economic"`
	Social     float64 `json:"social" yaml:"social"`
	Governance float64 `json:"governance" yaml:"governance"`
}

// Cluster summarizes the items that fall in one sign octant.
type Cluster struct {
	Size       int      `json:"size" yaml:"size"`
	Percentage float64  `json:"percentage" yaml:"percentage"`
	Centroid   Centroid `json:"centroid" yaml:"centroid"`
	Label      string   `json:"label" yaml:"label"`
}

// ClusterReport is the output of octant clustering. When there is not
// enough data, Clusters is empty and Message explains why.
type ClusterReport struct {
	Clusters    map[string]Cluster
	TotalPoints int
	NumClusters int
	Message     string
}

// Insufficient reports whether the report carries the insufficient-data
// sentinel instead of clusters.
func (r ClusterReport) Insufficient() bool {
	return r.Message != ""
}

// MarshalJSON emits {"clusters": [], "message": ...} for the
// insufficient-data case and {"clusters": {...}, "total_points": N,
// "num_clusters": K} otherwise.
func (r ClusterReport) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.asMap())
}

// MarshalYAML mirrors MarshalJSON.
func (r ClusterReport) MarshalYAML() (any, error) {
	return r.asMap(), nil
}

func (r ClusterReport) asMap() map[string]any {
	if r.Insufficient() {
		return map[string]any{
			"clusters": []Cluster{},
			"message":  r.Message,
		}
	}
	clusters := r.Clusters
	if clusters == nil {
		clusters = map[string]Cluster{}
	}
	return map[string]any{
		"clusters":     clusters,
		"total_points": r.TotalPoints,
		"num_clusters": r.NumClusters,
	}
}

// UnmarshalJSON accepts both shapes written by MarshalJSON.
func (r *ClusterReport) UnmarshalJSON(data []byte) error {
	var raw struct {
		Clusters    json.RawMessage `json:"clusters"`
		TotalPoints int             `json:"total_points"`
		NumClusters int             `json:"num_clusters"`
		Message     string          `json:"message"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding cluster report: %w", err)
	}

	*r = ClusterReport{
		TotalPoints: raw.TotalPoints,
		NumClusters: raw.NumClusters,
		Message:     raw.Message,
	}

	trimmed := bytes.TrimSpace(raw.Clusters)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	return json.Unmarshal(trimmed, &r.Clusters)
}

// CorpusAnalysis aggregates item analyses for one analysis run. Its
// fields map onto the corpus_analyses table.
type CorpusAnalysis struct {
	RunID     string `json:"run_id" yaml:"run_id"`
	Subreddit string `json:"subreddit" yaml:"subreddit"`
	ItemCount int    `json:"item_count" yaml:"item_count"`

	AvgEconomicScore   float64 `json:"avg_economic_score" yaml:"avg_economic_score"`
	EconomicStdDev     float64 `json:"economic_std_dev" yaml:"economic_std_dev"`
	AvgSocialScore     float64 `json:"avg_social_score" yaml:"avg_social_score"`
	SocialStdDev       float64 `json:"social_std_dev" yaml:"social_std_dev"`
	AvgGovernanceScore float64 `json:"avg_governance_score" yaml:"avg_governance_score"`
	GovernanceStdDev   float64 `json:"governance_std_dev" yaml:"governance_std_dev"`

	PoliticalDiversityIndex float64       `json:"political_diversity_index" yaml:"political_diversity_index"`
	Clusters                ClusterReport `json:"political_clusters" yaml:"political_clusters"`

	AvgSentiment float64    `json:"avg_sentiment" yaml:"avg_sentiment"`
	TopTopics    TopicScore `json:"top_topics" yaml:"top_topics"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
