// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package political scores text on three political axes (economic, social,
// governance) and summarizes populations of scored items: a
// confidence-weighted diversity index and sign-octant clusters.
package political

import (
	"fmt"
	"math"
	"strings"

	"github.com/pdiddy/discourse-engine/pkg/types"
)

const (
	// topicWeight is the tally contributed per unit of topic score. A
	// detected topic counts double a single keyword hit.
	topicWeight = 2.0

	// fullConfidenceEvidence is the weighted tally at which confidence
	// saturates.
	fullConfidenceEvidence = 3.0
)

// indicatorSet is one pole of a dimension: the keywords and topics that
// pull a text toward it.
type indicatorSet struct {
	name     string
	keywords []string
	topics   []string
}

// dimensionSpec describes one axis. Score is (positive - negative) / total,
// so positive is whichever pole sits on the right of the scale.
type dimensionSpec struct {
	dimension types.Dimension
	positive  indicatorSet
	negative  indicatorSet

	// labels run from most negative to most positive, split at
	// -0.6, -0.2, 0.2 and 0.6.
	labels [5]string
}

// dimensionSpecs is the closed set of axes, in reporting order.
var dimensionSpecs = []dimensionSpec{
	{
		dimension: types.DimensionEconomic,
		positive: indicatorSet{
			name: "market",
			keywords: []string{
				"free market", "free markets", "free enterprise", "capitalism",
				"competition", "privatization", "privatize", "deregulation",
				"deregulate", "lower taxes", "tax cuts", "small business",
				"entrepreneur", "entrepreneurs", "private sector", "property rights",
				"economic freedom", "laissez-faire", "supply and demand",
				"innovation", "market-based",
			},
			topics: []string{"economy"},
		},
		negative: indicatorSet{
			name: "planned",
			keywords: []string{
				"government regulation", "stricter regulation", "nationalize",
				"nationalization", "public ownership", "central planning",
				"socialism", "socialist", "wealth redistribution", "redistribute",
				"price controls", "universal healthcare", "single payer",
				"medicare for all", "minimum wage", "living wage", "labor unions",
				"collective bargaining", "workers' rights", "welfare state",
				"wealth tax", "tax the rich", "universal basic income",
				"public option", "government spending",
			},
			topics: []string{"welfare", "healthcare"},
		},
		labels: [5]string{
			"Strongly Planned Economy",
			"Moderately Planned Economy",
			"Mixed Economy",
			"Moderately Market Economy",
			"Strongly Market Economy",
		},
	},
	{
		dimension: types.DimensionSocial,
		positive: indicatorSet{
			name: "authority",
			keywords: []string{
				"traditional values", "family values", "law and order",
				"social cohesion", "moral values", "religious values",
				"christian values", "pro-life", "sanctity of life", "tough on crime",
				"national identity", "patriotism", "border security",
				"secure the border", "illegal immigration", "traditional marriage",
				"public morality", "social order", "respect for authority",
				"western civilization",
			},
			topics: []string{"religion", "law_enforcement"},
		},
		negative: indicatorSet{
			name: "liberty",
			keywords: []string{
				"civil liberties", "personal freedom", "individual rights", "lgbt",
				"lgbtq", "same-sex marriage", "gay marriage", "marriage equality",
				"transgender rights", "pro-choice", "reproductive rights",
				"abortion rights", "legalize", "decriminalize",
				"criminal justice reform", "social justice", "diversity",
				"inclusion", "racial justice", "police reform",
				"separation of church and state", "immigrant rights", "free speech",
			},
			topics: []string{"civil_rights", "drug_policy"},
		},
		labels: [5]string{
			"Strongly Progressive",
			"Moderately Progressive",
			"Balanced Social View",
			"Moderately Conservative",
			"Strongly Conservative",
		},
	},
	{
		dimension: types.DimensionGovernance,
		positive: indicatorSet{
			name: "centralized",
			keywords: []string{
				"federal", "central government", "national standard",
				"national standards", "executive order", "government oversight",
				"law enforcement", "strong government", "government intervention",
				"nationwide", "mandate", "federal agency", "central authority",
				"national security", "government control", "martial law",
				"crackdown",
			},
			topics: []string{"law_enforcement", "surveillance"},
		},
		negative: indicatorSet{
			name: "decentralized",
			keywords: []string{
				"states' rights", "state rights", "local control", "local government",
				"decentralize", "decentralized", "decentralization", "federalism",
				"limited government", "small government", "big government",
				"government overreach", "self-governance", "tenth amendment",
				"10th amendment", "grassroots", "individual liberty", "libertarian",
				"less government", "personal responsibility", "privacy rights",
			},
			topics: []string{"federalism"},
		},
		labels: [5]string{
			"Strongly Libertarian",
			"Moderately Libertarian",
			"Balanced Governance",
			"Moderately Authoritarian",
			"Strongly Authoritarian",
		},
	},
}

// tally returns the weighted evidence for one pole: one point per keyword
// contained in lower, plus topicWeight times the score of each listed
// topic. Keywords are literals, so inflections such as "privatized" still
// count for "privatize".
func (set indicatorSet) tally(lower string, topics types.TopicScore) float64 {
	total := 0.0
	for _, kw := range set.keywords {
		if strings.Contains(lower, kw) {
			total++
		}
	}
	for _, topic := range set.topics {
		if s, ok := topics[topic]; ok {
			total += s * topicWeight
		}
	}
	return total
}

// scoreIndicators computes the signed position, confidence and evidence
// for one dimension. No evidence on either side yields (0, 0, nil).
func scoreIndicators(spec dimensionSpec, text string, topics types.TopicScore) (score, confidence float64, evidence []string) {
	lower := strings.ToLower(text)
	pos := spec.positive.tally(lower, topics)
	neg := spec.negative.tally(lower, topics)

	total := pos + neg
	if total == 0 {
		return 0, 0, nil
	}

	score = (pos - neg) / total
	confidence = math.Min(total/fullConfidenceEvidence, 1)
	return score, confidence, []string{evidenceLine(spec, pos, neg)}
}

// evidenceLine is a coarse summary of which pole dominated. It does not
// quote matched spans.
func evidenceLine(spec dimensionSpec, pos, neg float64) string {
	switch {
	case pos > neg:
		return fmt.Sprintf("Text shows more %s indicators (%.1f vs %.1f %s)", spec.positive.name, pos, neg, spec.negative.name)
	case neg > pos:
		return fmt.Sprintf("Text shows more %s indicators (%.1f vs %.1f %s)", spec.negative.name, neg, pos, spec.positive.name)
	default:
		return fmt.Sprintf("Text shows balanced %s and %s indicators (%.1f each)", spec.positive.name, spec.negative.name, pos)
	}
}

// label buckets score into one of the dimension's five labels.
func (s dimensionSpec) label(score float64) string {
	switch {
	case score > 0.6:
		return s.labels[4]
	case score > 0.2:
		return s.labels[3]
	case score > -0.2:
		return s.labels[2]
	case score > -0.6:
		return s.labels[1]
	default:
		return s.labels[0]
	}
}

// scoreDimension runs one axis and packages the result.
func scoreDimension(spec dimensionSpec, text string, topics types.TopicScore) types.DimensionResult {
	score, confidence, evidence := scoreIndicators(spec, text, topics)
	if evidence == nil {
		evidence = []string{}
	}
	return types.DimensionResult{
		Score:      score,
		Confidence: confidence,
		Evidence:   evidence,
		Label:      spec.label(score),
	}
}

// Label returns the human-readable bucket for score on dimension d. An
// unknown dimension yields an empty string.
func Label(d types.Dimension, score float64) string {
	for _, s := range dimensionSpecs {
		if s.dimension == d {
			return s.label(score)
		}
	}
	return ""
}
