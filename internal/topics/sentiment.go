// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package topics

import (
	"fmt"

	"github.com/pdiddy/discourse-engine/internal/sentiment"
)

// neutralBand is the compound-polarity band treated as neutral.
const neutralBand = 0.05

// TopicSentiment summarizes sentiment across the texts that mention a topic.
type TopicSentiment struct {
	Topic        string  `json:"topic" yaml:"topic"`
	Mentions     int     `json:"mentions" yaml:"mentions"`
	AvgSentiment float64 `json:"avg_sentiment" yaml:"avg_sentiment"`
	AvgRelevance float64 `json:"avg_relevance" yaml:"avg_relevance"`
	Positive     int     `json:"positive" yaml:"positive"`
	Negative     int     `json:"negative" yaml:"negative"`
	Neutral      int     `json:"neutral" yaml:"neutral"`
}

// TopicSentiment scores sentiment over the texts in which topic is
// detected. It returns ErrUnknownTopic when topic is not in the taxonomy.
// No matching texts is not an error; the result has zero Mentions.
func (d *Detector) TopicSentiment(topic string, texts []string, scorer sentiment.Scorer) (TopicSentiment, error) {
	if !d.taxonomy.Has(topic) {
		return TopicSentiment{}, fmt.Errorf("%w: %q", ErrUnknownTopic, topic)
	}

	out := TopicSentiment{Topic: topic}
	var sentimentSum, relevanceSum float64

	for _, text := range texts {
		relevance, ok := d.DetectTopics(text)[topic]
		if !ok {
			continue
		}
		s := scorer.Score(text)

		out.Mentions++
		sentimentSum += s
		relevanceSum += relevance

		switch {
		case s >= neutralBand:
			out.Positive++
		case s <= -neutralBand:
			out.Negative++
		default:
			out.Neutral++
		}
	}

	if out.Mentions > 0 {
		out.AvgSentiment = sentimentSum / float64(out.Mentions)
		out.AvgRelevance = relevanceSum / float64(out.Mentions)
	}
	return out, nil
}
