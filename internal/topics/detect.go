// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package topics

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/pdiddy/discourse-engine/pkg/types"
)

const (
	// minTextLength is the shortest stripped text that is scanned at all.
	minTextLength = 10

	// keywordDensity is the expected keyword rate in political text:
	// roughly one hit per twenty words saturates the frequency term.
	keywordDensity = 0.05

	uniqueBonusPerKeyword = 0.1
	maxUniqueBonus        = 0.3

	// relativeThreshold drops topics scoring below this fraction of the
	// strongest topic in the same text.
	relativeThreshold = 0.2
)

// Detector scores topic presence in text. It is safe for concurrent use.
type Detector struct {
	taxonomy *Taxonomy
	patterns map[string][]*regexp.Regexp
}

// NewDetector compiles the keyword patterns of taxonomy.
func NewDetector(taxonomy *Taxonomy) *Detector {
	d := &Detector{
		taxonomy: taxonomy,
		patterns: make(map[string][]*regexp.Regexp, len(taxonomy.names)),
	}
	for _, topic := range taxonomy.names {
		kws := taxonomy.keywords[topic]
		compiled := make([]*regexp.Regexp, 0, len(kws))
		for _, kw := range kws {
			compiled = append(compiled, keywordPattern(kw))
		}
		d.patterns[topic] = compiled
	}
	return d
}

// Taxonomy returns the taxonomy the detector was built from.
func (d *Detector) Taxonomy() *Taxonomy {
	return d.taxonomy
}

// keywordPattern builds a case-insensitive pattern that only matches kw as
// a whole word. A boundary is only required on sides where kw starts or
// ends with a word character, so keywords like "states'" still match.
func keywordPattern(kw string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("(?i)")
	runes := []rune(kw)
	if isWordRune(runes[0]) {
		b.WriteString(`\b`)
	}
	b.WriteString(regexp.QuoteMeta(kw))
	if isWordRune(runes[len(runes)-1]) {
		b.WriteString(`\b`)
	}
	return regexp.MustCompile(b.String())
}

// isWordRune mirrors the ASCII word class used by \b in RE2.
func isWordRune(r rune) bool {
	return r < unicode.MaxASCII && (r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r))
}

// DetectTopics scores every taxonomy topic in text and returns those that
// clear the relative threshold. Text shorter than ten characters after
// trimming, or text with no keyword hits, yields an empty map.
func (d *Detector) DetectTopics(text string) types.TopicScore {
	result := types.TopicScore{}
	if len(strings.TrimSpace(text)) < minTextLength {
		return result
	}

	wordCount := len(strings.Fields(text))
	norm := math.Max(float64(wordCount)*keywordDensity, 1)

	for topic, patterns := range d.patterns {
		matches, unique := 0, 0
		for _, p := range patterns {
			n := len(p.FindAllStringIndex(text, -1))
			if n > 0 {
				matches += n
				unique++
			}
		}
		if matches == 0 {
			continue
		}

		frequency := math.Min(float64(matches)/norm, 1)
		bonus := math.Min(float64(unique)*uniqueBonusPerKeyword, maxUniqueBonus)
		result[topic] = math.Min(frequency+bonus, 1)
	}

	return filterRelative(result)
}

// filterRelative removes topics scoring below relativeThreshold of the
// maximum score.
func filterRelative(scores types.TopicScore) types.TopicScore {
	if len(scores) == 0 {
		return scores
	}
	maxScore := 0.0
	for _, s := range scores {
		maxScore = math.Max(maxScore, s)
	}
	cutoff := maxScore * relativeThreshold
	for topic, s := range scores {
		if s < cutoff {
			delete(scores, topic)
		}
	}
	return scores
}
