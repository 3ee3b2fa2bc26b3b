// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sentiment scores the polarity of short social-media text with
// VADER. Scores are compound values in [-1,1].
package sentiment

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/drankou/go-vader/vader"
)

// The lexicon files ship with github.com/drankou/go-vader (see LICENSE.vader).
var (
	//go:embed vader_lexicon.txt
	defaultLexicon string

	//go:embed emoji_utf8_lexicon.txt
	emojiLexicon string
)

// Scorer returns a compound polarity in [-1,1] for text.
type Scorer interface {
	Score(text string) float64
}

// None is a Scorer that reports every text as neutral. It stands in when
// no lexicon could be loaded.
type None struct{}

// Score always returns 0.
func (None) Score(string) float64 { return 0 }

// Lexicon is a VADER Scorer. It is safe for concurrent use.
type Lexicon struct {
	sia *vader.SentimentIntensityAnalyzer
}

var (
	emojiMap = sync.OnceValue(func() map[string]string {
		return vader.MakeEmojiLexiconMap(emojiLexicon)
	})
	builtIn = sync.OnceValue(func() *Lexicon {
		return newLexicon(defaultLexicon)
	})
)

// newLexicon fills the analyzer the way vader's Init does, from text
// already known to be well formed.
func newLexicon(lexicon string) *Lexicon {
	return &Lexicon{sia: &vader.SentimentIntensityAnalyzer{
		LexiconMap:        vader.MakeLexiconMap(lexicon),
		EmojiLexiconMap:   emojiMap(),
		SpecialCaseIdioms: vader.SpecialCaseIdioms,
	}}
}

// Default returns the built-in VADER lexicon.
func Default() *Lexicon {
	return builtIn()
}

// Load reads a VADER-format lexicon file. An empty path returns the
// built-in one.
func Load(path string) (*Lexicon, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sentiment lexicon %s: %w", path, err)
	}
	l, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing sentiment lexicon %s: %w", path, err)
	}
	return l, nil
}

// Parse builds a Lexicon from VADER lexicon text: one token per line, a
// tab, then its mean valence. Extra tab-separated columns are ignored,
// as are blank lines and lines starting with #.
func Parse(data []byte) (*Lexicon, error) {
	var clean []string
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 || fields[0] == "" {
			return nil, fmt.Errorf("line %d: want token<TAB>valence", i+1)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: valence %q: %w", i+1, fields[1], err)
		}
		clean = append(clean, fields[0]+"\t"+strconv.FormatFloat(v, 'f', -1, 64))
	}
	if len(clean) == 0 {
		return nil, fmt.Errorf("lexicon has no entries")
	}
	return newLexicon(strings.Join(clean, "\n")), nil
}

// Score returns VADER's compound score for text.
func (l *Lexicon) Score(text string) float64 {
	return l.sia.PolarityScores(text)["compound"]
}
