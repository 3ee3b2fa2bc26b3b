// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package topics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDetector(t *testing.T) *Detector {
	t.Helper()
	return NewDetector(DefaultTaxonomy())
}

func TestDefaultTaxonomyLoads(t *testing.T) {
	tax := DefaultTaxonomy()
	names := tax.Topics()
	require.NotEmpty(t, names)
	assert.Contains(t, names, "healthcare")
	assert.Contains(t, names, "economy")
	assert.True(t, tax.Has("law_enforcement"))
	assert.False(t, tax.Has("astrology"))
}

func TestDetectTopics_ShortOrEmpty(t *testing.T) {
	d := newTestDetector(t)
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"whitespace", "     \n\t   "},
		{"under ten chars", "  tax it  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, d.DetectTopics(tt.text))
		})
	}
}

func TestDetectTopics_NoMatches(t *testing.T) {
	d := newTestDetector(t)
	assert.Empty(t, d.DetectTopics("The weather was lovely and the picnic went well."))
}

func TestDetectTopics_WordBoundaries(t *testing.T) {
	d := newTestDetector(t)
	got := d.DetectTopics("The taxonomy of beetles is fascinating indeed, said the marketing intern.")
	assert.NotContains(t, got, "taxation")
	assert.NotContains(t, got, "economy")
}

func TestDetectTopics_CaseInsensitive(t *testing.T) {
	d := newTestDetector(t)
	got := d.DetectTopics("MEDICARE and Medicaid are both under review this year.")
	assert.Contains(t, got, "healthcare")
}

func TestDetectTopics_Scoring(t *testing.T) {
	d := newTestDetector(t)

	tests := []struct {
		name  string
		text  string
		topic string
		want  float64
	}{
		{
			// 7 words: normalizer floors at 1, one hit saturates frequency.
			name:  "short text saturates",
			text:  "We need to fix healthcare now, honestly.",
			topic: "healthcare",
			want:  1.0,
		},
		{
			// 40 words: normalizer is 2, one hit gives 0.5 plus 0.1 bonus.
			name:  "frequency normalized by length",
			text:  "healthcare " + strings.Repeat("word ", 39),
			topic: "healthcare",
			want:  0.6,
		},
		{
			// 60 words: normalizer is 3, two distinct hits give 2/3 + 0.2.
			name:  "unique keyword bonus",
			text:  "medicare medicaid " + strings.Repeat("word ", 58),
			topic: "healthcare",
			want:  2.0/3.0 + 0.2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.DetectTopics(tt.text)
			require.Contains(t, got, tt.topic)
			assert.InDelta(t, tt.want, got[tt.topic], 1e-9)
		})
	}
}

func TestDetectTopics_RelativeThresholdDropsIncidentalTopics(t *testing.T) {
	d := newTestDetector(t)

	text := strings.Repeat("medicare pays the hospital bills ", 10) +
		strings.Repeat("lorem ", 300) + "tax"

	got := d.DetectTopics(text)
	assert.Contains(t, got, "healthcare")
	assert.NotContains(t, got, "taxation", "single incidental hit should fall under a fifth of the top topic")
}

func TestDetectTopics_Deterministic(t *testing.T) {
	d := newTestDetector(t)
	text := "Tax cuts for business, stricter border enforcement, and police funding dominate the campaign."

	first := d.DetectTopics(text)
	require.NotEmpty(t, first)
	for i := 0; i < 5; i++ {
		if diff := cmp.Diff(first, d.DetectTopics(text)); diff != "" {
			t.Fatalf("DetectTopics not deterministic (-first +again):\n%s", diff)
		}
	}
}

func TestDetectTopics_Bounds(t *testing.T) {
	d := newTestDetector(t)
	texts := []string{
		"tax tax tax tax tax taxes taxation irs wealth tax income tax",
		"Guns, firearms, the second amendment and gun control: background checks now.",
		"Immigration, the border, asylum and refugees; deportation and visa policy.",
	}
	for _, text := range texts {
		for topic, score := range d.DetectTopics(text) {
			assert.GreaterOrEqual(t, score, 0.0, topic)
			assert.LessOrEqual(t, score, 1.0, topic)
		}
	}
}

func TestKeywordPattern_TrailingPunctuation(t *testing.T) {
	p := keywordPattern("states'")
	assert.True(t, p.MatchString("respect the states' choices"))
	assert.False(t, p.MatchString("the statesman spoke"))
}

func TestParseTaxonomy(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{name: "empty document", yaml: "", wantErr: true},
		{name: "topic without keywords", yaml: "housing: []\n", wantErr: true},
		{name: "invalid yaml", yaml: "housing: [unterminated\n", wantErr: true},
		{name: "valid", yaml: "housing:\n  - Rent Control\n  - rent control\n  - zoning\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tax, err := ParseTaxonomy([]byte(tt.yaml))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			kws, err := tax.Keywords("housing")
			require.NoError(t, err)
			assert.Equal(t, []string{"rent control", "zoning"}, kws)
		})
	}
}

func TestLoadTaxonomy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taxonomy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("housing:\n  - zoning\n  - rent control\n"), 0o644))

	tax, err := LoadTaxonomy(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"housing"}, tax.Topics())

	d := NewDetector(tax)
	got := d.DetectTopics("Zoning reform and rent control are on the ballot.")
	assert.Contains(t, got, "housing")

	_, err = LoadTaxonomy(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	def, err := LoadTaxonomy("")
	require.NoError(t, err)
	assert.True(t, def.Has("healthcare"))
}

func TestKeywordsUnknownTopic(t *testing.T) {
	_, err := DefaultTaxonomy().Keywords("astrology")
	assert.True(t, errors.Is(err, ErrUnknownTopic))
}
