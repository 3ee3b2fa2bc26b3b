// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sentiment

import (
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_Polarity(t *testing.T) {
	l := Default()

	tests := []struct {
		name string
		text string
		sign int
	}{
		{"positive", "This policy is great and I love it.", 1},
		{"negative", "What a terrible disaster.", -1},
		{"neutral", "The committee meets on Tuesday at noon.", 0},
		{"negation flips", "This is not great.", -1},
		{"but favours the second clause", "The idea is good but the execution is terrible", -1},
		{"but favours the second clause positively", "The rollout was bad but the results are excellent", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := l.Score(tt.text)
			switch tt.sign {
			case 1:
				assert.Greater(t, got, 0.0)
			case -1:
				assert.Less(t, got, 0.0)
			default:
				assert.Equal(t, 0.0, got)
			}
		})
	}
}

func TestScore_Empty(t *testing.T) {
	l := Default()
	assert.Equal(t, 0.0, l.Score(""))
	assert.Equal(t, 0.0, l.Score("   ...   !!! "))
}

func TestScore_Intensifiers(t *testing.T) {
	l := Default()
	base := l.Score("The plan is good.")

	assert.Greater(t, l.Score("The plan is very good."), base, "booster")
	assert.Less(t, l.Score("The plan is slightly good."), base, "dampener")
	assert.Greater(t, l.Score("The plan is good!!"), base, "exclamation")

	// Exclamation emphasis saturates.
	assert.Equal(t, l.Score("The plan is good!!!!"), l.Score("The plan is good!!!!!!!"))
}

func TestScore_Bounds(t *testing.T) {
	l := Default()
	texts := []string{
		"love love love love love love love love best best best amazing!!!!",
		"worst evil murder kill tragedy catastrophe terror disaster!!!!",
		"not bad, not terrible, never good, hardly wonderful",
	}
	for _, text := range texts {
		got := l.Score(text)
		assert.GreaterOrEqual(t, got, -1.0, text)
		assert.LessOrEqual(t, got, 1.0, text)
		assert.False(t, math.IsNaN(got), text)
	}
}

func TestDefault_Shared(t *testing.T) {
	assert.Same(t, Default(), Default())
}

func TestScore_Concurrent(t *testing.T) {
	l := Default()
	want := l.Score("The plan is very good.")

	var wg sync.WaitGroup
	got := make([]float64, 8)
	for i := range got {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = l.Score("The plan is very good.")
		}()
	}
	wg.Wait()
	for _, g := range got {
		assert.Equal(t, want, g)
	}
}

func TestNone(t *testing.T) {
	var s Scorer = None{}
	assert.Equal(t, 0.0, s.Score("I love this wonderful day"))
}

func TestParse(t *testing.T) {
	l, err := Parse([]byte("# custom words\nyay\t2.0\t0.5\t[2, 2]\n\nboo\t-1.5\n"))
	require.NoError(t, err)
	assert.Greater(t, l.Score("yay"), 0.0)
	assert.Less(t, l.Score("boo"), 0.0)
	assert.Less(t, l.Score("not yay"), 0.0)
	assert.Equal(t, 0.0, l.Score("great"), "built-in words are not merged in")

	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"only comments", "# nothing\n\n"},
		{"missing valence", "yay\n"},
		{"bad valence", "yay\tlots\n"},
		{"missing token", "\t2.0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	l, err := Load("")
	require.NoError(t, err)
	assert.Greater(t, l.Score("great"), 0.0)

	path := filepath.Join(t.TempDir(), "lexicon.txt")
	require.NoError(t, os.WriteFile(path, []byte("meh\t-0.5\n"), 0o644))
	l, err = Load(path)
	require.NoError(t, err)
	assert.Less(t, l.Score("meh"), 0.0)
	assert.Equal(t, 0.0, l.Score("great"))

	_, err = Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
