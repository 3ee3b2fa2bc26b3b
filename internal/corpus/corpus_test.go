// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/discourse-engine/internal/political"
	"github.com/pdiddy/discourse-engine/internal/sentiment"
	"github.com/pdiddy/discourse-engine/internal/store"
	"github.com/pdiddy/discourse-engine/internal/topics"
	"github.com/pdiddy/discourse-engine/pkg/types"
)

const (
	marketText  = "The free market and deregulation drive innovation. We need strong federal law enforcement to maintain order."
	plannedText = "We need wealth redistribution, price controls and a living wage. Limited government and local control protect civil liberties."
)

var fixedTime = time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)

func fixHooks(t *testing.T) {
	t.Helper()
	oldID, oldNow := newRunID, now
	newRunID = func() string { return "run-test" }
	now = func() time.Time { return fixedTime }
	t.Cleanup(func() { newRunID, now = oldID, oldNow })
}

func testAnalyzer() *political.Analyzer {
	return political.NewAnalyzer(topics.NewDetector(topics.DefaultTaxonomy()))
}

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	ctx := context.Background()
	s, err := store.Open(types.StoreConfig{DataDir: t.TempDir()}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.UpsertSubreddit(ctx, types.Subreddit{Name: "politics"}))
	require.NoError(t, s.UpsertSubreddit(ctx, types.Subreddit{Name: "aww"}))

	var posts []types.Post
	for i := 0; i < 12; i++ {
		text := marketText
		if i%2 == 1 {
			text = plannedText
		}
		posts = append(posts, types.Post{
			ID:        fmt.Sprintf("p%02d", i),
			Subreddit: "politics",
			Title:     text,
			CreatedAt: fixedTime.Add(time.Duration(i) * time.Minute),
		})
	}
	posts = append(posts, types.Post{ID: "cat", Subreddit: "aww", Title: "My cat knocked a glass off the kitchen table this morning."})
	_, err = s.SavePosts(ctx, posts)
	require.NoError(t, err)

	_, err = s.SaveComments(ctx, []types.Comment{
		{ID: "c1", PostID: "p00", Subreddit: "politics", Body: "This is a great and wonderful idea!"},
	})
	require.NoError(t, err)
	return s
}

func TestRun_EndToEnd(t *testing.T) {
	fixHooks(t)
	s := seededStore(t)
	ctx := context.Background()

	var buf bytes.Buffer
	got, err := Run(ctx, s, testAnalyzer(), sentiment.Default(), Options{Subreddit: "politics"}, &buf)
	require.NoError(t, err)

	assert.Equal(t, "run-test", got.RunID)
	assert.Equal(t, "politics", got.Subreddit)
	assert.Equal(t, 12, got.ItemCount)
	assert.True(t, got.CreatedAt.Equal(fixedTime))

	require.False(t, got.Clusters.Insufficient())
	assert.Equal(t, 12, got.Clusters.TotalPoints)
	assert.Equal(t, 2, got.Clusters.NumClusters)
	for key, c := range got.Clusters.Clusters {
		assert.Equal(t, 6, c.Size, key)
		assert.InDelta(t, 50.0, c.Percentage, 1e-9, key)
	}
	assert.Greater(t, got.PoliticalDiversityIndex, 0.0)
	assert.InDelta(t, 0.0, got.AvgEconomicScore, 1e-9, "equal and opposite economic groups")
	assert.Contains(t, got.TopTopics, "economy")

	stored, err := s.LatestCorpusAnalysis(ctx, "politics")
	require.NoError(t, err)
	if diff := cmp.Diff(got, stored); diff != "" {
		t.Errorf("stored run mismatch (-returned +stored):\n%s", diff)
	}

	items, err := s.ItemAnalyses(ctx, "politics")
	require.NoError(t, err)
	assert.Len(t, items, 12)

	out := buf.String()
	assert.Contains(t, out, "Analyzing 12 items from r/politics (run run-test)")
	assert.Contains(t, out, "Analysis summary: 12 items (12 posts, 0 comments)")
	assert.Contains(t, out, "2 clusters over 12 items")
}

func TestRun_AllSubredditsWithComments(t *testing.T) {
	fixHooks(t)
	s := seededStore(t)

	var buf bytes.Buffer
	got, err := Run(context.Background(), s, testAnalyzer(), nil,
		Options{IncludeComments: true, MinClusterSize: 8}, &buf)
	require.NoError(t, err)

	assert.Equal(t, "", got.Subreddit)
	assert.Equal(t, 14, got.ItemCount)
	assert.Equal(t, 0.0, got.AvgSentiment, "nil scorer runs without sentiment")
	assert.True(t, got.Clusters.Insufficient(), "14 scored items are fewer than twice the minimum of 8")
	assert.Contains(t, buf.String(), "from all subreddits")
	assert.Contains(t, buf.String(), "(13 posts, 1 comments)")
	assert.Contains(t, buf.String(), "too few scored items to cluster")
}

func TestRun_EmptyCorpus(t *testing.T) {
	s := seededStore(t)
	_, err := Run(context.Background(), s, testAnalyzer(), nil, Options{Subreddit: "golang"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrEmptyCorpus)
	assert.Contains(t, err.Error(), "r/golang")
}

// fakeStore records what Run persists.
type fakeStore struct {
	texts     []types.TextItem
	saveErr   error
	itemsRun  string
	items     []types.ItemAnalysis
	corpus    []types.CorpusAnalysis
	lastQuery store.TextQuery
}

func (f *fakeStore) Texts(_ context.Context, q store.TextQuery) ([]types.TextItem, error) {
	f.lastQuery = q
	return f.texts, nil
}

func (f *fakeStore) SaveItemAnalyses(_ context.Context, runID string, items []types.ItemAnalysis) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.itemsRun = runID
	f.items = items
	return nil
}

func (f *fakeStore) SaveCorpusAnalysis(_ context.Context, ca types.CorpusAnalysis) error {
	f.corpus = append(f.corpus, ca)
	return nil
}

// cancelAfter cancels the run once it has analyzed n texts.
type cancelAfter struct {
	n      int
	cancel context.CancelFunc
	calls  int
}

func (c *cancelAfter) Analyze(text string) types.PoliticalAnalysis {
	c.calls++
	if c.calls == c.n {
		c.cancel()
	}
	return types.PoliticalAnalysis{}
}

func TestRun_Cancelled(t *testing.T) {
	f := &fakeStore{texts: []types.TextItem{
		{ID: "a", Kind: types.KindPost, Text: marketText},
		{ID: "b", Kind: types.KindPost, Text: marketText},
		{ID: "c", Kind: types.KindPost, Text: marketText},
	}}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	analyzer := &cancelAfter{n: 2, cancel: cancel}

	_, err := Run(ctx, f, analyzer, nil, Options{}, &bytes.Buffer{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "after 2 items")
	assert.Equal(t, 2, analyzer.calls)
	assert.Nil(t, f.items, "nothing stored on cancel")
	assert.Empty(t, f.corpus)
}

func TestRun_SaveError(t *testing.T) {
	f := &fakeStore{
		texts:   []types.TextItem{{ID: "a", Kind: types.KindPost, Text: marketText}},
		saveErr: errors.New("disk full"),
	}
	_, err := Run(context.Background(), f, testAnalyzer(), nil, Options{}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "saving item analyses: disk full")
	assert.Empty(t, f.corpus)
}

func TestRun_PassesSelection(t *testing.T) {
	fixHooks(t)
	f := &fakeStore{texts: []types.TextItem{{ID: "a", Kind: types.KindComment, Subreddit: "politics", Text: plannedText}}}

	opts := OptionsFrom("politics", types.AnalysisConfig{Limit: 50, IncludeComments: true, MinClusterSize: 3})
	_, err := Run(context.Background(), f, testAnalyzer(), sentiment.Default(), opts, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, store.TextQuery{Subreddit: "politics", IncludeComments: true, Limit: 50}, f.lastQuery)
	assert.Equal(t, "run-test", f.itemsRun)
	require.Len(t, f.items, 1)
	assert.Equal(t, types.KindComment, f.items[0].Kind)
	require.Len(t, f.corpus, 1)
	assert.Equal(t, "run-test", f.corpus[0].RunID)
}

func TestRun_ProgressLines(t *testing.T) {
	fixHooks(t)
	texts := make([]types.TextItem, 250)
	for i := range texts {
		texts[i] = types.TextItem{ID: fmt.Sprint(i), Kind: types.KindPost, Text: "short"}
	}
	var buf bytes.Buffer
	_, err := Run(context.Background(), &fakeStore{texts: texts}, testAnalyzer(), nil, Options{}, &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "analyzed:  100/250 items")
	assert.Contains(t, buf.String(), "analyzed:  200/250 items")
	assert.NotContains(t, buf.String(), "300/250")
}
