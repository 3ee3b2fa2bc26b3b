// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/discourse-engine/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.StoreConfig{DataDir: t.TempDir()}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func seed(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	for _, name := range []string{"politics", "neoliberal"} {
		require.NoError(t, s.UpsertSubreddit(ctx, types.Subreddit{Name: name, Title: name, Subscribers: 100, CollectedAt: t0}))
	}
	_, err := s.SavePosts(ctx, []types.Post{
		{ID: "p1", Subreddit: "politics", Title: "Old post", Body: "Body one", CreatedAt: t0},
		{ID: "p2", Subreddit: "politics", Title: "New post", CreatedAt: t0.Add(time.Hour)},
		{ID: "p3", Subreddit: "neoliberal", Title: "Other sub", Body: "Markets", CreatedAt: t0.Add(2 * time.Hour)},
	})
	require.NoError(t, err)
	_, err = s.SaveComments(ctx, []types.Comment{
		{ID: "c1", PostID: "p1", ParentID: "t3_p1", Subreddit: "politics", Body: "A comment", CreatedAt: t0.Add(time.Minute)},
		{ID: "c2", PostID: "p3", ParentID: "t3_p3", Subreddit: "neoliberal", Body: "Another", CreatedAt: t0.Add(3 * time.Hour)},
	})
	require.NoError(t, err)
}

func TestOpen_Migrates(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(types.StoreConfig{DataDir: dir}, nil)
	require.NoError(t, err)

	version, dirty, err := s.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)
	require.NoError(t, s.Close())

	_, err = os.Stat(filepath.Join(dir, dbFile))
	require.NoError(t, err)

	// Reopening an up-to-date database is a no-op.
	s, err = Open(types.StoreConfig{DataDir: dir}, nil)
	require.NoError(t, err)
	defer s.Close()
	version, _, err = s.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
}

func TestUpsertSubreddit_KeepsKnownFields(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertSubreddit(ctx, types.Subreddit{
		Name: "politics", Title: "Politics", Description: "News", Subscribers: 8000000, CollectedAt: t0,
	}))
	// A feed fetch knows the title but not the subscriber count.
	require.NoError(t, s.UpsertSubreddit(ctx, types.Subreddit{
		Name: "politics", Title: "r/politics", CollectedAt: t0.Add(time.Hour),
	}))

	subs, err := s.Subreddits(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "r/politics", subs[0].Title)
	assert.Equal(t, "News", subs[0].Description)
	assert.Equal(t, 8000000, subs[0].Subscribers)
	assert.True(t, subs[0].CollectedAt.Equal(t0.Add(time.Hour)))

	assert.Error(t, s.UpsertSubreddit(ctx, types.Subreddit{}))
}

func TestSavePosts_Idempotent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertSubreddit(ctx, types.Subreddit{Name: "politics"}))

	post := types.Post{ID: "p1", Subreddit: "politics", Title: "Title", Score: 5, CreatedAt: t0}
	n, err := s.SavePosts(ctx, []types.Post{post})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	post.Score = 50
	_, err = s.SavePosts(ctx, []types.Post{post})
	require.NoError(t, err)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Posts)

	var score int
	require.NoError(t, s.db.QueryRow(`SELECT score FROM posts WHERE id = 'p1'`).Scan(&score))
	assert.Equal(t, 50, score)

	n, err = s.SavePosts(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSavePosts_UnknownSubreddit(t *testing.T) {
	s := testStore(t)
	_, err := s.SavePosts(context.Background(), []types.Post{{ID: "p1", Subreddit: "nowhere"}})
	assert.Error(t, err)
}

func TestSaveComments_OrphanRejected(t *testing.T) {
	s := testStore(t)
	_, err := s.SaveComments(context.Background(), []types.Comment{{ID: "c1", PostID: "missing", Subreddit: "politics"}})
	assert.Error(t, err)
}

func TestTexts(t *testing.T) {
	s := testStore(t)
	seed(t, s)
	ctx := context.Background()

	all, err := s.Texts(ctx, TextQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "p3", all[0].ID, "newest first")
	assert.Equal(t, types.KindPost, all[0].Kind)
	assert.Equal(t, "Other sub\nMarkets", all[0].Text)

	politics, err := s.Texts(ctx, TextQuery{Subreddit: "politics", IncludeComments: true})
	require.NoError(t, err)
	want := []types.TextItem{
		{ID: "p2", Kind: types.KindPost, Subreddit: "politics", Text: "New post"},
		{ID: "p1", Kind: types.KindPost, Subreddit: "politics", Text: "Old post\nBody one"},
		{ID: "c1", Kind: types.KindComment, Subreddit: "politics", Text: "A comment"},
	}
	if diff := cmp.Diff(want, politics); diff != "" {
		t.Errorf("Texts mismatch (-want +got):\n%s", diff)
	}

	limited, err := s.Texts(ctx, TextQuery{Limit: 1, IncludeComments: true})
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "p3", limited[0].ID)
	assert.Equal(t, "c2", limited[1].ID)
}

func analysisFixture(score float64) types.PoliticalAnalysis {
	return types.PoliticalAnalysis{
		Dimensions: map[types.Dimension]types.DimensionResult{
			types.DimensionEconomic: {
				Score: score, Confidence: 0.5,
				Evidence: []string{"Text shows more market indicators (1.5 vs 0.0 planned)"},
				Label:    "Strongly Market Economy",
			},
			types.DimensionSocial:     {Score: 0, Confidence: 0, Evidence: []string{}, Label: "Balanced Social View"},
			types.DimensionGovernance: {Score: -0.5, Confidence: 1, Evidence: []string{"x"}, Label: "Moderately Libertarian"},
		},
		DominantTopics:  types.TopicScore{"economy": 0.75},
		AnalysisQuality: 0.75,
	}
}

func TestItemAnalyses_RoundTrip(t *testing.T) {
	s := testStore(t)
	seed(t, s)
	ctx := context.Background()

	items := []types.ItemAnalysis{
		{ItemID: "p1", Kind: types.KindPost, Subreddit: "politics", Political: analysisFixture(1), Sentiment: 0.4},
		{ItemID: "c1", Kind: types.KindComment, Subreddit: "politics", Political: types.PoliticalAnalysis{
			Dimensions:     map[types.Dimension]types.DimensionResult{},
			DominantTopics: types.TopicScore{},
		}, Sentiment: -0.1},
		{ItemID: "p3", Kind: types.KindPost, Subreddit: "neoliberal", Political: analysisFixture(0.5)},
	}
	require.NoError(t, s.SaveItemAnalyses(ctx, "run-1", items))

	got, err := s.ItemAnalyses(ctx, "politics")
	require.NoError(t, err)
	if diff := cmp.Diff(items[:2], got); diff != "" {
		t.Errorf("ItemAnalyses mismatch (-want +got):\n%s", diff)
	}

	// The short-text item has no dimension columns.
	var econ *float64
	require.NoError(t, s.db.QueryRow(`SELECT economic_score FROM item_analyses WHERE item_id = 'c1'`).Scan(&econ))
	assert.Nil(t, econ)

	// Re-analysis replaces the row.
	items[0].Sentiment = 0.9
	require.NoError(t, s.SaveItemAnalyses(ctx, "run-2", items[:1]))
	all, err := s.ItemAnalyses(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	var runID string
	require.NoError(t, s.db.QueryRow(`SELECT run_id FROM item_analyses WHERE item_id = 'p1'`).Scan(&runID))
	assert.Equal(t, "run-2", runID)
}

func corpusFixture(runID, subreddit string, created time.Time) types.CorpusAnalysis {
	return types.CorpusAnalysis{
		RunID:                   runID,
		Subreddit:               subreddit,
		ItemCount:               12,
		AvgEconomicScore:        0.25,
		EconomicStdDev:          0.5,
		AvgSocialScore:          -0.1,
		SocialStdDev:            0.2,
		AvgGovernanceScore:      0.3,
		GovernanceStdDev:        0.4,
		PoliticalDiversityIndex: 0.6,
		Clusters: types.ClusterReport{
			Clusters: map[string]types.Cluster{
				"market_liberty_centralized": {
					Size: 6, Percentage: 50,
					Centroid: types.Centroid{Economic: 0.5, Social: -0.25, Governance: 0.5},
					Label:    "Neoliberal",
				},
			},
			TotalPoints: 12,
			NumClusters: 1,
		},
		AvgSentiment: 0.05,
		TopTopics:    types.TopicScore{"economy": 0.5, "healthcare": 0.25},
		CreatedAt:    created,
	}
}

func TestCorpusAnalyses(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.LatestCorpusAnalysis(ctx, "politics")
	assert.ErrorIs(t, err, ErrNotFound)

	older := corpusFixture("run-a", "politics", t0)
	newer := corpusFixture("run-b", "politics", t0.Add(time.Hour))
	newer.Clusters = types.ClusterReport{Message: "Insufficient data for clustering"}
	other := corpusFixture("run-c", "", t0.Add(2*time.Hour))

	for _, ca := range []types.CorpusAnalysis{older, newer, other} {
		require.NoError(t, s.SaveCorpusAnalysis(ctx, ca))
	}

	got, err := s.LatestCorpusAnalysis(ctx, "politics")
	require.NoError(t, err)
	if diff := cmp.Diff(newer, got); diff != "" {
		t.Errorf("LatestCorpusAnalysis mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, got.Clusters.Insufficient())

	all, err := s.LatestCorpusAnalysis(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "run-c", all.RunID)

	runs, err := s.CorpusAnalyses(ctx, "politics")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-b", runs[0].RunID)
	if diff := cmp.Diff(older, runs[1]); diff != "" {
		t.Errorf("older run mismatch (-want +got):\n%s", diff)
	}

	assert.Error(t, s.SaveCorpusAnalysis(ctx, types.CorpusAnalysis{}))
}

func TestCorpusAnalyses_SubSecondOrder(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	// The later run is saved first so rowid cannot break the tie.
	later := corpusFixture("run-late", "politics", t0.Add(500*time.Millisecond))
	onTheSecond := corpusFixture("run-early", "politics", t0)
	require.NoError(t, s.SaveCorpusAnalysis(ctx, later))
	require.NoError(t, s.SaveCorpusAnalysis(ctx, onTheSecond))

	got, err := s.LatestCorpusAnalysis(ctx, "politics")
	require.NoError(t, err)
	assert.Equal(t, "run-late", got.RunID)

	runs, err := s.CorpusAnalyses(ctx, "politics")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-late", runs[0].RunID)
	assert.True(t, runs[1].CreatedAt.Equal(t0))
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "", formatTime(time.Time{}))
	assert.Equal(t, "2024-03-01T12:00:00.000000000Z", formatTime(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-03-01T12:00:00.500000000Z", formatTime(time.Date(2024, 3, 1, 12, 0, 0, 5e8, time.UTC)))

	round := time.Date(2024, 3, 1, 12, 0, 0, 123456789, time.UTC)
	assert.True(t, parseTime(formatTime(round)).Equal(round))
	assert.True(t, parseTime("2024-03-01T12:00:00.5Z").Equal(round.Truncate(time.Second).Add(500*time.Millisecond)), "older rows still parse")
}

func TestExport(t *testing.T) {
	s := testStore(t)
	seed(t, s)
	ctx := context.Background()
	require.NoError(t, s.SaveCorpusAnalysis(ctx, corpusFixture("run-a", "politics", t0)))
	require.NoError(t, s.SaveCorpusAnalysis(ctx, corpusFixture("run-b", "neoliberal", t0)))

	jsonPath, err := s.ExportJSON(ctx, "politics")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.DataDir(), "export.json"), jsonPath)

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var doc Export
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, 3, doc.Stats.Posts)
	assert.Equal(t, 2, doc.Stats.CorpusAnalyses)
	require.Len(t, doc.Subreddits, 1)
	assert.Equal(t, "politics", doc.Subreddits[0].Name)
	require.Len(t, doc.CorpusAnalyses, 1)
	assert.Equal(t, 1, doc.CorpusAnalyses[0].Clusters.NumClusters)

	yamlPath, err := s.ExportYAML(ctx, "")
	require.NoError(t, err)
	data, err = os.ReadFile(yamlPath)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, yaml.Unmarshal(data, &raw))
	assert.Len(t, raw["corpus_analyses"], 2)
	assert.Len(t, raw["subreddits"], 2)
	assert.Contains(t, string(data), "political_clusters:")
	assert.Contains(t, string(data), "num_clusters: 1")
}
