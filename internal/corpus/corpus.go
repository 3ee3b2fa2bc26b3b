// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus runs political analysis over stored Reddit content. A run
// analyzes every selected post and comment, persists the per-item results,
// aggregates them into corpus statistics and persists the aggregate under
// a fresh run ID.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/discourse-engine/internal/political"
	"github.com/pdiddy/discourse-engine/internal/sentiment"
	"github.com/pdiddy/discourse-engine/internal/store"
	"github.com/pdiddy/discourse-engine/pkg/types"
)

// progressEvery is how often Run reports item progress.
const progressEvery = 100

// ErrEmptyCorpus is returned when the selection matches no stored items.
var ErrEmptyCorpus = errors.New("no stored items to analyze")

// Package-level hooks, replaced in tests.
var (
	newRunID = uuid.NewString
	now      = time.Now
)

// Store loads texts and persists results. *store.Store satisfies it.
type Store interface {
	Texts(ctx context.Context, q store.TextQuery) ([]types.TextItem, error)
	SaveItemAnalyses(ctx context.Context, runID string, items []types.ItemAnalysis) error
	SaveCorpusAnalysis(ctx context.Context, ca types.CorpusAnalysis) error
}

// Analyzer scores one text. *political.Analyzer satisfies it.
type Analyzer interface {
	Analyze(text string) types.PoliticalAnalysis
}

// Options selects the corpus and tunes aggregation.
type Options struct {
	// Subreddit restricts the run to one subreddit; empty means all.
	Subreddit string

	// Limit caps posts and, separately, comments; 0 means all.
	Limit int

	IncludeComments bool

	// MinClusterSize is passed to cluster identification (default 5).
	MinClusterSize int
}

// OptionsFrom builds run options from the analysis config.
func OptionsFrom(subreddit string, cfg types.AnalysisConfig) Options {
	return Options{
		Subreddit:       subreddit,
		Limit:           cfg.Limit,
		IncludeComments: cfg.IncludeComments,
		MinClusterSize:  cfg.MinClusterSize,
	}
}

// Run analyzes the selected corpus and stores the result. Progress lines
// go to w. A nil scorer disables sentiment. The context is checked between
// items; a cancelled run stores nothing.
func Run(ctx context.Context, st Store, analyzer Analyzer, scorer sentiment.Scorer, opts Options, w io.Writer) (types.CorpusAnalysis, error) {
	if scorer == nil {
		scorer = sentiment.None{}
	}

	texts, err := st.Texts(ctx, store.TextQuery{
		Subreddit:       opts.Subreddit,
		IncludeComments: opts.IncludeComments,
		Limit:           opts.Limit,
	})
	if err != nil {
		return types.CorpusAnalysis{}, fmt.Errorf("loading texts: %w", err)
	}
	if len(texts) == 0 {
		return types.CorpusAnalysis{}, fmt.Errorf("%w: %s", ErrEmptyCorpus, scope(opts.Subreddit))
	}

	runID := newRunID()
	fmt.Fprintf(w, "Analyzing %d items from %s (run %s)\n", len(texts), scope(opts.Subreddit), runID)

	items := make([]types.ItemAnalysis, 0, len(texts))
	var posts, comments int
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return types.CorpusAnalysis{}, fmt.Errorf("analysis interrupted after %d items: %w", i, err)
		}

		items = append(items, types.ItemAnalysis{
			ItemID:    text.ID,
			Kind:      text.Kind,
			Subreddit: text.Subreddit,
			Political: analyzer.Analyze(text.Text),
			Sentiment: scorer.Score(text.Text),
		})
		if text.Kind == types.KindComment {
			comments++
		} else {
			posts++
		}

		if (i+1)%progressEvery == 0 {
			fmt.Fprintf(w, "analyzed:  %d/%d items\n", i+1, len(texts))
		}
	}

	if err := st.SaveItemAnalyses(ctx, runID, items); err != nil {
		return types.CorpusAnalysis{}, fmt.Errorf("saving item analyses: %w", err)
	}

	ca := political.Aggregate(items, opts.MinClusterSize)
	ca.RunID = runID
	ca.Subreddit = opts.Subreddit
	ca.CreatedAt = now().UTC()

	if err := st.SaveCorpusAnalysis(ctx, ca); err != nil {
		return types.CorpusAnalysis{}, fmt.Errorf("saving corpus analysis: %w", err)
	}

	fmt.Fprintf(w, "\nAnalysis summary: %d items (%d posts, %d comments); diversity %.3f, %s\n",
		ca.ItemCount, posts, comments, ca.PoliticalDiversityIndex, clusterSummary(ca.Clusters))
	return ca, nil
}

func scope(subreddit string) string {
	if subreddit == "" {
		return "all subreddits"
	}
	return "r/" + subreddit
}

func clusterSummary(r types.ClusterReport) string {
	if r.Insufficient() {
		return "too few scored items to cluster"
	}
	return fmt.Sprintf("%d clusters over %d items", r.NumClusters, r.TotalPoints)
}
