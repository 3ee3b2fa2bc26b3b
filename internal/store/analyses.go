// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pdiddy/discourse-engine/pkg/types"
)

// SaveItemAnalyses upserts per-item results of one analysis run. An item
// analyzed again replaces its earlier row.
func (s *Store) SaveItemAnalyses(ctx context.Context, runID string, items []types.ItemAnalysis) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO item_analyses (
			item_id, kind, subreddit, run_id,
			economic_score, economic_confidence,
			social_score, social_confidence,
			governance_score, governance_confidence,
			analysis_quality, sentiment, analysis, analyzed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(item_id, kind) DO UPDATE SET
			subreddit=excluded.subreddit, run_id=excluded.run_id,
			economic_score=excluded.economic_score, economic_confidence=excluded.economic_confidence,
			social_score=excluded.social_score, social_confidence=excluded.social_confidence,
			governance_score=excluded.governance_score, governance_confidence=excluded.governance_confidence,
			analysis_quality=excluded.analysis_quality, sentiment=excluded.sentiment,
			analysis=excluded.analysis, analyzed_at=excluded.analyzed_at`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	now := formatTime(time.Now())
	for _, item := range items {
		blob, err := json.Marshal(item.Political)
		if err != nil {
			return fmt.Errorf("encoding analysis of %s: %w", item.ItemID, err)
		}
		econ, econConf := dimensionColumns(item.Political, types.DimensionEconomic)
		social, socialConf := dimensionColumns(item.Political, types.DimensionSocial)
		gov, govConf := dimensionColumns(item.Political, types.DimensionGovernance)

		_, err = stmt.ExecContext(ctx,
			item.ItemID, string(item.Kind), item.Subreddit, runID,
			econ, econConf, social, socialConf, gov, govConf,
			item.Political.AnalysisQuality, item.Sentiment, string(blob), now,
		)
		if err != nil {
			return fmt.Errorf("inserting analysis of %s: %w", item.ItemID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing item analyses: %w", err)
	}
	return nil
}

// dimensionColumns returns NULLs when the dimension was not scored.
func dimensionColumns(a types.PoliticalAnalysis, d types.Dimension) (score, confidence sql.NullFloat64) {
	dr, ok := a.Dimensions[d]
	if !ok {
		return sql.NullFloat64{}, sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: dr.Score, Valid: true}, sql.NullFloat64{Float64: dr.Confidence, Valid: true}
}

// ItemAnalyses returns stored item analyses, optionally for one subreddit,
// ordered by item.
func (s *Store) ItemAnalyses(ctx context.Context, subreddit string) ([]types.ItemAnalysis, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT item_id, kind, subreddit, sentiment, analysis FROM item_analyses
		 WHERE (? = '' OR subreddit = ?)
		 ORDER BY kind DESC, item_id`, subreddit, subreddit)
	if err != nil {
		return nil, fmt.Errorf("querying item analyses: %w", err)
	}
	defer rows.Close()

	var out []types.ItemAnalysis
	for rows.Next() {
		var item types.ItemAnalysis
		var kind, blob string
		if err := rows.Scan(&item.ItemID, &kind, &item.Subreddit, &item.Sentiment, &blob); err != nil {
			return nil, fmt.Errorf("scanning item analysis: %w", err)
		}
		item.Kind = types.ItemKind(kind)
		if err := json.Unmarshal([]byte(blob), &item.Political); err != nil {
			return nil, fmt.Errorf("decoding analysis of %s: %w", item.ItemID, err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// SaveCorpusAnalysis stores the aggregate of one run, keyed by RunID.
func (s *Store) SaveCorpusAnalysis(ctx context.Context, ca types.CorpusAnalysis) error {
	if ca.RunID == "" {
		return fmt.Errorf("corpus analysis has no run id")
	}
	clusters, err := json.Marshal(ca.Clusters)
	if err != nil {
		return fmt.Errorf("encoding clusters: %w", err)
	}
	topics := ca.TopTopics
	if topics == nil {
		topics = types.TopicScore{}
	}
	topicsJSON, err := json.Marshal(topics)
	if err != nil {
		return fmt.Errorf("encoding top topics: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO corpus_analyses (
			run_id, subreddit, item_count,
			avg_economic_score, economic_std_dev,
			avg_social_score, social_std_dev,
			avg_governance_score, governance_std_dev,
			political_diversity_index, political_clusters,
			avg_sentiment, top_topics, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(run_id) DO UPDATE SET
			subreddit=excluded.subreddit, item_count=excluded.item_count,
			avg_economic_score=excluded.avg_economic_score, economic_std_dev=excluded.economic_std_dev,
			avg_social_score=excluded.avg_social_score, social_std_dev=excluded.social_std_dev,
			avg_governance_score=excluded.avg_governance_score, governance_std_dev=excluded.governance_std_dev,
			political_diversity_index=excluded.political_diversity_index,
			political_clusters=excluded.political_clusters,
			avg_sentiment=excluded.avg_sentiment, top_topics=excluded.top_topics,
			created_at=excluded.created_at`,
		ca.RunID, ca.Subreddit, ca.ItemCount,
		ca.AvgEconomicScore, ca.EconomicStdDev,
		ca.AvgSocialScore, ca.SocialStdDev,
		ca.AvgGovernanceScore, ca.GovernanceStdDev,
		ca.PoliticalDiversityIndex, string(clusters),
		ca.AvgSentiment, string(topicsJSON), formatTime(ca.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting corpus analysis %s: %w", ca.RunID, err)
	}
	return nil
}

const corpusColumns = `run_id, subreddit, item_count,
	avg_economic_score, economic_std_dev,
	avg_social_score, social_std_dev,
	avg_governance_score, governance_std_dev,
	political_diversity_index, political_clusters,
	avg_sentiment, top_topics, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanCorpus(row scanner) (types.CorpusAnalysis, error) {
	var ca types.CorpusAnalysis
	var clusters, topics, created string
	err := row.Scan(
		&ca.RunID, &ca.Subreddit, &ca.ItemCount,
		&ca.AvgEconomicScore, &ca.EconomicStdDev,
		&ca.AvgSocialScore, &ca.SocialStdDev,
		&ca.AvgGovernanceScore, &ca.GovernanceStdDev,
		&ca.PoliticalDiversityIndex, &clusters,
		&ca.AvgSentiment, &topics, &created,
	)
	if err != nil {
		return types.CorpusAnalysis{}, err
	}
	if err := json.Unmarshal([]byte(clusters), &ca.Clusters); err != nil {
		return types.CorpusAnalysis{}, fmt.Errorf("decoding clusters of %s: %w", ca.RunID, err)
	}
	if err := json.Unmarshal([]byte(topics), &ca.TopTopics); err != nil {
		return types.CorpusAnalysis{}, fmt.Errorf("decoding top topics of %s: %w", ca.RunID, err)
	}
	ca.CreatedAt = parseTime(created)
	return ca, nil
}

// LatestCorpusAnalysis returns the most recent run for subreddit. An empty
// subreddit selects runs over all stored subreddits. ErrNotFound is
// returned when there is none.
func (s *Store) LatestCorpusAnalysis(ctx context.Context, subreddit string) (types.CorpusAnalysis, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+corpusColumns+` FROM corpus_analyses
		 WHERE subreddit = ?
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT 1`, subreddit)
	ca, err := scanCorpus(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.CorpusAnalysis{}, fmt.Errorf("corpus analysis for %q: %w", subreddit, ErrNotFound)
	}
	if err != nil {
		return types.CorpusAnalysis{}, fmt.Errorf("querying corpus analysis: %w", err)
	}
	return ca, nil
}

// CorpusAnalyses returns every stored run, newest first. A non-empty
// subreddit filters to that subreddit's runs.
func (s *Store) CorpusAnalyses(ctx context.Context, subreddit string) ([]types.CorpusAnalysis, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+corpusColumns+` FROM corpus_analyses
		 WHERE (? = '' OR subreddit = ?)
		 ORDER BY created_at DESC, rowid DESC`, subreddit, subreddit)
	if err != nil {
		return nil, fmt.Errorf("querying corpus analyses: %w", err)
	}
	defer rows.Close()

	var out []types.CorpusAnalysis
	for rows.Next() {
		ca, err := scanCorpus(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning corpus analysis: %w", err)
		}
		out = append(out, ca)
	}
	return out, rows.Err()
}
