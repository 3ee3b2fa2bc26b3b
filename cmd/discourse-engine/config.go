package main

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/discourse-engine/internal/political"
	"github.com/pdiddy/discourse-engine/internal/sentiment"
	"github.com/pdiddy/discourse-engine/internal/store"
	"github.com/pdiddy/discourse-engine/internal/topics"
	"github.com/pdiddy/discourse-engine/pkg/types"
)

const (
	defaultTimeout = 30 * time.Second
	defaultDelay   = 1 * time.Second
)

// pipelineConfig reads every stage's settings from viper: config file,
// DISCOURSE_ENGINE_* environment and bound flags.
func pipelineConfig() types.PipelineConfig {
	cfg := types.PipelineConfig{
		Collection: types.CollectionConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("collect.timeout"),
				UserAgent: viper.GetString("collect.user_agent"),
			},
			Backend:         types.CollectionBackend(viper.GetString("collect.backend")),
			Sort:            types.ListingSort(viper.GetString("collect.sort")),
			Limit:           viper.GetInt("collect.limit"),
			CommentsPerPost: viper.GetInt("collect.comments"),
			RequestDelay:    viper.GetDuration("collect.delay"),
			MaxRetries:      viper.GetInt("collect.max_retries"),
		},
		Analysis: types.AnalysisConfig{
			MinClusterSize:       viper.GetInt("analysis.min_cluster_size"),
			TaxonomyPath:         viper.GetString("analysis.taxonomy"),
			SentimentLexiconPath: viper.GetString("analysis.sentiment_lexicon"),
			Limit:                viper.GetInt("analysis.limit"),
			IncludeComments:      viper.GetBool("analysis.include_comments"),
		},
		Store: types.StoreConfig{
			DataDir: viper.GetString("data_dir"),
		},
	}

	if cfg.Collection.Timeout == 0 {
		cfg.Collection.Timeout = defaultTimeout
	}
	if cfg.Collection.RequestDelay == 0 {
		cfg.Collection.RequestDelay = defaultDelay
	}
	if cfg.Collection.UserAgent == "" {
		cfg.Collection.UserAgent = "discourse-engine/" + version
	}
	if cfg.Analysis.MinClusterSize <= 0 {
		cfg.Analysis.MinClusterSize = political.DefaultMinClusterSize
	}
	return cfg
}

func openStore(cfg types.StoreConfig) (*store.Store, error) {
	return store.Open(cfg, logger)
}

// loadTaxonomy returns the configured taxonomy or the built-in one.
func loadTaxonomy(cfg types.AnalysisConfig) (*topics.Taxonomy, error) {
	if cfg.TaxonomyPath == "" {
		return topics.DefaultTaxonomy(), nil
	}
	tax, err := topics.LoadTaxonomy(cfg.TaxonomyPath)
	if err != nil {
		return nil, fmt.Errorf("loading taxonomy: %w", err)
	}
	logger.Debug("loaded taxonomy", "path", cfg.TaxonomyPath, "topics", len(tax.Topics()))
	return tax, nil
}

func newAnalyzer(cfg types.AnalysisConfig) (*political.Analyzer, error) {
	tax, err := loadTaxonomy(cfg)
	if err != nil {
		return nil, err
	}
	return political.NewAnalyzer(topics.NewDetector(tax)), nil
}

// newScorer loads the sentiment lexicon. A custom lexicon that fails to
// load disables sentiment instead of failing the command.
func newScorer(cfg types.AnalysisConfig) sentiment.Scorer {
	lex, err := sentiment.Load(cfg.SentimentLexiconPath)
	if err != nil {
		logger.Warn("sentiment disabled", "path", cfg.SentimentLexiconPath, "err", err)
		return sentiment.None{}
	}
	return lex
}
