// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests. Reddit
	// throttles generic agents aggressively, so this should identify the tool.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CollectionBackend identifies how Reddit content is fetched.
type CollectionBackend string

const (
	BackendJSON CollectionBackend = "json"
	BackendRSS  CollectionBackend = "rss"
)

// ListingSort selects the subreddit listing to page through.
type ListingSort string

const (
	SortHot    ListingSort = "hot"
	SortNew    ListingSort = "new"
	SortTop    ListingSort = "top"
	SortRising ListingSort = "rising"
)

// CollectionConfig holds settings for the collection stage.
type CollectionConfig struct {
	HTTPConfig `yaml:",inline"`

	// Backend selects the JSON listing API or the RSS feed.
	Backend CollectionBackend `json:"backend" yaml:"backend"`

	// Sort selects the listing (hot, new, top, rising).
	Sort ListingSort `json:"sort" yaml:"sort"`

	// Limit is the maximum number of posts per subreddit (default 25).
	Limit int `json:"limit" yaml:"limit"`

	// CommentsPerPost caps comments collected per post; 0 skips comments.
	CommentsPerPost int `json:"comments_per_post" yaml:"comments_per_post"`

	// RequestDelay is the minimum spacing between API requests (default 1s).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`

	// MaxRetries is the number of 429 retries per request (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// AnalysisConfig holds settings for the analysis stage.
type AnalysisConfig struct {
	// MinClusterSize is the smallest octant population reported as a
	// cluster (default 5).
	MinClusterSize int `json:"min_cluster_size" yaml:"min_cluster_size"`

	// TaxonomyPath optionally replaces the built-in topic taxonomy with a
	// YAML file mapping topic names to keyword lists.
	TaxonomyPath string `json:"taxonomy_path,omitempty" yaml:"taxonomy_path,omitempty"`

	// SentimentLexiconPath optionally replaces the built-in sentiment
	// lexicon.
	SentimentLexiconPath string `json:"sentiment_lexicon_path,omitempty" yaml:"sentiment_lexicon_path,omitempty"`

	// Limit caps the number of stored items analyzed per run; 0 means all.
	Limit int `json:"limit" yaml:"limit"`

	// IncludeComments adds stored comments to the analyzed corpus.
	IncludeComments bool `json:"include_comments" yaml:"include_comments"`
}

// StoreConfig holds settings for the local database.
type StoreConfig struct {
	// DataDir is the directory holding discourse.db and exports.
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Collection CollectionConfig `json:"collection" yaml:"collection"`
	Analysis   AnalysisConfig   `json:"analysis" yaml:"analysis"`
	Store      StoreConfig      `json:"store" yaml:"store"`
}
