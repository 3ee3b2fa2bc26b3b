// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/discourse-engine/pkg/types"
)

// Export is the document written by ExportYAML and ExportJSON.
type Export struct {
	GeneratedAt    time.Time              `json:"generated_at" yaml:"generated_at"`
	Stats          Stats                  `json:"stats" yaml:"stats"`
	Subreddits     []types.Subreddit      `json:"subreddits" yaml:"subreddits"`
	CorpusAnalyses []types.CorpusAnalysis `json:"corpus_analyses" yaml:"corpus_analyses"`
}

// ExportYAML writes corpus analyses to dataDir/export.yaml and returns the
// path. A non-empty subreddit restricts the runs exported.
func (s *Store) ExportYAML(ctx context.Context, subreddit string) (string, error) {
	doc, err := s.exportDocument(ctx, subreddit)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dataDir, "export.yaml")
	data, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// ExportJSON writes corpus analyses to dataDir/export.json and returns the
// path. A non-empty subreddit restricts the runs exported.
func (s *Store) ExportJSON(ctx context.Context, subreddit string) (string, error) {
	doc, err := s.exportDocument(ctx, subreddit)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dataDir, "export.json")
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

func (s *Store) exportDocument(ctx context.Context, subreddit string) (Export, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return Export{}, fmt.Errorf("querying for export: %w", err)
	}
	subs, err := s.Subreddits(ctx)
	if err != nil {
		return Export{}, fmt.Errorf("querying for export: %w", err)
	}
	runs, err := s.CorpusAnalyses(ctx, subreddit)
	if err != nil {
		return Export{}, fmt.Errorf("querying for export: %w", err)
	}

	if subreddit != "" {
		filtered := subs[:0]
		for _, sub := range subs {
			if sub.Name == subreddit {
				filtered = append(filtered, sub)
			}
		}
		subs = filtered
	}
	if subs == nil {
		subs = []types.Subreddit{}
	}
	if runs == nil {
		runs = []types.CorpusAnalysis{}
	}

	return Export{
		GeneratedAt:    time.Now().UTC(),
		Stats:          stats,
		Subreddits:     subs,
		CorpusAnalyses: runs,
	}, nil
}
