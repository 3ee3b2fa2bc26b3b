package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/discourse-engine/internal/collect"
	"github.com/pdiddy/discourse-engine/internal/secrets"
	"github.com/pdiddy/discourse-engine/pkg/types"
)

var collectCmd = &cobra.Command{
	Use:   "collect [subreddits...]",
	Short: "Collect posts and comments from subreddits",
	Long: `Collect fetches posts (and, with the json backend, comments) from each
subreddit and stores them in the local database. Re-collecting refreshes
scores without duplicating items.

The json backend uses Reddit's OAuth API when reddit-client-id and
reddit-client-secret are present in .secrets/, and the public .json
endpoints otherwise. The rss backend needs no credentials but only sees
posts.`,
	RunE: runCollect,
}

func init() {
	collectCmd.Flags().String("backend", string(types.BackendJSON), "collection backend: json or rss")
	collectCmd.Flags().String("sort", string(types.SortHot), "listing: hot, new, top or rising")
	collectCmd.Flags().Int("limit", 25, "maximum posts per subreddit")
	collectCmd.Flags().Int("comments", 20, "maximum comments per post (0 skips comments)")
	collectCmd.Flags().Duration("delay", 0, "minimum spacing between requests (default 1s)")
	collectCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")

	viper.BindPFlag("collect.backend", collectCmd.Flags().Lookup("backend"))
	viper.BindPFlag("collect.sort", collectCmd.Flags().Lookup("sort"))
	viper.BindPFlag("collect.limit", collectCmd.Flags().Lookup("limit"))
	viper.BindPFlag("collect.comments", collectCmd.Flags().Lookup("comments"))
	viper.BindPFlag("collect.delay", collectCmd.Flags().Lookup("delay"))
	viper.BindPFlag("collect.timeout", collectCmd.Flags().Lookup("timeout"))

	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more subreddit names")
	}

	cfg := pipelineConfig()
	backend, err := newBackend(cfg.Collection)
	if err != nil {
		return err
	}

	st, err := openStore(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	req := collect.Request{
		Sort:            cfg.Collection.Sort,
		Limit:           cfg.Collection.Limit,
		CommentsPerPost: cfg.Collection.CommentsPerPost,
	}
	summary := collect.CollectBatch(cmd.Context(), backend, st, args, req, os.Stdout)
	if summary.HasFailures() {
		return fmt.Errorf("%d subreddit(s) failed collection", summary.Failed)
	}
	return nil
}

func newBackend(cfg types.CollectionConfig) (collect.Backend, error) {
	client := &http.Client{Timeout: cfg.Timeout}

	switch cfg.Backend {
	case types.BackendJSON, "":
		creds := secrets.RedditFrom(loadedSecrets)
		if creds.HasOAuth() {
			logger.Info("using reddit oauth api")
		}
		return collect.NewJSONBackend(client, cfg, creds, logger), nil
	case types.BackendRSS:
		return collect.NewRSSBackend(client, cfg, logger), nil
	default:
		return nil, fmt.Errorf("unsupported backend %q: use json or rss", cfg.Backend)
	}
}
