// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package collect fetches subreddit posts and comments from Reddit and
// hands them to a store. Backends (JSON listing API, RSS feed) implement
// the same interface so the batch runner does not care where items come
// from.
package collect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/pdiddy/discourse-engine/pkg/types"
)

const (
	defaultLimit = 25

	// maxPageSize is the largest page Reddit listings return.
	maxPageSize = 100
)

// ErrInvalidSubreddit is returned for names that cannot be a subreddit.
var ErrInvalidSubreddit = errors.New("invalid subreddit name")

var subredditName = regexp.MustCompile(`^[a-z0-9][a-z0-9_]{1,20}$`)

// Backend fetches one subreddit. JSONBackend and RSSBackend implement it.
type Backend interface {
	Name() string
	Fetch(ctx context.Context, req Request) (Batch, error)
}

// Request selects what to fetch from one subreddit.
type Request struct {
	Subreddit       string
	Sort            types.ListingSort
	Limit           int
	CommentsPerPost int
}

// Batch is everything fetched from one subreddit.
type Batch struct {
	Subreddit types.Subreddit
	Posts     []types.Post
	Comments  []types.Comment
}

// Saver persists a fetched batch. *store.Store satisfies it.
type Saver interface {
	UpsertSubreddit(ctx context.Context, sub types.Subreddit) error
	SavePosts(ctx context.Context, posts []types.Post) (int, error)
	SaveComments(ctx context.Context, comments []types.Comment) (int, error)
}

// Summary holds the outcome of a batch collection run.
type Summary struct {
	Collected int
	Failed    int
	Posts     int
	Comments  int
	Errors    []string
}

// Total returns the number of subreddits processed.
func (s Summary) Total() int {
	return s.Collected + s.Failed
}

// HasFailures reports whether any subreddit failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// NormalizeSubreddit strips an r/ prefix and lowercases name.
func NormalizeSubreddit(name string) (string, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.TrimPrefix(n, "/")
	n = strings.TrimPrefix(n, "r/")
	n = strings.TrimSuffix(n, "/")
	if !subredditName.MatchString(n) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSubreddit, name)
	}
	return n, nil
}

// withDefaults fills unset request fields from cfg.
func (r Request) withDefaults(cfg types.CollectionConfig) Request {
	if r.Sort == "" {
		r.Sort = cfg.Sort
	}
	if r.Sort == "" {
		r.Sort = types.SortHot
	}
	if r.Limit <= 0 {
		r.Limit = cfg.Limit
	}
	if r.Limit <= 0 {
		r.Limit = defaultLimit
	}
	if r.CommentsPerPost < 0 {
		r.CommentsPerPost = 0
	}
	return r
}

// CollectBatch fetches each subreddit in turn and saves what it gets,
// printing per-subreddit status to w. It continues after individual
// failures and returns a summary.
func CollectBatch(ctx context.Context, backend Backend, saver Saver, subreddits []string, req Request, w io.Writer) Summary {
	var summary Summary
	for _, raw := range subreddits {
		name, err := NormalizeSubreddit(raw)
		if err == nil {
			err = ctx.Err()
		}
		var posts, comments int
		if err == nil {
			posts, comments, err = collectOne(ctx, backend, saver, name, req)
		}
		if err != nil {
			if name == "" {
				name = raw
			}
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", name, err))
			fmt.Fprintf(w, "failed:    r/%s (%v)\n", name, err)
			continue
		}

		summary.Collected++
		summary.Posts += posts
		summary.Comments += comments
		fmt.Fprintf(w, "collected: r/%s (%d posts, %d comments via %s)\n", name, posts, comments, backend.Name())
	}

	fmt.Fprintf(w, "\nCollection summary: %d collected, %d failed (total: %d); %d posts, %d comments\n",
		summary.Collected, summary.Failed, summary.Total(), summary.Posts, summary.Comments)
	return summary
}

func collectOne(ctx context.Context, backend Backend, saver Saver, name string, req Request) (posts, comments int, err error) {
	req.Subreddit = name

	batch, err := backend.Fetch(ctx, req)
	if err != nil {
		return 0, 0, fmt.Errorf("fetching: %w", err)
	}

	if err := saver.UpsertSubreddit(ctx, batch.Subreddit); err != nil {
		return 0, 0, fmt.Errorf("saving subreddit: %w", err)
	}
	if posts, err = saver.SavePosts(ctx, batch.Posts); err != nil {
		return 0, 0, fmt.Errorf("saving posts: %w", err)
	}
	if comments, err = saver.SaveComments(ctx, batch.Comments); err != nil {
		return posts, 0, fmt.Errorf("saving comments: %w", err)
	}
	return posts, comments, nil
}
