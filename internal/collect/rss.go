// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"github.com/pdiddy/discourse-engine/internal/httputil"
	"github.com/pdiddy/discourse-engine/pkg/types"
)

// RSSBackend reads a subreddit's Atom feed. It needs no credentials but
// only sees posts: comments, scores and subscriber counts are not in the
// feed.
type RSSBackend struct {
	Client *http.Client
	Config types.CollectionConfig
	Logger *log.Logger

	parser  *gofeed.Parser
	limiter *rate.Limiter
}

// NewRSSBackend returns a feed backend pacing requests at cfg.RequestDelay.
func NewRSSBackend(client *http.Client, cfg types.CollectionConfig, logger *log.Logger) *RSSBackend {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &RSSBackend{
		Client:  client,
		Config:  cfg,
		Logger:  logger,
		parser:  gofeed.NewParser(),
		limiter: newLimiter(cfg.RequestDelay),
	}
}

// Name returns the backend identifier.
func (b *RSSBackend) Name() string { return string(types.BackendRSS) }

// Fetch reads up to req.Limit posts from the feed for req.Sort.
// req.CommentsPerPost is ignored.
func (b *RSSBackend) Fetch(ctx context.Context, req Request) (Batch, error) {
	req = req.withDefaults(b.Config)
	if err := b.limiter.Wait(ctx); err != nil {
		return Batch{}, err
	}

	params := url.Values{"limit": {strconv.Itoa(min(req.Limit, maxPageSize))}}
	reqURL := fmt.Sprintf("%s/r/%s/%s/.rss?%s", redditPublicBase, req.Subreddit, req.Sort, params.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Batch{}, fmt.Errorf("creating request: %w", err)
	}
	ua := b.Config.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	httpReq.Header.Set("User-Agent", ua)

	resp, err := httputil.DoWithRetry(ctx, b.Client, httpReq, b.Config.MaxRetries, b.Logger)
	if err != nil {
		return Batch{}, fmt.Errorf("feed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Batch{}, fmt.Errorf("feed returned HTTP %d", resp.StatusCode)
	}

	feed, err := b.parser.Parse(resp.Body)
	if err != nil {
		return Batch{}, fmt.Errorf("parsing feed: %w", err)
	}

	now := time.Now().UTC()
	batch := Batch{
		Subreddit: types.Subreddit{
			Name:        req.Subreddit,
			Title:       feed.Title,
			Description: feed.Description,
			CollectedAt: now,
		},
	}

	for _, item := range feed.Items {
		if len(batch.Posts) == req.Limit {
			break
		}
		id := strings.TrimPrefix(item.GUID, "t3_")
		if id == "" {
			continue
		}

		created := now
		if item.PublishedParsed != nil {
			created = item.PublishedParsed.UTC()
		} else if item.UpdatedParsed != nil {
			created = item.UpdatedParsed.UTC()
		}

		author := ""
		if len(item.Authors) > 0 && item.Authors[0] != nil {
			author = strings.TrimPrefix(item.Authors[0].Name, "/u/")
		}

		batch.Posts = append(batch.Posts, types.Post{
			ID:          id,
			Subreddit:   req.Subreddit,
			Title:       item.Title,
			Body:        selfText(item.Content),
			Author:      author,
			URL:         item.Link,
			CreatedAt:   created,
			CollectedAt: now,
		})
	}
	return batch, nil
}

// selfText extracts the post body from a feed entry's HTML. Reddit wraps
// self-post markdown in div.md; link posts have none and yield "".
func selfText(content string) string {
	if content == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return ""
	}
	var parts []string
	doc.Find("div.md").Children().Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, "\n")
}
