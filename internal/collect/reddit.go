// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/pdiddy/discourse-engine/internal/httputil"
	"github.com/pdiddy/discourse-engine/internal/secrets"
	"github.com/pdiddy/discourse-engine/pkg/types"
)

// Reddit endpoints. Declared as vars so tests can substitute an httptest
// server.
var (
	redditPublicBase = "https://www.reddit.com"
	redditOAuthBase  = "https://oauth.reddit.com"
	redditTokenURL   = "https://www.reddit.com/api/v1/access_token"
)

const (
	defaultRequestDelay = time.Second
	defaultUserAgent    = "discourse-engine/0.1"

	// tokenSlack renews an OAuth token this long before it expires.
	tokenSlack = time.Minute
)

// JSONBackend reads Reddit's listing JSON. With client credentials it
// uses the OAuth API host; without them it uses the public .json
// endpoints.
type JSONBackend struct {
	Client      *http.Client
	Config      types.CollectionConfig
	Credentials secrets.Reddit
	Logger      *log.Logger

	limiter *rate.Limiter

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewJSONBackend returns a backend pacing requests at cfg.RequestDelay.
func NewJSONBackend(client *http.Client, cfg types.CollectionConfig, creds secrets.Reddit, logger *log.Logger) *JSONBackend {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &JSONBackend{
		Client:      client,
		Config:      cfg,
		Credentials: creds,
		Logger:      logger,
		limiter:     newLimiter(cfg.RequestDelay),
	}
}

func newLimiter(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		delay = defaultRequestDelay
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

// Name returns the backend identifier.
func (b *JSONBackend) Name() string { return string(types.BackendJSON) }

// Fetch reads subreddit metadata, up to req.Limit posts from the chosen
// listing, and up to req.CommentsPerPost comments for each post.
func (b *JSONBackend) Fetch(ctx context.Context, req Request) (Batch, error) {
	req = req.withDefaults(b.Config)
	now := time.Now().UTC()

	sub, err := b.about(ctx, req.Subreddit)
	if err != nil {
		return Batch{}, err
	}
	sub.CollectedAt = now

	posts, err := b.listing(ctx, req, now)
	if err != nil {
		return Batch{}, err
	}

	batch := Batch{Subreddit: sub, Posts: posts}
	if req.CommentsPerPost == 0 {
		return batch, nil
	}

	for _, p := range posts {
		comments, err := b.comments(ctx, req.Subreddit, p.ID, req.CommentsPerPost)
		if err != nil {
			// A broken comment thread does not sink the subreddit.
			b.warn("fetching comments failed", "post", p.ID, "err", err)
			continue
		}
		batch.Comments = append(batch.Comments, comments...)
	}
	return batch, nil
}

func (b *JSONBackend) about(ctx context.Context, name string) (types.Subreddit, error) {
	var resp thing
	if err := b.get(ctx, "/r/"+name+"/about.json", nil, &resp); err != nil {
		return types.Subreddit{}, fmt.Errorf("subreddit about: %w", err)
	}
	if resp.Kind != "t5" {
		return types.Subreddit{}, fmt.Errorf("subreddit r/%s not found", name)
	}

	var data subredditData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return types.Subreddit{}, fmt.Errorf("parsing subreddit about: %w", err)
	}
	return types.Subreddit{
		Name:        strings.ToLower(data.DisplayName),
		Title:       data.Title,
		Description: data.PublicDescription,
		Subscribers: data.Subscribers,
	}, nil
}

func (b *JSONBackend) listing(ctx context.Context, req Request, now time.Time) ([]types.Post, error) {
	var posts []types.Post
	after := ""
	for len(posts) < req.Limit {
		params := url.Values{
			"limit":    {strconv.Itoa(min(req.Limit-len(posts), maxPageSize))},
			"raw_json": {"1"},
		}
		if after != "" {
			params.Set("after", after)
		}
		if req.Sort == types.SortTop {
			params.Set("t", "week")
		}

		var page listing
		path := fmt.Sprintf("/r/%s/%s.json", req.Subreddit, req.Sort)
		if err := b.get(ctx, path, params, &page); err != nil {
			return nil, fmt.Errorf("listing %s: %w", req.Sort, err)
		}

		for _, child := range page.Data.Children {
			if child.Kind != "t3" {
				continue
			}
			var d postData
			if err := json.Unmarshal(child.Data, &d); err != nil {
				return nil, fmt.Errorf("parsing post: %w", err)
			}
			posts = append(posts, d.toPost(req.Subreddit, now))
			if len(posts) == req.Limit {
				break
			}
		}

		if page.Data.After == "" || len(page.Data.Children) == 0 {
			break
		}
		after = page.Data.After
	}
	return posts, nil
}

func (b *JSONBackend) comments(ctx context.Context, subreddit, postID string, limit int) ([]types.Comment, error) {
	params := url.Values{
		"limit":    {strconv.Itoa(limit)},
		"sort":     {"top"},
		"raw_json": {"1"},
	}

	// The response is [post listing, comment listing].
	var resp []listing
	if err := b.get(ctx, "/comments/"+postID+".json", params, &resp); err != nil {
		return nil, err
	}
	if len(resp) < 2 {
		return nil, fmt.Errorf("unexpected comment response with %d listings", len(resp))
	}

	var out []types.Comment
	if err := flattenComments(resp[1].Data.Children, subreddit, postID, limit, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// flattenComments walks the comment tree depth first until limit comments
// are gathered. Deleted and removed comments are skipped.
func flattenComments(children []thing, subreddit, postID string, limit int, out *[]types.Comment) error {
	for _, child := range children {
		if len(*out) >= limit {
			return nil
		}
		if child.Kind != "t1" {
			continue
		}
		var d commentData
		if err := json.Unmarshal(child.Data, &d); err != nil {
			return fmt.Errorf("parsing comment: %w", err)
		}
		if d.Body != "[deleted]" && d.Body != "[removed]" && strings.TrimSpace(d.Body) != "" {
			*out = append(*out, types.Comment{
				ID:        d.ID,
				PostID:    postID,
				ParentID:  d.ParentID,
				Subreddit: subreddit,
				Body:      d.Body,
				Author:    d.Author,
				Score:     d.Score,
				CreatedAt: fromUnix(d.CreatedUTC),
			})
		}

		// Replies is "" when there are none, a listing otherwise.
		replies := bytes.TrimSpace(d.Replies)
		if len(replies) == 0 || replies[0] != '{' {
			continue
		}
		var sub listing
		if err := json.Unmarshal(replies, &sub); err != nil {
			return fmt.Errorf("parsing replies: %w", err)
		}
		if err := flattenComments(sub.Data.Children, subreddit, postID, limit, out); err != nil {
			return err
		}
	}
	return nil
}

// get performs a paced GET against the public or OAuth host and decodes
// the JSON body into v.
func (b *JSONBackend) get(ctx context.Context, path string, params url.Values, v any) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return err
	}

	token, err := b.accessToken(ctx)
	if err != nil {
		return err
	}

	base := redditPublicBase
	if token != "" {
		base = redditOAuthBase
	}
	reqURL := base + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", b.userAgent())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	b.debug("GET", "url", reqURL)
	resp, err := httputil.DoWithRetry(ctx, b.Client, req, b.Config.MaxRetries, b.Logger)
	if err != nil {
		return fmt.Errorf("reddit request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("reddit returned HTTP %d for %s", resp.StatusCode, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// accessToken returns a cached application-only OAuth token, fetching a
// new one when needed. Without credentials it returns "".
func (b *JSONBackend) accessToken(ctx context.Context) (string, error) {
	if !b.Credentials.HasOAuth() {
		return "", nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.token != "" && time.Now().Before(b.tokenExpiry) {
		return b.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, redditTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("creating token request: %w", err)
	}
	req.SetBasicAuth(b.Credentials.ClientID, b.Credentials.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", b.userAgent())

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, b.Config.MaxRetries, b.Logger)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request returned HTTP %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decoding token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("token response has no access_token")
	}

	b.token = tr.AccessToken
	b.tokenExpiry = time.Now().Add(time.Duration(tr.ExpiresIn)*time.Second - tokenSlack)
	b.debug("obtained reddit token", "expires_in", tr.ExpiresIn)
	return b.token, nil
}

func (b *JSONBackend) userAgent() string {
	switch {
	case b.Credentials.UserAgent != "":
		return b.Credentials.UserAgent
	case b.Config.UserAgent != "":
		return b.Config.UserAgent
	default:
		return defaultUserAgent
	}
}

func (b *JSONBackend) debug(msg string, keyvals ...any) {
	if b.Logger != nil {
		b.Logger.Debug(msg, keyvals...)
	}
}

func (b *JSONBackend) warn(msg string, keyvals ...any) {
	if b.Logger != nil {
		b.Logger.Warn(msg, keyvals...)
	}
}

// Reddit wire types.

type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type listing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string  `json:"after"`
		Children []thing `json:"children"`
	} `json:"data"`
}

type subredditData struct {
	DisplayName       string `json:"display_name"`
	Title             string `json:"title"`
	PublicDescription string `json:"public_description"`
	Subscribers       int    `json:"subscribers"`
}

type postData struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Author      string  `json:"author"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	Permalink   string  `json:"permalink"`
	URL         string  `json:"url"`
	CreatedUTC  float64 `json:"created_utc"`
}

func (d postData) toPost(subreddit string, collectedAt time.Time) types.Post {
	link := d.URL
	if d.Permalink != "" {
		link = "https://www.reddit.com" + d.Permalink
	}
	return types.Post{
		ID:          d.ID,
		Subreddit:   subreddit,
		Title:       d.Title,
		Body:        d.Selftext,
		Author:      d.Author,
		Score:       d.Score,
		NumComments: d.NumComments,
		URL:         link,
		CreatedAt:   fromUnix(d.CreatedUTC),
		CollectedAt: collectedAt,
	}
}

type commentData struct {
	ID         string          `json:"id"`
	ParentID   string          `json:"parent_id"`
	Body       string          `json:"body"`
	Author     string          `json:"author"`
	Score      int             `json:"score"`
	CreatedUTC float64         `json:"created_utc"`
	Replies    json.RawMessage `json:"replies"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func fromUnix(secs float64) time.Time {
	whole, frac := math.Modf(secs)
	return time.Unix(int64(whole), int64(frac*1e9)).UTC()
}
