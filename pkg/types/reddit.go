// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the discourse-engine
// pipeline: collected Reddit content, political analysis results, corpus
// aggregates, and stage configuration.
package types

import (
	"strings"
	"time"
)

// ItemKind distinguishes posts from comments in analysis records.
type ItemKind string

const (
	KindPost    ItemKind = "post"
	KindComment ItemKind = "comment"
)

// Subreddit holds community metadata captured at collection time.
type Subreddit struct {
	// Name is the subreddit name without the r/ prefix, lowercased.
	Name string `json:"name" yaml:"name"`

	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Subscribers int    `json:"subscribers" yaml:"subscribers"`

	CollectedAt time.Time `json:"collected_at" yaml:"collected_at"`
}

// Post is a submission collected from a subreddit listing.
type Post struct {
	// ID is the Reddit base-36 identifier without the t3_ prefix.
	ID string `json:"id" yaml:"id"`

	Subreddit   string `json:"subreddit" yaml:"subreddit"`
	Title       string `json:"title" yaml:"title"`
	Body        string `json:"body" yaml:"body"`
	Author      string `json:"author" yaml:"author"`
	Score       int    `json:"score" yaml:"score"`
	NumComments int    `json:"num_comments" yaml:"num_comments"`
	URL         string `json:"url" yaml:"url"`

	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	CollectedAt time.Time `json:"collected_at" yaml:"collected_at"`
}

// Text returns the analyzable text of the post: title and body joined.
func (p Post) Text() string {
	if p.Body == "" {
		return p.Title
	}
	return strings.TrimSpace(p.Title + "\n" + p.Body)
}

// Comment is a reply collected from a post's comment tree.
type Comment struct {
	// ID is the Reddit base-36 identifier without the t1_ prefix.
	ID string `json:"id" yaml:"id"`

	// PostID is the submission the comment belongs to.
	PostID string `json:"post_id" yaml:"post_id"`

	// ParentID is the full name (t1_/t3_) of the parent thing.
	ParentID string `json:"parent_id" yaml:"parent_id"`

	Subreddit string    `json:"subreddit" yaml:"subreddit"`
	Body      string    `json:"body" yaml:"body"`
	Author    string    `json:"author" yaml:"author"`
	Score     int       `json:"score" yaml:"score"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// TextItem is a stored post or comment reduced to what analysis needs.
type TextItem struct {
	ID        string   `json:"id" yaml:"id"`
	Kind      ItemKind `json:"kind" yaml:"kind"`
	Subreddit string   `json:"subreddit" yaml:"subreddit"`
	Text      string   `json:"text" yaml:"text"`
}
