// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists collected Reddit content and analysis results in
// a local SQLite database. The schema is versioned with embedded
// migrations.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/discourse-engine/pkg/types"
)

const dbFile = "discourse.db"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store manages the discourse SQLite database.
type Store struct {
	db      *sql.DB
	dataDir string
	logger  *log.Logger
}

// Open opens or creates the database at cfg.DataDir/discourse.db and
// migrates it to the latest schema. logger may be nil.
func Open(cfg types.StoreConfig, logger *log.Logger) (*Store, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dataDir: dataDir, logger: logger}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DataDir returns the directory holding the database and exports.
func (s *Store) DataDir() string {
	return s.dataDir
}

// UpsertSubreddit inserts or refreshes subreddit metadata. Empty fields in
// sub do not overwrite stored values, so a feed fetch without subscriber
// counts keeps the counts from an earlier API fetch.
func (s *Store) UpsertSubreddit(ctx context.Context, sub types.Subreddit) error {
	if sub.Name == "" {
		return fmt.Errorf("subreddit has no name")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO subreddits (name, title, description, subscribers, collected_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
			title = CASE WHEN excluded.title != '' THEN excluded.title ELSE subreddits.title END,
			description = CASE WHEN excluded.description != '' THEN excluded.description ELSE subreddits.description END,
			subscribers = CASE WHEN excluded.subscribers > 0 THEN excluded.subscribers ELSE subreddits.subscribers END,
			collected_at = excluded.collected_at`,
		sub.Name, sub.Title, sub.Description, sub.Subscribers, formatTime(sub.CollectedAt),
	)
	if err != nil {
		return fmt.Errorf("upserting subreddit %s: %w", sub.Name, err)
	}
	return nil
}

// Subreddits lists stored subreddits by name.
func (s *Store) Subreddits(ctx context.Context) ([]types.Subreddit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, title, description, subscribers, collected_at FROM subreddits ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying subreddits: %w", err)
	}
	defer rows.Close()

	var out []types.Subreddit
	for rows.Next() {
		var sub types.Subreddit
		var collected string
		if err := rows.Scan(&sub.Name, &sub.Title, &sub.Description, &sub.Subscribers, &collected); err != nil {
			return nil, fmt.Errorf("scanning subreddit: %w", err)
		}
		sub.CollectedAt = parseTime(collected)
		out = append(out, sub)
	}
	return out, rows.Err()
}

// SavePosts upserts posts in one transaction and returns how many were
// written. Re-saving a post refreshes its score and comment count.
func (s *Store) SavePosts(ctx context.Context, posts []types.Post) (int, error) {
	if len(posts) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO posts (id, subreddit, title, body, author, score, num_comments, url, created_at, collected_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, body=excluded.body, score=excluded.score,
			num_comments=excluded.num_comments, collected_at=excluded.collected_at`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range posts {
		_, err := stmt.ExecContext(ctx,
			p.ID, p.Subreddit, p.Title, p.Body, p.Author, p.Score, p.NumComments, p.URL,
			formatTime(p.CreatedAt), formatTime(p.CollectedAt),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting post %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing posts: %w", err)
	}
	return len(posts), nil
}

// SaveComments upserts comments in one transaction. The parent posts must
// already be stored.
func (s *Store) SaveComments(ctx context.Context, comments []types.Comment) (int, error) {
	if len(comments) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO comments (id, post_id, parent_id, subreddit, body, author, score, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET body=excluded.body, score=excluded.score`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range comments {
		_, err := stmt.ExecContext(ctx,
			c.ID, c.PostID, c.ParentID, c.Subreddit, c.Body, c.Author, c.Score, formatTime(c.CreatedAt),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting comment %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing comments: %w", err)
	}
	return len(comments), nil
}

// TextQuery selects stored items for analysis.
type TextQuery struct {
	// Subreddit restricts items to one subreddit; empty means all.
	Subreddit string

	IncludeComments bool

	// Limit caps the number of posts and, separately, comments; 0 means
	// no limit.
	Limit int
}

// Texts returns stored posts (newest first) followed by comments when
// requested, reduced to their analyzable text.
func (s *Store) Texts(ctx context.Context, q TextQuery) ([]types.TextItem, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, subreddit, title, body FROM posts
		 WHERE (? = '' OR subreddit = ?)
		 ORDER BY created_at DESC, id
		 LIMIT ?`, q.Subreddit, q.Subreddit, limit)
	if err != nil {
		return nil, fmt.Errorf("querying posts: %w", err)
	}

	var items []types.TextItem
	for rows.Next() {
		var p types.Post
		if err := rows.Scan(&p.ID, &p.Subreddit, &p.Title, &p.Body); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		items = append(items, types.TextItem{ID: p.ID, Kind: types.KindPost, Subreddit: p.Subreddit, Text: p.Text()})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading posts: %w", err)
	}

	if !q.IncludeComments {
		return items, nil
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT id, subreddit, body FROM comments
		 WHERE (? = '' OR subreddit = ?)
		 ORDER BY created_at DESC, id
		 LIMIT ?`, q.Subreddit, q.Subreddit, limit)
	if err != nil {
		return nil, fmt.Errorf("querying comments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item := types.TextItem{Kind: types.KindComment}
		if err := rows.Scan(&item.ID, &item.Subreddit, &item.Text); err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Stats holds row counts per table.
type Stats struct {
	Subreddits     int `json:"subreddits" yaml:"subreddits"`
	Posts          int `json:"posts" yaml:"posts"`
	Comments       int `json:"comments" yaml:"comments"`
	ItemAnalyses   int `json:"item_analyses" yaml:"item_analyses"`
	CorpusAnalyses int `json:"corpus_analyses" yaml:"corpus_analyses"`
}

// Stats counts the rows of every table.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	counts := []struct {
		table string
		dst   *int
	}{
		{"subreddits", &st.Subreddits},
		{"posts", &st.Posts},
		{"comments", &st.Comments},
		{"item_analyses", &st.ItemAnalyses},
		{"corpus_analyses", &st.CorpusAnalyses},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM `+c.table).Scan(c.dst); err != nil {
			return Stats{}, fmt.Errorf("counting %s: %w", c.table, err)
		}
	}
	return st, nil
}

// timeLayout keeps every fractional digit so stored text sorts in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
