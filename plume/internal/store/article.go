package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hazyhaar/plume/dbopen"
)

// DedupKey derives the external dedup key for a feed entry:
// the feed-provided unique id, else the canonical link, else the title.
// Feeds populate these fields inconsistently, so the priority chain is
// part of the contract, not an implementation detail.
func DedupKey(guid, link, title string) string {
	if guid != "" {
		return guid
	}
	if link != "" {
		return link
	}
	return title
}

// InsertIfNew persists an article unless one with the same external key
// already exists. It returns (id, true, nil) when a row was created and
// (0, false, nil) for a duplicate; duplicates are a silent no-op, never
// an error. Articles failing the length gates return ErrTooShort and are
// not persisted.
func (s *Store) InsertIfNew(ctx context.Context, a *Article) (int64, bool, error) {
	key := DedupKey(a.GUID, a.Link, a.Title)
	if key == "" {
		return 0, false, fmt.Errorf("article has no guid, link or title")
	}
	if len(a.Content) < s.Limits.MinContent {
		return 0, false, fmt.Errorf("%w: content %d < %d", ErrTooShort, len(a.Content), s.Limits.MinContent)
	}
	if len(a.Summary) < s.Limits.MinSummary {
		return 0, false, fmt.Errorf("%w: summary %d < %d", ErrTooShort, len(a.Summary), s.Limits.MinSummary)
	}

	now := time.Now().UnixMilli()
	if a.FetchedAt == 0 {
		a.FetchedAt = now
	}
	if a.PublishedAt == 0 {
		a.PublishedAt = a.FetchedAt
	}

	res, err := s.DB.ExecContext(ctx,
		`INSERT OR IGNORE INTO articles
		(external_key, title, link, content, summary, source, category,
		published_at, fetched_at, processed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		key, a.Title, a.Link, a.Content, a.Summary, a.Source, a.Category,
		a.PublishedAt, a.FetchedAt,
	)
	if err != nil {
		return 0, false, fmt.Errorf("insert article: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		// Key already present.
		return 0, false, nil
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("last insert id: %w", err)
	}
	a.ID = id
	a.ExternalKey = key
	return id, true, nil
}

// Exists reports whether an article with the given external key is stored.
func (s *Store) Exists(ctx context.Context, externalKey string) (bool, error) {
	var one int
	err := s.DB.QueryRowContext(ctx,
		`SELECT 1 FROM articles WHERE external_key = ?`, externalKey).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetArticle retrieves an article by id, or nil if absent.
func (s *Store) GetArticle(ctx context.Context, id int64) (*Article, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, external_key, title, link, content, summary, source, category,
		published_at, fetched_at, processed
		FROM articles WHERE id = ?`, id)
	return scanArticle(row.Scan)
}

// ListUnprocessed returns up to limit unprocessed articles, most recently
// published first. The ordering biases drafting toward fresh news rather
// than insertion order.
func (s *Store) ListUnprocessed(ctx context.Context, limit int) ([]*Article, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, external_key, title, link, content, summary, source, category,
		published_at, fetched_at, processed
		FROM articles WHERE processed = 0
		ORDER BY published_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []*Article
	for rows.Next() {
		a, err := scanArticle(rows.Scan)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// ListArticles returns up to limit articles, most recently published first.
func (s *Store) ListArticles(ctx context.Context, limit int) ([]*Article, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, external_key, title, link, content, summary, source, category,
		published_at, fetched_at, processed
		FROM articles ORDER BY published_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []*Article
	for rows.Next() {
		a, err := scanArticle(rows.Scan)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// MarkProcessed flips the processed flag. Idempotent: marking a row that
// is already processed is a no-op.
func (s *Store) MarkProcessed(ctx context.Context, id int64) error {
	_, err := dbopen.Exec(ctx, s.DB,
		`UPDATE articles SET processed = 1 WHERE id = ?`, id)
	return err
}

// ResetProcessed clears the processed flag on all articles. Maintenance
// operation: articles become eligible for drafting again.
func (s *Store) ResetProcessed(ctx context.Context) (int64, error) {
	res, err := dbopen.Exec(ctx, s.DB, `UPDATE articles SET processed = 0 WHERE processed = 1`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanArticle(scan func(...any) error) (*Article, error) {
	var a Article
	var processed int
	err := scan(
		&a.ID, &a.ExternalKey, &a.Title, &a.Link, &a.Content, &a.Summary,
		&a.Source, &a.Category, &a.PublishedAt, &a.FetchedAt, &processed,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan article: %w", err)
	}
	a.Processed = processed != 0
	return &a, nil
}
