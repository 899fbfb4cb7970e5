package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hazyhaar/plume/dbopen"
)

// legalTransitions are the only allowed status edges. Absent states
// (posted, rejected) are terminal.
var legalTransitions = map[string][]string{
	StatusDraft:    {StatusApproved, StatusPosted, StatusRejected},
	StatusApproved: {StatusPosted},
}

// InsertPost persists a draft and returns its assigned id.
func (s *Store) InsertPost(ctx context.Context, p *Post) (int64, error) {
	if p.Status == "" {
		p.Status = StatusDraft
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().UnixMilli()
	}
	tags, err := json.Marshal(p.Hashtags)
	if err != nil {
		return 0, fmt.Errorf("marshal hashtags: %w", err)
	}

	res, err := s.DB.ExecContext(ctx,
		`INSERT INTO posts (article_id, content, hashtags, status, created_at,
		image_url, infographic_path)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ArticleID, p.Content, string(tags), p.Status, p.CreatedAt,
		p.ImageURL, p.InfographicPath,
	)
	if err != nil {
		return 0, fmt.Errorf("insert post: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	p.ID = id
	return id, nil
}

// GetPost retrieves a post by id, or nil if absent.
func (s *Store) GetPost(ctx context.Context, id int64) (*Post, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, article_id, content, hashtags, status, created_at, posted_at,
		image_url, infographic_path
		FROM posts WHERE id = ?`, id)

	var p Post
	var tags string
	err := row.Scan(&p.ID, &p.ArticleID, &p.Content, &tags, &p.Status,
		&p.CreatedAt, &p.PostedAt, &p.ImageURL, &p.InfographicPath)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &p.Hashtags); err != nil {
		p.Hashtags = nil
	}
	return &p, nil
}

// ListByStatus returns posts with the given status joined with their
// article's display fields, newest first. A limit <= 0 returns all rows
// (SQLite treats LIMIT -1 as unbounded).
func (s *Store) ListByStatus(ctx context.Context, status string, limit int) ([]*DraftView, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT p.id, p.article_id, p.content, p.hashtags, p.status, p.created_at,
		p.posted_at, p.image_url, p.infographic_path,
		a.title, a.link, a.source, a.category
		FROM posts p JOIN articles a ON p.article_id = a.id
		WHERE p.status = ?
		ORDER BY p.created_at DESC LIMIT ?`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDraftViews(rows)
}

// ListDrafts returns pending drafts, newest first.
func (s *Store) ListDrafts(ctx context.Context, limit int) ([]*DraftView, error) {
	return s.ListByStatus(ctx, StatusDraft, limit)
}

// ListDraftsByCategory returns pending drafts whose article belongs to
// the given category, newest first.
func (s *Store) ListDraftsByCategory(ctx context.Context, category string) ([]*DraftView, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT p.id, p.article_id, p.content, p.hashtags, p.status, p.created_at,
		p.posted_at, p.image_url, p.infographic_path,
		a.title, a.link, a.source, a.category
		FROM posts p JOIN articles a ON p.article_id = a.id
		WHERE p.status = ? AND a.category = ?
		ORDER BY p.created_at DESC`, StatusDraft, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDraftViews(rows)
}

// DraftCategories returns the distinct categories that have pending drafts.
func (s *Store) DraftCategories(ctx context.Context) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT DISTINCT a.category
		FROM posts p JOIN articles a ON p.article_id = a.id
		WHERE p.status = ? ORDER BY a.category`, StatusDraft)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Transition moves a post to newStatus, enforcing the state machine.
// Illegal edges return ErrInvalidTransition; a transition to posted sets
// posted_at to the transition time. The read-validate-update runs in one
// transaction so a concurrent reader never observes a half-applied change.
func (s *Store) Transition(ctx context.Context, id int64, newStatus string) error {
	return dbopen.RunTx(ctx, s.DB, func(tx *sql.Tx) error {
		var current string
		err := tx.QueryRowContext(ctx,
			`SELECT status FROM posts WHERE id = ?`, id).Scan(&current)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: post %d", ErrNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("read status: %w", err)
		}

		if !edgeAllowed(current, newStatus) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, newStatus)
		}

		if newStatus == StatusPosted {
			_, err = tx.ExecContext(ctx,
				`UPDATE posts SET status = ?, posted_at = ? WHERE id = ?`,
				newStatus, time.Now().UnixMilli(), id)
		} else {
			_, err = tx.ExecContext(ctx,
				`UPDATE posts SET status = ? WHERE id = ?`, newStatus, id)
		}
		return err
	})
}

func edgeAllowed(from, to string) bool {
	for _, allowed := range legalTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CountPostsBetween counts posts created in [from, to) milliseconds.
// Quota enforcement counts every post ever created in the window,
// regardless of its current status.
func (s *Store) CountPostsBetween(ctx context.Context, from, to int64) (int, error) {
	var count int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts WHERE created_at >= ? AND created_at < ?`,
		from, to).Scan(&count)
	return count, err
}

// SetPostImage attaches an image URL to an existing post.
func (s *Store) SetPostImage(ctx context.Context, id int64, url string) error {
	_, err := dbopen.Exec(ctx, s.DB,
		`UPDATE posts SET image_url = ? WHERE id = ?`, url, id)
	return err
}

// SetPostInfographic attaches an infographic path to an existing post.
func (s *Store) SetPostInfographic(ctx context.Context, id int64, path string) error {
	_, err := dbopen.Exec(ctx, s.DB,
		`UPDATE posts SET infographic_path = ? WHERE id = ?`, path, id)
	return err
}

// DeletePost removes a post.
func (s *Store) DeletePost(ctx context.Context, id int64) error {
	_, err := dbopen.Exec(ctx, s.DB, `DELETE FROM posts WHERE id = ?`, id)
	return err
}

// DeleteAllPosts removes every post. Maintenance operation.
func (s *Store) DeleteAllPosts(ctx context.Context) (int64, error) {
	res, err := dbopen.Exec(ctx, s.DB, `DELETE FROM posts`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanDraftViews(rows *sql.Rows) ([]*DraftView, error) {
	var views []*DraftView
	for rows.Next() {
		var v DraftView
		var tags string
		err := rows.Scan(&v.ID, &v.ArticleID, &v.Content, &tags, &v.Status,
			&v.CreatedAt, &v.PostedAt, &v.ImageURL, &v.InfographicPath,
			&v.Title, &v.Link, &v.Source, &v.Category)
		if err != nil {
			return nil, fmt.Errorf("scan draft view: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &v.Hashtags); err != nil {
			v.Hashtags = nil
		}
		views = append(views, &v)
	}
	return views, rows.Err()
}
