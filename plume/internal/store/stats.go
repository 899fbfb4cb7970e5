package store

import (
	"context"
	"fmt"
)

// Stats aggregates pipeline counters in one round trip per table.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	var st Stats

	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*),
		COALESCE(SUM(CASE WHEN processed = 0 THEN 1 ELSE 0 END), 0)
		FROM articles`).Scan(&st.TotalArticles, &st.Unprocessed)
	if err != nil {
		return nil, fmt.Errorf("article stats: %w", err)
	}

	err = s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*),
		COALESCE(SUM(CASE WHEN status = 'draft' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = 'approved' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = 'posted' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = 'rejected' THEN 1 ELSE 0 END), 0)
		FROM posts`).Scan(&st.TotalPosts, &st.Drafts, &st.Approved,
		&st.Posted, &st.Rejected)
	if err != nil {
		return nil, fmt.Errorf("post stats: %w", err)
	}

	return &st, nil
}
