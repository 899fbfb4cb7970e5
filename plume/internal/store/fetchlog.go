package store

import (
	"context"
	"fmt"
	"time"

	"github.com/hazyhaar/plume/dbopen"
	"github.com/hazyhaar/plume/idgen"
)

// fetchLogID generates type-scoped fetch log row ids.
var fetchLogID = idgen.Prefixed("log_", idgen.Default)

// InsertFetchLog records the outcome of a single source fetch.
func (s *Store) InsertFetchLog(ctx context.Context, e *FetchLogEntry) error {
	if e.ID == "" {
		e.ID = fetchLogID()
	}
	if e.FetchedAt == 0 {
		e.FetchedAt = time.Now().UnixMilli()
	}
	_, err := dbopen.Exec(ctx, s.DB,
		`INSERT INTO fetch_log (id, source, status, error_message, entries,
		new_articles, duration_ms, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Source, e.Status, e.ErrorMessage, e.Entries,
		e.NewArticles, e.DurationMs, e.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("insert fetch log: %w", err)
	}
	return nil
}

// FetchHistory returns recent fetch outcomes, newest first. An empty
// source returns the history across all sources.
func (s *Store) FetchHistory(ctx context.Context, source string, limit int) ([]*FetchLogEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT id, source, status, error_message, entries, new_articles,
		duration_ms, fetched_at FROM fetch_log`
	args := []any{}
	if source != "" {
		query += ` WHERE source = ?`
		args = append(args, source)
	}
	query += ` ORDER BY fetched_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*FetchLogEntry
	for rows.Next() {
		var e FetchLogEntry
		err := rows.Scan(&e.ID, &e.Source, &e.Status, &e.ErrorMessage,
			&e.Entries, &e.NewArticles, &e.DurationMs, &e.FetchedAt)
		if err != nil {
			return nil, fmt.Errorf("scan fetch log: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
