// Package plume turns RSS firehoses into a reviewable queue of social
// media post drafts.
//
// A daily pipeline fetches configured feeds, dedups and stores articles
// in SQLite, generates a quota-limited batch of drafts (model-backed
// with a deterministic template fallback) and enriches them with
// best-effort visuals. Drafts then move through a review state machine
// before export.
package plume

import (
	"github.com/hazyhaar/plume/plume/internal/feed"
	"github.com/hazyhaar/plume/plume/internal/store"
)

// Re-export store types for public API.
type (
	Article       = store.Article
	Post          = store.Post
	DraftView     = store.DraftView
	FetchLogEntry = store.FetchLogEntry
	Stats         = store.Stats
	Source        = feed.Source
)

// Post status values.
const (
	StatusDraft    = store.StatusDraft
	StatusApproved = store.StatusApproved
	StatusPosted   = store.StatusPosted
	StatusRejected = store.StatusRejected
)

// RunSummary reports one pipeline run.
type RunSummary struct {
	Sources       int   `json:"sources"`
	Entries       int   `json:"entries"`
	NewArticles   int   `json:"new_articles"`
	DraftsCreated int   `json:"drafts_created"`
	Failures      int   `json:"failures"`
	DurationMs    int64 `json:"duration_ms"`
}
