// Package store is the data access layer for the plume database.
//
// It owns two logical tables, articles (keyed by an external dedup key)
// and posts (drafts generated from articles), plus a fetch log for
// observability. Each Store wraps one already-opened *sql.DB.
package store

import (
	"database/sql"
	"errors"
)

// ErrTooShort is returned when an article fails the minimum length gates.
var ErrTooShort = errors.New("store: article content or summary too short")

// ErrInvalidTransition is returned when a post status change is not a
// legal edge of the state machine.
var ErrInvalidTransition = errors.New("store: invalid status transition")

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("store: not found")

// Limits are the minimum lengths an article must clear to be persisted.
type Limits struct {
	MinContent int
	MinSummary int
}

func (l *Limits) defaults() {
	if l.MinContent <= 0 {
		l.MinContent = 200
	}
	if l.MinSummary <= 0 {
		l.MinSummary = 50
	}
}

// Store wraps the plume database.
type Store struct {
	DB     *sql.DB
	Limits Limits
}

// NewStore creates a Store from an already-opened database connection.
func NewStore(db *sql.DB, limits Limits) *Store {
	limits.defaults()
	return &Store{DB: db, Limits: limits}
}
