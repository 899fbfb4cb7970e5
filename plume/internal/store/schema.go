package store

import "database/sql"

// Schema is the complete plume schema. Idempotent: applied at every startup.
const Schema = `
-- Fetched articles, unique on the external dedup key
CREATE TABLE IF NOT EXISTS articles (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    external_key  TEXT NOT NULL UNIQUE,
    title         TEXT NOT NULL,
    link          TEXT NOT NULL,
    content       TEXT NOT NULL,
    summary       TEXT NOT NULL,
    source        TEXT NOT NULL,
    category      TEXT NOT NULL,
    published_at  INTEGER NOT NULL,
    fetched_at    INTEGER NOT NULL,
    processed     INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_articles_processed ON articles(processed, published_at DESC);
CREATE INDEX IF NOT EXISTS idx_articles_fetched ON articles(fetched_at);

-- Generated draft posts
CREATE TABLE IF NOT EXISTS posts (
    id                INTEGER PRIMARY KEY AUTOINCREMENT,
    article_id        INTEGER NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
    content           TEXT NOT NULL,
    hashtags          TEXT NOT NULL DEFAULT '[]',
    status            TEXT NOT NULL DEFAULT 'draft',
    created_at        INTEGER NOT NULL,
    posted_at         INTEGER,
    image_url         TEXT NOT NULL DEFAULT '',
    infographic_path  TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_posts_status ON posts(status, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_posts_created ON posts(created_at);

-- Fetch log (observability)
CREATE TABLE IF NOT EXISTS fetch_log (
    id             TEXT PRIMARY KEY,
    source         TEXT NOT NULL,
    status         TEXT NOT NULL,
    error_message  TEXT NOT NULL DEFAULT '',
    entries        INTEGER NOT NULL DEFAULT 0,
    new_articles   INTEGER NOT NULL DEFAULT 0,
    duration_ms    INTEGER NOT NULL DEFAULT 0,
    fetched_at     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_fetch_log_source ON fetch_log(source, fetched_at DESC);
`

// ApplySchema creates all tables and indexes on the given database.
func ApplySchema(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}
