// Package feed retrieves and normalizes RSS/Atom entries.
//
// A Retriever polls one Source at a time, cleans each entry's HTML down
// to plain text, and optionally enriches thin entries through a Scraper
// before they are handed to the store's length gates.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/hazyhaar/plume/plume/internal/store"
)

// Config configures the retriever.
type Config struct {
	// Timeout applies to the whole feed request. Default: 30s.
	Timeout time.Duration
	// UserAgent sent with requests.
	UserAgent string
	// MaxEntries caps how many entries are taken per fetch. Default: 20.
	MaxEntries int
	// MinContentLen is the content length below which the retriever
	// attempts scrape enrichment. Default: 200.
	MinContentLen int
	// SummaryMaxLen bounds derived summaries. Default: 500.
	SummaryMaxLen int
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.UserAgent == "" {
		c.UserAgent = "plume/1.0 (+https://github.com/hazyhaar/plume)"
	}
	if c.MaxEntries <= 0 {
		c.MaxEntries = 20
	}
	if c.MinContentLen <= 0 {
		c.MinContentLen = 200
	}
	if c.SummaryMaxLen <= 0 {
		c.SummaryMaxLen = 500
	}
}

// Scraper extracts readable article text from a web page.
type Scraper interface {
	Extract(ctx context.Context, url string) (string, error)
}

// Retriever fetches and normalizes feed entries.
type Retriever struct {
	parser  *gofeed.Parser
	config  Config
	scraper Scraper
	log     *slog.Logger
}

// New creates a Retriever. scraper may be nil to disable enrichment.
func New(cfg Config, scraper Scraper, log *slog.Logger) *Retriever {
	cfg.defaults()
	if log == nil {
		log = slog.Default()
	}
	parser := gofeed.NewParser()
	parser.UserAgent = cfg.UserAgent
	parser.Client = &http.Client{Timeout: cfg.Timeout}
	return &Retriever{parser: parser, config: cfg, scraper: scraper, log: log}
}

// Fetch retrieves one source and returns its entries as normalized
// articles. Entries without a title or link are skipped. Length gates
// are NOT applied here; the store decides what is worth keeping.
func (r *Retriever) Fetch(ctx context.Context, src Source) ([]*store.Article, error) {
	parsed, err := r.parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", src.Name, err)
	}

	now := time.Now().UnixMilli()
	articles := make([]*store.Article, 0, r.config.MaxEntries)
	for _, item := range parsed.Items {
		if len(articles) >= r.config.MaxEntries {
			break
		}
		if item.Title == "" || item.Link == "" {
			continue
		}

		content := item.Content
		if content == "" {
			content = item.Description
		}
		content = CleanText(content)

		if len(content) < r.config.MinContentLen && r.scraper != nil {
			scraped, err := r.scraper.Extract(ctx, item.Link)
			if err != nil {
				r.log.Debug("scrape enrichment failed",
					"source", src.Name, "link", item.Link, "error", err)
			} else if len(scraped) > len(content) {
				content = scraped
			}
		}

		published := now
		if item.PublishedParsed != nil {
			published = item.PublishedParsed.UnixMilli()
		} else if item.UpdatedParsed != nil {
			published = item.UpdatedParsed.UnixMilli()
		}

		articles = append(articles, &store.Article{
			GUID:        item.GUID,
			Title:       CleanText(item.Title),
			Link:        item.Link,
			Content:     content,
			Summary:     Summarize(item.Description, content, r.config.SummaryMaxLen),
			Source:      src.Name,
			Category:    src.Category,
			PublishedAt: published,
			FetchedAt:   now,
		})
	}
	return articles, nil
}
