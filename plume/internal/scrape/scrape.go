// Package scrape extracts readable article text from web pages.
package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/hazyhaar/plume/urlsafe"
)

// containerSelectors are tried in order; the first match with text wins.
var containerSelectors = []string{
	"article",
	"[class*=article]",
	"[class*=content]",
	"main",
	"body",
}

var wsRe = regexp.MustCompile(`\s+`)

// Config configures the scraper.
type Config struct {
	// Timeout applies per page request. Default: 15s.
	Timeout time.Duration
	// UserAgent sent with requests.
	UserAgent string
	// MaxBytes caps the response body. Default: 5MB.
	MaxBytes int64
	// URLValidator validates URLs before fetch (SSRF prevention).
	// Default: urlsafe.Validate.
	URLValidator func(string) error
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.UserAgent == "" {
		c.UserAgent = "plume/1.0 (+https://github.com/hazyhaar/plume)"
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 5 * 1024 * 1024
	}
	if c.URLValidator == nil {
		c.URLValidator = urlsafe.Validate
	}
}

// Scraper fetches pages and extracts their main text.
type Scraper struct {
	client *http.Client
	config Config
}

// New creates a Scraper with URL validation on redirects.
func New(cfg Config) *Scraper {
	cfg.defaults()
	validate := cfg.URLValidator
	return &Scraper{
		client: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("too many redirects (%d)", len(via))
				}
				if err := validate(req.URL.String()); err != nil {
					return fmt.Errorf("redirect blocked: %w", err)
				}
				return nil
			},
		},
		config: cfg,
	}
}

// Extract downloads url and returns the page's main article text with
// chrome (nav, scripts, footers) removed and whitespace collapsed.
func (s *Scraper) Extract(ctx context.Context, url string) (string, error) {
	if err := s.config.URLValidator(url); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", s.config.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch page: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, s.config.MaxBytes))
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}

	doc.Find("script, style, nav, footer, header, aside").Remove()

	for _, sel := range containerSelectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		text := strings.TrimSpace(wsRe.ReplaceAllString(node.Text(), " "))
		if text != "" {
			return text, nil
		}
	}
	return "", fmt.Errorf("no readable text in %s", url)
}
