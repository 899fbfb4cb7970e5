package plume

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/hazyhaar/plume/plume/internal/export"
	"github.com/hazyhaar/plume/plume/internal/feed"
	"github.com/hazyhaar/plume/plume/internal/generate"
	"github.com/hazyhaar/plume/plume/internal/scheduler"
	"github.com/hazyhaar/plume/plume/internal/scrape"
	"github.com/hazyhaar/plume/plume/internal/store"
	"github.com/hazyhaar/plume/plume/internal/visual"
)

// Service is the main plume orchestrator.
type Service struct {
	store     *store.Store
	retriever *feed.Retriever
	generator *generate.Generator
	scheduler *scheduler.Scheduler
	enricher  *visual.Enricher
	logger    *slog.Logger
	config    *Config
	loc       *time.Location

	// paced is set when an external summarizer is configured; the
	// inter-article delay exists to pace calls to it, so the
	// template-only path skips it.
	paced bool

	// runMu serializes pipeline runs: the scheduler and the manual
	// trigger share one Service.
	runMu sync.Mutex

	// sleep spaces consecutive generations; swappable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// ServiceOption configures a Service during creation.
type ServiceOption func(*serviceDeps)

type serviceDeps struct {
	summarizer generate.Summarizer
	imager     visual.Imager
	scraper    feed.Scraper
	rng        *rand.Rand
}

// WithSummarizer replaces the model backend used for draft text.
func WithSummarizer(s generate.Summarizer) ServiceOption {
	return func(d *serviceDeps) { d.summarizer = s }
}

// WithImager replaces the image backend used for visual enrichment.
func WithImager(i visual.Imager) ServiceOption {
	return func(d *serviceDeps) { d.imager = i }
}

// WithScraper replaces the page scraper used for content enrichment.
func WithScraper(s feed.Scraper) ServiceOption {
	return func(d *serviceDeps) { d.scraper = s }
}

// WithRand seeds the template generator, making drafts reproducible.
func WithRand(r *rand.Rand) ServiceOption {
	return func(d *serviceDeps) { d.rng = r }
}

// New creates a plume Service on an already-opened database.
func New(db *sql.DB, cfg *Config, logger *slog.Logger, opts ...ServiceOption) (*Service, error) {
	if cfg == nil {
		cfg = defaultConfig()
	}
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	deps := &serviceDeps{}
	for _, opt := range opts {
		opt(deps)
	}
	if deps.scraper == nil {
		deps.scraper = scrape.New(scrape.Config{UserAgent: cfg.Feed.UserAgent})
	}
	if deps.summarizer == nil && cfg.HuggingFaceToken != "" {
		deps.summarizer = generate.NewHFClient(generate.HFConfig{
			Token: cfg.HuggingFaceToken,
			Model: cfg.SummarizationModel,
		})
	}
	if deps.imager == nil && cfg.HuggingFaceToken != "" {
		deps.imager = visual.NewHFImageClient(visual.HFImageConfig{
			Token: cfg.HuggingFaceToken,
			Model: cfg.ImageModel,
		})
	}

	svc := &Service{
		store: store.NewStore(db, store.Limits{
			MinContent: cfg.MinArticleLen,
			MinSummary: cfg.MinSummaryLen,
		}),
		retriever: feed.New(cfg.Feed, deps.scraper, logger),
		generator: generate.New(cfg.Generate, deps.summarizer, deps.rng, logger),
		enricher:  visual.NewEnricher(deps.imager, cfg.DraftsDir, logger),
		logger:    logger,
		config:    cfg,
		loc:       loc,
		paced:     deps.summarizer != nil,
		sleep:     sleepCtx,
	}

	svc.scheduler, err = scheduler.New(func(ctx context.Context) error {
		_, err := svc.RunDailyJob(ctx)
		return err
	}, cfg.Scheduler, logger)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	return svc, nil
}

// ApplySchema creates the plume tables on db. Idempotent.
func ApplySchema(db *sql.DB) error {
	return store.ApplySchema(db)
}

// RunScheduler blocks, firing the daily pipeline at the configured
// time, until ctx is cancelled.
func (s *Service) RunScheduler(ctx context.Context) {
	s.scheduler.Run(ctx)
}

// RunDailyJob fetches all sources and generates the day's drafts. At
// most one run is in flight at a time; the quota makes repeat
// invocations harmless.
func (s *Service) RunDailyJob(ctx context.Context) (*RunSummary, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	start := time.Now()
	summary := &RunSummary{}

	s.fetchAll(ctx, summary)
	if err := s.generateDrafts(ctx, summary); err != nil {
		return summary, err
	}

	summary.DurationMs = time.Since(start).Milliseconds()
	s.logger.Info("pipeline run complete",
		"sources", summary.Sources,
		"entries", summary.Entries,
		"new_articles", summary.NewArticles,
		"drafts", summary.DraftsCreated,
		"failures", summary.Failures,
		"duration_ms", summary.DurationMs)
	return summary, nil
}

// fetchAll polls every enabled source, stores new articles and records
// one fetch log entry per source. Source failures are logged, not fatal.
func (s *Service) fetchAll(ctx context.Context, summary *RunSummary) {
	for _, src := range s.config.Sources {
		if !src.Enabled {
			continue
		}
		summary.Sources++
		entry := &store.FetchLogEntry{Source: src.Name, Status: "success"}
		fetchStart := time.Now()

		articles, err := s.retriever.Fetch(ctx, src)
		if err != nil {
			s.logger.Warn("source fetch failed", "source", src.Name, "error", err)
			entry.Status = "error"
			entry.ErrorMessage = err.Error()
		}

		for _, a := range articles {
			entry.Entries++
			_, inserted, err := s.store.InsertIfNew(ctx, a)
			if err != nil {
				if errors.Is(err, store.ErrTooShort) {
					s.logger.Debug("article below length gate",
						"source", src.Name, "title", a.Title)
					continue
				}
				s.logger.Warn("store article", "source", src.Name, "error", err)
				continue
			}
			if inserted {
				entry.NewArticles++
			}
		}

		entry.DurationMs = time.Since(fetchStart).Milliseconds()
		summary.Entries += entry.Entries
		summary.NewArticles += entry.NewArticles
		if err := s.store.InsertFetchLog(ctx, entry); err != nil {
			s.logger.Warn("record fetch log", "source", src.Name, "error", err)
		}
	}
}

// generateDrafts drafts from unprocessed articles up to the remaining
// daily quota. Articles stay unprocessed on failure so the next run
// retries them; only a created draft flips the flag.
func (s *Service) generateDrafts(ctx context.Context, summary *RunSummary) error {
	from, to := s.dayBounds(time.Now())
	used, err := s.store.CountPostsBetween(ctx, from, to)
	if err != nil {
		return fmt.Errorf("count today's posts: %w", err)
	}
	remaining := s.config.MaxPostsPerDay - used
	if remaining <= 0 {
		s.logger.Info("daily quota reached", "max", s.config.MaxPostsPerDay)
		return nil
	}

	articles, err := s.store.ListUnprocessed(ctx, remaining)
	if err != nil {
		return fmt.Errorf("list unprocessed: %w", err)
	}

	for i, a := range articles {
		if i > 0 && s.paced {
			if err := s.sleep(ctx, s.config.GenerateDelay); err != nil {
				return err
			}
		}

		post, err := s.generator.Draft(ctx, a)
		if err != nil {
			s.logger.Warn("draft generation failed", "title", a.Title, "error", err)
			summary.Failures++
			continue
		}

		if _, err := s.store.InsertPost(ctx, post); err != nil {
			s.logger.Error("store draft", "title", a.Title, "error", err)
			summary.Failures++
			continue
		}

		imagePath, infoPath := s.enricher.Enrich(ctx, a, post)
		if imagePath != "" {
			if err := s.store.SetPostImage(ctx, post.ID, imagePath); err != nil {
				s.logger.Warn("attach image", "post", post.ID, "error", err)
			}
		}
		if infoPath != "" {
			if err := s.store.SetPostInfographic(ctx, post.ID, infoPath); err != nil {
				s.logger.Warn("attach infographic", "post", post.ID, "error", err)
			}
		}

		s.markProcessed(ctx, a.ID)
		summary.DraftsCreated++
		s.logger.Info("draft created", "post", post.ID, "title", a.Title)
	}
	return nil
}

func (s *Service) markProcessed(ctx context.Context, id int64) {
	if err := s.store.MarkProcessed(ctx, id); err != nil {
		s.logger.Warn("mark processed", "article", id, "error", err)
	}
}

// dayBounds returns the [start, end) of now's calendar day in the
// configured timezone, in unix milliseconds.
func (s *Service) dayBounds(now time.Time) (int64, int64) {
	local := now.In(s.loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	return start.UnixMilli(), start.AddDate(0, 0, 1).UnixMilli()
}

// Drafts returns pending drafts, newest first.
func (s *Service) Drafts(ctx context.Context, limit int) ([]*DraftView, error) {
	return s.store.ListDrafts(ctx, limit)
}

// DraftsByCategory returns pending drafts in one category.
func (s *Service) DraftsByCategory(ctx context.Context, category string) ([]*DraftView, error) {
	return s.store.ListDraftsByCategory(ctx, category)
}

// DraftCategories lists the categories that have pending drafts.
func (s *Service) DraftCategories(ctx context.Context) ([]string, error) {
	return s.store.DraftCategories(ctx)
}

// PostsByStatus returns posts in a given state joined with their
// article fields.
func (s *Service) PostsByStatus(ctx context.Context, status string, limit int) ([]*DraftView, error) {
	if !validStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.store.ListByStatus(ctx, status, limit)
}

// TransitionPost moves a post through the review state machine.
func (s *Service) TransitionPost(ctx context.Context, id int64, status string) error {
	if !validStatus(status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.store.Transition(ctx, id, status)
}

// GetPost retrieves one post, or nil if absent.
func (s *Service) GetPost(ctx context.Context, id int64) (*Post, error) {
	return s.store.GetPost(ctx, id)
}

// Stats returns aggregate pipeline counters.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.store.Stats(ctx)
}

// FetchHistory returns recent fetch log entries, optionally filtered by
// source name.
func (s *Service) FetchHistory(ctx context.Context, source string, limit int) ([]*FetchLogEntry, error) {
	return s.store.FetchHistory(ctx, source, limit)
}

// Sources returns the configured source list.
func (s *Service) Sources() []Source {
	return s.config.Sources
}

// ExportJSON writes pending drafts to a dated JSON file in the drafts
// directory and returns its path.
func (s *Service) ExportJSON(ctx context.Context) (string, int, error) {
	drafts, err := s.store.ListDrafts(ctx, 0)
	if err != nil {
		return "", 0, err
	}
	path, err := export.JSON(s.config.DraftsDir, drafts)
	return path, len(drafts), err
}

// ExportMarkdown writes pending drafts to a dated Markdown file in the
// drafts directory and returns its path.
func (s *Service) ExportMarkdown(ctx context.Context) (string, int, error) {
	drafts, err := s.store.ListDrafts(ctx, 0)
	if err != nil {
		return "", 0, err
	}
	path, err := export.Markdown(s.config.DraftsDir, drafts)
	return path, len(drafts), err
}

// ResetAll deletes every post and returns all articles to the
// unprocessed pool. Returns posts deleted and articles reset.
func (s *Service) ResetAll(ctx context.Context) (int64, int64, error) {
	posts, err := s.store.DeleteAllPosts(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("delete posts: %w", err)
	}
	articles, err := s.store.ResetProcessed(ctx)
	if err != nil {
		return posts, 0, fmt.Errorf("reset articles: %w", err)
	}
	return posts, articles, nil
}

func validStatus(status string) bool {
	switch status {
	case StatusDraft, StatusApproved, StatusPosted, StatusRejected:
		return true
	}
	return false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
