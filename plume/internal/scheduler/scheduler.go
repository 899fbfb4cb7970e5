// Package scheduler triggers the daily pipeline run at a configured
// local time.
package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Config configures the scheduler.
type Config struct {
	// Hour and Minute are the daily trigger time in Timezone.
	// Default: 09:00.
	Hour   int
	Minute int
	// Timezone is an IANA zone name. Default: America/New_York.
	Timezone string
	// CheckInterval is how often the clock is polled. Default: 30s.
	CheckInterval time.Duration
}

func (c *Config) defaults() {
	if c.Hour == 0 && c.Minute == 0 {
		c.Hour = 9
	}
	if c.Timezone == "" {
		c.Timezone = "America/New_York"
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = 30 * time.Second
	}
}

// JobFunc is the daily pipeline entry point.
type JobFunc func(ctx context.Context) error

// Scheduler fires a job once per day at the configured wall-clock time.
type Scheduler struct {
	job    JobFunc
	config Config
	loc    *time.Location
	logger *slog.Logger

	// lastRunDay guards against double fires within the trigger minute.
	lastRunDay string

	// now is swappable in tests.
	now func() time.Time
}

// New creates a Scheduler. Returns an error only for an invalid timezone.
func New(job JobFunc, cfg Config, logger *slog.Logger) (*Scheduler, error) {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		job:    job,
		config: cfg,
		loc:    loc,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Run polls the clock and fires the job when the trigger time passes.
// Blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("scheduler started",
		"hour", s.config.Hour, "minute", s.config.Minute, "timezone", s.config.Timezone)

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	now := s.now().In(s.loc)
	if !s.due(now) {
		return
	}
	day := now.Format("2006-01-02")
	s.lastRunDay = day
	s.logger.Info("scheduler firing daily job", "day", day)
	if err := s.job(ctx); err != nil {
		s.logger.Error("daily job failed", "error", err)
	}
}

// due reports whether the trigger time has passed today and the job has
// not run yet today.
func (s *Scheduler) due(now time.Time) bool {
	if s.lastRunDay == now.Format("2006-01-02") {
		return false
	}
	trigger := time.Date(now.Year(), now.Month(), now.Day(),
		s.config.Hour, s.config.Minute, 0, 0, s.loc)
	return !now.Before(trigger)
}
