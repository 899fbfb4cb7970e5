package plume

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/plume/plume/internal/feed"
	"github.com/hazyhaar/plume/plume/internal/generate"
	"github.com/hazyhaar/plume/plume/internal/scheduler"
)

// Config configures the plume service.
type Config struct {
	// Feed settings
	Feed feed.Config `yaml:"-"`

	// Generate settings
	Generate generate.Config `yaml:"-"`

	// Scheduler settings
	Scheduler scheduler.Config `yaml:"-"`

	// Sources to poll. Empty means the built-in list.
	Sources []feed.Source `yaml:"sources"`

	// DatabasePath is the SQLite file. Default: data/plume.db.
	DatabasePath string `yaml:"database_path"`

	// DraftsDir receives exports and generated visuals. Default: drafts.
	DraftsDir string `yaml:"drafts_dir"`

	// MaxPostsPerDay caps draft generation per calendar day in Timezone.
	// Default: 3.
	MaxPostsPerDay int `yaml:"max_posts_per_day"`

	// Timezone defines the quota day boundary and the scheduler clock.
	// Default: America/New_York.
	Timezone string `yaml:"timezone"`

	// MinArticleLen and MinSummaryLen gate article storage.
	// Defaults: 200 and 50.
	MinArticleLen int `yaml:"min_article_len"`
	MinSummaryLen int `yaml:"min_summary_len"`

	// GenerateDelay spaces consecutive draft generations. Default: 1s.
	GenerateDelay time.Duration `yaml:"generate_delay"`

	// HuggingFaceToken enables model summarization and image generation.
	// Empty keeps the pipeline on the template fallback.
	HuggingFaceToken string `yaml:"huggingface_token"`

	// SummarizationModel and ImageModel select inference models.
	SummarizationModel string `yaml:"summarization_model"`
	ImageModel         string `yaml:"image_model"`

	// ScheduleHour and ScheduleMinute set the daily run time.
	ScheduleHour   int `yaml:"schedule_hour"`
	ScheduleMinute int `yaml:"schedule_minute"`

	// Port for the web interface. Default: 3000.
	Port int `yaml:"port"`
}

func (c *Config) defaults() {
	if c.DatabasePath == "" {
		c.DatabasePath = "data/plume.db"
	}
	if c.DraftsDir == "" {
		c.DraftsDir = "drafts"
	}
	if c.MaxPostsPerDay <= 0 {
		c.MaxPostsPerDay = 3
	}
	if c.Timezone == "" {
		c.Timezone = "America/New_York"
	}
	if c.MinArticleLen <= 0 {
		c.MinArticleLen = 200
	}
	if c.MinSummaryLen <= 0 {
		c.MinSummaryLen = 50
	}
	if c.GenerateDelay <= 0 {
		c.GenerateDelay = time.Second
	}
	if c.ScheduleHour == 0 && c.ScheduleMinute == 0 {
		c.ScheduleHour = 9
	}
	if c.Port <= 0 {
		c.Port = 3000
	}
	if len(c.Sources) == 0 {
		c.Sources = feed.DefaultSources()
	}
	c.Scheduler.Hour = c.ScheduleHour
	c.Scheduler.Minute = c.ScheduleMinute
	c.Scheduler.Timezone = c.Timezone
	c.Feed.MinContentLen = c.MinArticleLen
}

func defaultConfig() *Config {
	c := &Config{}
	c.defaults()
	return c
}

// LoadConfig reads a YAML config file, applies environment overrides
// and fills defaults. An empty path skips the file and uses environment
// plus defaults only.
func LoadConfig(path string) (*Config, error) {
	c := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	c.applyEnv()
	c.defaults()
	return c, nil
}

// applyEnv overlays environment variables onto the config. Environment
// wins over the YAML file.
func (c *Config) applyEnv() {
	if v := os.Getenv("HUGGINGFACE_TOKEN"); v != "" {
		c.HuggingFaceToken = v
	}
	if v := os.Getenv("SUMMARIZATION_MODEL"); v != "" {
		c.SummarizationModel = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		c.DatabasePath = v
	}
	if v := os.Getenv("DRAFTS_PATH"); v != "" {
		c.DraftsDir = v
	}
	if v := os.Getenv("SCHEDULE_TIMEZONE"); v != "" {
		c.Timezone = v
	}
	if v, ok := envInt("MAX_POSTS_PER_DAY"); ok {
		c.MaxPostsPerDay = v
	}
	if v, ok := envInt("MIN_ARTICLE_LENGTH"); ok {
		c.MinArticleLen = v
	}
	if v, ok := envInt("SCHEDULE_HOUR"); ok {
		c.ScheduleHour = v
	}
	if v, ok := envInt("SCHEDULE_MINUTE"); ok {
		c.ScheduleMinute = v
	}
	if v, ok := envInt("PORT"); ok {
		c.Port = v
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
