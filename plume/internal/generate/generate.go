// Package generate turns articles into draft social posts.
//
// A Generator asks a Summarizer (normally the HuggingFace inference API)
// to rewrite the article, and falls back to a deterministic template when
// no summarizer is configured or the call fails. The fallback is seeded
// randomness over small phrase pools, so a fixed seed produces a fixed
// draft.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"regexp"
	"strings"

	"github.com/hazyhaar/plume/plume/internal/store"
)

// ErrLength is returned when a generated post falls outside the
// acceptable length band.
var ErrLength = errors.New("generate: post length out of bounds")

// Summarizer rewrites a prompt into post prose.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// Config configures the generator.
type Config struct {
	// MinLength and MaxLength bound the final post text.
	// Defaults: 50 and 3000.
	MinLength int
	MaxLength int
}

func (c *Config) defaults() {
	if c.MinLength <= 0 {
		c.MinLength = 50
	}
	if c.MaxLength <= 0 {
		c.MaxLength = 3000
	}
}

// Generator builds draft posts from articles.
type Generator struct {
	summarizer Summarizer
	rng        *rand.Rand
	config     Config
	log        *slog.Logger
}

// New creates a Generator. summarizer may be nil, which forces template
// generation. rng may be nil, in which case the global source is used.
func New(cfg Config, summarizer Summarizer, rng *rand.Rand, log *slog.Logger) *Generator {
	cfg.defaults()
	if log == nil {
		log = slog.Default()
	}
	return &Generator{summarizer: summarizer, rng: rng, config: cfg, log: log}
}

var hooks = []string{
	"🚀 Just came across something fascinating:",
	"💡 Interesting development in tech:",
	"🤔 Food for thought:",
	"⚡ Breaking:",
	"🔍 Worth watching:",
}

var commentary = map[string][]string{
	"ai": {
		"This is another exciting step forward in AI. The implications for how we work and create are profound.",
		"AI continues to push boundaries in ways we couldn't have imagined just years ago.",
		"The rapid evolution of AI is reshaping industries at an unprecedented pace.",
		"These AI advancements remind us how quickly the technology landscape is transforming.",
	},
	"tech": {
		"The pace of innovation in tech never ceases to amaze. This could change how we approach problems in this space.",
		"Technology evolves so rapidly that today's breakthrough becomes tomorrow's standard.",
		"We're witnessing another example of how tech continues to redefine what's possible.",
		"Innovation in this space moves fast, and this development proves it once again.",
	},
	"science": {
		"Science continues to push the boundaries of what we know about our world.",
		"This discovery adds another piece to the puzzle of understanding our universe.",
		"Research like this reminds us how much more there is to learn.",
		"Science never ceases to amaze with its ability to reveal the unknown.",
	},
}

var questions = []string{
	"What do you think about this development?",
	"How do you see this impacting your work?",
	"Would you use something like this?",
	"What's your take on this trend?",
	"Does this align with what you're seeing in the industry?",
	"How might this shape the future of our field?",
}

// Draft generates a post for the article. The model path is tried first
// when a summarizer is configured; any failure there falls back to the
// template. Only a final length-band violation is an error.
func (g *Generator) Draft(ctx context.Context, a *store.Article) (*store.Post, error) {
	tags := Hashtags(a)

	var content string
	if g.summarizer != nil {
		out, err := g.summarizer.Summarize(ctx, Prompt(a))
		if err != nil || strings.TrimSpace(out) == "" {
			g.log.Warn("summarizer failed, using template",
				"title", a.Title, "error", err)
		} else {
			content = formatModelPost(out, a, tags)
		}
	}
	if content == "" {
		content = g.templatePost(a, tags)
	}

	if len(content) < g.config.MinLength || len(content) > g.config.MaxLength {
		return nil, fmt.Errorf("%w: %d chars", ErrLength, len(content))
	}

	return &store.Post{
		ArticleID: a.ID,
		Content:   content,
		Hashtags:  tags,
		Status:    store.StatusDraft,
	}, nil
}

// Prompt builds the summarizer instruction for an article.
func Prompt(a *store.Article) string {
	return fmt.Sprintf(`Transform this article summary into an engaging social media post:

Title: %s
Summary: %s
Source: %s
Category: %s

Write a post that:
1. Starts with a hook or thought-provoking question
2. Mentions "as per the latest update" when referencing the article insights
3. Expands on the key points from the summary
4. Adds personal commentary on why this matters
5. Ends with an engaging question for the community
6. Keeps it under 300 words and conversational`,
		a.Title, a.Summary, a.Source, a.Category)
}

var summaryPrefixRe = regexp.MustCompile(`(?i)^\s*Summary:\s*`)
var blankLinesRe = regexp.MustCompile(`\n\s*\n`)

func formatModelPost(summary string, a *store.Article, tags []string) string {
	body := summaryPrefixRe.ReplaceAllString(summary, "")
	body = blankLinesRe.ReplaceAllString(body, "\n\n")
	body = strings.TrimSpace(body)

	var b strings.Builder
	b.WriteString(body)
	fmt.Fprintf(&b, "\n\nAs per the latest update from %s: %q", a.Source, a.Summary)
	b.WriteString("\n\n" + strings.Join(tags, " "))
	fmt.Fprintf(&b, "\n\n🔗 Read more: %s", a.Link)
	return b.String()
}

func (g *Generator) templatePost(a *store.Article, tags []string) string {
	category := a.Category
	if _, ok := commentary[category]; !ok {
		category = "tech"
	}

	hook := hooks[g.intn(len(hooks))]
	comment := commentary[category][g.intn(len(commentary[category]))]
	question := questions[g.intn(len(questions))]

	return fmt.Sprintf("%s\n\n%s\n\nAs per the latest update from %s: %q\n\n%s\n\n%s\n\n%s\n\n🔗 Read more: %s",
		hook, a.Title, a.Source, a.Summary, comment, question,
		strings.Join(tags, " "), a.Link)
}

func (g *Generator) intn(n int) int {
	if g.rng != nil {
		return g.rng.Intn(n)
	}
	return rand.Intn(n)
}
