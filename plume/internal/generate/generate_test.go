package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hazyhaar/plume/plume/internal/store"
)

func testArticle() *store.Article {
	return &store.Article{
		ID:       7,
		Title:    "Quantum breakthrough changes encryption forever",
		Link:     "https://example.com/quantum",
		Summary:  "Researchers demonstrated a new quantum error correction scheme.",
		Source:   "Ars Technica",
		Category: "science",
	}
}

func TestHashtags(t *testing.T) {
	// WHAT: Tags combine base tags, category tags and long title words,
	// capped at eight.
	// WHY: A stable tag recipe keeps drafts consistent across runs.
	a := testArticle()
	tags := Hashtags(a)

	if len(tags) > 8 {
		t.Fatalf("cap: got %d tags", len(tags))
	}
	for _, want := range []string{"#TechNews", "#Innovation", "#Technology", "#Science", "#Research", "#Discovery"} {
		if !contains(tags, want) {
			t.Errorf("missing %s in %v", want, tags)
		}
	}
	// First two title words longer than four chars: quantum, breakthrough.
	if !contains(tags, "#Quantum") || !contains(tags, "#Breakthrough") {
		t.Errorf("title tags: %v", tags)
	}
}

func TestHashtagsDeduplicated(t *testing.T) {
	// WHAT: Title words repeating base or category tags do not produce
	// duplicates, and a skipped duplicate does not consume a title slot.
	// WHY: Duplicate tags read as spam and crowd real tags out of the cap.
	a := testArticle()
	a.Title = "Technology Innovation roundup"
	a.Category = "tech"
	tags := Hashtags(a)

	counts := make(map[string]int)
	for _, tag := range tags {
		counts[tag]++
	}
	for tag, n := range counts {
		if n > 1 {
			t.Errorf("%s appears %d times in %v", tag, n, tags)
		}
	}
	// "roundup" still gets a slot even though the first two long words
	// duplicated existing tags.
	if !contains(tags, "#Roundup") {
		t.Errorf("remaining title word dropped: %v", tags)
	}
}

func TestHashtagsUnknownCategory(t *testing.T) {
	// WHAT: Unknown categories use the tech tag table.
	// WHY: Sources can declare arbitrary categories.
	a := testArticle()
	a.Category = "finance"
	tags := Hashtags(a)
	if !contains(tags, "#Tech") {
		t.Errorf("fallback tags: %v", tags)
	}
}

func TestDraftTemplateDeterministic(t *testing.T) {
	// WHAT: With a seeded generator and no summarizer, the same article
	// yields the same draft.
	// WHY: The template path must be reproducible for review and tests.
	a := testArticle()

	g1 := New(Config{}, nil, rand.New(rand.NewSource(42)), nil)
	g2 := New(Config{}, nil, rand.New(rand.NewSource(42)), nil)

	p1, err := g1.Draft(context.Background(), a)
	if err != nil {
		t.Fatalf("draft: %v", err)
	}
	p2, _ := g2.Draft(context.Background(), a)

	if p1.Content != p2.Content {
		t.Error("same seed should produce identical drafts")
	}
	if p1.ArticleID != 7 || p1.Status != store.StatusDraft {
		t.Errorf("post fields: %+v", p1)
	}
}

func TestDraftTemplateStructure(t *testing.T) {
	// WHAT: Template drafts carry the title, the source attribution line,
	// the hashtags and the read-more link.
	// WHY: These are the fixed parts reviewers expect in every draft.
	a := testArticle()
	g := New(Config{}, nil, rand.New(rand.NewSource(1)), nil)

	p, err := g.Draft(context.Background(), a)
	if err != nil {
		t.Fatalf("draft: %v", err)
	}
	for _, want := range []string{
		a.Title,
		"As per the latest update from Ars Technica:",
		a.Summary,
		"#TechNews",
		"🔗 Read more: " + a.Link,
	} {
		if !strings.Contains(p.Content, want) {
			t.Errorf("draft missing %q\n%s", want, p.Content)
		}
	}
}

type stubSummarizer struct {
	out string
	err error
}

func (s stubSummarizer) Summarize(context.Context, string) (string, error) {
	return s.out, s.err
}

func TestDraftModelPath(t *testing.T) {
	// WHAT: A working summarizer's text is formatted with attribution,
	// tags and link appended; a leading "Summary:" prefix is stripped.
	// WHY: Model output is raw prose and needs the fixed trailer.
	a := testArticle()
	g := New(Config{}, stubSummarizer{out: "Summary: A thoughtful take on quantum computing that runs long enough to pass validation."}, nil, nil)

	p, err := g.Draft(context.Background(), a)
	if err != nil {
		t.Fatalf("draft: %v", err)
	}
	if strings.HasPrefix(p.Content, "Summary:") {
		t.Error("prefix not stripped")
	}
	if !strings.HasPrefix(p.Content, "A thoughtful take") {
		t.Errorf("body: %q", p.Content)
	}
	if !strings.Contains(p.Content, "As per the latest update from Ars Technica:") {
		t.Error("attribution missing")
	}
	if !strings.Contains(p.Content, "🔗 Read more: "+a.Link) {
		t.Error("link missing")
	}
}

func TestDraftSummarizerFailureFallsBack(t *testing.T) {
	// WHAT: Summarizer errors and empty output both fall back to the
	// template instead of failing the draft.
	// WHY: The API is rate limited and flaky; a draft must still appear.
	a := testArticle()

	for name, s := range map[string]Summarizer{
		"error": stubSummarizer{err: errors.New("rate limited")},
		"empty": stubSummarizer{out: "   "},
	} {
		g := New(Config{}, s, rand.New(rand.NewSource(3)), nil)
		p, err := g.Draft(context.Background(), a)
		if err != nil {
			t.Fatalf("%s: draft: %v", name, err)
		}
		if !strings.Contains(p.Content, a.Title) {
			t.Errorf("%s: expected template draft", name)
		}
	}
}

func TestDraftLengthBand(t *testing.T) {
	// WHAT: Posts outside [MinLength, MaxLength] are rejected with ErrLength.
	// WHY: Platform limits; the caller skips the article rather than
	// storing a truncated draft.
	a := testArticle()
	long := stubSummarizer{out: strings.Repeat("x", 4000)}
	g := New(Config{}, long, nil, nil)

	_, err := g.Draft(context.Background(), a)
	if !errors.Is(err, ErrLength) {
		t.Errorf("got %v, want ErrLength", err)
	}
}

func TestHFClientSummarize(t *testing.T) {
	// WHAT: The client posts the prompt with fixed sampling parameters and
	// parses summary_text out of the array response.
	// WHY: This is the exact wire shape of the inference API.
	var gotAuth string
	var gotBody hfRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := jsonDecode(r, &gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		fmt.Fprint(w, `[{"summary_text": "model says hi"}]`)
	}))
	t.Cleanup(srv.Close)

	c := NewHFClient(HFConfig{Token: "tok", BaseURL: srv.URL + "/"})
	out, err := c.Summarize(context.Background(), "prompt text")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if out != "model says hi" {
		t.Errorf("out: %q", out)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("auth: %q", gotAuth)
	}
	if gotBody.Inputs != "prompt text" || gotBody.Parameters.MaxLength != 350 {
		t.Errorf("request: %+v", gotBody)
	}
}

func TestHFClientErrors(t *testing.T) {
	// WHAT: Missing token, HTTP errors and empty payloads are all errors.
	// WHY: Every failure here must trigger the template fallback upstream.
	noToken := NewHFClient(HFConfig{})
	if _, err := noToken.Summarize(context.Background(), "p"); err == nil {
		t.Error("expected error without token")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	c := NewHFClient(HFConfig{Token: "tok", BaseURL: srv.URL + "/"})
	if _, err := c.Summarize(context.Background(), "p"); err == nil {
		t.Error("expected error on 503")
	}

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	t.Cleanup(empty.Close)
	c = NewHFClient(HFConfig{Token: "tok", BaseURL: empty.URL + "/"})
	if _, err := c.Summarize(context.Background(), "p"); err == nil {
		t.Error("expected error on empty array")
	}
}

func jsonDecode(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func contains(ss []string, want string) bool {
	for _, s := range ss {
		if s == want {
			return true
		}
	}
	return false
}
