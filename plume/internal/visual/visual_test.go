package visual

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/hazyhaar/plume/plume/internal/store"
)

func TestExtractKeyPoints(t *testing.T) {
	// WHAT: Key points are sentences between 20 and 200 chars, in order,
	// capped at maxPoints.
	// WHY: The infographic has room for a handful of readable lines.
	content := "Short. " +
		"This sentence is long enough to be a key point. " +
		"Tiny. " +
		"Another perfectly sized insight about the story! " +
		strings.Repeat("x", 250) + ". " +
		"A third valid point that fits the card nicely."

	points := ExtractKeyPoints(content, 2)
	if len(points) != 2 {
		t.Fatalf("count: got %d, want 2", len(points))
	}
	if points[0] != "This sentence is long enough to be a key point" {
		t.Errorf("first point: %q", points[0])
	}
	if points[1] != "Another perfectly sized insight about the story" {
		t.Errorf("second point: %q", points[1])
	}
}

func TestWriteInfographic(t *testing.T) {
	// WHAT: WriteInfographic produces a valid SVG file with escaped text.
	// WHY: Titles routinely contain & and <; a broken SVG renders nothing.
	dir := t.TempDir()
	path, err := WriteInfographic(dir, Infographic{
		Title:      "AT&T <AI> Deal",
		KeyPoints:  []string{"First point about the deal going through"},
		Source:     "The Verge",
		Category:   "tech",
		ArticleURL: "https://example.com/att",
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	svg := string(data)
	if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>") {
		t.Error("not a standalone svg")
	}
	if !strings.Contains(svg, "AT&amp;T &lt;AI&gt; Deal") {
		t.Error("title not escaped")
	}
	if !strings.Contains(svg, "First point about the deal") {
		t.Error("key point missing")
	}
}

type stubImager struct {
	img []byte
	err error
}

func (s stubImager) Generate(context.Context, string) ([]byte, error) {
	return s.img, s.err
}

func testInputs() (*store.Article, *store.Post) {
	a := &store.Article{
		ID:       3,
		Title:    "Robots learn to fold laundry",
		Link:     "https://example.com/robots",
		Source:   "TechCrunch AI",
		Category: "ai",
	}
	p := &store.Post{
		ArticleID: 3,
		Content:   "Robots can now fold laundry reliably. This matters for eldercare and logistics alike.",
	}
	return a, p
}

func TestEnrichWritesBothVisuals(t *testing.T) {
	// WHAT: Enrich writes the image and the infographic and returns their
	// paths.
	// WHY: The service stores both paths on the post.
	a, p := testInputs()
	e := NewEnricher(stubImager{img: []byte("png-bytes")}, t.TempDir(), nil)

	imgPath, infoPath := e.Enrich(context.Background(), a, p)
	if imgPath == "" || infoPath == "" {
		t.Fatalf("paths: %q, %q", imgPath, infoPath)
	}
	if _, err := os.Stat(imgPath); err != nil {
		t.Errorf("image file: %v", err)
	}
	if _, err := os.Stat(infoPath); err != nil {
		t.Errorf("infographic file: %v", err)
	}
}

func TestEnrichImageFailureStillProducesInfographic(t *testing.T) {
	// WHAT: An imager failure yields an empty image path but the
	// infographic is still written; no error escapes.
	// WHY: Visuals are best-effort and must never block a draft.
	a, p := testInputs()
	e := NewEnricher(stubImager{err: errors.New("model loading")}, t.TempDir(), nil)

	imgPath, infoPath := e.Enrich(context.Background(), a, p)
	if imgPath != "" {
		t.Errorf("image path on failure: %q", imgPath)
	}
	if infoPath == "" {
		t.Error("infographic should still be written")
	}
}

func TestEnrichWithoutImager(t *testing.T) {
	// WHAT: A nil imager skips image generation quietly.
	// WHY: Image generation is opt-in via the API token.
	a, p := testInputs()
	e := NewEnricher(nil, t.TempDir(), nil)

	imgPath, infoPath := e.Enrich(context.Background(), a, p)
	if imgPath != "" {
		t.Errorf("image path without imager: %q", imgPath)
	}
	if infoPath == "" {
		t.Error("infographic missing")
	}
}

func TestHFImageClient(t *testing.T) {
	// WHAT: The client posts prompt and dimensions and returns raw bytes;
	// non-200 responses are errors.
	// WHY: The inference API returns the image body directly, not JSON.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "raw-image-bytes")
	}))
	t.Cleanup(srv.Close)

	c := NewHFImageClient(HFImageConfig{Token: "tok", BaseURL: srv.URL + "/"})
	img, err := c.Generate(context.Background(), "a prompt")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if string(img) != "raw-image-bytes" {
		t.Errorf("img: %q", img)
	}

	if _, err := NewHFImageClient(HFImageConfig{}).Generate(context.Background(), "p"); err == nil {
		t.Error("expected error without token")
	}

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	t.Cleanup(bad.Close)
	c = NewHFImageClient(HFImageConfig{Token: "tok", BaseURL: bad.URL + "/"})
	if _, err := c.Generate(context.Background(), "p"); err == nil {
		t.Error("expected error on 503")
	}
}
