package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hazyhaar/plume/plume/internal/store"
)

func testDrafts() []*store.DraftView {
	return []*store.DraftView{
		{
			Post: store.Post{
				ID:       1,
				Content:  "First draft body",
				Hashtags: []string{"#AI"},
				Status:   store.StatusDraft,
			},
			Title: "Article One",
			Link:  "https://example.com/one",
		},
		{
			Post: store.Post{
				ID:       2,
				Content:  "Second draft body",
				Status:   store.StatusDraft,
			},
			Title: "Article Two",
			Link:  "https://example.com/two",
		},
	}
}

func TestJSONExport(t *testing.T) {
	// WHAT: JSON export writes a dated, indented file that parses back to
	// the same drafts.
	// WHY: The export file is consumed by humans and scripts alike.
	dir := t.TempDir()
	path, err := JSON(dir, testDrafts())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	wantName := "drafts_" + time.Now().Format("2006-01-02") + ".json"
	if filepath.Base(path) != wantName {
		t.Errorf("filename: got %q, want %q", filepath.Base(path), wantName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got []*store.DraftView
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 2 || got[0].Title != "Article One" {
		t.Errorf("roundtrip: %+v", got)
	}
}

func TestMarkdownExport(t *testing.T) {
	// WHAT: Markdown export numbers posts, links the source article and
	// fences the body.
	// WHY: Fenced bodies survive copy-paste without markdown mangling.
	dir := t.TempDir()
	path, err := Markdown(dir, testDrafts())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	data, _ := os.ReadFile(path)
	md := string(data)

	for _, want := range []string{
		"# Post Drafts",
		"## Post 1",
		"## Post 2",
		"[Article One](https://example.com/one)",
		"```\nFirst draft body\n```",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("missing %q in:\n%s", want, md)
		}
	}
}

func TestExportCreatesDir(t *testing.T) {
	// WHAT: A missing export directory is created.
	// WHY: First run on a fresh checkout has no drafts folder.
	dir := filepath.Join(t.TempDir(), "nested", "drafts")
	if _, err := JSON(dir, testDrafts()); err != nil {
		t.Fatalf("export into missing dir: %v", err)
	}
}
