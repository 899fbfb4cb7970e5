// Package export writes pending drafts to reviewable files.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hazyhaar/plume/plume/internal/store"
)

// JSON writes drafts to drafts_<date>.json in dir, indented for human
// review, and returns the file path.
func JSON(dir string, drafts []*store.DraftView) (string, error) {
	data, err := json.MarshalIndent(drafts, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal drafts: %w", err)
	}
	return write(dir, "json", data)
}

// Markdown writes drafts to drafts_<date>.md in dir and returns the
// file path. Each draft gets a section with a source link and the post
// body in a fenced block for copy-paste.
func Markdown(dir string, drafts []*store.DraftView) (string, error) {
	var b strings.Builder
	b.WriteString("# Post Drafts\n\n")
	for i, d := range drafts {
		fmt.Fprintf(&b, "## Post %d\n\n", i+1)
		fmt.Fprintf(&b, "**Source:** [%s](%s)\n\n", d.Title, d.Link)
		fmt.Fprintf(&b, "```\n%s\n```\n\n", d.Content)
		b.WriteString("---\n\n")
	}
	return write(dir, "md", []byte(b.String()))
}

func write(dir, ext string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	name := fmt.Sprintf("drafts_%s.%s", time.Now().Format("2006-01-02"), ext)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}
