// Package visual enriches drafts with a generated image and an SVG
// infographic. Enrichment is best-effort: a draft is complete without
// visuals, so nothing here returns an error to the pipeline.
package visual

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hazyhaar/plume/plume/internal/store"
)

// Imager generates an image for a prompt and returns the raw bytes.
type Imager interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// Enricher attaches visuals to drafts.
type Enricher struct {
	imager Imager
	dir    string
	log    *slog.Logger
}

// NewEnricher creates an Enricher writing into dir. imager may be nil
// to disable image generation; infographics are always produced.
func NewEnricher(imager Imager, dir string, log *slog.Logger) *Enricher {
	if log == nil {
		log = slog.Default()
	}
	return &Enricher{imager: imager, dir: dir, log: log}
}

// Enrich generates an image and an infographic for the draft and
// returns their paths. Either result may be empty on failure.
func (e *Enricher) Enrich(ctx context.Context, a *store.Article, p *store.Post) (imagePath, infographicPath string) {
	imagePath = e.generateImage(ctx, a, p)

	info := Infographic{
		Title:      a.Title,
		KeyPoints:  ExtractKeyPoints(p.Content, 5),
		Source:     a.Source,
		Category:   a.Category,
		ArticleURL: a.Link,
	}
	path, err := WriteInfographic(filepath.Join(e.dir, "infographics"), info)
	if err != nil {
		e.log.Warn("infographic generation failed", "title", a.Title, "error", err)
	} else {
		infographicPath = path
	}
	return imagePath, infographicPath
}

func (e *Enricher) generateImage(ctx context.Context, a *store.Article, p *store.Post) string {
	if e.imager == nil {
		return ""
	}
	prompt := fmt.Sprintf("Professional illustration for a %s news article: %s", a.Category, a.Title)
	img, err := e.imager.Generate(ctx, prompt)
	if err != nil {
		e.log.Warn("image generation failed", "title", a.Title, "error", err)
		return ""
	}

	dir := filepath.Join(e.dir, "images")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		e.log.Warn("create image dir", "error", err)
		return ""
	}
	path := filepath.Join(dir, fmt.Sprintf("post_%d.png", p.ArticleID))
	if err := os.WriteFile(path, img, 0o644); err != nil {
		e.log.Warn("write image", "path", path, "error", err)
		return ""
	}
	return path
}
