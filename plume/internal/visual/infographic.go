package visual

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Infographic is the data rendered into the SVG card.
type Infographic struct {
	Title      string
	KeyPoints  []string
	Source     string
	Category   string
	ArticleURL string
}

var sentenceSplitRe = regexp.MustCompile(`[.!?]+`)
var spaceRe = regexp.MustCompile(`\s+`)

// ExtractKeyPoints picks up to maxPoints sentences between 20 and 200
// characters from the post content, in document order.
func ExtractKeyPoints(content string, maxPoints int) []string {
	if maxPoints <= 0 {
		maxPoints = 5
	}
	var points []string
	for _, s := range sentenceSplitRe.Split(content, -1) {
		s = strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
		if len(s) <= 20 || len(s) >= 200 {
			continue
		}
		points = append(points, s)
		if len(points) == maxPoints {
			break
		}
	}
	return points
}

var categoryColors = map[string]string{
	"ai":      "#6d28d9",
	"tech":    "#0369a1",
	"science": "#047857",
}

// WriteInfographic renders the card as a standalone SVG file in dir and
// returns its path.
func WriteInfographic(dir string, info Infographic) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create infographic dir: %w", err)
	}

	accent, ok := categoryColors[info.Category]
	if !ok {
		accent = categoryColors["tech"]
	}

	var b strings.Builder
	height := 220 + len(info.KeyPoints)*56
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="800" height="%d" viewBox="0 0 800 %d">`, height, height)
	fmt.Fprintf(&b, `<rect width="800" height="%d" fill="#f8fafc"/>`, height)
	fmt.Fprintf(&b, `<rect width="800" height="96" fill="%s"/>`, accent)
	fmt.Fprintf(&b, `<text x="40" y="44" font-family="sans-serif" font-size="24" font-weight="bold" fill="#ffffff">%s</text>`,
		html.EscapeString(truncate(info.Title, 58)))
	fmt.Fprintf(&b, `<text x="40" y="76" font-family="sans-serif" font-size="15" fill="#e2e8f0">%s · %s</text>`,
		html.EscapeString(info.Source), html.EscapeString(strings.ToUpper(info.Category)))

	y := 150
	for i, point := range info.KeyPoints {
		fmt.Fprintf(&b, `<circle cx="52" cy="%d" r="14" fill="%s"/>`, y-6, accent)
		fmt.Fprintf(&b, `<text x="52" y="%d" font-family="sans-serif" font-size="14" fill="#ffffff" text-anchor="middle">%d</text>`, y-1, i+1)
		fmt.Fprintf(&b, `<text x="84" y="%d" font-family="sans-serif" font-size="16" fill="#1e293b">%s</text>`,
			y, html.EscapeString(truncate(point, 80)))
		y += 56
	}

	fmt.Fprintf(&b, `<text x="40" y="%d" font-family="sans-serif" font-size="13" fill="#64748b">%s</text>`,
		height-28, html.EscapeString(info.ArticleURL))
	b.WriteString(`</svg>`)

	path := filepath.Join(dir, fmt.Sprintf("infographic_%d.svg", time.Now().UnixMilli()))
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write infographic: %w", err)
	}
	return path, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
