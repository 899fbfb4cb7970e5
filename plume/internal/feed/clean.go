package feed

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var (
	stripPolicy = bluemonday.StrictPolicy()
	wsRe        = regexp.MustCompile(`\s+`)
	truncRe     = regexp.MustCompile(`\[\+\d+ chars\]`)
)

// CleanText strips HTML tags, unescapes entities, removes feed
// truncation markers like "[+1234 chars]" and collapses whitespace.
func CleanText(raw string) string {
	s := stripPolicy.Sanitize(raw)
	s = html.UnescapeString(s)
	s = truncRe.ReplaceAllString(s, "")
	s = wsRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Summarize derives a short summary from the feed-provided description,
// falling back to the start of the content. The fallback takes up to
// maxLen characters and trims back to the last sentence boundary when
// one exists past the halfway point, so summaries do not end mid-word.
func Summarize(description, content string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = 500
	}
	desc := CleanText(description)
	if desc != "" && len(desc) <= maxLen {
		return desc
	}
	src := desc
	if src == "" {
		src = CleanText(content)
	}
	if len(src) <= maxLen {
		return src
	}

	// Back the cut off to a rune boundary so a multi-byte character is
	// never split.
	end := maxLen
	for end > 0 && !utf8.RuneStart(src[end]) {
		end--
	}
	cut := src[:end]
	if dot := strings.LastIndexAny(cut, ".!?"); dot > maxLen/2 {
		return strings.TrimSpace(cut[:dot+1])
	}
	if sp := strings.LastIndex(cut, " "); sp > 0 {
		cut = cut[:sp]
	}
	return strings.TrimSpace(cut) + "..."
}
