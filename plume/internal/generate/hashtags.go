package generate

import (
	"regexp"
	"strings"

	"github.com/hazyhaar/plume/plume/internal/store"
)

var baseHashtags = []string{"#TechNews", "#Innovation", "#Technology"}

var categoryHashtags = map[string][]string{
	"ai":      {"#AI", "#ArtificialIntelligence", "#MachineLearning", "#FutureOfWork"},
	"tech":    {"#Tech", "#DigitalTransformation", "#Startup"},
	"science": {"#Science", "#Research", "#Discovery"},
}

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9\s]`)

// Hashtags builds the tag set for an article: three base tags, the
// category table (unknown categories use tech), and up to two title
// words longer than four characters. The combined list is de-duplicated
// in encounter order and capped at eight tags total.
func Hashtags(a *store.Article) []string {
	seen := make(map[string]bool, 8)
	tags := make([]string, 0, 8)
	add := func(tag string) bool {
		if seen[tag] {
			return false
		}
		seen[tag] = true
		tags = append(tags, tag)
		return true
	}

	for _, t := range baseHashtags {
		add(t)
	}
	specific, ok := categoryHashtags[a.Category]
	if !ok {
		specific = categoryHashtags["tech"]
	}
	for _, t := range specific {
		add(t)
	}

	words := strings.Fields(nonAlnumRe.ReplaceAllString(strings.ToLower(a.Title), ""))
	taken := 0
	for _, w := range words {
		if taken == 2 {
			break
		}
		if len(w) <= 4 {
			continue
		}
		if add("#" + strings.ToUpper(w[:1]) + w[1:]) {
			taken++
		}
	}

	if len(tags) > 8 {
		tags = tags[:8]
	}
	return tags
}
