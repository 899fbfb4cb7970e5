package feed

// Source is one feed the retriever polls.
type Source struct {
	Name     string `json:"name" yaml:"name"`
	URL      string `json:"url" yaml:"url"`
	Category string `json:"category" yaml:"category"`
	Enabled  bool   `json:"enabled" yaml:"enabled"`
}

// DefaultSources is the built-in source list used when the config file
// does not provide one.
func DefaultSources() []Source {
	return []Source{
		{Name: "TechCrunch AI", URL: "https://techcrunch.com/category/artificial-intelligence/feed/", Category: "ai", Enabled: true},
		{Name: "VentureBeat AI", URL: "https://venturebeat.com/category/ai/feed/", Category: "ai", Enabled: true},
		{Name: "MarkTechPost", URL: "https://www.marktechpost.com/feed/", Category: "ai", Enabled: true},
		{Name: "Ars Technica", URL: "https://feeds.arstechnica.com/arstechnica/index", Category: "tech", Enabled: true},
		{Name: "The Verge", URL: "https://www.theverge.com/rss/index.xml", Category: "tech", Enabled: true},
		{Name: "MIT Technology Review", URL: "https://www.technologyreview.com/feed/", Category: "science", Enabled: true},
		{Name: "Hacker News AI", URL: "https://hnrss.org/newest?q=AI", Category: "ai", Enabled: true},
	}
}
