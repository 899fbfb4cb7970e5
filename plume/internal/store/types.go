package store

// Post status values. Transitions follow the state machine in
// legalTransitions: draft -> approved|posted|rejected, approved -> posted.
// posted and rejected are terminal.
const (
	StatusDraft    = "draft"
	StatusApproved = "approved"
	StatusPosted   = "posted"
	StatusRejected = "rejected"
)

// Article is a fetched and normalized feed entry.
type Article struct {
	ID          int64  `json:"id"`
	ExternalKey string `json:"external_key"`
	GUID        string `json:"-"` // feed-provided unique id, dedup input only
	Title       string `json:"title"`
	Link        string `json:"link"`
	Content     string `json:"content"`
	Summary     string `json:"summary"`
	Source      string `json:"source"`
	Category    string `json:"category"`
	PublishedAt int64  `json:"published_at"` // ms
	FetchedAt   int64  `json:"fetched_at"`   // ms
	Processed   bool   `json:"processed"`
}

// Post is a generated draft and its lifecycle state.
type Post struct {
	ID              int64    `json:"id"`
	ArticleID       int64    `json:"article_id"`
	Content         string   `json:"content"`
	Hashtags        []string `json:"hashtags"`
	Status          string   `json:"status"`
	CreatedAt       int64    `json:"created_at"`          // ms
	PostedAt        *int64   `json:"posted_at,omitempty"` // ms, set on transition to posted
	ImageURL        string   `json:"image_url,omitempty"`
	InfographicPath string   `json:"infographic_path,omitempty"`
}

// DraftView is a post joined with its article's display fields,
// the shape the review UI and exports consume.
type DraftView struct {
	Post
	Title    string `json:"title"`
	Link     string `json:"link"`
	Source   string `json:"source"`
	Category string `json:"category"`
}

// FetchLogEntry is one source fetch attempt record.
type FetchLogEntry struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Entries      int    `json:"entries"`
	NewArticles  int    `json:"new_articles"`
	DurationMs   int64  `json:"duration_ms"`
	FetchedAt    int64  `json:"fetched_at"` // ms
}

// Stats holds aggregate database counters.
type Stats struct {
	TotalArticles int `json:"total_articles"`
	Unprocessed   int `json:"unprocessed"`
	TotalPosts    int `json:"total_posts"`
	Drafts        int `json:"drafts"`
	Approved      int `json:"approved"`
	Posted        int `json:"posted"`
	Rejected      int `json:"rejected"`
}
