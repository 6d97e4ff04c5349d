package models

// SourceTag identifies which fetcher produced a story. It selects the
// summarization prompt template.
type SourceTag string

const (
	SourceHackerNews       SourceTag = "hackernews"
	SourceBleepingComputer SourceTag = "bleepingcomputer"
	SourceGeneric          SourceTag = "generic"
)

// Default display values for optional story fields.
const (
	DefaultURL    = "No URL"
	DefaultAuthor = "unknown"
)

// Story is a normalized news item that matched at least one keyword.
// Stories are built by a fetcher and only read afterwards.
type Story struct {
	ID        int64     `json:"id,omitempty"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Summary   string    `json:"summary,omitempty"`
	Author    string    `json:"author,omitempty"`
	Score     *int      `json:"score,omitempty"`
	Timestamp string    `json:"timestamp,omitempty"`
	Source    SourceTag `json:"source"`

	// Populated only when article extraction is enabled.
	Excerpt     string `json:"excerpt,omitempty"`
	ReadingTime int    `json:"reading_time,omitempty"`
}
