package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hoanghai1803/cyberdigest/internal/models"
	"github.com/hoanghai1803/cyberdigest/internal/retry"
)

const (
	// DefaultHackerNewsBaseURL is the public Hacker News Firebase API.
	DefaultHackerNewsBaseURL = "https://hacker-news.firebaseio.com/v0"

	defaultHackerNewsLimit = 100
)

// HackerNewsOptions configures a HackerNewsFetcher.
type HackerNewsOptions struct {
	// BaseURL of the API, without a trailing slash.
	BaseURL string
	// Limit is how many top story IDs are considered.
	Limit int
	// Delay is the pause after each item request. Zero disables pacing.
	Delay   time.Duration
	Timeout time.Duration
}

// Compile-time interface check.
var _ StoryFetcher = (*HackerNewsFetcher)(nil)

// HackerNewsFetcher walks the current top stories in rank order, fetching
// each item sequentially and keeping those whose title matches a keyword.
type HackerNewsFetcher struct {
	baseURL string
	limit   int
	client  *http.Client
	delay   time.Duration
	loc     *time.Location

	sleep func(ctx context.Context, d time.Duration) error
}

// NewHackerNewsFetcher creates a HackerNewsFetcher. Zero-valued options fall
// back to the public API, 100 stories, and no pacing.
func NewHackerNewsFetcher(opts HackerNewsOptions) *HackerNewsFetcher {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultHackerNewsBaseURL
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultHackerNewsLimit
	}

	return &HackerNewsFetcher{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		limit:   opts.Limit,
		client:  newHTTPClient(opts.Timeout),
		delay:   opts.Delay,
		loc:     time.Local,
		sleep:   retry.Sleep,
	}
}

// Name returns the human-readable source name.
func (f *HackerNewsFetcher) Name() string {
	return "Hacker News"
}

// hnItem is the subset of a Hacker News item we use.
type hnItem struct {
	ID    int64  `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Score *int   `json:"score"`
	By    string `json:"by"`
	Time  int64  `json:"time"`
}

// toStory normalizes an item, filling documented defaults for absent fields.
func (it *hnItem) toStory(loc *time.Location) models.Story {
	story := models.Story{
		ID:     it.ID,
		Title:  it.Title,
		URL:    it.URL,
		Author: it.By,
		Source: models.SourceHackerNews,
	}
	if story.URL == "" {
		story.URL = models.DefaultURL
	}
	if story.Author == "" {
		story.Author = models.DefaultAuthor
	}

	score := 0
	if it.Score != nil {
		score = *it.Score
	}
	story.Score = &score

	if it.Time > 0 {
		story.Timestamp = time.Unix(it.Time, 0).In(loc).Format(TimestampLayout)
	}
	return story
}

// FetchStoriesByKeywords returns top stories whose title contains a keyword,
// in rank order. Each item request is followed by a Delay pause before the
// next one. If the top-stories list cannot be fetched the result is empty; a
// failed item is skipped.
func (f *HackerNewsFetcher) FetchStoriesByKeywords(ctx context.Context, keywords []string) []models.Story {
	ids, err := f.topStoryIDs(ctx)
	if err != nil {
		slog.Warn("failed to fetch top stories", "source", f.Name(), "error", err)
		return nil
	}

	var stories []models.Story
	for i, id := range ids {
		if err := f.pause(ctx, i); err != nil {
			slog.Warn("stopped fetching stories", "source", f.Name(), "error", err)
			break
		}

		item, err := f.storyDetail(ctx, id)
		if err != nil {
			slog.Warn("failed to fetch story", "source", f.Name(), "id", id, "error", err)
			continue
		}
		if item == nil || item.Title == "" {
			continue
		}
		if !MatchesAny(keywords, item.Title) {
			continue
		}

		stories = append(stories, item.toStory(f.loc))
	}

	slog.Info("fetched top stories",
		"source", f.Name(),
		"candidates", len(ids),
		"matched", len(stories),
	)
	return stories
}

// pause waits out the delay that follows the previous item request.
func (f *HackerNewsFetcher) pause(ctx context.Context, i int) error {
	if i == 0 || f.delay <= 0 {
		return ctx.Err()
	}
	return f.sleep(ctx, f.delay)
}

// topStoryIDs returns up to limit story IDs in rank order.
func (f *HackerNewsFetcher) topStoryIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := f.getJSON(ctx, f.baseURL+"/topstories.json", &ids); err != nil {
		return nil, err
	}
	if len(ids) > f.limit {
		ids = ids[:f.limit]
	}
	return ids, nil
}

// storyDetail fetches one item. Deleted items come back as JSON null and
// yield a nil item without error.
func (f *HackerNewsFetcher) storyDetail(ctx context.Context, id int64) (*hnItem, error) {
	var item *hnItem
	if err := f.getJSON(ctx, fmt.Sprintf("%s/item/%d.json", f.baseURL, id), &item); err != nil {
		return nil, err
	}
	return item, nil
}

func (f *HackerNewsFetcher) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request for %q: %w", url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %q: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching %q: HTTP %d", url, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding %q: %w", url, err)
	}
	return nil
}
