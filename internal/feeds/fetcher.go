package feeds

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hoanghai1803/cyberdigest/internal/models"
	"github.com/mmcdole/gofeed"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	userAgent          = "Mozilla/5.0 (compatible; cyberdigest/1.0; +https://github.com/hoanghai1803/cyberdigest)"
)

// StoryFetcher retrieves stories from one provider and keeps those matching
// at least one keyword. Failures are logged and absorbed: the result is
// simply smaller, possibly empty.
type StoryFetcher interface {
	Name() string
	FetchStoriesByKeywords(ctx context.Context, keywords []string) []models.Story
}

// newHTTPClient creates an HTTP client with the given timeout and the
// cyberdigest user agent.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &userAgentTransport{
			base: http.DefaultTransport,
		},
	}
}

// userAgentTransport wraps an http.RoundTripper to inject a custom User-Agent
// header on every request.
type userAgentTransport struct {
	base http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", userAgent)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/rss+xml,application/xml;q=0.9,application/json;q=0.9,*/*;q=0.8")
	}
	return t.base.RoundTrip(req)
}

// Compile-time interface check.
var _ StoryFetcher = (*FeedFetcher)(nil)

// FeedFetcher reads a single RSS/Atom feed and filters its entries by
// keyword against title and summary.
type FeedFetcher struct {
	name    string
	feedURL string
	tag     models.SourceTag
	client  *http.Client
	loc     *time.Location
}

// NewBleepingComputerFetcher creates a FeedFetcher for the BleepingComputer
// feed at feedURL.
func NewBleepingComputerFetcher(feedURL string, timeout time.Duration) *FeedFetcher {
	return NewFeedFetcher("BleepingComputer", feedURL, models.SourceBleepingComputer, timeout)
}

// NewFeedFetcher creates a FeedFetcher whose stories carry the given source tag.
func NewFeedFetcher(name, feedURL string, tag models.SourceTag, timeout time.Duration) *FeedFetcher {
	return &FeedFetcher{
		name:    name,
		feedURL: feedURL,
		tag:     tag,
		client:  newHTTPClient(timeout),
		loc:     time.Local,
	}
}

// Name returns the human-readable source name.
func (f *FeedFetcher) Name() string {
	return f.name
}

// FetchStoriesByKeywords parses the feed once and returns matching entries in
// feed order. A feed that cannot be fetched or parsed yields no stories.
func (f *FeedFetcher) FetchStoriesByKeywords(ctx context.Context, keywords []string) []models.Story {
	fp := gofeed.NewParser()
	fp.Client = f.client

	feed, err := fp.ParseURLWithContext(f.feedURL, ctx)
	if err != nil {
		slog.Warn("failed to parse feed",
			"source", f.name,
			"url", f.feedURL,
			"error", err,
		)
		return nil
	}

	stories := parseFeedItems(feed, keywords, f.tag, f.loc)
	slog.Info("fetched feed",
		"source", f.name,
		"items", len(feed.Items),
		"matched", len(stories),
	)
	return stories
}
