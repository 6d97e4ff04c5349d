package feeds

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

const (
	defaultExtractTimeout = 30 * time.Second
	defaultExcerptWords   = 300
)

// ErrNoArticleURL is returned when a story has no fetchable link.
var ErrNoArticleURL = errors.New("story has no article URL")

// Article is the readable text extracted from a story's link.
type Article struct {
	// Excerpt is the leading words of the article text.
	Excerpt string
	// ReadingTime is the estimated reading time of the whole article in minutes.
	ReadingTime int
}

// ArticleExtractor downloads story pages and pulls out their main text with
// go-readability.
type ArticleExtractor struct {
	client       *http.Client
	excerptWords int
}

// NewArticleExtractor creates an ArticleExtractor. Zero values fall back to a
// 30-second timeout and a 300-word excerpt.
func NewArticleExtractor(timeout time.Duration, excerptWords int) *ArticleExtractor {
	if timeout <= 0 {
		timeout = defaultExtractTimeout
	}
	if excerptWords <= 0 {
		excerptWords = defaultExcerptWords
	}
	return &ArticleExtractor{client: newHTTPClient(timeout), excerptWords: excerptWords}
}

// Extract fetches the page at articleURL and returns an excerpt of its
// readable text along with its reading time. The request is bound to ctx.
func (e *ArticleExtractor) Extract(ctx context.Context, articleURL string) (*Article, error) {
	if !strings.HasPrefix(articleURL, "http://") && !strings.HasPrefix(articleURL, "https://") {
		return nil, ErrNoArticleURL
	}
	pageURL, err := url.Parse(articleURL)
	if err != nil {
		return nil, fmt.Errorf("parsing article URL %q: %w", articleURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, articleURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %q: %w", articleURL, err)
	}
	// Some sites answer 406 without a browser-like Accept header.
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching article %q: %w", articleURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching article %q: HTTP %d", articleURL, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/html") {
		return nil, fmt.Errorf("article %q is not HTML (content type %q)", articleURL, ct)
	}

	article, err := readability.FromReader(resp.Body, pageURL)
	if err != nil {
		return nil, fmt.Errorf("extracting article from %q: %w", articleURL, err)
	}

	return &Article{
		Excerpt:     truncateWords(article.TextContent, e.excerptWords),
		ReadingTime: CalculateReadingTime(article.TextContent),
	}, nil
}

// truncateWords returns the first maxWords whitespace-delimited words of s,
// joined by single spaces.
func truncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) > maxWords {
		words = words[:maxWords]
	}
	return strings.Join(words, " ")
}
