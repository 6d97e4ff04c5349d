package feeds

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/hoanghai1803/cyberdigest/internal/models"
	"github.com/mmcdole/gofeed"
)

// TimestampLayout is the human-readable local time format used for story
// timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

// parseFeedItems converts gofeed items into stories, keeping only those whose
// title or summary contains a keyword. Feed order is preserved.
func parseFeedItems(feed *gofeed.Feed, keywords []string, tag models.SourceTag, loc *time.Location) []models.Story {
	var stories []models.Story
	for _, item := range feed.Items {
		if item == nil {
			continue
		}

		summary := item.Description
		if summary == "" {
			summary = item.Content
		}
		summary = stripHTML(summary)

		if !MatchesAny(keywords, item.Title, summary) {
			continue
		}

		story := models.Story{
			Title:   item.Title,
			URL:     item.Link,
			Summary: summary,
			Source:  tag,
		}
		if item.PublishedParsed != nil {
			story.Timestamp = item.PublishedParsed.In(loc).Format(TimestampLayout)
		}

		stories = append(stories, story)
	}

	return stories
}

// stripHTML returns the text content of an HTML fragment with entities
// unescaped and runs of whitespace collapsed.
func stripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
