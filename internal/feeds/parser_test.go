package feeds

import (
	"testing"
	"time"

	"github.com/hoanghai1803/cyberdigest/internal/models"
	"github.com/mmcdole/gofeed"
)

func TestParseFeedItems(t *testing.T) {
	keywords := []string{"ransomware", "breach"}

	tests := []struct {
		name      string
		items     []*gofeed.Item
		wantTitle []string
	}{
		{
			name: "title match",
			items: []*gofeed.Item{
				{Title: "LockBit ransomware returns", Link: "https://example.com/a"},
			},
			wantTitle: []string{"LockBit ransomware returns"},
		},
		{
			name: "summary match only",
			items: []*gofeed.Item{
				{Title: "Hospital systems offline", Link: "https://example.com/b", Description: "<p>A <b>Ransomware</b> gang claimed the attack.</p>"},
			},
			wantTitle: []string{"Hospital systems offline"},
		},
		{
			name: "content used when description empty",
			items: []*gofeed.Item{
				{Title: "Weekly digest", Link: "https://example.com/c", Content: "Another data breach disclosed"},
			},
			wantTitle: []string{"Weekly digest"},
		},
		{
			name: "no match is dropped",
			items: []*gofeed.Item{
				{Title: "Windows update fixes printing", Link: "https://example.com/d", Description: "A quality update."},
			},
			wantTitle: nil,
		},
		{
			name: "keyword only inside markup does not match",
			items: []*gofeed.Item{
				{Title: "Patch Tuesday", Description: `<a href="https://example.com/breach">details</a>`},
			},
			wantTitle: nil,
		},
		{
			name: "empty title without summary match is dropped",
			items: []*gofeed.Item{
				{Title: "", Link: "https://example.com/e"},
			},
			wantTitle: nil,
		},
		{
			name: "feed order preserved",
			items: []*gofeed.Item{
				{Title: "Breach one"},
				{Title: "Unrelated"},
				{Title: "Ransomware two"},
				nil,
				{Title: "Breach three"},
			},
			wantTitle: []string{"Breach one", "Ransomware two", "Breach three"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed := &gofeed.Feed{Items: tt.items}
			stories := parseFeedItems(feed, keywords, models.SourceBleepingComputer, time.UTC)

			if len(stories) != len(tt.wantTitle) {
				t.Fatalf("got %d stories, want %d", len(stories), len(tt.wantTitle))
			}
			for i, want := range tt.wantTitle {
				if stories[i].Title != want {
					t.Errorf("stories[%d].Title = %q, want %q", i, stories[i].Title, want)
				}
			}
		})
	}
}

func TestParseFeedItems_FieldMapping(t *testing.T) {
	published := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	feed := &gofeed.Feed{
		Items: []*gofeed.Item{
			{
				Title:           "Ransomware hits schools",
				Link:            "https://example.com/article",
				Description:     "Schools &amp; colleges <em>affected</em>",
				PublishedParsed: &published,
			},
			{
				Title: "Breach with no date",
				Link:  "https://example.com/nodate",
			},
		},
	}

	stories := parseFeedItems(feed, []string{"ransomware", "breach"}, models.SourceBleepingComputer, time.UTC)
	if len(stories) != 2 {
		t.Fatalf("expected 2 stories, got %d", len(stories))
	}

	s := stories[0]
	if s.URL != "https://example.com/article" {
		t.Errorf("URL = %q, want %q", s.URL, "https://example.com/article")
	}
	if s.Summary != "Schools & colleges affected" {
		t.Errorf("Summary = %q, want %q", s.Summary, "Schools & colleges affected")
	}
	if s.Source != models.SourceBleepingComputer {
		t.Errorf("Source = %q, want %q", s.Source, models.SourceBleepingComputer)
	}
	if s.Timestamp != "2026-03-04 05:06:07" {
		t.Errorf("Timestamp = %q, want %q", s.Timestamp, "2026-03-04 05:06:07")
	}
	if s.Author != "" || s.Score != nil {
		t.Errorf("feed stories carry no author or score, got author=%q score=%v", s.Author, s.Score)
	}

	if stories[1].Timestamp != "" {
		t.Errorf("Timestamp = %q, want empty when the feed has no date", stories[1].Timestamp)
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "removes simple tags", input: "<p>Hello <b>world</b></p>", want: "Hello world"},
		{name: "unescapes HTML entities", input: "Tom &amp; Jerry &lt;3", want: "Tom & Jerry <3"},
		{name: "combined tags and entities", input: "<div>Price: &gt; $10 &amp; &lt; $20</div>", want: "Price: > $10 & < $20"},
		{name: "plain text unchanged", input: "no tags here", want: "no tags here"},
		{name: "collapses whitespace", input: "  spread \n\n out  ", want: "spread out"},
		{name: "empty string", input: "", want: ""},
		{name: "self-closing tags", input: "line one<br/>line two", want: "line oneline two"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripHTML(tt.input); got != tt.want {
				t.Errorf("stripHTML(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
