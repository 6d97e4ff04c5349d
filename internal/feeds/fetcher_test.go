package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hoanghai1803/cyberdigest/internal/models"
)

const testRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>BleepingComputer</title>
    <link>https://www.bleepingcomputer.com/</link>
    <description>Security news</description>
    <item>
      <title>New Android malware steals banking credentials</title>
      <link>https://example.com/android-malware</link>
      <description><![CDATA[<p>The malware abuses accessibility services.</p>]]></description>
      <pubDate>Mon, 02 Mar 2026 10:00:00 +0000</pubDate>
    </item>
    <item>
      <title>Microsoft shares workaround for Outlook crash</title>
      <link>https://example.com/outlook</link>
      <description>Not security related.</description>
    </item>
    <item>
      <title>City services down after cyberattack</title>
      <link>https://example.com/city</link>
      <description>Officials confirmed a RANSOMWARE infection.</description>
    </item>
  </channel>
</rss>`

func TestFeedFetcher_FetchStoriesByKeywords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(testRSS))
	}))
	defer srv.Close()

	f := NewBleepingComputerFetcher(srv.URL, 5*time.Second)
	f.loc = time.UTC

	stories := f.FetchStoriesByKeywords(context.Background(), []string{"malware", "ransomware"})

	if len(stories) != 2 {
		t.Fatalf("got %d stories, want 2", len(stories))
	}
	if stories[0].Title != "New Android malware steals banking credentials" {
		t.Errorf("stories[0].Title = %q", stories[0].Title)
	}
	if stories[0].Summary != "The malware abuses accessibility services." {
		t.Errorf("stories[0].Summary = %q", stories[0].Summary)
	}
	if stories[0].Timestamp != "2026-03-02 10:00:00" {
		t.Errorf("stories[0].Timestamp = %q", stories[0].Timestamp)
	}
	if stories[1].URL != "https://example.com/city" {
		t.Errorf("stories[1].URL = %q", stories[1].URL)
	}
	for _, s := range stories {
		if s.Source != models.SourceBleepingComputer {
			t.Errorf("Source = %q, want %q", s.Source, models.SourceBleepingComputer)
		}
	}
}

func TestFeedFetcher_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "down", http.StatusBadGateway)
			},
		},
		{
			name: "not a feed",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("this is not xml"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			f := NewBleepingComputerFetcher(srv.URL, 5*time.Second)
			if got := f.FetchStoriesByKeywords(context.Background(), []string{"malware"}); len(got) != 0 {
				t.Errorf("got %d stories, want 0", len(got))
			}
		})
	}
}

func TestFeedFetcher_Name(t *testing.T) {
	if got := NewBleepingComputerFetcher("https://example.com", 0).Name(); got != "BleepingComputer" {
		t.Errorf("Name() = %q, want %q", got, "BleepingComputer")
	}
}
