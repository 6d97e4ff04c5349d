package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hoanghai1803/cyberdigest/internal/models"
)

// fakeHackerNews serves topstories.json and item/{id}.json from a map. Items
// mapped to nil are served as JSON null; IDs missing from the map get a 500.
func fakeHackerNews(t *testing.T, ids []int64, items map[int64]map[string]any) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var itemRequests atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if r.URL.Path == "/topstories.json" {
			_ = json.NewEncoder(w).Encode(ids)
			return
		}

		var id int64
		if _, err := fmt.Sscanf(r.URL.Path, "/item/%d.json", &id); err != nil {
			http.NotFound(w, r)
			return
		}
		itemRequests.Add(1)

		item, ok := items[id]
		if !ok {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(item)
	}))
	t.Cleanup(srv.Close)
	return srv, &itemRequests
}

func TestHackerNewsFetcher_FiltersByTitle(t *testing.T) {
	srv, _ := fakeHackerNews(t, []int64{1, 2, 3, 4, 5}, map[int64]map[string]any{
		1: {"id": 1, "type": "story", "title": "Major Data Breach Reported", "url": "https://example.com/breach", "score": 120, "by": "jdoe", "time": 1700000000},
		2: {"id": 2, "type": "story", "title": "Show HN: my new editor", "url": "https://example.com/editor", "score": 10, "by": "x", "time": 1700000100},
		3: nil,
		// 4 fails with HTTP 500
		5: {"id": 5, "type": "story", "title": "RANSOMWARE gang arrested", "score": 50, "by": "asmith", "time": 1700000200},
	})

	f := NewHackerNewsFetcher(HackerNewsOptions{BaseURL: srv.URL})
	f.loc = time.UTC

	stories := f.FetchStoriesByKeywords(context.Background(), []string{"breach", "ransomware"})

	if len(stories) != 2 {
		t.Fatalf("got %d stories, want 2: %+v", len(stories), stories)
	}

	first := stories[0]
	if first.Title != "Major Data Breach Reported" {
		t.Errorf("stories[0].Title = %q, want rank order preserved", first.Title)
	}
	if first.URL != "https://example.com/breach" {
		t.Errorf("URL = %q, want %q", first.URL, "https://example.com/breach")
	}
	if first.Author != "jdoe" {
		t.Errorf("Author = %q, want %q", first.Author, "jdoe")
	}
	if first.Score == nil || *first.Score != 120 {
		t.Errorf("Score = %v, want 120", first.Score)
	}
	if first.Timestamp != "2023-11-14 22:13:20" {
		t.Errorf("Timestamp = %q, want %q", first.Timestamp, "2023-11-14 22:13:20")
	}
	if first.Source != models.SourceHackerNews {
		t.Errorf("Source = %q, want %q", first.Source, models.SourceHackerNews)
	}

	second := stories[1]
	if second.URL != models.DefaultURL {
		t.Errorf("URL = %q, want default %q", second.URL, models.DefaultURL)
	}
}

func TestHackerNewsFetcher_Defaults(t *testing.T) {
	srv, _ := fakeHackerNews(t, []int64{7}, map[int64]map[string]any{
		7: {"id": 7, "title": "Breach with sparse metadata"},
	})

	f := NewHackerNewsFetcher(HackerNewsOptions{BaseURL: srv.URL + "/"})
	stories := f.FetchStoriesByKeywords(context.Background(), []string{"breach"})

	if len(stories) != 1 {
		t.Fatalf("got %d stories, want 1", len(stories))
	}
	s := stories[0]
	if s.Author != models.DefaultAuthor {
		t.Errorf("Author = %q, want %q", s.Author, models.DefaultAuthor)
	}
	if s.Score == nil || *s.Score != 0 {
		t.Errorf("Score = %v, want 0", s.Score)
	}
	if s.URL != models.DefaultURL {
		t.Errorf("URL = %q, want %q", s.URL, models.DefaultURL)
	}
	if s.Timestamp != "" {
		t.Errorf("Timestamp = %q, want empty without an epoch", s.Timestamp)
	}
}

func TestHackerNewsFetcher_DropsMissingTitle(t *testing.T) {
	srv, _ := fakeHackerNews(t, []int64{1}, map[int64]map[string]any{
		1: {"id": 1, "type": "comment", "text": "this breach is bad"},
	})

	f := NewHackerNewsFetcher(HackerNewsOptions{BaseURL: srv.URL})
	if got := f.FetchStoriesByKeywords(context.Background(), []string{"breach"}); len(got) != 0 {
		t.Errorf("got %d stories, want 0 for an item without a title", len(got))
	}
}

func TestHackerNewsFetcher_RespectsLimit(t *testing.T) {
	ids := make([]int64, 20)
	items := make(map[int64]map[string]any)
	for i := range ids {
		ids[i] = int64(i + 1)
		items[ids[i]] = map[string]any{"id": ids[i], "title": fmt.Sprintf("Breach %d", i+1)}
	}
	srv, requests := fakeHackerNews(t, ids, items)

	f := NewHackerNewsFetcher(HackerNewsOptions{BaseURL: srv.URL, Limit: 5})
	stories := f.FetchStoriesByKeywords(context.Background(), []string{"breach"})

	if len(stories) != 5 {
		t.Errorf("got %d stories, want 5", len(stories))
	}
	if got := requests.Load(); got != 5 {
		t.Errorf("item requests = %d, want 5", got)
	}
}

func TestHackerNewsFetcher_TopStoriesFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewHackerNewsFetcher(HackerNewsOptions{BaseURL: srv.URL})
	if got := f.FetchStoriesByKeywords(context.Background(), []string{"breach"}); len(got) != 0 {
		t.Errorf("got %d stories, want 0 when top stories fail", len(got))
	}
}

func TestHackerNewsFetcher_MalformedTopStories(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not": "a list"}`))
	}))
	defer srv.Close()

	f := NewHackerNewsFetcher(HackerNewsOptions{BaseURL: srv.URL})
	if got := f.FetchStoriesByKeywords(context.Background(), []string{"breach"}); len(got) != 0 {
		t.Errorf("got %d stories, want 0 for a malformed response", len(got))
	}
}

func TestHackerNewsFetcher_PausesAfterEachItem(t *testing.T) {
	srv, _ := fakeHackerNews(t, []int64{1, 2, 3}, map[int64]map[string]any{
		1: {"id": 1, "title": "a"},
		2: {"id": 2, "title": "b"},
		// 3 fails; the pause before it still applies.
	})

	f := NewHackerNewsFetcher(HackerNewsOptions{BaseURL: srv.URL, Delay: 250 * time.Millisecond})
	var waits []time.Duration
	f.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	f.FetchStoriesByKeywords(context.Background(), []string{"breach"})

	want := []time.Duration{250 * time.Millisecond, 250 * time.Millisecond}
	if fmt.Sprint(waits) != fmt.Sprint(want) {
		t.Errorf("waits = %v, want %v", waits, want)
	}
}

func TestHackerNewsFetcher_PauseFollowsSlowResponse(t *testing.T) {
	var (
		mu    sync.Mutex
		spans [][2]time.Time
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/topstories.json" {
			_, _ = w.Write([]byte(`[1, 2, 3]`))
			return
		}
		start := time.Now()
		time.Sleep(60 * time.Millisecond)
		_, _ = w.Write([]byte(`{"id": 1, "title": "slow"}`))
		mu.Lock()
		spans = append(spans, [2]time.Time{start, time.Now()})
		mu.Unlock()
	}))
	defer srv.Close()

	delay := 50 * time.Millisecond
	f := NewHackerNewsFetcher(HackerNewsOptions{BaseURL: srv.URL, Delay: delay})
	f.FetchStoriesByKeywords(context.Background(), []string{"slow"})

	mu.Lock()
	defer mu.Unlock()
	if len(spans) != 3 {
		t.Fatalf("item requests = %d, want 3", len(spans))
	}
	for i := 1; i < len(spans); i++ {
		if gap := spans[i][0].Sub(spans[i-1][1]); gap < delay {
			t.Errorf("gap before item request %d = %v, want >= %v", i, gap, delay)
		}
	}
}

func TestHackerNewsFetcher_StopsOnCancel(t *testing.T) {
	srv, itemRequests := fakeHackerNews(t, []int64{1, 2, 3}, map[int64]map[string]any{
		1: {"id": 1, "title": "breach one"},
		2: {"id": 2, "title": "breach two"},
		3: {"id": 3, "title": "breach three"},
	})

	ctx, cancel := context.WithCancel(context.Background())
	f := NewHackerNewsFetcher(HackerNewsOptions{BaseURL: srv.URL, Delay: time.Second})
	f.sleep = func(context.Context, time.Duration) error {
		cancel()
		return context.Canceled
	}

	got := f.FetchStoriesByKeywords(ctx, []string{"breach"})
	if len(got) != 1 {
		t.Errorf("got %d stories, want 1 fetched before cancel", len(got))
	}
	if n := itemRequests.Load(); n != 1 {
		t.Errorf("item requests = %d, want 1", n)
	}
}

func TestHackerNewsFetcher_SendsUserAgent(t *testing.T) {
	var gotUA atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA.Store(r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	NewHackerNewsFetcher(HackerNewsOptions{BaseURL: srv.URL}).FetchStoriesByKeywords(context.Background(), nil)

	ua, _ := gotUA.Load().(string)
	if !strings.Contains(ua, "cyberdigest") {
		t.Errorf("User-Agent = %q, want it to identify cyberdigest", ua)
	}
}
