// Package report drives a full digest run: load keywords, fetch and cap
// stories from every source, summarize each story, and write the markdown
// report.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hoanghai1803/cyberdigest/internal/feeds"
	"github.com/hoanghai1803/cyberdigest/internal/keywords"
	"github.com/hoanghai1803/cyberdigest/internal/metrics"
	"github.com/hoanghai1803/cyberdigest/internal/models"
	"github.com/hoanghai1803/cyberdigest/internal/retry"
	"github.com/hoanghai1803/cyberdigest/internal/summarize"
)

var (
	// ErrNoKeywords aborts a run whose keyword list is empty or missing.
	ErrNoKeywords = errors.New("no keywords loaded")
	// ErrNoStories aborts a run in which no source produced a match.
	ErrNoStories = errors.New("no relevant stories found")
	// ErrRunInProgress is returned when Run is called while another run is active.
	ErrRunInProgress = errors.New("a report run is already in progress")
)

// OuterFallbackText replaces a summary when every summarization attempt
// returned an error.
const OuterFallbackText = "[!] Failed to summarize due to timeout or API error."

// Summarizer produces the summary text for one story.
type Summarizer interface {
	Summarize(ctx context.Context, text string, tag models.SourceTag) (summarize.Result, error)
}

// Extractor fetches the readable text behind a story link.
type Extractor interface {
	Extract(ctx context.Context, url string) (*feeds.Article, error)
}

// Deps are the collaborators a Builder drives. Fetchers run in order and
// their results appear in the report in that order.
type Deps struct {
	Fetchers   []feeds.StoryFetcher
	Summarizer Summarizer
	Extractor  Extractor        // optional
	Metrics    *metrics.Metrics // optional
}

// Options tunes a Builder. Zero values select the defaults noted per field.
type Options struct {
	KeywordsFile   string
	LogDir         string
	PerSourceLimit int           // default 5
	Attempts       int           // outer summarization attempts, default 3
	Backoff        retry.Backoff // default retry.Exponential(1s)
	Throttle       time.Duration // pause between stories; 0 disables
	Workers        int           // default 1

	// Sleep and Now are test hooks.
	Sleep func(ctx context.Context, d time.Duration) error
	Now   func() time.Time
}

// Builder runs the report pipeline. It is safe to call Run from several
// goroutines; only one run proceeds at a time.
type Builder struct {
	deps    Deps
	opts    Options
	running atomic.Bool
}

// NewBuilder creates a Builder.
func NewBuilder(deps Deps, opts Options) *Builder {
	if opts.PerSourceLimit <= 0 {
		opts.PerSourceLimit = 5
	}
	if opts.Attempts <= 0 {
		opts.Attempts = 3
	}
	if opts.Backoff == nil {
		opts.Backoff = retry.Exponential(time.Second)
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.LogDir == "" {
		opts.LogDir = "logs"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Builder{deps: deps, opts: opts}
}

// LogDir returns the directory reports are written to.
func (b *Builder) LogDir() string {
	return b.opts.LogDir
}

// Running reports whether a run is in progress.
func (b *Builder) Running() bool {
	return b.running.Load()
}

// Run executes one full pipeline and returns the path of the written report.
// ErrNoKeywords and ErrNoStories mark clean early aborts with no report.
func (b *Builder) Run(ctx context.Context) (string, error) {
	if !b.running.CompareAndSwap(false, true) {
		return "", ErrRunInProgress
	}
	defer b.running.Store(false)

	log := slog.With("run_id", uuid.NewString())
	start := time.Now()
	defer func() { b.deps.Metrics.ObserveRun(time.Since(start)) }()

	if err := os.MkdirAll(b.opts.LogDir, 0o755); err != nil {
		return "", fmt.Errorf("creating log directory: %w", err)
	}

	kws, err := keywords.Load(b.opts.KeywordsFile)
	if err != nil {
		return "", fmt.Errorf("loading keywords: %w", err)
	}
	if len(kws) == 0 {
		log.Warn("no keywords loaded, check the keywords file", "path", b.opts.KeywordsFile)
		return "", ErrNoKeywords
	}

	stories := b.collect(ctx, log, kws)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(stories) == 0 {
		log.Warn("no relevant stories found", "keywords", len(kws))
		return "", ErrNoStories
	}
	log.Info("fetched matching stories", "count", len(stories))

	timestamp := b.opts.Now().Format(TimestampLayout)
	path := filepath.Join(b.opts.LogDir, FileName(timestamp))

	summarized, err := b.summarizeAll(ctx, log, stories)
	if err != nil {
		return "", fmt.Errorf("summarizing stories: %w", err)
	}

	if err := os.WriteFile(path, []byte(Render(timestamp, summarized)), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	b.deps.Metrics.RecordReport()

	log.Info("report written", "path", path, "stories", len(summarized), "duration", time.Since(start))
	return path, nil
}

// collect queries every fetcher in order, keeping at most PerSourceLimit
// stories from each in the order the fetcher returned them.
func (b *Builder) collect(ctx context.Context, log *slog.Logger, kws []string) []models.Story {
	var all []models.Story
	for _, f := range b.deps.Fetchers {
		if ctx.Err() != nil {
			return nil
		}
		log.Info("fetching stories", "source", f.Name())

		got := f.FetchStoriesByKeywords(ctx, kws)
		b.deps.Metrics.RecordFetched(f.Name(), len(got))
		if len(got) > b.opts.PerSourceLimit {
			got = got[:b.opts.PerSourceLimit]
		}
		all = append(all, got...)
	}
	return all
}

// summarizeAll summarizes stories and returns them in input order. With a
// single worker each story is followed by a Throttle pause before the next
// one starts; with more workers the starts are spaced by Throttle instead.
func (b *Builder) summarizeAll(ctx context.Context, log *slog.Logger, stories []models.Story) ([]models.Story, error) {
	if b.opts.Workers == 1 {
		return b.summarizeSequential(ctx, log, stories)
	}

	out := make([]models.Story, len(stories))

	limiter := rate.NewLimiter(rate.Inf, 1)
	if b.opts.Throttle > 0 {
		limiter = rate.NewLimiter(rate.Every(b.opts.Throttle), 1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Workers)

	for i, story := range stories {
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return err
			}
			s, err := b.summarizeStory(gctx, log, story)
			if err != nil {
				return err
			}
			out[i] = s
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *Builder) summarizeSequential(ctx context.Context, log *slog.Logger, stories []models.Story) ([]models.Story, error) {
	sleep := b.opts.Sleep
	if sleep == nil {
		sleep = retry.Sleep
	}

	out := make([]models.Story, 0, len(stories))
	for i, story := range stories {
		s, err := b.summarizeStory(ctx, log, story)
		if err != nil {
			return nil, err
		}
		out = append(out, s)

		// The report is written once all sections are done, so the pause
		// after the final story is skipped.
		if b.opts.Throttle > 0 && i < len(stories)-1 {
			if err := sleep(ctx, b.opts.Throttle); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// summarizeStory returns a copy of story with Summary filled in. Summarizer
// errors are retried; once the attempts are used up the summary becomes
// OuterFallbackText. Only context cancellation is returned as an error.
func (b *Builder) summarizeStory(ctx context.Context, log *slog.Logger, story models.Story) (models.Story, error) {
	if b.deps.Extractor != nil {
		b.enrich(ctx, log, &story)
	}

	input := story.Title
	if story.Excerpt != "" {
		input += "\n\n" + story.Excerpt
	}

	var res summarize.Result
	err := retry.Do(ctx, retry.Config{
		MaxAttempts: b.opts.Attempts,
		Backoff:     b.opts.Backoff,
		Sleep:       b.opts.Sleep,
		OnRetry: func(attempt int, err error, wait time.Duration) {
			log.Warn("error summarizing story, retrying",
				"title", story.Title,
				"attempt", attempt,
				"wait", wait,
				"error", err,
			)
		},
	}, func(ctx context.Context, _ int) error {
		r, err := b.deps.Summarizer.Summarize(ctx, input, story.Source)
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return story, ctxErr
		}
		log.Error("giving up on story summary", "title", story.Title, "error", err)
		story.Summary = OuterFallbackText
		b.deps.Metrics.RecordSummary("failed")
		return story, nil
	}

	story.Summary = res.Text
	b.deps.Metrics.RecordSummary(string(res.Outcome))
	return story, nil
}

// enrich attaches an article excerpt and reading time to story. Extraction
// failures are logged and leave story unchanged.
func (b *Builder) enrich(ctx context.Context, log *slog.Logger, story *models.Story) {
	article, err := b.deps.Extractor.Extract(ctx, story.URL)
	if err != nil {
		if !errors.Is(err, feeds.ErrNoArticleURL) {
			log.Warn("article extraction failed", "url", story.URL, "error", err)
		}
		return
	}
	story.Excerpt = article.Excerpt
	story.ReadingTime = article.ReadingTime
}
