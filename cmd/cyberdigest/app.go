package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/hoanghai1803/cyberdigest/internal/ai"
	"github.com/hoanghai1803/cyberdigest/internal/config"
	"github.com/hoanghai1803/cyberdigest/internal/feeds"
	"github.com/hoanghai1803/cyberdigest/internal/metrics"
	"github.com/hoanghai1803/cyberdigest/internal/report"
	"github.com/hoanghai1803/cyberdigest/internal/summarize"
)

// app is the wired pipeline for one process.
type app struct {
	provider ai.Provider // nil when no API key is configured
	fetchers []feeds.StoryFetcher
	builder  *report.Builder
}

// newApp builds the provider, fetchers, and report builder from cfg. m may
// be nil.
func newApp(cfg *config.Config, m *metrics.Metrics) (*app, error) {
	a := &app{}

	// Create AI provider (nil if no API key -- summaries fall back offline).
	if cfg.AI.APIKey != "" {
		p, err := ai.NewProvider(ai.ProviderConfig{
			Provider:    cfg.AI.Provider,
			APIKey:      cfg.AI.APIKey,
			Model:       cfg.AI.Model,
			BaseURL:     cfg.AI.BaseURL,
			MaxTokens:   cfg.AI.MaxTokens,
			Temperature: cfg.AI.Temperature,
			Timeout:     time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("creating AI provider: %w", err)
		}
		a.provider = p
		slog.Info("AI provider configured", "provider", cfg.AI.Provider, "model", cfg.AI.Model)
	} else {
		slog.Warn("no AI provider API key configured, summaries will use offline fallback text")
	}

	httpTimeout := time.Duration(cfg.Sources.HTTPTimeoutSeconds) * time.Second

	if cfg.Sources.HackerNewsEnabled {
		a.fetchers = append(a.fetchers, feeds.NewHackerNewsFetcher(feeds.HackerNewsOptions{
			BaseURL: cfg.Sources.HackerNewsBaseURL,
			Limit:   cfg.Sources.HackerNewsLimit,
			Delay:   time.Duration(cfg.Sources.HackerNewsDelayMS) * time.Millisecond,
			Timeout: httpTimeout,
		}))
	}
	if cfg.Sources.BleepingEnabled {
		a.fetchers = append(a.fetchers, feeds.NewBleepingComputerFetcher(cfg.Sources.BleepingFeedURL, httpTimeout))
	}

	deps := report.Deps{
		Fetchers:   a.fetchers,
		Summarizer: summarize.New(a.provider, summarize.Options{Retries: cfg.AI.Retries}),
		Metrics:    m,
	}
	if cfg.Report.FetchArticles {
		deps.Extractor = feeds.NewArticleExtractor(httpTimeout, 0)
	}

	a.builder = report.NewBuilder(deps, report.Options{
		KeywordsFile:   cfg.Report.KeywordsFile,
		LogDir:         cfg.Report.LogDir,
		PerSourceLimit: cfg.Report.PerSourceLimit,
		Attempts:       cfg.Report.Attempts,
		Throttle:       time.Duration(cfg.Report.ThrottleSeconds) * time.Second,
		Workers:        cfg.Report.Workers,
	})
	return a, nil
}
