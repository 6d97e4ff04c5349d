// Package summarize turns story text into a short summary through a language
// model, with a bounded retry and a deterministic offline fallback.
package summarize

import (
	"context"
	"log/slog"
	"time"

	"github.com/hoanghai1803/cyberdigest/internal/ai"
	"github.com/hoanghai1803/cyberdigest/internal/models"
	"github.com/hoanghai1803/cyberdigest/internal/retry"
)

// FallbackPrefix marks summaries that were not produced by a model.
const FallbackPrefix = "[FAKE SUMMARY] "

const fallbackPromptRunes = 100

// Outcome reports how a summary was produced.
type Outcome string

const (
	OutcomeOK       Outcome = "ok"       // the model answered
	OutcomeFallback Outcome = "fallback" // every attempt failed
	OutcomeOffline  Outcome = "offline"  // no provider configured
)

// Result is the outcome of one Summarize call. Text is always usable.
type Result struct {
	Text     string
	Outcome  Outcome
	Attempts int
	// Err is the last provider error when Outcome is OutcomeFallback.
	Err error
}

// Options configures a Summarizer. Zero values select the defaults.
type Options struct {
	Retries int           // total attempts per call, default 2
	Backoff retry.Backoff // default retry.Linear(2s)
	Sleep   func(ctx context.Context, d time.Duration) error
}

// Summarizer requests summaries from a provider. A nil provider means no
// credential is configured and every call returns offline fallback text.
type Summarizer struct {
	provider ai.Provider
	retries  int
	backoff  retry.Backoff
	sleep    func(ctx context.Context, d time.Duration) error
}

// New creates a Summarizer. provider may be nil.
func New(provider ai.Provider, opts Options) *Summarizer {
	if opts.Retries <= 0 {
		opts.Retries = 2
	}
	if opts.Backoff == nil {
		opts.Backoff = retry.Linear(2 * time.Second)
	}
	return &Summarizer{
		provider: provider,
		retries:  opts.Retries,
		backoff:  opts.Backoff,
		sleep:    opts.Sleep,
	}
}

// Summarize builds the prompt for tag and asks the provider for a summary.
// Provider failures never surface as errors: once the attempts are used up
// the result carries fallback text. The returned error is non-nil only when
// ctx is cancelled.
func (s *Summarizer) Summarize(ctx context.Context, text string, tag models.SourceTag) (Result, error) {
	prompt := ai.SummarizePrompt(text, tag)

	if s.provider == nil {
		return Result{Text: FallbackText(prompt), Outcome: OutcomeOffline}, nil
	}

	var (
		summary  string
		attempts int
	)
	err := retry.Do(ctx, retry.Config{
		MaxAttempts: s.retries,
		Backoff:     s.backoff,
		Sleep:       s.sleep,
		OnRetry: func(attempt int, err error, wait time.Duration) {
			slog.Warn("summarization attempt failed, retrying",
				"attempt", attempt,
				"model", s.provider.Model(),
				"wait", wait,
				"error", err,
			)
		},
	}, func(ctx context.Context, attempt int) error {
		attempts = attempt
		out, err := s.provider.Complete(ctx, prompt)
		if err != nil {
			return err
		}
		summary = out
		return nil
	})
	if err == nil {
		return Result{Text: summary, Outcome: OutcomeOK, Attempts: attempts}, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result{Attempts: attempts}, ctxErr
	}

	slog.Error("summarization failed, using fallback text",
		"attempts", attempts,
		"model", s.provider.Model(),
		"error", err,
	)
	return Result{
		Text:     FallbackText(prompt),
		Outcome:  OutcomeFallback,
		Attempts: attempts,
		Err:      err,
	}, nil
}

// FallbackText returns the placeholder used when no model answer is
// available: FallbackPrefix, the first 100 characters of prompt, and "...".
func FallbackText(prompt string) string {
	r := []rune(prompt)
	if len(r) > fallbackPromptRunes {
		r = r[:fallbackPromptRunes]
	}
	return FallbackPrefix + string(r) + "..."
}
