// Package scheduler triggers report runs on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/hoanghai1803/cyberdigest/internal/report"
)

// Runner executes one report run.
type Runner interface {
	Run(ctx context.Context) (string, error)
}

// Scheduler runs a Runner on a standard five-field cron spec or a
// descriptor such as "@weekly". Overlapping ticks are skipped.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Scheduler. Runs started by it are cancelled when Stop is
// called or ctx is done.
func New(ctx context.Context, runner Runner) *Scheduler {
	ctx, cancel := context.WithCancel(ctx)
	logger := slogLogger{}
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(logger),
			cron.SkipIfStillRunning(logger),
		)),
		runner: runner,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start registers the schedule and starts the cron loop.
func (s *Scheduler) Start(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, s.runOnce); err != nil {
		return fmt.Errorf("adding cron job %q: %w", schedule, err)
	}
	s.cron.Start()
	slog.Info("scheduled report runs", "schedule", schedule)
	return nil
}

// Stop cancels any in-flight run and waits for it to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runOnce() {
	slog.Info("cron triggered report run")

	path, err := s.runner.Run(s.ctx)
	switch {
	case err == nil:
		slog.Info("scheduled report written", "path", path)
	case errors.Is(err, report.ErrRunInProgress):
		slog.Info("scheduled run skipped: another run is in progress")
	case errors.Is(err, report.ErrNoKeywords), errors.Is(err, report.ErrNoStories):
		slog.Warn("scheduled run produced no report", "reason", err)
	default:
		slog.Error("scheduled run failed", "error", err)
	}
}

// slogLogger adapts slog to cron.Logger.
type slogLogger struct{}

func (slogLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug(msg, keysAndValues...)
}

func (slogLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error(msg, append(keysAndValues, "error", err)...)
}
