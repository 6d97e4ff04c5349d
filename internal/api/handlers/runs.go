package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hoanghai1803/cyberdigest/internal/report"
)

// Runner executes one report run.
type Runner interface {
	Run(ctx context.Context) (string, error)
}

// RunResult is the response body of a completed or skipped run.
type RunResult struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// TriggerRun handles POST /api/runs. It runs the pipeline synchronously and
// responds once the report is written.
func TriggerRun(runner Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path, err := runner.Run(r.Context())
		switch {
		case err == nil:
			writeJSON(w, http.StatusCreated, RunResult{Status: "written", Path: path})
		case errors.Is(err, report.ErrRunInProgress):
			writeError(w, http.StatusConflict, "A report run is already in progress")
		case errors.Is(err, report.ErrNoKeywords), errors.Is(err, report.ErrNoStories):
			writeJSON(w, http.StatusOK, RunResult{Status: "skipped", Reason: err.Error()})
		case errors.Is(err, context.Canceled):
			slog.Warn("report run cancelled", "error", err)
			writeError(w, http.StatusServiceUnavailable, "Report run cancelled")
		default:
			slog.Error("report run failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Report run failed")
		}
	}
}

// Health handles GET /healthz.
func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
