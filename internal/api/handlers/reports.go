package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hoanghai1803/cyberdigest/internal/report"
)

// ListReports handles GET /api/reports. It returns the reports in dir,
// newest first.
func ListReports(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reports, err := report.List(dir)
		if err != nil {
			slog.Error("failed to list reports", "dir", dir, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to list reports")
			return
		}
		writeJSON(w, http.StatusOK, reports)
	}
}

// GetReport handles GET /api/reports/{name}. The markdown is returned as-is.
func GetReport(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")

		data, err := report.Read(dir, name)
		if err != nil {
			if errors.Is(err, report.ErrReportNotFound) {
				writeError(w, http.StatusNotFound, "Report not found")
				return
			}
			slog.Error("failed to read report", "name", name, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to read report")
			return
		}

		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(data) //nolint:errcheck
	}
}
