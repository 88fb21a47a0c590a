package http

import (
	"log/slog"
	"net/http"

	"feira/internal/core"
)

func (s *Server) handleMonthlyStats(w http.ResponseWriter, r *http.Request) {
	year := queryInt(r, "year", 0)

	totals, err := s.stats.Monthly(r.Context(), userIDFrom(r.Context()), year)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load monthly stats", "year", year, "error", err)
		writeError(w, http.StatusInternalServerError, "could not load stats")
		return
	}
	if totals == nil {
		totals = []core.MonthlyTotal{}
	}

	writeJSON(w, http.StatusOK, totals)
}
