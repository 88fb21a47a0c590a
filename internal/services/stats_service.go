package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"feira/internal/cache"
	"feira/internal/core"
)

type statsStore interface {
	MonthlySummary(ctx context.Context, userID int64, year int) ([]core.MonthlyTotal, error)
}

// StatsService serves per-user monthly aggregates with an LRU cache in
// front of the sqlite scan. Entries are keyed (user, year) and evicted
// whenever that user records a new purchase or trip.
type StatsService struct {
	storage statsStore
	summary *cache.LRU[[]core.MonthlyTotal]
}

func NewStatsService(storage statsStore) *StatsService {
	return &StatsService{
		storage: storage,
		summary: cache.NewLRU[[]core.MonthlyTotal](256, 5*time.Minute),
	}
}

// Monthly returns per-month totals for the given year, ascending, with
// zero months omitted. A year <= 0 means the current year (UTC).
func (s *StatsService) Monthly(ctx context.Context, userID int64, year int) ([]core.MonthlyTotal, error) {
	if year <= 0 {
		year = time.Now().UTC().Year()
	}

	key := statsKey(userID, year)
	if totals, ok := s.summary.Get(key); ok {
		return totals, nil
	}

	totals, err := s.storage.MonthlySummary(ctx, userID, year)
	if err != nil {
		return nil, fmt.Errorf("monthly summary: %w", err)
	}

	s.summary.Set(key, totals)
	return totals, nil
}

// Invalidate drops the cached summary touched by a new write. Writes
// always land at the current time, so only the current year's entry can
// go stale.
func (s *StatsService) Invalidate(ctx context.Context, userID int64) {
	year := time.Now().UTC().Year()
	s.summary.Delete(statsKey(userID, year))
	slog.DebugContext(ctx, "Invalidated stats cache", "user_id", userID, "year", year)
}

// SummaryCache exposes the cache for cleanup registration.
func (s *StatsService) SummaryCache() *cache.LRU[[]core.MonthlyTotal] {
	return s.summary
}

func statsKey(userID int64, year int) string {
	return fmt.Sprintf("%d:%d", userID, year)
}
