package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"feira/internal/core"
)

type tripStore interface {
	CreateTripWithItems(ctx context.Context, userID int64, store string, items []core.StagedItem) (core.Trip, error)
	GetTripForUser(ctx context.Context, tripID, userID int64) (core.Trip, error)
	ListTrips(ctx context.Context, userID int64) ([]core.Trip, error)
}

// TripPublisher announces a finalized trip to the export pipeline.
type TripPublisher interface {
	PublishTripSync(ctx context.Context, tripID int64) error
}

// TripService finalizes shopping carts into immutable trips. The write
// goes to sqlite first; the sync message is best-effort and never fails
// the request.
type TripService struct {
	storage   tripStore
	publisher TripPublisher
	stats     *StatsService
}

func NewTripService(storage tripStore, publisher TripPublisher, stats *StatsService) *TripService {
	return &TripService{
		storage:   storage,
		publisher: publisher,
		stats:     stats,
	}
}

// Finalize validates the staged cart and commits it as one trip. All
// product resolution and row inserts happen in a single transaction, so
// a failure partway leaves no trace.
func (s *TripService) Finalize(ctx context.Context, userID int64, store string, items []core.StagedItem) (core.Trip, error) {
	store = strings.TrimSpace(store)
	if store == "" {
		return core.Trip{}, core.ErrEmptyStore
	}
	if len(items) == 0 {
		return core.Trip{}, core.ErrEmptyCart
	}
	for i := range items {
		if items[i].Quantity == 0 {
			items[i].Quantity = 1
		}
		if err := items[i].Validate(); err != nil {
			return core.Trip{}, fmt.Errorf("item %d: %w", i, err)
		}
	}

	trip, err := s.storage.CreateTripWithItems(ctx, userID, store, items)
	if err != nil {
		return core.Trip{}, fmt.Errorf("create trip: %w", err)
	}

	if s.stats != nil {
		s.stats.Invalidate(ctx, userID)
	}

	if err := s.publishSync(ctx, trip.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish trip sync message",
			"trip_id", trip.ID, "error", err)
		// Trip is committed locally; the worker's backup scan picks it up.
	}

	return trip, nil
}

// Get returns one of the user's trips. A trip that exists but belongs to
// someone else reads the same as one that never existed.
func (s *TripService) Get(ctx context.Context, tripID, userID int64) (core.Trip, error) {
	return s.storage.GetTripForUser(ctx, tripID, userID)
}

// List returns the user's trips, newest first, items included.
func (s *TripService) List(ctx context.Context, userID int64) ([]core.Trip, error) {
	return s.storage.ListTrips(ctx, userID)
}

func (s *TripService) publishSync(ctx context.Context, tripID int64) error {
	if s.publisher == nil {
		slog.DebugContext(ctx, "No publisher configured, skipping trip sync message")
		return nil
	}
	return s.publisher.PublishTripSync(ctx, tripID)
}
