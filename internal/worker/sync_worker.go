// Package worker drains the trip sync queue into the spreadsheet export.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"feira/internal/amqp"
	"feira/internal/core"
	"feira/internal/sheets"
)

type tripSource interface {
	GetTrip(ctx context.Context, tripID int64) (core.Trip, error)
	UnsyncedTripIDs(ctx context.Context, limit int) ([]int64, error)
	MarkTripSynced(ctx context.Context, tripID int64) error
}

// SyncWorker exports finalized trips to the spreadsheet. The AMQP
// message is only a notification; the trip itself is always re-read
// from storage so the export never works off stale data.
type SyncWorker struct {
	storage   tripSource
	writer    sheets.TripWriter
	batchSize int
}

func NewSyncWorker(storage tripSource, writer sheets.TripWriter, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &SyncWorker{
		storage:   storage,
		writer:    writer,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes one trip sync message from AMQP.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TripSyncMessage) error {
	slog.InfoContext(ctx, "Processing trip sync message", "trip_id", msg.TripID)
	return w.syncTrip(ctx, msg.TripID)
}

// ProcessPendingTrips exports trips whose sync message was lost. This is
// the backup path; under normal operation the queue drains everything.
func (w *SyncWorker) ProcessPendingTrips(ctx context.Context) error {
	ids, err := w.storage.UnsyncedTripIDs(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list unsynced trips: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending trips", "count", len(ids))

	for _, id := range ids {
		if err := w.syncTrip(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to sync trip", "trip_id", id, "error", err)
			continue
		}
	}
	return nil
}

// StartupSyncCheck drains the backlog left over from worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	ids, err := w.storage.UnsyncedTripIDs(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("list unsynced trips for startup check: %w", err)
	}
	if len(ids) == 0 {
		slog.InfoContext(ctx, "No pending trips found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending trips on startup, processing...", "count", len(ids))

	synced, failed := 0, 0
	for _, id := range ids {
		if err := w.syncTrip(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to sync trip during startup", "trip_id", id, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(ids),
		"synced", synced,
		"errors", failed)

	return nil
}

func (w *SyncWorker) syncTrip(ctx context.Context, tripID int64) error {
	trip, err := w.storage.GetTrip(ctx, tripID)
	if err != nil {
		return fmt.Errorf("get trip %d: %w", tripID, err)
	}

	if err := w.writer.Append(ctx, trip); err != nil {
		return fmt.Errorf("append trip %d to sheets: %w", tripID, err)
	}

	if err := w.storage.MarkTripSynced(ctx, tripID); err != nil {
		slog.ErrorContext(ctx, "Failed to mark trip as synced", "trip_id", tripID, "error", err)
		// Export succeeded; the flag catches up on the next backup scan.
	}

	slog.InfoContext(ctx, "Synced trip to spreadsheet",
		"trip_id", tripID,
		"store", trip.Store,
		"items", len(trip.Items),
		"total_cents", trip.Total().Cents)

	return nil
}
