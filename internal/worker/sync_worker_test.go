package worker

import (
	"context"
	"errors"
	"testing"

	"feira/internal/amqp"
	"feira/internal/core"
)

type fakeTripSource struct {
	trips    map[int64]core.Trip
	unsynced []int64
	marked   []int64
}

func (f *fakeTripSource) GetTrip(_ context.Context, tripID int64) (core.Trip, error) {
	t, ok := f.trips[tripID]
	if !ok {
		return core.Trip{}, core.ErrNotFound
	}
	return t, nil
}

func (f *fakeTripSource) UnsyncedTripIDs(_ context.Context, limit int) ([]int64, error) {
	if limit < len(f.unsynced) {
		return f.unsynced[:limit], nil
	}
	return f.unsynced, nil
}

func (f *fakeTripSource) MarkTripSynced(_ context.Context, tripID int64) error {
	f.marked = append(f.marked, tripID)
	return nil
}

type fakeWriter struct {
	appended []int64
	err      error
}

func (f *fakeWriter) Append(_ context.Context, trip core.Trip) error {
	if f.err != nil {
		return f.err
	}
	f.appended = append(f.appended, trip.ID)
	return nil
}

func testTrip(id int64) core.Trip {
	return core.Trip{
		ID:    id,
		Store: "Market A",
		Items: []core.LineItem{
			{ProductName: "Milk", Price: core.Money{Cents: 450}, Quantity: 2},
		},
	}
}

func TestHandleSyncMessage(t *testing.T) {
	source := &fakeTripSource{trips: map[int64]core.Trip{7: testTrip(7)}}
	writer := &fakeWriter{}
	w := NewSyncWorker(source, writer, 10)

	err := w.HandleSyncMessage(context.Background(), &amqp.TripSyncMessage{TripID: 7})
	if err != nil {
		t.Fatalf("HandleSyncMessage() error = %v", err)
	}
	if len(writer.appended) != 1 || writer.appended[0] != 7 {
		t.Errorf("appended = %v, want [7]", writer.appended)
	}
	if len(source.marked) != 1 || source.marked[0] != 7 {
		t.Errorf("marked = %v, want [7]", source.marked)
	}
}

func TestHandleSyncMessageUnknownTrip(t *testing.T) {
	source := &fakeTripSource{trips: map[int64]core.Trip{}}
	w := NewSyncWorker(source, &fakeWriter{}, 10)

	err := w.HandleSyncMessage(context.Background(), &amqp.TripSyncMessage{TripID: 99})
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("HandleSyncMessage() error = %v, want ErrNotFound", err)
	}
}

func TestHandleSyncMessageWriterFailureKeepsFlag(t *testing.T) {
	source := &fakeTripSource{trips: map[int64]core.Trip{7: testTrip(7)}}
	writer := &fakeWriter{err: errors.New("sheets down")}
	w := NewSyncWorker(source, writer, 10)

	if err := w.HandleSyncMessage(context.Background(), &amqp.TripSyncMessage{TripID: 7}); err == nil {
		t.Fatal("HandleSyncMessage() should fail when the writer fails")
	}
	if len(source.marked) != 0 {
		t.Errorf("trip marked synced despite failed export: %v", source.marked)
	}
}

func TestProcessPendingTripsContinuesPastFailures(t *testing.T) {
	source := &fakeTripSource{
		trips:    map[int64]core.Trip{1: testTrip(1), 3: testTrip(3)},
		unsynced: []int64{1, 2, 3}, // 2 is missing from storage
	}
	writer := &fakeWriter{}
	w := NewSyncWorker(source, writer, 10)

	if err := w.ProcessPendingTrips(context.Background()); err != nil {
		t.Fatalf("ProcessPendingTrips() error = %v", err)
	}
	if len(writer.appended) != 2 {
		t.Errorf("appended = %v, want trips 1 and 3", writer.appended)
	}
}

func TestProcessPendingTripsRespectsBatchSize(t *testing.T) {
	source := &fakeTripSource{
		trips:    map[int64]core.Trip{1: testTrip(1), 2: testTrip(2), 3: testTrip(3)},
		unsynced: []int64{1, 2, 3},
	}
	writer := &fakeWriter{}
	w := NewSyncWorker(source, writer, 2)

	if err := w.ProcessPendingTrips(context.Background()); err != nil {
		t.Fatalf("ProcessPendingTrips() error = %v", err)
	}
	if len(writer.appended) != 2 {
		t.Errorf("appended %d trips, want batch size 2", len(writer.appended))
	}
}
