package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"feira/internal/core"
)

// CreateTripWithItems finalizes a staged cart in a single transaction:
// product resolution for every item and the trip+items insert either all
// commit or all roll back. Items are resolved strictly in input order.
func (r *SQLiteRepository) CreateTripWithItems(ctx context.Context, userID int64, store string, items []core.StagedItem) (core.Trip, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Trip{}, fmt.Errorf("begin trip transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		"INSERT INTO trips (user_id, store, created_at, synced) VALUES (?, ?, ?, 0)",
		userID, store, now.Unix(),
	)
	if err != nil {
		return core.Trip{}, fmt.Errorf("insert trip: %w", err)
	}
	tripID, err := res.LastInsertId()
	if err != nil {
		return core.Trip{}, fmt.Errorf("trip insert id: %w", err)
	}

	trip := core.Trip{ID: tripID, UserID: userID, Store: store, CreatedAt: now}
	for _, item := range items {
		product, err := resolveStagedProduct(ctx, tx, item)
		if err != nil {
			return core.Trip{}, err
		}

		itemRes, err := tx.ExecContext(ctx,
			"INSERT INTO trip_items (trip_id, product_id, price_cents, quantity) VALUES (?, ?, ?, ?)",
			tripID, product.ID, item.Price.Cents, item.Quantity,
		)
		if err != nil {
			return core.Trip{}, fmt.Errorf("insert trip item: %w", err)
		}
		itemID, err := itemRes.LastInsertId()
		if err != nil {
			return core.Trip{}, fmt.Errorf("trip item insert id: %w", err)
		}

		trip.Items = append(trip.Items, core.LineItem{
			ID:          itemID,
			TripID:      tripID,
			ProductID:   product.ID,
			ProductName: product.Name,
			ProductEAN:  product.EAN,
			Price:       item.Price,
			Quantity:    item.Quantity,
		})
	}

	if err := tx.Commit(); err != nil {
		return core.Trip{}, fmt.Errorf("commit trip: %w", err)
	}

	return trip, nil
}

// resolveStagedProduct applies the resolver rules inside the transaction:
// by-ean lookup keeps the existing row unchanged, a miss creates one with
// the caller-supplied name ("Produto" when absent); no ean always creates.
func resolveStagedProduct(ctx context.Context, q dbtx, item core.StagedItem) (core.Product, error) {
	name := item.Name
	if item.EAN != "" {
		if name == "" {
			name = "Produto"
		}
		return findOrCreateProductByEAN(ctx, q, item.EAN, name)
	}
	return createProduct(ctx, q, "", name)
}

// GetTripForUser returns a trip with its items only when owned by userID.
// An unowned trip is indistinguishable from an absent one.
func (r *SQLiteRepository) GetTripForUser(ctx context.Context, tripID, userID int64) (core.Trip, error) {
	trip, err := r.getTrip(ctx, "SELECT id, user_id, store, created_at FROM trips WHERE id = ? AND user_id = ?", tripID, userID)
	if err != nil {
		return core.Trip{}, err
	}
	trip.Items, err = r.loadTripItems(ctx, trip.ID)
	if err != nil {
		return core.Trip{}, err
	}
	return trip, nil
}

// GetTrip loads a trip by id regardless of owner. Used by the export
// worker, which acts on behalf of the system rather than a user.
func (r *SQLiteRepository) GetTrip(ctx context.Context, tripID int64) (core.Trip, error) {
	trip, err := r.getTrip(ctx, "SELECT id, user_id, store, created_at FROM trips WHERE id = ?", tripID)
	if err != nil {
		return core.Trip{}, err
	}
	trip.Items, err = r.loadTripItems(ctx, trip.ID)
	if err != nil {
		return core.Trip{}, err
	}
	return trip, nil
}

// ListTrips returns the user's trips with items, newest first.
func (r *SQLiteRepository) ListTrips(ctx context.Context, userID int64) ([]core.Trip, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, store, created_at FROM trips WHERE user_id = ? ORDER BY created_at DESC, id DESC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	defer rows.Close()

	var trips []core.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trips: %w", err)
	}

	for i := range trips {
		trips[i].Items, err = r.loadTripItems(ctx, trips[i].ID)
		if err != nil {
			return nil, err
		}
	}

	return trips, nil
}

// UnsyncedTripIDs returns ids of trips not yet exported, oldest first.
func (r *SQLiteRepository) UnsyncedTripIDs(ctx context.Context, limit int) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id FROM trips WHERE synced = 0 ORDER BY created_at ASC, id ASC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("unsynced trips: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan trip id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trip ids: %w", err)
	}
	return ids, nil
}

// MarkTripSynced flags a trip as exported.
func (r *SQLiteRepository) MarkTripSynced(ctx context.Context, tripID int64) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE trips SET synced = 1 WHERE id = ?", tripID); err != nil {
		return fmt.Errorf("mark trip synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) getTrip(ctx context.Context, query string, args ...any) (core.Trip, error) {
	var trip core.Trip
	var createdAt int64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&trip.ID, &trip.UserID, &trip.Store, &createdAt)
	if err == sql.ErrNoRows {
		return core.Trip{}, core.ErrNotFound
	}
	if err != nil {
		return core.Trip{}, fmt.Errorf("get trip: %w", err)
	}
	trip.CreatedAt = time.Unix(createdAt, 0).UTC()
	return trip, nil
}

func scanTrip(rows *sql.Rows) (core.Trip, error) {
	var trip core.Trip
	var createdAt int64
	if err := rows.Scan(&trip.ID, &trip.UserID, &trip.Store, &createdAt); err != nil {
		return core.Trip{}, fmt.Errorf("scan trip: %w", err)
	}
	trip.CreatedAt = time.Unix(createdAt, 0).UTC()
	return trip, nil
}

func (r *SQLiteRepository) loadTripItems(ctx context.Context, tripID int64) ([]core.LineItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ti.id, ti.trip_id, ti.product_id, pr.name, pr.ean, ti.price_cents, ti.quantity
		FROM trip_items ti
		JOIN products pr ON pr.id = ti.product_id
		WHERE ti.trip_id = ?
		ORDER BY ti.id ASC`,
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("load trip items: %w", err)
	}
	defer rows.Close()

	var items []core.LineItem
	for rows.Next() {
		var it core.LineItem
		var ean sql.NullString
		if err := rows.Scan(&it.ID, &it.TripID, &it.ProductID, &it.ProductName, &ean, &it.Price.Cents, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan trip item: %w", err)
		}
		it.ProductEAN = ean.String
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trip items: %w", err)
	}

	return items, nil
}
