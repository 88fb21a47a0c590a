package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"feira/internal/core"
)

// CreatePurchase records one legacy single-item purchase.
func (r *SQLiteRepository) CreatePurchase(ctx context.Context, userID, productID int64, price core.Money, quantity int64) (core.Purchase, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO purchases (user_id, product_id, price_cents, quantity, purchased_at) VALUES (?, ?, ?, ?, ?)",
		userID, productID, price.Cents, quantity, now.Unix(),
	)
	if err != nil {
		return core.Purchase{}, fmt.Errorf("create purchase: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Purchase{}, fmt.Errorf("purchase insert id: %w", err)
	}

	return core.Purchase{
		ID:          id,
		UserID:      userID,
		ProductID:   productID,
		Price:       price,
		Quantity:    quantity,
		PurchasedAt: now,
	}, nil
}

// ListPurchases returns the user's purchases, newest first, joined to the
// product catalog.
func (r *SQLiteRepository) ListPurchases(ctx context.Context, userID int64, limit int) ([]core.Purchase, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT pu.id, pu.user_id, pu.product_id, pr.name, pr.ean, pu.price_cents, pu.quantity, pu.purchased_at
		FROM purchases pu
		JOIN products pr ON pr.id = pu.product_id
		WHERE pu.user_id = ?
		ORDER BY pu.purchased_at DESC, pu.id DESC
		LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var purchases []core.Purchase
	for rows.Next() {
		var p core.Purchase
		var ean sql.NullString
		var purchasedAt int64
		if err := rows.Scan(&p.ID, &p.UserID, &p.ProductID, &p.ProductName, &ean, &p.Price.Cents, &p.Quantity, &purchasedAt); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		p.ProductEAN = ean.String
		p.PurchasedAt = time.Unix(purchasedAt, 0).UTC()
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchases: %w", err)
	}

	return purchases, nil
}
