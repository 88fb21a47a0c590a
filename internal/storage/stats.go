package storage

import (
	"context"
	"fmt"

	"feira/internal/core"
)

// MonthlySummary sums the user's spending per calendar month (UTC) for one
// year, across legacy purchases and trip line items. Months with no
// activity are omitted; the result is ordered ascending by month.
func (r *SQLiteRepository) MonthlySummary(ctx context.Context, userID int64, year int) ([]core.MonthlyTotal, error) {
	y := fmt.Sprintf("%04d", year)
	rows, err := r.db.QueryContext(ctx, `
		SELECT month, SUM(line_cents) FROM (
			SELECT CAST(strftime('%m', purchased_at, 'unixepoch') AS INTEGER) AS month,
			       price_cents * quantity AS line_cents
			FROM purchases
			WHERE user_id = ? AND strftime('%Y', purchased_at, 'unixepoch') = ?
			UNION ALL
			SELECT CAST(strftime('%m', t.created_at, 'unixepoch') AS INTEGER) AS month,
			       ti.price_cents * ti.quantity AS line_cents
			FROM trip_items ti
			JOIN trips t ON t.id = ti.trip_id
			WHERE t.user_id = ? AND strftime('%Y', t.created_at, 'unixepoch') = ?
		)
		GROUP BY month
		ORDER BY month ASC`,
		userID, y, userID, y,
	)
	if err != nil {
		return nil, fmt.Errorf("monthly summary: %w", err)
	}
	defer rows.Close()

	var totals []core.MonthlyTotal
	for rows.Next() {
		var mt core.MonthlyTotal
		if err := rows.Scan(&mt.Month, &mt.Total.Cents); err != nil {
			return nil, fmt.Errorf("scan monthly total: %w", err)
		}
		totals = append(totals, mt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate monthly totals: %w", err)
	}

	return totals, nil
}
