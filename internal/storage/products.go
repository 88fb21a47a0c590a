package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"feira/internal/core"
)

// GetProductByEAN returns the product for a barcode, or core.ErrNotFound.
func (r *SQLiteRepository) GetProductByEAN(ctx context.Context, ean string) (core.Product, error) {
	return getProductByEAN(ctx, r.db, ean)
}

// CreateProduct inserts a catalog entry. An empty ean is stored as NULL so
// the partial unique index only guards real barcodes.
func (r *SQLiteRepository) CreateProduct(ctx context.Context, ean, name string) (core.Product, error) {
	return createProduct(ctx, r.db, ean, name)
}

// FindOrCreateProductByEAN upserts a product keyed by barcode. A racing
// create that hits the unique constraint is resolved by a single re-fetch:
// the other writer's row wins and the name is left untouched.
func (r *SQLiteRepository) FindOrCreateProductByEAN(ctx context.Context, ean, name string) (core.Product, error) {
	return findOrCreateProductByEAN(ctx, r.db, ean, name)
}

func getProductByEAN(ctx context.Context, q dbtx, ean string) (core.Product, error) {
	var p core.Product
	var dbEAN sql.NullString
	err := q.QueryRowContext(ctx,
		"SELECT id, ean, name FROM products WHERE ean = ?", ean,
	).Scan(&p.ID, &dbEAN, &p.Name)
	if err == sql.ErrNoRows {
		return core.Product{}, core.ErrNotFound
	}
	if err != nil {
		return core.Product{}, fmt.Errorf("get product by ean: %w", err)
	}
	p.EAN = dbEAN.String
	return p, nil
}

func createProduct(ctx context.Context, q dbtx, ean, name string) (core.Product, error) {
	var dbEAN any
	if ean != "" {
		dbEAN = ean
	}
	res, err := q.ExecContext(ctx, "INSERT INTO products (ean, name) VALUES (?, ?)", dbEAN, name)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Product{}, fmt.Errorf("create product ean=%s: %w", ean, ErrDuplicate)
		}
		return core.Product{}, fmt.Errorf("create product: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Product{}, fmt.Errorf("product insert id: %w", err)
	}
	return core.Product{ID: id, EAN: ean, Name: name}, nil
}

func findOrCreateProductByEAN(ctx context.Context, q dbtx, ean, name string) (core.Product, error) {
	product, err := getProductByEAN(ctx, q, ean)
	if err == nil {
		return product, nil
	}
	if err != core.ErrNotFound {
		return core.Product{}, err
	}

	product, err = createProduct(ctx, q, ean, name)
	if err == nil {
		return product, nil
	}
	// Lost the race to another writer: the row exists now, fetch it.
	if errors.Is(err, ErrDuplicate) {
		return getProductByEAN(ctx, q, ean)
	}
	return core.Product{}, err
}
