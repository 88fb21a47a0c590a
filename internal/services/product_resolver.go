package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"feira/internal/barcode"
	"feira/internal/core"
)

// BarcodeLookup answers best-effort name lookups for an EAN. A false
// second return means the code is unknown upstream, never an error.
type BarcodeLookup interface {
	Lookup(ctx context.Context, ean string) (barcode.Result, bool)
}

type resolverStore interface {
	GetProductByEAN(ctx context.Context, ean string) (core.Product, error)
	FindOrCreateProductByEAN(ctx context.Context, ean, name string) (core.Product, error)
	CreateProduct(ctx context.Context, ean, name string) (core.Product, error)
}

// ProductResolver maps user input (ean and/or free-form name) onto a
// Product row. Products are lazily created and never deleted, so a row
// found by ean is always authoritative and no upstream call is made.
type ProductResolver struct {
	storage resolverStore
	lookup  BarcodeLookup
}

func NewProductResolver(storage resolverStore, lookup BarcodeLookup) *ProductResolver {
	return &ProductResolver{storage: storage, lookup: lookup}
}

// ResolveEAN finds the product for a scanned barcode, consulting the
// external catalog only on a local miss. Returns core.ErrNotFound when
// the code is unknown both locally and upstream.
func (r *ProductResolver) ResolveEAN(ctx context.Context, ean string) (core.Product, error) {
	ean = strings.TrimSpace(ean)
	if ean == "" {
		return core.Product{}, core.ErrNotFound
	}

	product, err := r.storage.GetProductByEAN(ctx, ean)
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return core.Product{}, fmt.Errorf("get product by ean: %w", err)
	}

	result, ok := r.lookup.Lookup(ctx, ean)
	if !ok {
		return core.Product{}, core.ErrNotFound
	}

	product, err = r.storage.FindOrCreateProductByEAN(ctx, ean, result.Name)
	if err != nil {
		return core.Product{}, fmt.Errorf("create product for ean %s: %w", ean, err)
	}
	return product, nil
}

// Resolve maps a purchase input onto a product. With an ean it behaves
// like ResolveEAN but falls back to the given name (then "Produto")
// instead of failing when the upstream catalog misses. Without an ean a
// fresh product is always created; same-named products are not deduped.
func (r *ProductResolver) Resolve(ctx context.Context, ean, name string) (core.Product, error) {
	ean = strings.TrimSpace(ean)
	name = strings.TrimSpace(name)

	if ean == "" {
		if name == "" {
			return core.Product{}, core.ErrEmptyName
		}
		product, err := r.storage.CreateProduct(ctx, "", name)
		if err != nil {
			return core.Product{}, fmt.Errorf("create product: %w", err)
		}
		return product, nil
	}

	product, err := r.storage.GetProductByEAN(ctx, ean)
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return core.Product{}, fmt.Errorf("get product by ean: %w", err)
	}

	if result, ok := r.lookup.Lookup(ctx, ean); ok {
		name = result.Name
	}
	if name == "" {
		name = barcode.FallbackName
	}

	product, err = r.storage.FindOrCreateProductByEAN(ctx, ean, name)
	if err != nil {
		return core.Product{}, fmt.Errorf("create product for ean %s: %w", ean, err)
	}
	return product, nil
}
