package services

import (
	"context"
	"fmt"

	"feira/internal/core"
)

const defaultPurchaseLimit = 30

type purchaseStore interface {
	CreatePurchase(ctx context.Context, userID, productID int64, price core.Money, quantity int64) (core.Purchase, error)
	ListPurchases(ctx context.Context, userID int64, limit int) ([]core.Purchase, error)
}

// PurchaseInput is a single quick-entry purchase: scanned ean, typed
// name, or both.
type PurchaseInput struct {
	EAN      string
	Name     string
	Price    core.Money
	Quantity int64
}

// PurchaseService records standalone purchases outside of a trip.
type PurchaseService struct {
	storage  purchaseStore
	resolver *ProductResolver
	stats    *StatsService
}

func NewPurchaseService(storage purchaseStore, resolver *ProductResolver, stats *StatsService) *PurchaseService {
	return &PurchaseService{
		storage:  storage,
		resolver: resolver,
		stats:    stats,
	}
}

// Create resolves the product and records the purchase. Quantity
// defaults to 1 when omitted.
func (s *PurchaseService) Create(ctx context.Context, userID int64, input PurchaseInput) (core.Purchase, error) {
	if input.Quantity == 0 {
		input.Quantity = 1
	}
	if input.Quantity < 1 {
		return core.Purchase{}, core.ErrInvalidQuantity
	}
	if input.Price.Cents < 0 {
		return core.Purchase{}, core.ErrInvalidAmount
	}

	product, err := s.resolver.Resolve(ctx, input.EAN, input.Name)
	if err != nil {
		return core.Purchase{}, err
	}

	purchase, err := s.storage.CreatePurchase(ctx, userID, product.ID, input.Price, input.Quantity)
	if err != nil {
		return core.Purchase{}, fmt.Errorf("create purchase: %w", err)
	}

	if s.stats != nil {
		s.stats.Invalidate(ctx, userID)
	}
	return purchase, nil
}

// List returns the user's purchases, newest first. A limit <= 0 falls
// back to the default page size.
func (s *PurchaseService) List(ctx context.Context, userID int64, limit int) ([]core.Purchase, error) {
	if limit <= 0 {
		limit = defaultPurchaseLimit
	}
	return s.storage.ListPurchases(ctx, userID, limit)
}
