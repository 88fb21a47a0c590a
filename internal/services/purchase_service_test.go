package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"feira/internal/core"
)

type fakePurchaseStore struct {
	purchases []core.Purchase
	lastLimit int
}

func (f *fakePurchaseStore) CreatePurchase(_ context.Context, userID, productID int64, price core.Money, quantity int64) (core.Purchase, error) {
	p := core.Purchase{
		ID:          int64(len(f.purchases) + 1),
		UserID:      userID,
		ProductID:   productID,
		Price:       price,
		Quantity:    quantity,
		PurchasedAt: time.Now().UTC(),
	}
	f.purchases = append(f.purchases, p)
	return p, nil
}

func (f *fakePurchaseStore) ListPurchases(_ context.Context, userID int64, limit int) ([]core.Purchase, error) {
	f.lastLimit = limit
	var out []core.Purchase
	for _, p := range f.purchases {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func newPurchaseService(store *fakePurchaseStore) *PurchaseService {
	resolver := NewProductResolver(newFakeProductStore(), &fakeLookup{})
	return NewPurchaseService(store, resolver, nil)
}

func TestCreatePurchaseDefaultsQuantity(t *testing.T) {
	store := &fakePurchaseStore{}
	svc := newPurchaseService(store)

	p, err := svc.Create(context.Background(), 1, PurchaseInput{
		Name:  "Milk",
		Price: core.Money{Cents: 450},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p.Quantity != 1 {
		t.Errorf("Quantity = %d, want 1", p.Quantity)
	}
}

func TestCreatePurchaseValidation(t *testing.T) {
	svc := newPurchaseService(&fakePurchaseStore{})

	tests := []struct {
		name    string
		input   PurchaseInput
		wantErr error
	}{
		{"negative quantity", PurchaseInput{Name: "Milk", Price: core.Money{Cents: 100}, Quantity: -1}, core.ErrInvalidQuantity},
		{"negative price", PurchaseInput{Name: "Milk", Price: core.Money{Cents: -100}, Quantity: 1}, core.ErrInvalidAmount},
		{"no ean, no name", PurchaseInput{Price: core.Money{Cents: 100}, Quantity: 1}, core.ErrEmptyName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), 1, tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestListPurchasesDefaultLimit(t *testing.T) {
	store := &fakePurchaseStore{}
	svc := newPurchaseService(store)

	if _, err := svc.List(context.Background(), 1, 0); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if store.lastLimit != defaultPurchaseLimit {
		t.Errorf("limit = %d, want %d", store.lastLimit, defaultPurchaseLimit)
	}

	if _, err := svc.List(context.Background(), 1, 5); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if store.lastLimit != 5 {
		t.Errorf("limit = %d, want 5", store.lastLimit)
	}
}
