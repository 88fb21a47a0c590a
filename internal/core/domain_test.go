package core

import (
	"errors"
	"testing"
)

func TestTripTotal(t *testing.T) {
	trip := Trip{
		Items: []LineItem{
			{Price: Money{Cents: 450}, Quantity: 2},
			{Price: Money{Cents: 300}, Quantity: 1},
		},
	}
	if got := trip.Total(); got.Cents != 1200 {
		t.Errorf("Total() = %d cents, want 1200", got.Cents)
	}

	var empty Trip
	if got := empty.Total(); got.Cents != 0 {
		t.Errorf("empty trip Total() = %d cents, want 0", got.Cents)
	}
}

func TestStagedItemValidate(t *testing.T) {
	tests := []struct {
		name    string
		item    StagedItem
		wantErr error
	}{
		{
			name: "valid manual item",
			item: StagedItem{Name: "Milk", Price: Money{Cents: 450}, Quantity: 2},
		},
		{
			name: "valid barcode item without name",
			item: StagedItem{EAN: "789", Price: Money{Cents: 300}, Quantity: 1},
		},
		{
			name:    "missing both name and ean",
			item:    StagedItem{Price: Money{Cents: 100}, Quantity: 1},
			wantErr: ErrEmptyName,
		},
		{
			name:    "blank name only",
			item:    StagedItem{Name: "   ", Price: Money{Cents: 100}, Quantity: 1},
			wantErr: ErrEmptyName,
		},
		{
			name:    "zero price",
			item:    StagedItem{Name: "Milk", Quantity: 1},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "zero quantity",
			item:    StagedItem{Name: "Milk", Price: Money{Cents: 100}},
			wantErr: ErrInvalidQuantity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLineItemValidate(t *testing.T) {
	if err := (LineItem{Price: Money{Cents: 100}, Quantity: 1}).Validate(); err != nil {
		t.Errorf("valid line item rejected: %v", err)
	}
	if err := (LineItem{Price: Money{Cents: 100}, Quantity: 0}).Validate(); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("zero quantity: got %v, want ErrInvalidQuantity", err)
	}
	if err := (LineItem{Quantity: 3}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("zero price: got %v, want ErrInvalidAmount", err)
	}
}
