package core

import (
	"errors"
	"strings"
	"time"
)

type (
	// User is a registered account. Email is unique; the hash never leaves the server.
	User struct {
		ID           int64  `json:"id"`
		Email        string `json:"email"`
		PasswordHash string `json:"-"`
		CreatedAt    time.Time `json:"created_at"`
	}

	// Product is a canonical catalog entry, optionally keyed by barcode.
	// Created lazily on first reference, never deleted, shared across trips.
	Product struct {
		ID   int64  `json:"id"`
		EAN  string `json:"ean,omitempty"`
		Name string `json:"name"`
	}

	// Trip groups the line items of one completed shopping excursion.
	// Immutable after creation; the total is always derived, never stored.
	Trip struct {
		ID        int64      `json:"id"`
		UserID    int64      `json:"user_id"`
		Store     string     `json:"store"`
		CreatedAt time.Time  `json:"created_at"`
		Items     []LineItem `json:"items,omitempty"`
	}

	// LineItem is one priced, quantified reference to a Product within a Trip.
	LineItem struct {
		ID          int64  `json:"id"`
		TripID      int64  `json:"trip_id"`
		ProductID   int64  `json:"product_id"`
		ProductName string `json:"product_name,omitempty"`
		ProductEAN  string `json:"product_ean,omitempty"`
		Price       Money  `json:"price"`
		Quantity    int64  `json:"quantity"`
	}

	// Purchase is the legacy single-item record, kept alongside trips.
	Purchase struct {
		ID          int64     `json:"id"`
		UserID      int64     `json:"user_id"`
		ProductID   int64     `json:"product_id"`
		ProductName string    `json:"product_name,omitempty"`
		ProductEAN  string    `json:"product_ean,omitempty"`
		Price       Money     `json:"price"`
		Quantity    int64     `json:"quantity"`
		PurchasedAt time.Time `json:"purchased_at"`
	}

	// StagedItem is a cart-side line pending confirmation. It is never
	// persisted server-side; the cart holds it until checkout.
	StagedItem struct {
		EAN      string `json:"ean,omitempty"`
		Name     string `json:"name"`
		Price    Money  `json:"price"`
		Quantity int64  `json:"quantity"`
	}

	// MonthlyTotal is one row of the sparse monthly spending summary.
	MonthlyTotal struct {
		Month int   `json:"month"`
		Total Money `json:"total"`
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrEmptyName       = errors.New("empty product name")
	ErrEmptyStore      = errors.New("empty store name")
	ErrEmptyCart       = errors.New("no items staged")
	ErrNotFound        = errors.New("not found")
)

// Total derives the trip amount as the exact sum of price*quantity in cents.
func (t Trip) Total() Money {
	var cents int64
	for _, it := range t.Items {
		cents += it.Price.Cents * it.Quantity
	}
	return Money{Cents: cents}
}

func (it LineItem) Validate() error {
	if err := it.Price.Validate(); err != nil {
		return err
	}
	if it.Quantity < 1 {
		return ErrInvalidQuantity
	}
	return nil
}

func (si StagedItem) Validate() error {
	if len(strings.TrimSpace(si.Name)) == 0 && si.EAN == "" {
		return ErrEmptyName
	}
	if err := si.Price.Validate(); err != nil {
		return err
	}
	if si.Quantity < 1 {
		return ErrInvalidQuantity
	}
	return nil
}
