package http

import (
	"errors"
	"log/slog"
	"net/http"

	"feira/internal/core"
	"feira/internal/services"
)

type purchaseRequest struct {
	EAN      string     `json:"ean"`
	Name     string     `json:"name"`
	Price    core.Money `json:"price"`
	Quantity int64      `json:"quantity"`
}

func (s *Server) handleCreatePurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	purchase, err := s.purchases.Create(r.Context(), userIDFrom(r.Context()), services.PurchaseInput{
		EAN:      req.EAN,
		Name:     req.Name,
		Price:    req.Price,
		Quantity: req.Quantity,
	})
	if err != nil {
		switch {
		case errors.Is(err, core.ErrEmptyName),
			errors.Is(err, core.ErrInvalidAmount),
			errors.Is(err, core.ErrInvalidQuantity):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			slog.ErrorContext(r.Context(), "Failed to create purchase", "error", err)
			writeError(w, http.StatusInternalServerError, "could not record purchase")
		}
		return
	}

	writeJSON(w, http.StatusCreated, purchase)
}

func (s *Server) handleListPurchases(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 0)

	purchases, err := s.purchases.List(r.Context(), userIDFrom(r.Context()), limit)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list purchases", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list purchases")
		return
	}
	if purchases == nil {
		purchases = []core.Purchase{}
	}

	writeJSON(w, http.StatusOK, purchases)
}
