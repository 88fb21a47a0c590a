package http

import (
	"errors"
	"log/slog"
	"net/http"

	"feira/internal/core"
	"feira/internal/metrics"
)

func (s *Server) handleBarcodeLookup(w http.ResponseWriter, r *http.Request) {
	ean := r.PathValue("ean")

	product, err := s.resolver.ResolveEAN(r.Context(), ean)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			metrics.BarcodeLookups.WithLabelValues("miss").Inc()
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		slog.ErrorContext(r.Context(), "Barcode resolution failed", "ean", ean, "error", err)
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}

	metrics.BarcodeLookups.WithLabelValues("hit").Inc()
	writeJSON(w, http.StatusOK, product)
}
