package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"feira/internal/core"
	"feira/internal/metrics"
)

type finalizeTripRequest struct {
	Store string            `json:"store"`
	Items []core.StagedItem `json:"items"`
}

// tripResponse adds the derived total to the serialized trip.
type tripResponse struct {
	core.Trip
	Total core.Money `json:"total"`
}

func newTripResponse(t core.Trip) tripResponse {
	return tripResponse{Trip: t, Total: t.Total()}
}

func (s *Server) handleFinalizeTrip(w http.ResponseWriter, r *http.Request) {
	var req finalizeTripRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	trip, err := s.trips.Finalize(r.Context(), userIDFrom(r.Context()), req.Store, req.Items)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrEmptyStore),
			errors.Is(err, core.ErrEmptyCart),
			errors.Is(err, core.ErrEmptyName),
			errors.Is(err, core.ErrInvalidAmount),
			errors.Is(err, core.ErrInvalidQuantity):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			slog.ErrorContext(r.Context(), "Failed to finalize trip", "error", err)
			writeError(w, http.StatusInternalServerError, "could not save trip")
		}
		return
	}

	metrics.TripsFinalized.Inc()
	writeJSON(w, http.StatusCreated, newTripResponse(trip))
}

func (s *Server) handleListTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := s.trips.List(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list trips", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list trips")
		return
	}

	out := make([]tripResponse, 0, len(trips))
	for _, t := range trips {
		out = append(out, newTripResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetTrip(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "trip not found")
		return
	}

	trip, err := s.trips.Get(r.Context(), id, userIDFrom(r.Context()))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			writeError(w, http.StatusNotFound, "trip not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to get trip", "trip_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "could not load trip")
		return
	}

	writeJSON(w, http.StatusOK, newTripResponse(trip))
}
