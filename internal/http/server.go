// Package http exposes the JSON API: account registration and login,
// barcode lookup, quick purchases, trip finalization, and monthly stats.
package http

import (
	"context"
	"net/http"
	"sync"

	"feira/internal/auth"
	"feira/internal/metrics"
	"feira/internal/services"
	"feira/internal/storage"
)

type Server struct {
	http.Server
	repo      *storage.SQLiteRepository
	jwt       *auth.JWTManager
	trips     *services.TripService
	purchases *services.PurchaseService
	stats     *services.StatsService
	resolver  *services.ProductResolver

	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// NewServer configures all routes and returns a ready-to-run server.
func NewServer(
	addr string,
	repo *storage.SQLiteRepository,
	jwt *auth.JWTManager,
	trips *services.TripService,
	purchases *services.PurchaseService,
	stats *services.StatsService,
	resolver *services.ProductResolver,
) *Server {
	mux := http.NewServeMux()

	s := &Server{
		repo:        repo,
		jwt:         jwt,
		trips:       trips,
		purchases:   purchases,
		stats:       stats,
		resolver:    resolver,
		rateLimiter: newRateLimiter(),
	}
	s.Server = http.Server{
		Addr:    addr,
		Handler: metrics.Middleware(mux),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("POST /auth/register", s.withCommon(s.handleRegister))
	mux.HandleFunc("POST /auth/login", s.withCommon(s.handleLogin))

	mux.HandleFunc("GET /barcode/{ean}", s.withCommon(s.requireAuth(s.handleBarcodeLookup)))
	mux.HandleFunc("POST /purchases", s.withCommon(s.requireAuth(s.handleCreatePurchase)))
	mux.HandleFunc("GET /purchases", s.withCommon(s.requireAuth(s.handleListPurchases)))
	mux.HandleFunc("GET /stats/monthly", s.withCommon(s.requireAuth(s.handleMonthlyStats)))
	mux.HandleFunc("POST /shopping", s.withCommon(s.requireAuth(s.handleFinalizeTrip)))
	mux.HandleFunc("GET /shopping", s.withCommon(s.requireAuth(s.handleListTrips)))
	mux.HandleFunc("GET /shopping/{id}", s.withCommon(s.requireAuth(s.handleGetTrip)))

	return s
}

// Shutdown stops the server and its background cleanup goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports ready only when the database answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("database unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
