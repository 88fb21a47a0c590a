package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"feira/internal/auth"
	"feira/internal/barcode"
	"feira/internal/core"
	"feira/internal/services"
	"feira/internal/storage"
)

type stubLookup struct {
	name string
	ok   bool
}

func (s *stubLookup) Lookup(_ context.Context, _ string) (barcode.Result, bool) {
	return barcode.Result{Name: s.name}, s.ok
}

func newTestServer(t *testing.T, lookup services.BarcodeLookup) *Server {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "feira.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	if lookup == nil {
		lookup = &stubLookup{}
	}
	jwt := auth.NewJWTManager("test-secret-0123456789abcdef", time.Hour)
	resolver := services.NewProductResolver(repo, lookup)
	stats := services.NewStatsService(repo)
	trips := services.NewTripService(repo, nil, stats)
	purchases := services.NewPurchaseService(repo, resolver, stats)

	srv := NewServer(":0", repo, jwt, trips, purchases, stats, resolver)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})
	return srv
}

func doRequest(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func registerUser(t *testing.T, srv *Server, email string) string {
	t.Helper()

	rec := doRequest(t, srv, http.MethodPost, "/auth/register", "",
		map[string]string{"email": email, "password": "correct-horse"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp tokenResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode token: %v", err)
	}
	return resp.Token
}

func TestRegisterAndLogin(t *testing.T) {
	srv := newTestServer(t, nil)

	token := registerUser(t, srv, "ana@example.com")
	if token == "" {
		t.Fatal("register returned empty token")
	}

	t.Run("duplicate email conflicts", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/auth/register", "",
			map[string]string{"email": "ana@example.com", "password": "correct-horse"})
		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusConflict)
		}
	})

	t.Run("invalid inputs rejected", func(t *testing.T) {
		tests := []struct {
			name string
			body map[string]string
		}{
			{"bad email", map[string]string{"email": "not-an-email", "password": "correct-horse"}},
			{"short password", map[string]string{"email": "b@example.com", "password": "short"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rec := doRequest(t, srv, http.MethodPost, "/auth/register", "", tt.body)
				if rec.Code != http.StatusBadRequest {
					t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
				}
			})
		}
	})

	t.Run("login succeeds with right password", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/auth/login", "",
			map[string]string{"email": "ana@example.com", "password": "correct-horse"})
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("wrong password and unknown email read the same", func(t *testing.T) {
		for _, body := range []map[string]string{
			{"email": "ana@example.com", "password": "wrong-password"},
			{"email": "ghost@example.com", "password": "correct-horse"},
		} {
			rec := doRequest(t, srv, http.MethodPost, "/auth/login", "", body)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
		}
	})
}

func TestAuthMiddlewareRejects(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name  string
		token string
	}{
		{"missing token", ""},
		{"garbage token", "not.a.jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodGet, "/purchases", tt.token, nil)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestBarcodeLookupEndpoint(t *testing.T) {
	t.Run("upstream hit creates product", func(t *testing.T) {
		srv := newTestServer(t, &stubLookup{name: "Milk", ok: true})
		token := registerUser(t, srv, "ana@example.com")

		rec := doRequest(t, srv, http.MethodGet, "/barcode/7891234567890", token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var product core.Product
		if err := json.NewDecoder(rec.Body).Decode(&product); err != nil {
			t.Fatalf("decode product: %v", err)
		}
		if product.Name != "Milk" || product.EAN != "7891234567890" {
			t.Errorf("product = %+v", product)
		}
	})

	t.Run("unknown everywhere is 404", func(t *testing.T) {
		srv := newTestServer(t, &stubLookup{})
		token := registerUser(t, srv, "ana@example.com")

		rec := doRequest(t, srv, http.MethodGet, "/barcode/0000000000000", token, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})
}

func TestPurchaseEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)
	token := registerUser(t, srv, "ana@example.com")

	rec := doRequest(t, srv, http.MethodPost, "/purchases", token,
		map[string]any{"name": "Milk", "price": "4.50"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var purchase core.Purchase
	if err := json.NewDecoder(rec.Body).Decode(&purchase); err != nil {
		t.Fatalf("decode purchase: %v", err)
	}
	if purchase.Price.Cents != 450 {
		t.Errorf("Price = %d cents, want 450", purchase.Price.Cents)
	}
	if purchase.Quantity != 1 {
		t.Errorf("Quantity = %d, want default 1", purchase.Quantity)
	}

	t.Run("rejects purchase without name or ean", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/purchases", token,
			map[string]any{"price": 2.00})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("list returns newest first", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/purchases", token,
			map[string]any{"name": "Bread", "price": 3.00, "quantity": 2})
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d", rec.Code)
		}

		rec = doRequest(t, srv, http.MethodGet, "/purchases", token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var purchases []core.Purchase
		if err := json.NewDecoder(rec.Body).Decode(&purchases); err != nil {
			t.Fatalf("decode purchases: %v", err)
		}
		if len(purchases) != 2 {
			t.Fatalf("len = %d, want 2", len(purchases))
		}
		if purchases[0].ProductName != "Bread" {
			t.Errorf("first purchase = %q, want newest (Bread)", purchases[0].ProductName)
		}
	})
}

func TestShoppingEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)
	token := registerUser(t, srv, "ana@example.com")

	body := map[string]any{
		"store": "Market A",
		"items": []map[string]any{
			{"name": "Milk", "price": "4.50", "quantity": 2},
			{"ean": "789", "name": "Bread", "price": "3.00", "quantity": 1},
		},
	}
	rec := doRequest(t, srv, http.MethodPost, "/shopping", token, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created tripResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode trip: %v", err)
	}
	if len(created.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(created.Items))
	}
	if created.Total.Cents != 1200 {
		t.Errorf("Total = %d cents, want 1200", created.Total.Cents)
	}

	t.Run("rejects empty cart and empty store", func(t *testing.T) {
		for _, body := range []map[string]any{
			{"store": "Market A", "items": []map[string]any{}},
			{"store": "", "items": []map[string]any{{"name": "Milk", "price": 1.00, "quantity": 1}}},
		} {
			rec := doRequest(t, srv, http.MethodPost, "/shopping", token, body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		}
	})

	t.Run("get by id", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, fmt.Sprintf("/shopping/%d", created.ID), token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var trip tripResponse
		if err := json.NewDecoder(rec.Body).Decode(&trip); err != nil {
			t.Fatalf("decode trip: %v", err)
		}
		if trip.Store != "Market A" {
			t.Errorf("Store = %q", trip.Store)
		}
	})

	t.Run("someone else's trip is indistinguishable from absent", func(t *testing.T) {
		otherToken := registerUser(t, srv, "bob@example.com")

		owned := doRequest(t, srv, http.MethodGet, fmt.Sprintf("/shopping/%d", created.ID), otherToken, nil)
		absent := doRequest(t, srv, http.MethodGet, "/shopping/999999", otherToken, nil)
		if owned.Code != http.StatusNotFound || absent.Code != http.StatusNotFound {
			t.Errorf("statuses = %d, %d; want both 404", owned.Code, absent.Code)
		}
		if owned.Body.String() != absent.Body.String() {
			t.Errorf("bodies differ: %q vs %q", owned.Body.String(), absent.Body.String())
		}
	})

	t.Run("list includes totals", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/shopping", token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var trips []tripResponse
		if err := json.NewDecoder(rec.Body).Decode(&trips); err != nil {
			t.Fatalf("decode trips: %v", err)
		}
		if len(trips) != 1 || trips[0].Total.Cents != 1200 {
			t.Errorf("trips = %+v", trips)
		}
	})
}

func TestMonthlyStatsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	token := registerUser(t, srv, "ana@example.com")

	rec := doRequest(t, srv, http.MethodPost, "/purchases", token,
		map[string]any{"name": "Milk", "price": "4.50", "quantity": 2})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodGet, "/stats/monthly", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var totals []core.MonthlyTotal
	if err := json.NewDecoder(rec.Body).Decode(&totals); err != nil {
		t.Fatalf("decode totals: %v", err)
	}
	if len(totals) != 1 {
		t.Fatalf("len = %d, want 1 (sparse)", len(totals))
	}
	if got := totals[0].Total.Cents; got != 900 {
		t.Errorf("Total = %d cents, want 900", got)
	}
	if totals[0].Month != int(time.Now().UTC().Month()) {
		t.Errorf("Month = %d, want current month", totals[0].Month)
	}

	t.Run("empty year is an empty array", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/stats/monthly?year=1999", token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if got := rec.Body.String(); got != "[]\n" {
			t.Errorf("body = %q, want empty JSON array", got)
		}
	})
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doRequest(t, srv, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
	}
}

func TestRateLimitOnWrites(t *testing.T) {
	srv := newTestServer(t, nil)

	var last int
	for i := 0; i < 61; i++ {
		rec := doRequest(t, srv, http.MethodPost, "/auth/login", "",
			map[string]string{"email": "x@example.com", "password": "whatever-pass"})
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("61st POST status = %d, want %d", last, http.StatusTooManyRequests)
	}
}
