// Package barcode resolves EAN/UPC codes against the public OpenFoodFacts
// database. The upstream is treated as unreliable: every failure mode is
// downgraded to "no data" and the caller falls back to manual entry.
package barcode

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"feira/internal/cache"
)

// FallbackName is the display name used when a product exists upstream
// but carries no usable name.
const FallbackName = "Produto"

// Result is a positive lookup outcome. The upstream does not reliably
// carry prices, so only the display name is extracted.
type Result struct {
	Name string
}

// Client queries OpenFoodFacts by barcode. Misses are negative-cached so
// repeated scans of an unknown code do not re-query the upstream within
// the TTL window.
type Client struct {
	baseURL    string
	httpClient *http.Client
	misses     *cache.LRU[struct{}]
}

// offResponse mirrors the fields we read from the v2 product endpoint.
type offResponse struct {
	Status  int `json:"status"`
	Product struct {
		ProductName string `json:"product_name"`
	} `json:"product"`
}

const (
	missCacheSize = 500
	missCacheTTL  = 15 * time.Minute
)

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		misses:     cache.NewLRU[struct{}](missCacheSize, missCacheTTL),
	}
}

// Lookup resolves an ean to a product name. The second return value is
// false on any miss, network error, timeout or malformed response; those
// cases are never surfaced as failures.
func (c *Client) Lookup(ctx context.Context, ean string) (Result, bool) {
	if _, cached := c.misses.Get(ean); cached {
		slog.DebugContext(ctx, "Barcode miss served from negative cache", "ean", ean)
		return Result{}, false
	}

	url := fmt.Sprintf("%s/api/v2/product/%s.json", c.baseURL, ean)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		slog.WarnContext(ctx, "Barcode request build failed", "ean", ean, "error", err)
		return Result{}, false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.WarnContext(ctx, "Barcode lookup failed, treating as miss", "ean", ean, "error", err)
		return Result{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.DebugContext(ctx, "Barcode lookup non-OK status", "ean", ean, "status", resp.StatusCode)
		c.misses.Set(ean, struct{}{})
		return Result{}, false
	}

	var body offResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		slog.WarnContext(ctx, "Barcode response decode failed, treating as miss", "ean", ean, "error", err)
		return Result{}, false
	}

	if body.Status != 1 {
		c.misses.Set(ean, struct{}{})
		return Result{}, false
	}

	name := strings.TrimSpace(body.Product.ProductName)
	if name == "" {
		name = FallbackName
	}

	slog.DebugContext(ctx, "Barcode resolved", "ean", ean, "name", name)
	return Result{Name: name}, true
}

// MissCache exposes the negative cache for cleanup registration.
func (c *Client) MissCache() *cache.LRU[struct{}] {
	return c.misses
}
