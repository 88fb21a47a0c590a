package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"feira/internal/cart"
	"feira/internal/core"
)

const tokenFile = "token"

// apiClient talks to the feira server with the stored bearer token.
type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newAPIClient() (*apiClient, error) {
	base := os.Getenv("FEIRA_API_URL")
	if base == "" {
		base = "http://localhost:8080"
	}

	dir, err := dataDir()
	if err != nil {
		return nil, err
	}
	token, _ := os.ReadFile(filepath.Join(dir, tokenFile))

	return &apiClient{
		baseURL: strings.TrimRight(base, "/"),
		token:   strings.TrimSpace(string(token)),
		http:    &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (c *apiClient) saveToken(token string) error {
	dir, err := dataDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, tokenFile), []byte(token), 0o600)
}

func (c *apiClient) do(method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequest(method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server: %s (%s)", apiErr.Error, resp.Status)
		}
		return fmt.Errorf("server returned %s", resp.Status)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// authenticate registers or logs in and persists the returned token.
func (c *apiClient) authenticate(path, email, password string) error {
	var resp struct {
		Token string `json:"token"`
	}
	err := c.do(http.MethodPost, path, map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return err
	}
	return c.saveToken(resp.Token)
}

// commitTrip posts the checkout snapshot as one finalized trip.
func (c *apiClient) commitTrip(snapshot cart.Checkout) (committedTrip, error) {
	var trip committedTrip
	err := c.do(http.MethodPost, "/shopping", map[string]any{
		"store": snapshot.Store,
		"items": snapshot.Items,
	}, &trip)
	return trip, err
}

type committedTrip struct {
	core.Trip
	Total core.Money `json:"total"`
}
