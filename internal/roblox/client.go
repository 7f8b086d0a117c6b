// Package roblox talks to the Roblox platform APIs: catalog discovery,
// per-item resale reads, price history, and display-name resolution.
// Every fetcher here is total: per-item failures collapse to "no data"
// so a scan can always run to completion under upstream flakiness.
package roblox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	catalogBaseURL  = "https://catalog.roblox.com"
	economyBaseURL  = "https://economy.roblox.com"
	usersBaseURL    = "https://users.roblox.com"
	groupsBaseURL   = "https://groups.roblox.com"
	rolimonsBaseURL = "https://www.rolimons.com"
)

// NameStore is a persistent L2 cache for item and creator display names.
type NameStore interface {
	GetItemName(assetID int64) (string, bool)
	SetItemName(assetID int64, name string)
	GetCreatorName(kind string, creatorID int64) (string, bool)
	SetCreatorName(kind string, creatorID int64, name string)
}

// Client is a rate-limited Roblox API client.
type Client struct {
	http    *http.Client
	sem     chan struct{}
	limiter *rate.Limiter

	itemNameCache    sync.Map // int64 -> string (L1 in-memory)
	creatorNameCache sync.Map // "kind:id" -> string
	store            NameStore

	// Endpoint roots, overridable in tests.
	catalogURL  string
	economyURL  string
	usersURL    string
	groupsURL   string
	rolimonsURL string
}

// NewClient creates a Roblox client with the given name cache store.
// Concurrency is capped at 20 in-flight requests and ~8 req/s overall;
// the platform throttles aggressively above that.
func NewClient(store NameStore) *Client {
	return &Client{
		http:        &http.Client{Timeout: 15 * time.Second},
		sem:         make(chan struct{}, 20),
		limiter:     rate.NewLimiter(rate.Limit(8), 16),
		store:       store,
		catalogURL:  catalogBaseURL,
		economyURL:  economyBaseURL,
		usersURL:    usersBaseURL,
		groupsURL:   groupsBaseURL,
		rolimonsURL: rolimonsBaseURL,
	}
}

// getJSON fetches a URL and decodes JSON into dst, respecting the
// concurrency cap and the request rate limit.
func (c *Client) getJSON(ctx context.Context, url string, dst interface{}) error {
	c.sem <- struct{}{}
	defer func() { <-c.sem }()

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "limited-flipper/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("roblox %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(dst)
}

// postJSON posts a JSON body and decodes the JSON response into dst.
func (c *Client) postJSON(ctx context.Context, url string, body, dst interface{}) error {
	c.sem <- struct{}{}
	defer func() { <-c.sem }()

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "limited-flipper/1.0")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("roblox %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(dst)
}
