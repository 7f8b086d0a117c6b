// Package rolimons fetches the bulk item reference feed and keeps a
// TTL-bounded in-memory snapshot of it.
package rolimons

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"
)

const itemDetailsURL = "https://www.rolimons.com/itemapi/itemdetails"

// ErrSourceUnavailable reports that the bulk reference feed could not be
// fetched or parsed. It is the only error the scan engine propagates to
// callers; everything downstream degrades instead.
var ErrSourceUnavailable = errors.New("reference feed unavailable")

// Demand tiers, ordinal 0-5 (0 = unassigned).
const (
	DemandUnassigned = 0
	DemandTerrible   = 1
	DemandLow        = 2
	DemandNormal     = 3
	DemandHigh       = 4
	DemandAmazing    = 5
)

// Trend tiers, ordinal 0-5 (0 = unassigned).
const (
	TrendUnassigned  = 0
	TrendLowering    = 1
	TrendUnstable    = 2
	TrendStable      = 3
	TrendRaising     = 4
	TrendFluctuating = 5
)

// CatalogItem is one tradeable collectible as known by the reference feed.
// All numeric fields are clamped to >= 0 at parse time.
type CatalogItem struct {
	ID           int64
	Name         string
	Acronym      string
	RAP          int64 // recent average price maintained by the platform
	Value        int64 // community consensus value; 0 = unset
	DefaultValue bool  // value is a synthesized default rather than a curated one
	DemandTier   int   // 0-5
	TrendTier    int   // 0-5
	Projected    bool
	Hyped        bool
	Rare         bool
}

// Client fetches the Rolimons item feed.
type Client struct {
	http    *http.Client
	feedURL string
}

// NewClient creates a feed client with a 30s request timeout.
func NewClient() *Client {
	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		feedURL: itemDetailsURL,
	}
}

// feedEnvelope mirrors the itemdetails response: a success flag plus a map of
// item id -> fixed-position array
// [name, acronym, rap, value, defaultValueFlag, demand, trend, projected, hyped, rare].
type feedEnvelope struct {
	Success bool                         `json:"success"`
	Items   map[string][]json.RawMessage `json:"items"`
}

// FetchItemDetails downloads and normalizes the full reference feed.
// Any transport or parse failure collapses into ErrSourceUnavailable;
// partial data is never returned.
func (c *Client) FetchItemDetails(ctx context.Context) (map[int64]CatalogItem, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	req.Header.Set("User-Agent", "limited-flipper/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status %d", ErrSourceUnavailable, resp.StatusCode)
	}

	var env feedEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrSourceUnavailable, err)
	}
	if !env.Success || env.Items == nil {
		return nil, fmt.Errorf("%w: feed reported failure", ErrSourceUnavailable)
	}

	items := make(map[int64]CatalogItem, len(env.Items))
	for rawID, fields := range env.Items {
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		items[id] = parseItemRow(id, fields)
	}
	return items, nil
}

// parseItemRow turns one fixed-position feed row into a CatalogItem.
// Malformed positions normalize to zero values rather than failing the feed.
func parseItemRow(id int64, fields []json.RawMessage) CatalogItem {
	it := CatalogItem{
		ID:           id,
		Name:         fieldString(fields, 0),
		Acronym:      fieldString(fields, 1),
		RAP:          clampPrice(fieldFloat(fields, 2)),
		Value:        clampPrice(fieldFloat(fields, 3)),
		DefaultValue: fieldFloat(fields, 4) == 1,
		DemandTier:   clampTier(fieldFloat(fields, 5)),
		TrendTier:    clampTier(fieldFloat(fields, 6)),
		Projected:    fieldFloat(fields, 7) == 1,
		Hyped:        fieldFloat(fields, 8) == 1,
		Rare:         fieldFloat(fields, 9) == 1,
	}
	return it
}

func fieldString(fields []json.RawMessage, idx int) string {
	if idx >= len(fields) {
		return ""
	}
	var s string
	if err := json.Unmarshal(fields[idx], &s); err != nil {
		return ""
	}
	return s
}

func fieldFloat(fields []json.RawMessage, idx int) float64 {
	if idx >= len(fields) {
		return 0
	}
	var f float64
	if err := json.Unmarshal(fields[idx], &f); err != nil {
		return 0
	}
	return f
}

// clampPrice normalizes any non-finite or negative source value to 0.
func clampPrice(f float64) int64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return int64(f)
}

// clampTier maps the feed's -1..4 tier encoding onto the 0-5 ordinal scale,
// where 0 means unassigned.
func clampTier(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	t := int(f) + 1
	if t > 5 {
		t = 5
	}
	return t
}
