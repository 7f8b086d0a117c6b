package roblox

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"limited-flipper/internal/logger"
)

// CandidateStub is one discovery hit: a collectible purchasable right now.
type CandidateStub struct {
	ID            int64
	Price         int64 // sale price known at discovery time, 0 = unknown
	LimitedUnique bool
}

type catalogSearchResponse struct {
	Data []struct {
		ID               int64    `json:"id"`
		ItemType         string   `json:"itemType"`
		Price            int64    `json:"price"`
		LowestPrice      int64    `json:"lowestPrice"`
		ItemRestrictions []string `json:"itemRestrictions"`
	} `json:"data"`
}

// SearchCollectibles returns collectibles on sale at or below maxPrice,
// cheapest first. Discovery failure degrades to an empty candidate list;
// it never aborts a scan.
func (c *Client) SearchCollectibles(ctx context.Context, maxPrice int64, subcategory string) []CandidateStub {
	q := url.Values{}
	q.Set("Category", "Collectibles")
	if subcategory != "" {
		q.Set("Subcategory", subcategory)
	}
	q.Set("salesTypeFilter", "2") // resellable collectibles
	q.Set("SortType", "4")        // price
	q.Set("SortAggregation", "5")
	q.Set("Limit", "120")
	if maxPrice > 0 {
		q.Set("MaxPrice", fmt.Sprintf("%d", maxPrice))
	}
	searchURL := c.catalogURL + "/v2/search/items/details?" + q.Encode()

	var resp catalogSearchResponse
	if err := c.getJSON(ctx, searchURL, &resp); err != nil {
		logger.Warn("Catalog", fmt.Sprintf("Discovery failed, scanning with no candidates: %v", err))
		return nil
	}

	stubs := make([]CandidateStub, 0, len(resp.Data))
	for _, d := range resp.Data {
		if d.ID <= 0 {
			continue
		}
		price := d.Price
		if d.LowestPrice > 0 && (price <= 0 || d.LowestPrice < price) {
			price = d.LowestPrice
		}
		if price < 0 {
			price = 0
		}
		stubs = append(stubs, CandidateStub{
			ID:            d.ID,
			Price:         price,
			LimitedUnique: hasRestriction(d.ItemRestrictions, "LimitedUnique"),
		})
	}
	return stubs
}

func hasRestriction(restrictions []string, want string) bool {
	for _, r := range restrictions {
		if strings.EqualFold(r, want) {
			return true
		}
	}
	return false
}
