package roblox

import (
	"context"
	"fmt"
)

// ResaleSnapshot is a point-in-time secondary-market read for one item.
type ResaleSnapshot struct {
	AssetID            int64
	LowestResalePrice  int64
	RecentAveragePrice int64
	SellerCount        int
}

type resaleResponse struct {
	LowestResalePrice  int64 `json:"lowestResalePrice"`
	RecentAveragePrice int64 `json:"recentAveragePrice"`
	NumSellers         int   `json:"numSellers"`
}

// ResaleData reads the resale market for one asset. All transport errors,
// non-success statuses, and malformed payloads collapse to (zero, false);
// an absent or invalid lowest price invalidates the whole snapshot.
func (c *Client) ResaleData(ctx context.Context, assetID int64) (ResaleSnapshot, bool) {
	url := fmt.Sprintf("%s/v1/assets/%d/resale-data", c.economyURL, assetID)

	var resp resaleResponse
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return ResaleSnapshot{}, false
	}
	if resp.LowestResalePrice <= 0 {
		return ResaleSnapshot{}, false
	}

	rap := resp.RecentAveragePrice
	if rap < 0 {
		rap = 0
	}
	return ResaleSnapshot{
		AssetID:            assetID,
		LowestResalePrice:  resp.LowestResalePrice,
		RecentAveragePrice: rap,
		SellerCount:        resp.NumSellers,
	}, true
}
