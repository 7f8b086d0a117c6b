package roblox

import (
	"context"
	"fmt"
	"strings"
)

// MaxDetailBatch is the upstream cap on ids per batch detail call.
const MaxDetailBatch = 50

// UnknownCreator is the sentinel returned when creator resolution fails.
const UnknownCreator = "Unknown"

// ItemDetail is display metadata for one catalog item. It is used only to
// enrich rendered results, never to compute scores.
type ItemDetail struct {
	ID          int64
	Name        string
	CreatorID   int64
	CreatorKind string // "User" or "Group"
	CreatorName string
}

type batchDetailsRequest struct {
	Items []batchDetailsKey `json:"items"`
}

type batchDetailsKey struct {
	ItemType string `json:"itemType"`
	ID       int64  `json:"id"`
}

type batchDetailsResponse struct {
	Data []struct {
		ID              int64  `json:"id"`
		Name            string `json:"name"`
		CreatorTargetID int64  `json:"creatorTargetId"`
		CreatorType     string `json:"creatorType"`
		CreatorName     string `json:"creatorName"`
	} `json:"data"`
}

// BatchItemDetails resolves display metadata for a bounded batch of asset
// ids, chunking at the upstream cap. It returns whatever subset the platform
// could resolve; callers synthesize placeholders for missing ids.
func (c *Client) BatchItemDetails(ctx context.Context, ids []int64) map[int64]ItemDetail {
	out := make(map[int64]ItemDetail, len(ids))

	for start := 0; start < len(ids); start += MaxDetailBatch {
		end := start + MaxDetailBatch
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]

		body := batchDetailsRequest{Items: make([]batchDetailsKey, 0, len(chunk))}
		for _, id := range chunk {
			body.Items = append(body.Items, batchDetailsKey{ItemType: "Asset", ID: id})
		}

		var resp batchDetailsResponse
		url := c.catalogURL + "/v1/catalog/items/details"
		if err := c.postJSON(ctx, url, body, &resp); err != nil {
			// This chunk is lost; later chunks may still resolve.
			continue
		}
		for _, d := range resp.Data {
			if d.ID <= 0 {
				continue
			}
			detail := ItemDetail{
				ID:          d.ID,
				Name:        d.Name,
				CreatorID:   d.CreatorTargetID,
				CreatorKind: normalizeCreatorKind(d.CreatorType),
				CreatorName: d.CreatorName,
			}
			out[d.ID] = detail
			if detail.Name != "" {
				c.itemNameCache.Store(d.ID, detail.Name)
				if c.store != nil {
					c.store.SetItemName(d.ID, detail.Name)
				}
			}
		}
	}
	return out
}

// ItemName returns the best known display name for an asset without hitting
// the network: L1 in-memory cache, then the persistent store, then a
// synthesized placeholder.
func (c *Client) ItemName(assetID int64) string {
	if v, ok := c.itemNameCache.Load(assetID); ok {
		return v.(string)
	}
	if c.store != nil {
		if name, ok := c.store.GetItemName(assetID); ok {
			c.itemNameCache.Store(assetID, name)
			return name
		}
	}
	return fmt.Sprintf("Item %d", assetID)
}

type creatorNameResponse struct {
	Name string `json:"name"`
}

// CreatorName resolves a creator display name by id and kind ("User" or
// "Group"). It never errors: resolution failure yields the literal
// UnknownCreator sentinel. Uses the L1/L2/L3 cache chain.
func (c *Client) CreatorName(ctx context.Context, kind string, creatorID int64) string {
	kind = normalizeCreatorKind(kind)
	key := fmt.Sprintf("%s:%d", kind, creatorID)

	if v, ok := c.creatorNameCache.Load(key); ok {
		return v.(string)
	}
	if c.store != nil {
		if name, ok := c.store.GetCreatorName(kind, creatorID); ok {
			c.creatorNameCache.Store(key, name)
			return name
		}
	}

	var url string
	switch kind {
	case "Group":
		url = fmt.Sprintf("%s/v1/groups/%d", c.groupsURL, creatorID)
	default:
		url = fmt.Sprintf("%s/v1/users/%d", c.usersURL, creatorID)
	}

	name := UnknownCreator
	var resp creatorNameResponse
	if err := c.getJSON(ctx, url, &resp); err == nil && resp.Name != "" {
		name = resp.Name
	}

	c.creatorNameCache.Store(key, name)
	if c.store != nil && name != UnknownCreator {
		c.store.SetCreatorName(kind, creatorID, name)
	}
	return name
}

func normalizeCreatorKind(kind string) string {
	if strings.EqualFold(kind, "Group") {
		return "Group"
	}
	return "User"
}
