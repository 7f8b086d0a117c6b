package roblox

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// PricePoint is one day of sale-price history.
type PricePoint struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Value int64  `json:"value"`
}

// PriceHistory is the result of the price-history fallback chain.
// When every source fails, Points is empty and TriedSources reports how many
// endpoints were attempted; callers must render that state, not treat it as
// an error.
type PriceHistory struct {
	Points       []PricePoint `json:"points"`
	Source       string       `json:"source"` // economy-v1 | economy-v2 | rolimons | ""
	TriedSources int          `json:"tried_sources"`
}

// Available reports whether any source produced usable history.
func (h PriceHistory) Available() bool {
	return len(h.Points) > 0
}

type resaleChartResponse struct {
	PriceDataPoints []struct {
		Value int64  `json:"value"`
		Date  string `json:"date"`
	} `json:"priceDataPoints"`
}

type rolimonsItemResponse struct {
	Success   bool       `json:"success"`
	RAPSeries [][2]int64 `json:"rap_series"` // [unix_ts, rap]
}

// FetchPriceHistory walks the fallback chain in strict priority order:
// economy v1 chart, economy v2 chart, then the coarse Rolimons series.
// The first structurally valid response wins; each endpoint gets exactly
// one attempt.
func (c *Client) FetchPriceHistory(ctx context.Context, assetID int64) PriceHistory {
	tried := 0

	for _, src := range []struct {
		name string
		url  string
	}{
		{"economy-v1", fmt.Sprintf("%s/v1/assets/%d/resale-data", c.economyURL, assetID)},
		{"economy-v2", fmt.Sprintf("%s/v2/assets/%d/resale-data", c.economyURL, assetID)},
	} {
		tried++
		var resp resaleChartResponse
		if err := c.getJSON(ctx, src.url, &resp); err != nil {
			continue
		}
		points := chartPoints(resp)
		if len(points) > 0 {
			return PriceHistory{Points: points, Source: src.name, TriedSources: tried}
		}
	}

	// Degraded third source: Rolimons RAP series, daily granularity only.
	tried++
	var resp rolimonsItemResponse
	url := fmt.Sprintf("%s/itemapi/item/%d", c.rolimonsURL, assetID)
	if err := c.getJSON(ctx, url, &resp); err == nil && resp.Success {
		points := make([]PricePoint, 0, len(resp.RAPSeries))
		for _, pair := range resp.RAPSeries {
			if pair[1] <= 0 {
				continue
			}
			points = append(points, PricePoint{
				Date:  time.Unix(pair[0], 0).UTC().Format("2006-01-02"),
				Value: pair[1],
			})
		}
		if len(points) > 0 {
			sortPoints(points)
			return PriceHistory{Points: points, Source: "rolimons", TriedSources: tried}
		}
	}

	return PriceHistory{TriedSources: tried}
}

func chartPoints(resp resaleChartResponse) []PricePoint {
	points := make([]PricePoint, 0, len(resp.PriceDataPoints))
	for _, p := range resp.PriceDataPoints {
		if p.Value <= 0 || p.Date == "" {
			continue
		}
		// Normalize RFC3339 timestamps to plain dates.
		date := p.Date
		if t, err := time.Parse(time.RFC3339, p.Date); err == nil {
			date = t.UTC().Format("2006-01-02")
		} else if len(date) > 10 {
			date = date[:10]
		}
		points = append(points, PricePoint{Date: date, Value: p.Value})
	}
	sortPoints(points)
	return points
}

// sortPoints orders history chronologically; upstreams do not guarantee order.
func sortPoints(points []PricePoint) {
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})
}

// TrendPercent is the percent price change across the history window.
func (h PriceHistory) TrendPercent() float64 {
	if len(h.Points) < 2 {
		return 0
	}
	first := float64(h.Points[0].Value)
	last := float64(h.Points[len(h.Points)-1].Value)
	if first <= 0 {
		return 0
	}
	return (last - first) / first * 100
}
