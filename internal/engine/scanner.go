package engine

import (
	"context"
	"fmt"

	"limited-flipper/internal/logger"
	"limited-flipper/internal/roblox"
	"limited-flipper/internal/rolimons"
)

// ReferenceProvider supplies the current reference-feed snapshot.
// Implemented by rolimons.Cache.
type ReferenceProvider interface {
	Get(ctx context.Context) (map[int64]rolimons.CatalogItem, error)
}

// Discoverer lists collectibles purchasable right now under a price ceiling.
// A failed discovery degrades to an empty list.
type Discoverer interface {
	SearchCollectibles(ctx context.Context, maxPrice int64, subcategory string) []roblox.CandidateStub
}

// NameResolver enriches the truncated result set with display metadata.
type NameResolver interface {
	BatchItemDetails(ctx context.Context, ids []int64) map[int64]roblox.ItemDetail
	CreatorName(ctx context.Context, kind string, creatorID int64) string
}

// Scanner runs one opportunity scan: reference snapshot, candidate
// discovery, bounded enrichment, scoring, and ranking.
type Scanner struct {
	Reference ReferenceProvider
	Discovery Discoverer
	Resale    ResaleReader
	Names     NameResolver // nil = skip name resolution
}

// NewScanner wires a Scanner from the reference cache and the platform client.
func NewScanner(ref ReferenceProvider, market *roblox.Client) *Scanner {
	return &Scanner{
		Reference: ref,
		Discovery: market,
		Resale:    market,
		Names:     market,
	}
}

// Scan executes one request/response cycle. The only propagating failure is
// an unavailable reference feed; everything downstream degrades to a smaller
// result set instead of failing.
func (s *Scanner) Scan(ctx context.Context, params ScanParams, progress func(string)) (*ScanResult, error) {
	if progress == nil {
		progress = func(string) {}
	}
	params = params.Normalized()

	if params.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, params.Deadline)
		defer cancel()
	}

	// Collecting: reference snapshot plus live discovery.
	progress("Fetching reference feed...")
	reference, err := s.Reference.Get(ctx)
	if err != nil {
		return nil, err
	}

	progress("Discovering collectibles on sale...")
	stubs := s.Discovery.SearchCollectibles(ctx, params.MaxPrice, params.Subcategory)

	// Cheap pre-filter on data we already hold: price ceiling and minimum
	// reference value, before any per-item fetch is spent.
	var cands []candidate
	for _, stub := range stubs {
		item, ok := reference[stub.ID]
		if !ok {
			continue
		}
		if stub.Price > 0 && stub.Price > params.MaxPrice {
			continue
		}
		if item.Value < params.MinReferencePrice {
			continue
		}
		cands = append(cands, candidate{stub: stub, item: item})
	}
	candidateCount := len(cands)
	logger.Info("Scan", fmt.Sprintf("%d candidates after pre-filter (%d discovered)", candidateCount, len(stubs)))

	// Enriching: bounded concurrent resale reads. Per-item failures are
	// absorbed here; they only shrink the result set.
	progress(fmt.Sprintf("Enriching %d candidates...", candidateCount))
	enriched := enrichCandidates(ctx, s.Resale, cands, params.Concurrency, params.FetchTimeout)

	// Ranking: score, post-filter on gap, sort, truncate.
	progress("Scoring and ranking...")
	var scored []ScoredItem
	for _, e := range enriched {
		it := scoreEnrichment(e)
		if it.GapPercent < params.MinGapPercent {
			continue
		}
		scored = append(scored, it)
	}
	qualifiedCount := len(scored)

	SortRanked(scored, params.RankingMode)
	if len(scored) > params.TopN {
		scored = scored[:params.TopN]
	}

	// Display names are resolved for the truncated set only, to keep
	// secondary calls off the hot path.
	if params.ResolveNames && s.Names != nil && len(scored) > 0 {
		progress("Resolving display names...")
		s.resolveNames(ctx, scored)
	}

	progress(fmt.Sprintf("Found %d opportunities", len(scored)))
	return &ScanResult{
		Items:          scored,
		CandidateCount: candidateCount,
		QualifiedCount: qualifiedCount,
	}, nil
}

// scoreEnrichment joins a candidate with its resale snapshot and computes
// the derived metrics. Pure given its inputs.
func scoreEnrichment(e enrichment) ScoredItem {
	item := e.cand.item

	rap := item.RAP
	if e.snap.RecentAveragePrice > 0 {
		rap = e.snap.RecentAveragePrice
	}

	tradable := e.snap.LowestResalePrice
	if tradable <= 0 && e.cand.stub.Price > 0 {
		tradable = e.cand.stub.Price
	}

	it := ScoredItem{
		ID:            item.ID,
		Name:          item.Name,
		Acronym:       item.Acronym,
		RAP:           rap,
		Value:         item.Value,
		TradablePrice: tradable,
		SellerCount:   e.snap.SellerCount,
		DemandTier:    item.DemandTier,
		TrendTier:     item.TrendTier,
		Projected:     item.Projected,
		Hyped:         item.Hyped,
		Rare:          item.Rare,
		LimitedUnique: e.cand.stub.LimitedUnique,
	}
	if it.Name == "" {
		it.Name = fmt.Sprintf("Item %d", it.ID)
	}

	reference := float64(item.Value)
	it.GapPercent = GapPercent(reference, float64(tradable))
	it.CompositeScore = CompositeScore(it)
	it.GrowthScore = GrowthScore(it)
	it.RiskTier = RiskTierFor(it.GapPercent)
	it.ProjectedProfit = NetAfterTax(reference) - float64(tradable)
	return it
}

// resolveNames fills creator names (and better item names) for the final
// top-N, batching at the upstream cap.
func (s *Scanner) resolveNames(ctx context.Context, items []ScoredItem) {
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}

	details := s.Names.BatchItemDetails(ctx, ids)
	for i := range items {
		d, ok := details[items[i].ID]
		if !ok {
			continue
		}
		if d.Name != "" {
			items[i].Name = d.Name
		}
		switch {
		case d.CreatorName != "":
			items[i].CreatorName = d.CreatorName
		case d.CreatorID > 0:
			items[i].CreatorName = s.Names.CreatorName(ctx, d.CreatorKind, d.CreatorID)
		default:
			items[i].CreatorName = roblox.UnknownCreator
		}
	}
}
