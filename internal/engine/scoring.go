package engine

import (
	"math"
	"sort"

	"limited-flipper/internal/rolimons"
)

// marketplaceTakeRate is the platform's cut on a resale; sellers keep 70%.
const marketplaceTakeRate = 0.30

// mixedDamping shrinks the gap in mixed mode so extreme gaps rank closer
// to moderate ones.
const mixedDamping = 0.15

// GapPercent is the percentage by which the reference value exceeds the
// tradable price. Positive = discount (opportunity), negative = premium.
// A non-positive reference collapses the gap to exactly 0.
func GapPercent(reference, tradable float64) float64 {
	if reference <= 0 {
		return 0
	}
	return (reference - tradable) / reference * 100
}

// NetAfterTax is what a seller keeps after the marketplace cut.
func NetAfterTax(sellPrice float64) float64 {
	return sellPrice * (1 - marketplaceTakeRate)
}

// CompositeScore answers "is this a good buy right now": the gap plus
// weighted demand/trend components plus flag bonuses.
func CompositeScore(it ScoredItem) float64 {
	score := it.GapPercent
	if it.DemandTier > 0 {
		score += float64(it.DemandTier) / 5 * 20
	}
	if it.TrendTier > 0 {
		score += float64(it.TrendTier) / 5 * 10
	}
	if it.Hyped {
		score += 5
	}
	if it.Rare {
		score += 5
	}
	if it.Projected {
		score -= 5
	}
	return score
}

// GrowthScore answers "is this likely to appreciate", independent of the
// current price beyond the gap bucket.
func GrowthScore(it ScoredItem) float64 {
	var score float64

	switch it.TrendTier {
	case rolimons.TrendRaising:
		score += 40
	case rolimons.TrendStable:
		score += 15
	case rolimons.TrendLowering:
		score -= 20
	}

	switch it.DemandTier {
	case rolimons.DemandAmazing:
		score += 30
	case rolimons.DemandHigh:
		score += 20
	case rolimons.DemandNormal:
		score += 10
	case rolimons.DemandLow:
		score -= 10
	case rolimons.DemandTerrible:
		score -= 25
	}

	if it.Rare {
		score += 25
	}
	if it.Hyped {
		score += 20
	}
	if it.Projected {
		score -= 10
	}

	switch {
	case it.GapPercent >= 20:
		score += 15
	case it.GapPercent >= 10:
		score += 8
	}

	if it.LimitedUnique {
		score += 10
	}
	return score
}

// RiskTierFor buckets a gap into a coarse risk label. Very large gaps are
// flagged Medium rather than favorable: extreme gaps usually mean stale or
// manipulated reference prices.
func RiskTierFor(gapPercent float64) string {
	switch {
	case gapPercent < -20:
		return RiskHigh
	case gapPercent < 0:
		return RiskMedium
	case gapPercent < 25:
		return RiskLow
	default:
		return RiskMedium
	}
}

// rankKey is the sort key for the given ranking mode, higher = better.
func rankKey(mode string, it ScoredItem) float64 {
	switch mode {
	case ModeScore:
		return it.CompositeScore
	case ModeMomentum:
		// Peaks at gap = -5: penalizes deep discounts and large premiums
		// symmetrically, favoring items trading near reference.
		return -math.Abs(it.GapPercent + 5)
	case ModeMixed:
		return it.GapPercent - math.Abs(it.GapPercent)*mixedDamping
	default:
		return it.GapPercent
	}
}

// SortRanked orders items by the mode's key descending. Ties break by
// ascending id so rankings are reproducible across runs regardless of
// enrichment completion order.
func SortRanked(items []ScoredItem, mode string) {
	sort.Slice(items, func(i, j int) bool {
		ki, kj := rankKey(mode, items[i]), rankKey(mode, items[j])
		if ki != kj {
			return ki > kj
		}
		return items[i].ID < items[j].ID
	})
}
