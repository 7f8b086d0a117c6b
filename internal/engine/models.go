package engine

import "time"

const (
	// MaxTopN is the hard cap on requested result count.
	MaxTopN = 25
	// MaxPriceCeiling bounds the caller-supplied price ceiling.
	MaxPriceCeiling = 100000
	// DefaultTopN is used when the request does not ask for a count.
	DefaultTopN = 10
	// DefaultMaxPrice is the default currency ceiling for a scan.
	DefaultMaxPrice = 10000
	// DefaultConcurrency is the enrichment fetch cap K when unset.
	// Observed safe range against the platform is 8-15.
	DefaultConcurrency = 10
	// MaxConcurrency caps K regardless of the request.
	MaxConcurrency = 15
	// DefaultFetchTimeout bounds a single enrichment fetch.
	DefaultFetchTimeout = 15 * time.Second
)

// Ranking modes.
const (
	ModeGap      = "gap"      // raw discount, descending
	ModeScore    = "score"    // composite score, descending
	ModeMomentum = "momentum" // peaks near a small negative gap
	ModeMixed    = "mixed"    // damped gap
)

// ScanParams is the caller-supplied filter for one scan. Zero values are
// filled in by Normalized; a negative MinGapPercent admits every item.
type ScanParams struct {
	MaxPrice          int64   `json:"max_price"`
	TopN              int     `json:"top_n"`
	MinReferencePrice int64   `json:"min_reference_price"`
	MinGapPercent     float64 `json:"min_gap_percent"`
	RankingMode       string  `json:"ranking_mode"`
	Subcategory       string  `json:"subcategory"`

	Concurrency  int           `json:"concurrency"`
	FetchTimeout time.Duration `json:"-"`
	Deadline     time.Duration `json:"-"` // 0 = no overall scan deadline
	ResolveNames bool          `json:"resolve_names"`
}

// Normalized returns params with defaults applied and hard caps enforced.
func (p ScanParams) Normalized() ScanParams {
	if p.MaxPrice <= 0 {
		p.MaxPrice = DefaultMaxPrice
	}
	if p.MaxPrice > MaxPriceCeiling {
		p.MaxPrice = MaxPriceCeiling
	}
	if p.TopN <= 0 {
		p.TopN = DefaultTopN
	}
	if p.TopN > MaxTopN {
		p.TopN = MaxTopN
	}
	if p.MinReferencePrice < 0 {
		p.MinReferencePrice = 0
	}
	switch p.RankingMode {
	case ModeGap, ModeScore, ModeMomentum, ModeMixed:
	default:
		p.RankingMode = ModeGap
	}
	if p.Concurrency <= 0 {
		p.Concurrency = DefaultConcurrency
	}
	if p.Concurrency > MaxConcurrency {
		p.Concurrency = MaxConcurrency
	}
	if p.FetchTimeout <= 0 {
		p.FetchTimeout = DefaultFetchTimeout
	}
	return p
}

// Risk tiers.
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)

// ScoredItem is one ranked opportunity: a reference-feed record joined with
// a live resale read plus the derived value metrics.
type ScoredItem struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Acronym       string `json:"acronym,omitempty"`
	CreatorName   string `json:"creator_name,omitempty"`
	RAP           int64  `json:"rap"`
	Value         int64  `json:"value"`
	TradablePrice int64  `json:"tradable_price"`
	SellerCount   int    `json:"seller_count,omitempty"`

	DemandTier    int  `json:"demand_tier"`
	TrendTier     int  `json:"trend_tier"`
	Projected     bool `json:"projected"`
	Hyped         bool `json:"hyped"`
	Rare          bool `json:"rare"`
	LimitedUnique bool `json:"limited_unique"`

	GapPercent      float64 `json:"gap_percent"`
	CompositeScore  float64 `json:"composite_score"`
	GrowthScore     float64 `json:"growth_score"`
	RiskTier        string  `json:"risk_tier"`
	ProjectedProfit float64 `json:"projected_profit"` // after the 30% marketplace cut
}

// ScanResult is the ordered outcome of one scan. Items is sorted by the
// requested mode's key, strictly non-increasing, ties broken by ascending id.
type ScanResult struct {
	Items          []ScoredItem `json:"items"`
	CandidateCount int          `json:"candidate_count"` // candidates considered for enrichment
	QualifiedCount int          `json:"qualified_count"` // enriched items passing all filters
}
