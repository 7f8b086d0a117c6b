package config

import (
	"os"
	"strconv"
	"sync"
)

// Config holds application settings. It is a plain value; shared access
// between the HTTP API and the background scheduler goes through Store.
// Values come from Default(), then environment overrides applied in FromEnv.
type Config struct {
	// Default scan filter, used by the background scheduler and as the
	// baseline for API requests that omit fields.
	MaxPrice          int64   `json:"max_price"`
	TopN              int     `json:"top_n"`
	MinReferencePrice int64   `json:"min_reference_price"`
	MinGapPercent     float64 `json:"min_gap_percent"`
	RankingMode       string  `json:"ranking_mode"` // gap | score | momentum | mixed
	Subcategory       string  `json:"subcategory"`

	// Upstream load controls.
	Concurrency         int `json:"concurrency"`           // bounded enrichment fetches in flight
	FetchTimeoutSeconds int `json:"fetch_timeout_seconds"` // per enrichment fetch
	ScanDeadlineSeconds int `json:"scan_deadline_seconds"` // 0 = no overall deadline

	// Scheduler + alerting.
	ScanIntervalMinutes int     `json:"scan_interval_minutes"` // 0 = scheduler disabled
	AlertDiscord        bool    `json:"alert_discord"`
	AlertDiscordWebhook string  `json:"alert_discord_webhook"`
	AlertMinGapPercent  float64 `json:"alert_min_gap_percent"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		MaxPrice:            10000,
		TopN:                10,
		MinReferencePrice:   100,
		MinGapPercent:       0,
		RankingMode:         "gap",
		Concurrency:         10,
		FetchTimeoutSeconds: 15,
		ScanDeadlineSeconds: 0,
		ScanIntervalMinutes: 0,
		AlertMinGapPercent:  15,
	}
}

// FromEnv applies environment overrides on top of c and returns the result.
// Call godotenv.Load before this so a local .env is honored.
func FromEnv(c Config) Config {
	if v := os.Getenv("FLIPPER_MAX_PRICE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.MaxPrice = n
		}
	}
	if v := os.Getenv("FLIPPER_TOP_N"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.TopN = n
		}
	}
	if v := os.Getenv("FLIPPER_MIN_REFERENCE_PRICE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.MinReferencePrice = n
		}
	}
	if v := os.Getenv("FLIPPER_MIN_GAP_PERCENT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.MinGapPercent = f
		}
	}
	if v := os.Getenv("FLIPPER_RANKING_MODE"); v != "" {
		c.RankingMode = v
	}
	if v := os.Getenv("FLIPPER_SUBCATEGORY"); v != "" {
		c.Subcategory = v
	}
	if v := os.Getenv("FLIPPER_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Concurrency = n
		}
	}
	if v := os.Getenv("FLIPPER_FETCH_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.FetchTimeoutSeconds = n
		}
	}
	if v := os.Getenv("FLIPPER_SCAN_DEADLINE_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.ScanDeadlineSeconds = n
		}
	}
	if v := os.Getenv("FLIPPER_SCAN_INTERVAL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.ScanIntervalMinutes = n
		}
	}
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		c.AlertDiscordWebhook = v
		c.AlertDiscord = true
	}
	if v := os.Getenv("FLIPPER_ALERT_MIN_GAP"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.AlertMinGapPercent = f
		}
	}
	return c
}

// Store is the shared, mutation-safe home of the live Config. The HTTP API
// replaces it wholesale on POST /api/config; the scheduler and request
// handlers read a consistent copy via Snapshot on every use.
type Store struct {
	mu  sync.RWMutex
	cur Config
}

// NewStore creates a Store seeded with c.
func NewStore(c Config) *Store {
	return &Store{cur: c}
}

// Snapshot returns a copy of the current config.
func (s *Store) Snapshot() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Update replaces the current config.
func (s *Store) Update(c Config) {
	s.mu.Lock()
	s.cur = c
	s.mu.Unlock()
}
