// Package api exposes the scan engine over HTTP for the UI and for
// operators poking at it with curl.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"limited-flipper/internal/config"
	"limited-flipper/internal/engine"
	"limited-flipper/internal/logger"
	"limited-flipper/internal/roblox"
	"limited-flipper/internal/rolimons"
)

// Server is the HTTP API server wiring the reference cache, platform client,
// and scan engine together.
type Server struct {
	cfg     *config.Store
	scanner *engine.Scanner
	market  *roblox.Client
	cache   *rolimons.Cache

	startedAt time.Time
}

// NewServer creates a Server.
func NewServer(cfg *config.Store, scanner *engine.Scanner, market *roblox.Client, cache *rolimons.Cache) *Server {
	return &Server{
		cfg:       cfg,
		scanner:   scanner,
		market:    market,
		cache:     cache,
		startedAt: time.Now(),
	}
}

// Handler returns the HTTP handler with all API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/config", s.handleGetConfig)
	mux.HandleFunc("POST /api/config", s.handleSetConfig)
	mux.HandleFunc("POST /api/scan", s.handleScan)
	mux.HandleFunc("GET /api/items/{id}/history", s.handleItemHistory)
	mux.HandleFunc("GET /api/profit", s.handleProfit)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"uptime_seconds": int(time.Since(s.startedAt).Seconds()),
	}
	if age, ok := s.cache.Age(); ok {
		resp["feed_age_seconds"] = int(age.Seconds())
	} else {
		resp["feed_age_seconds"] = nil
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.Snapshot())
}

// handleSetConfig replaces the live config wholesale. Most fields take
// effect on the next scan; the webhook URL and scan interval are read once
// at startup and need a restart to change.
func (s *Server) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	var incoming config.Config
	if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
		writeError(w, http.StatusBadRequest, "invalid config payload")
		return
	}
	s.cfg.Update(incoming)
	writeJSON(w, http.StatusOK, s.cfg.Snapshot())
}

// scanParams fills omitted request fields from the live config. A zero
// MinGapPercent falls back to the configured threshold; send a negative
// value to admit every item.
func (s *Server) scanParams(body engine.ScanParams) engine.ScanParams {
	cfg := s.cfg.Snapshot()

	if body.MaxPrice <= 0 {
		body.MaxPrice = cfg.MaxPrice
	}
	if body.TopN <= 0 {
		body.TopN = cfg.TopN
	}
	if body.MinReferencePrice <= 0 {
		body.MinReferencePrice = cfg.MinReferencePrice
	}
	if body.MinGapPercent == 0 {
		body.MinGapPercent = cfg.MinGapPercent
	}
	if body.RankingMode == "" {
		body.RankingMode = cfg.RankingMode
	}
	if body.Subcategory == "" {
		body.Subcategory = cfg.Subcategory
	}
	if body.Concurrency <= 0 {
		body.Concurrency = cfg.Concurrency
	}
	body.FetchTimeout = time.Duration(cfg.FetchTimeoutSeconds) * time.Second
	body.Deadline = time.Duration(cfg.ScanDeadlineSeconds) * time.Second
	return body
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var body engine.ScanParams
	if r.Body != nil {
		// An empty body means "scan with configured defaults".
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid scan request")
			return
		}
	}
	body.ResolveNames = true

	started := time.Now()
	result, err := s.scanner.Scan(r.Context(), s.scanParams(body), func(step string) {
		logger.Info("Scan", step)
	})
	if err != nil {
		if errors.Is(err, rolimons.ErrSourceUnavailable) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Success("Scan", fmt.Sprintf("%d/%d items in %s",
		len(result.Items), result.CandidateCount, time.Since(started).Round(time.Millisecond)))
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleItemHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	history := s.market.FetchPriceHistory(r.Context(), id)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"asset_id":  id,
		"available": history.Available(),
		"history":   history,
	})
}

// handleProfit is the flat after-tax profit calculator: what a seller keeps
// on a sale after the 30% marketplace cut, against a given buy price.
func (s *Server) handleProfit(w http.ResponseWriter, r *http.Request) {
	buy, err1 := strconv.ParseFloat(r.URL.Query().Get("buy"), 64)
	sell, err2 := strconv.ParseFloat(r.URL.Query().Get("sell"), 64)
	if err1 != nil || err2 != nil || buy < 0 || sell < 0 {
		writeError(w, http.StatusBadRequest, "buy and sell must be non-negative numbers")
		return
	}

	net := engine.NetAfterTax(sell)
	profit := net - buy
	roi := 0.0
	if buy > 0 {
		roi = profit / buy * 100
	}
	writeJSON(w, http.StatusOK, map[string]float64{
		"buy_price":     buy,
		"sell_price":    sell,
		"net_after_tax": net,
		"profit":        profit,
		"roi_percent":   roi,
	})
}
