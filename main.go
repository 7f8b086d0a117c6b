package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"limited-flipper/internal/api"
	"limited-flipper/internal/config"
	"limited-flipper/internal/db"
	"limited-flipper/internal/engine"
	"limited-flipper/internal/logger"
	"limited-flipper/internal/notify"
	"limited-flipper/internal/roblox"
	"limited-flipper/internal/rolimons"
)

var version = "dev"

func main() {
	port := flag.Int("port", 13380, "HTTP server port")
	flag.Parse()

	logger.Banner(version)

	// Local .env is optional; env vars win either way.
	godotenv.Load()
	cfg := config.NewStore(config.FromEnv(config.Default()))

	database, err := db.Open()
	if err != nil {
		logger.Error("DB", fmt.Sprintf("Failed to open database: %v", err))
		os.Exit(1)
	}
	defer database.Close()

	feed := rolimons.NewClient()
	cache := rolimons.NewCache(feed.FetchItemDetails)
	market := roblox.NewClient(database)
	scanner := engine.NewScanner(cache, market)

	// Webhook URL and scan interval are fixed at startup; every other
	// config field is re-read from the store on each scheduler tick.
	boot := cfg.Snapshot()
	notifier := notify.NewDiscordNotifier(boot.AlertDiscordWebhook)
	if boot.AlertDiscord && notifier.IsEnabled() && boot.ScanIntervalMinutes > 0 {
		go runScheduler(cfg, boot.ScanIntervalMinutes, scanner, notifier)
	}

	srv := api.NewServer(cfg, scanner, market, cache)

	addr := fmt.Sprintf("127.0.0.1:%d", *port)
	logger.Server(addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		logger.Error("Server", fmt.Sprintf("Failed: %v", err))
		os.Exit(1)
	}
}

// runScheduler runs a scan on a fixed interval and pushes alerts for items
// whose gap clears the configured threshold. Scan parameters and the alert
// threshold come from a fresh config snapshot on every tick, so live config
// updates over the API apply from the next scan onward.
func runScheduler(store *config.Store, intervalMinutes int, scanner *engine.Scanner, notifier *notify.DiscordNotifier) {
	interval := time.Duration(intervalMinutes) * time.Minute
	logger.Info("Sched", fmt.Sprintf("Scanning every %s", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		cfg := store.Snapshot()
		params := engine.ScanParams{
			MaxPrice:          cfg.MaxPrice,
			TopN:              cfg.TopN,
			MinReferencePrice: cfg.MinReferencePrice,
			MinGapPercent:     cfg.MinGapPercent,
			RankingMode:       cfg.RankingMode,
			Subcategory:       cfg.Subcategory,
			Concurrency:       cfg.Concurrency,
			FetchTimeout:      time.Duration(cfg.FetchTimeoutSeconds) * time.Second,
			Deadline:          time.Duration(cfg.ScanDeadlineSeconds) * time.Second,
			ResolveNames:      true,
		}

		result, err := scanner.Scan(context.Background(), params, nil)
		if err != nil {
			logger.Warn("Sched", fmt.Sprintf("Scan failed: %v", err))
			continue
		}

		var alertable []engine.ScoredItem
		for _, it := range result.Items {
			if it.GapPercent >= cfg.AlertMinGapPercent {
				alertable = append(alertable, it)
			}
		}
		if len(alertable) == 0 {
			continue
		}
		if err := notifier.NotifyOpportunities(alertable); err != nil {
			logger.Warn("Sched", fmt.Sprintf("Alert delivery failed: %v", err))
		} else {
			logger.Success("Sched", fmt.Sprintf("Alerted %d opportunities", len(alertable)))
		}
	}
}
