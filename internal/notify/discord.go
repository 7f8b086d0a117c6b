// Package notify pushes scan alerts to external channels.
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"limited-flipper/internal/engine"
)

// DefaultAlertCooldown is the minimum time between repeat alerts for the
// same item.
const DefaultAlertCooldown = time.Hour

// DiscordNotifier sends opportunity alerts to a Discord webhook.
type DiscordNotifier struct {
	webhookURL string
	http       *http.Client
	enabled    bool

	mu       sync.Mutex
	lastSent map[int64]time.Time
	cooldown time.Duration
	now      func() time.Time
}

// NewDiscordNotifier creates a notifier. An empty webhook URL disables it;
// every Notify call then becomes a no-op.
func NewDiscordNotifier(webhookURL string) *DiscordNotifier {
	return &DiscordNotifier{
		webhookURL: webhookURL,
		http:       &http.Client{Timeout: 10 * time.Second},
		enabled:    webhookURL != "",
		lastSent:   make(map[int64]time.Time),
		cooldown:   DefaultAlertCooldown,
		now:        time.Now,
	}
}

// IsEnabled returns whether the notifier is configured.
func (d *DiscordNotifier) IsEnabled() bool {
	return d.enabled
}

type discordMessage struct {
	Content string         `json:"content,omitempty"`
	Embeds  []discordEmbed `json:"embeds,omitempty"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Color       int            `json:"color"`
	Fields      []discordField `json:"fields,omitempty"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// NotifyOpportunities posts one message covering the given items, skipping
// items alerted within the cooldown window. Items that pass the cooldown
// are marked sent even if the webhook later fails; alerting is best-effort.
func (d *DiscordNotifier) NotifyOpportunities(items []engine.ScoredItem) error {
	if !d.enabled || len(items) == 0 {
		return nil
	}

	fresh := d.filterCooldown(items)
	if len(fresh) == 0 {
		return nil
	}

	msg := discordMessage{
		Content: fmt.Sprintf("Found %d flip opportunities", len(fresh)),
	}
	for _, it := range fresh {
		msg.Embeds = append(msg.Embeds, discordEmbed{
			Title: fmt.Sprintf("%s (#%d)", it.Name, it.ID),
			Color: 0x2ecc71,
			Fields: []discordField{
				{Name: "Price", Value: fmt.Sprintf("%d R$", it.TradablePrice), Inline: true},
				{Name: "Value", Value: fmt.Sprintf("%d R$", it.Value), Inline: true},
				{Name: "Gap", Value: fmt.Sprintf("%.1f%%", it.GapPercent), Inline: true},
				{Name: "Risk", Value: it.RiskTier, Inline: true},
				{Name: "After-tax profit", Value: fmt.Sprintf("%.0f R$", it.ProjectedProfit), Inline: true},
			},
		})
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	resp, err := d.http.Post(d.webhookURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("discord webhook status %d", resp.StatusCode)
	}
	return nil
}

// filterCooldown returns items not alerted within the cooldown window and
// records them as sent. Discord caps embeds at 10 per message.
func (d *DiscordNotifier) filterCooldown(items []engine.ScoredItem) []engine.ScoredItem {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	var fresh []engine.ScoredItem
	for _, it := range items {
		if last, ok := d.lastSent[it.ID]; ok && now.Sub(last) < d.cooldown {
			continue
		}
		d.lastSent[it.ID] = now
		fresh = append(fresh, it)
		if len(fresh) == 10 {
			break
		}
	}
	return fresh
}
