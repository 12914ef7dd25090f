package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/donaldgifford/competitor-price-matcher/internal/metrics"
	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

const (
	colorGreen  = 0x2ECC71 // fewer than 10 changes
	colorYellow = 0xF1C40F // 10-49 changes
	colorOrange = 0xE67E22 // 50+
)

// DiscordNotifier implements Notifier via Discord webhook.
type DiscordNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewDiscordNotifier creates a new DiscordNotifier.
func NewDiscordNotifier(webhookURL string, opts ...DiscordOption) *DiscordNotifier {
	d := &DiscordNotifier{
		webhookURL: webhookURL,
		client:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DiscordOption configures a DiscordNotifier.
type DiscordOption func(*DiscordNotifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) DiscordOption {
	return func(d *DiscordNotifier) {
		d.client = c
	}
}

// discordWebhookPayload is the Discord webhook JSON structure.
type discordWebhookPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string              `json:"title"`
	URL         string              `json:"url,omitempty"`
	Color       int                 `json:"color"`
	Description string              `json:"description,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// NotifyChanges sends the summary as a single Discord embed.
func (d *DiscordNotifier) NotifyChanges(ctx context.Context, summary domain.ChangeSummary) error {
	return d.post(ctx, discordWebhookPayload{Embeds: []discordEmbed{buildEmbed(&summary)}})
}

func buildEmbed(s *domain.ChangeSummary) discordEmbed {
	embed := discordEmbed{
		Title: Headline(s),
		URL:   s.Link,
		Color: changeColor(s.Changes),
		Fields: []discordEmbedField{
			{Name: "Matched", Value: strconv.Itoa(s.Matched), Inline: true},
			{Name: "Targets", Value: strconv.Itoa(s.Targets), Inline: true},
		},
	}
	if s.RunID != "" {
		embed.Fields = append(embed.Fields, discordEmbedField{Name: "Run", Value: s.RunID, Inline: true})
	}
	if s.Link != "" {
		embed.Description = "See " + s.Link + " for the latest prices."
	}
	return embed
}

func changeColor(changes int) int {
	switch {
	case changes >= 50:
		return colorOrange
	case changes >= 10:
		return colorYellow
	default:
		return colorGreen
	}
}

func (d *DiscordNotifier) post(ctx context.Context, payload discordWebhookPayload) error {
	start := time.Now()
	defer func() {
		metrics.NotificationDuration.Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		d.webhookURL,
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("creating discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("discord rate limited (429)")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("discord returned %d (body unreadable)", resp.StatusCode)
		}
		return fmt.Errorf("discord returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
