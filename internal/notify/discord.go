package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"

	domain "github.com/tcg-tools/restock-monitor/pkg/types"
)

const (
	colorGreen  = 0x2ECC71 // back in stock
	colorBlue   = 0x3498DB // new product
	colorYellow = 0xF1C40F // price change
	colorGray   = 0x95A5A6 // out of stock
)

// DiscordNotifier implements Notifier via Discord webhook. Sends are paced
// with a token bucket so a burst of restocks does not trip Discord's webhook
// rate limit.
type DiscordNotifier struct {
	webhookURL string
	client     *http.Client
	limiter    *rate.Limiter
}

// NewDiscordNotifier creates a new DiscordNotifier.
func NewDiscordNotifier(webhookURL string, opts ...DiscordOption) *DiscordNotifier {
	d := &DiscordNotifier{
		webhookURL: webhookURL,
		client:     http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(1), 5),
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

// WithSendRate sets the webhook pacing in sends per second with the given
// burst allowance.
func WithSendRate(perSecond float64, burst int) DiscordOption {
	return func(d *DiscordNotifier) {
		d.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
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
	Thumbnail   *discordThumbnail   `json:"thumbnail,omitempty"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordThumbnail struct {
	URL string `json:"url"`
}

// SendAlert sends a single stock alert as a Discord embed.
func (d *DiscordNotifier) SendAlert(ctx context.Context, alert *AlertPayload) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return err
	}

	payload := discordWebhookPayload{
		Embeds: []discordEmbed{buildEmbed(alert)},
	}
	return d.post(ctx, payload)
}

func buildEmbed(alert *AlertPayload) discordEmbed {
	embed := discordEmbed{
		Title: fmt.Sprintf("%s %s", alertHeadline(alert.Type), alert.Title),
		URL:   alert.ProductURL,
		Color: alertColor(alert.Type),
		Fields: []discordEmbedField{
			{Name: "Retailer", Value: alert.Retailer, Inline: true},
			{Name: "Price", Value: alert.Price, Inline: true},
		},
	}

	if alert.Type == domain.AlertPriceChange && alert.OldPrice != "" {
		embed.Fields = append(embed.Fields, discordEmbedField{
			Name: "Was", Value: alert.OldPrice, Inline: true,
		})
	}
	if alert.SetName != "" {
		embed.Fields = append(embed.Fields, discordEmbedField{
			Name: "Set", Value: alert.SetName, Inline: true,
		})
	}
	if alert.ImageURL != "" {
		embed.Thumbnail = &discordThumbnail{URL: alert.ImageURL}
	}

	return embed
}

func alertHeadline(t domain.AlertType) string {
	switch t {
	case domain.AlertInStock:
		return "Back in Stock:"
	case domain.AlertNew:
		return "New Listing:"
	case domain.AlertPriceChange:
		return "Price Change:"
	case domain.AlertOutOfStock:
		return "Out of Stock:"
	default:
		return "Stock Alert:"
	}
}

func alertColor(t domain.AlertType) int {
	switch t {
	case domain.AlertInStock:
		return colorGreen
	case domain.AlertNew:
		return colorBlue
	case domain.AlertPriceChange:
		return colorYellow
	default:
		return colorGray
	}
}

func (d *DiscordNotifier) post(ctx context.Context, payload discordWebhookPayload) error {
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
