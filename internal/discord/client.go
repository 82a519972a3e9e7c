// Package discord posts check-in notifications as Discord channel messages.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ibrahimansoor/location-bot/internal/domain"
)

const (
	defaultAPIBaseURL = "https://discord.com/api/v10"
	httpCallTimeout   = 10 * time.Second

	embedColor = 0x5865F2
)

// Client is a minimal Discord bot API client covering message create and
// delete. It implements domain.NotificationSink.
type Client struct {
	botToken string
	baseURL  string
	client   *http.Client
}

var _ domain.NotificationSink = (*Client)(nil)

// NewClient creates a Discord sink authenticated with the given bot token.
func NewClient(botToken string) *Client {
	return &Client{
		botToken: botToken,
		baseURL:  defaultAPIBaseURL,
		client:   &http.Client{Timeout: httpCallTimeout},
	}
}

// Post creates the check-in message in the channel and returns its message id.
func (c *Client) Post(ctx context.Context, channelID string, n domain.Notification) (string, error) {
	payload, err := json.Marshal(messagePayload(n))
	if err != nil {
		return "", fmt.Errorf("failed to encode message payload: %w", err)
	}

	url := fmt.Sprintf("%s/channels/%s/messages", c.baseURL, channelID)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create message request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.botToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute message request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", &domain.RateLimitedError{Err: fmt.Errorf("discord rate limited message create")}
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("discord returned status %d", resp.StatusCode)
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("failed to decode message response: %w", err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("discord returned no message id")
	}
	return created.ID, nil
}

// Delete removes a previously posted check-in message.
func (c *Client) Delete(ctx context.Context, channelID, messageID string) error {
	url := fmt.Sprintf("%s/channels/%s/messages/%s", c.baseURL, channelID, messageID)
	req, err := http.NewRequestWithContext(ctx, "DELETE", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create delete request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.botToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute delete request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &domain.RateLimitedError{Err: fmt.Errorf("discord rate limited message delete")}
	}
	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("discord returned status %d", resp.StatusCode)
	}
	return nil
}

// messagePayload builds the Discord message body: a mention line plus an embed
// with the venue details and a maps link.
func messagePayload(n domain.Notification) map[string]any {
	mapsURL := fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%f,%f&query_place_id=%s",
		n.Coordinates.Lat, n.Coordinates.Lng, n.PlaceID)

	return map[string]any{
		"content": fmt.Sprintf("<@%s> checked in!", n.UserID),
		"embeds": []map[string]any{
			{
				"title":       fmt.Sprintf("📍 %s", n.VenueName),
				"description": n.VenueAddress,
				"url":         mapsURL,
				"color":       embedColor,
				"fields": []map[string]any{
					{
						"name":   "Distance",
						"value":  fmt.Sprintf("%.1f miles away", n.DistanceMiles),
						"inline": true,
					},
				},
			},
		},
	}
}
