package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/monocle-dev/carbontrack/internal/logging"
)

type DiscordWebhookField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type DiscordEmbed struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Color       int                   `json:"color"`
	Fields      []DiscordWebhookField `json:"fields"`
	Footer      *DiscordFooter        `json:"footer,omitempty"`
	Timestamp   string                `json:"timestamp"`
}

type DiscordFooter struct {
	Text string `json:"text"`
}

type DiscordWebhookRequest struct {
	Username string         `json:"username"`
	Embeds   []DiscordEmbed `json:"embeds"`
}

type SlackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type SlackAttachment struct {
	Color     string       `json:"color"`
	Title     string       `json:"title"`
	Text      string       `json:"text"`
	Fields    []SlackField `json:"fields"`
	Footer    string       `json:"footer"`
	Timestamp int64        `json:"ts"`
}

type SlackWebhookRequest struct {
	Username    string            `json:"username"`
	IconEmoji   string            `json:"icon_emoji,omitempty"`
	Text        string            `json:"text"`
	Attachments []SlackAttachment `json:"attachments"`
}

const (
	ColorOrange = 16753920 // #FFA500

	Username = "CarbonTrack Moderation"
)

// Moderation describes one admin removal from the forum.
type Moderation struct {
	Kind    string // "post" or "comment"
	ID      uint
	PostID  uint
	Title   string
	Content string
	AdminID uint
	At      time.Time
}

// Notifier announces moderation actions. Implementations must not block the
// request on delivery failures.
type Notifier interface {
	NotifyModeration(ctx context.Context, m Moderation)
}

// WebhookNotifier posts moderation notices to Discord and/or Slack. Empty
// URLs are skipped.
type WebhookNotifier struct {
	DiscordURL string
	SlackURL   string
	client     *http.Client
}

func NewWebhookNotifier(discordURL, slackURL string, timeout time.Duration) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookNotifier{
		DiscordURL: discordURL,
		SlackURL:   slackURL,
		client:     &http.Client{Timeout: timeout},
	}
}

func (n *WebhookNotifier) NotifyModeration(ctx context.Context, m Moderation) {
	if n.DiscordURL != "" {
		if err := n.send(ctx, n.DiscordURL, discordModeration(m)); err != nil {
			logging.Log.WithError(err).WithField("kind", m.Kind).Warn("discord moderation notice failed")
		}
	}

	if n.SlackURL != "" {
		if err := n.send(ctx, n.SlackURL, slackModeration(m)); err != nil {
			logging.Log.WithError(err).WithField("kind", m.Kind).Warn("slack moderation notice failed")
		}
	}
}

func discordModeration(m Moderation) DiscordWebhookRequest {
	fields := []DiscordWebhookField{
		{Name: "Type", Value: m.Kind, Inline: true},
		{Name: "ID", Value: fmt.Sprintf("%d", m.ID), Inline: true},
		{Name: "Admin", Value: fmt.Sprintf("%d", m.AdminID), Inline: true},
	}

	if m.Title != "" {
		fields = append(fields, DiscordWebhookField{Name: "Title", Value: m.Title})
	}

	if m.Content != "" {
		fields = append(fields, DiscordWebhookField{Name: "Content", Value: truncate(m.Content, 1000)})
	}

	return DiscordWebhookRequest{
		Username: Username,
		Embeds: []DiscordEmbed{
			{
				Title:       fmt.Sprintf("**%s removed**", m.Kind),
				Description: fmt.Sprintf("An admin removed %s %d from the community forum.", m.Kind, m.ID),
				Color:       ColorOrange,
				Fields:      fields,
				Footer:      &DiscordFooter{Text: fmt.Sprintf("Post %d | CarbonTrack Community", m.PostID)},
				Timestamp:   m.At.Format(time.RFC3339),
			},
		},
	}
}

func slackModeration(m Moderation) SlackWebhookRequest {
	return SlackWebhookRequest{
		Username:  Username,
		IconEmoji: ":wastebasket:",
		Text:      fmt.Sprintf(":wastebasket: *%s removed*", m.Kind),
		Attachments: []SlackAttachment{
			{
				Color: "warning",
				Title: m.Title,
				Text:  truncate(m.Content, 1000),
				Fields: []SlackField{
					{Title: "Type", Value: m.Kind, Short: true},
					{Title: "ID", Value: fmt.Sprintf("%d", m.ID), Short: true},
					{Title: "Post", Value: fmt.Sprintf("%d", m.PostID), Short: true},
					{Title: "Admin", Value: fmt.Sprintf("%d", m.AdminID), Short: true},
				},
				Footer:    "CarbonTrack Community",
				Timestamp: m.At.Unix(),
			},
		},
	}
}

func (n *WebhookNotifier) send(ctx context.Context, webhookURL string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}

// NopNotifier drops every notice.
type NopNotifier struct{}

func (NopNotifier) NotifyModeration(context.Context, Moderation) {}
