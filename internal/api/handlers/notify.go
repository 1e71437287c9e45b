package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"lecturequiz/internal/pkg/logger"
)

// Discord Embed Structures (based on documentation)
type DiscordEmbedFooter struct {
	Text string `json:"text,omitempty"`
}

type DiscordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type DiscordEmbed struct {
	Title       string              `json:"title,omitempty"`
	Description string              `json:"description,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"` // ISO8601 timestamp
	Color       int                 `json:"color,omitempty"`     // Decimal color code
	Footer      *DiscordEmbedFooter `json:"footer,omitempty"`
	Fields      []DiscordEmbedField `json:"fields,omitempty"`
}

// WebhookPayload is the structure Discord expects for webhook requests with embeds
type WebhookPayload struct {
	Username string         `json:"username,omitempty"`
	Embeds   []DiscordEmbed `json:"embeds"`
}

// Notifier posts server-side failures to a Discord webhook. A Notifier with
// an empty URL does nothing.
type Notifier struct {
	url    string
	client *http.Client
	log    *logger.Logger
}

func NewNotifier(webhookURL string, log *logger.Logger) *Notifier {
	return &Notifier{
		url:    webhookURL,
		client: &http.Client{Timeout: 5 * time.Second},
		log:    log,
	}
}

// Notify sends embed in the background.
func (n *Notifier) Notify(embed DiscordEmbed) {
	if n == nil || n.url == "" {
		return
	}
	go n.send(context.Background(), embed)
}

func (n *Notifier) send(ctx context.Context, embed DiscordEmbed) {
	if embed.Timestamp == "" {
		embed.Timestamp = time.Now().Format(time.RFC3339)
	}
	payload, err := json.Marshal(WebhookPayload{
		Username: "LectureQuiz Notifier",
		Embeds:   []DiscordEmbed{embed},
	})
	if err != nil {
		n.log.Error("marshal discord payload", "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		n.log.Error("build discord request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.log.Error("send discord notification", "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		n.log.Error("discord notification rejected", "status", resp.StatusCode, "body", string(body))
		return
	}
	n.log.Debug("sent discord notification", "title", embed.Title)
}
