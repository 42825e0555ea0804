package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ncurl/jobwatch/internal/model"
	"github.com/ncurl/jobwatch/internal/transport"
)

// Discord's blurple, used as the embed accent color.
const discordBlurple = 0x5865F2

// Ensure DiscordNotifier implements model.Notifier.
var _ model.Notifier = (*DiscordNotifier)(nil)

// DiscordNotifier posts job alerts to Discord webhooks as rich embeds.
// Webhook URLs are routed by source group, with "default" as the fallback
// channel for groups without a dedicated webhook.
type DiscordNotifier struct {
	webhooks map[string]string
	client   *transport.Client
	logger   *slog.Logger
}

// NewDiscordNotifier returns a notifier that posts each job to Discord.
// The webhooks map keys are source groups; the "default" entry catches
// groups without their own webhook.
func NewDiscordNotifier(webhooks map[string]string, client *transport.Client, logger *slog.Logger) *DiscordNotifier {
	return &DiscordNotifier{
		webhooks: webhooks,
		client:   client,
		logger:   logger,
	}
}

// Notify posts one embed for the job. A missing webhook for the job's
// source group is an error so the caller sees the delivery failure.
func (d *DiscordNotifier) Notify(ctx context.Context, job model.Job, matchedKeywords []string) error {
	webhookURL := d.webhookFor(job.SourceGroup)
	if webhookURL == "" {
		return fmt.Errorf("no webhook configured for source group %q", job.SourceGroup)
	}

	payload := discordPayload{Embeds: []discordEmbed{buildEmbed(job, matchedKeywords)}}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal discord payload: %w", err)
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	_, err = d.client.Do(ctx, transport.Request{
		Method: http.MethodPost,
		URL:    webhookURL,
		Header: header,
		Body:   body,
	})
	if err != nil {
		return fmt.Errorf("post to discord: %w", err)
	}

	d.logger.Info("discord message sent", "company", job.Company, "title", job.Title, "group", job.SourceGroup)
	return nil
}

// SendTestMessage posts a dummy job to every configured webhook so the
// integration can be verified end to end.
func (d *DiscordNotifier) SendTestMessage(ctx context.Context) error {
	posted := time.Now().UTC()
	job := model.Job{
		UID:         "test:webhook",
		SourceGroup: "default",
		SourceName:  "Webhook Test",
		Title:       "Integration Test",
		Company:     "jobwatch",
		Location:    "Everywhere",
		Remote:      true,
		URL:         "https://github.com/ncurl/jobwatch",
		Snippet:     "If you can read this, the webhook works.",
		PostedAt:    &posted,
	}

	var failed []string
	for group := range d.webhooks {
		job.SourceGroup = group
		if err := d.Notify(ctx, job, []string{"test"}); err != nil {
			d.logger.Error("test message failed", "group", group, "error", err)
			failed = append(failed, group)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("test message failed for groups: %s", strings.Join(failed, ", "))
	}
	return nil
}

func (d *DiscordNotifier) webhookFor(group string) string {
	if url, ok := d.webhooks[group]; ok && url != "" {
		return url
	}
	return d.webhooks["default"]
}

// Discord embed payload types.

type discordPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	URL         string         `json:"url"`
	Description string         `json:"description,omitempty"`
	Color       int            `json:"color"`
	Fields      []discordField `json:"fields,omitempty"`
	Timestamp   string         `json:"timestamp,omitempty"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

func buildEmbed(job model.Job, matchedKeywords []string) discordEmbed {
	embed := discordEmbed{
		Title: job.Company + " — " + job.Title,
		URL:   job.URL,
		Color: discordBlurple,
		Fields: []discordField{
			{Name: "Source", Value: job.SourceName, Inline: true},
		},
	}

	if job.Snippet != "" {
		embed.Description = job.Snippet
	}
	if job.Location != "" {
		embed.Fields = append(embed.Fields, discordField{Name: "Location", Value: job.Location, Inline: true})
	}
	if job.Remote {
		embed.Fields = append(embed.Fields, discordField{Name: "Remote", Value: "Yes", Inline: true})
	}
	if len(job.Tags) > 0 {
		embed.Fields = append(embed.Fields, discordField{Name: "Tags", Value: strings.Join(job.Tags, ", "), Inline: true})
	}
	if len(matchedKeywords) > 0 {
		embed.Fields = append(embed.Fields, discordField{Name: "Matched Keywords", Value: strings.Join(matchedKeywords, ", ")})
	}
	if job.PostedAt != nil {
		embed.Timestamp = job.PostedAt.UTC().Format(time.RFC3339)
	}

	return embed
}
