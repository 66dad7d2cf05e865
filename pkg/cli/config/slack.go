package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"
)

// Slack holds CLI flags for Slack integration configuration
type Slack struct {
	botToken      string
	signingSecret string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token (fallback when a workspace has no connected account)",
			Category:    "Slack",
			Sources:     cli.EnvVars("TRACKNEST_SLACK_BOT_TOKEN"),
			Destination: &x.botToken,
		},
		&cli.StringFlag{
			Name:        "slack-signing-secret",
			Usage:       "Slack Signing Secret (for webhook verification)",
			Category:    "Slack",
			Sources:     cli.EnvVars("TRACKNEST_SLACK_SIGNING_SECRET"),
			Destination: &x.signingSecret,
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.Int("signing-secret.len", len(x.signingSecret)),
	)
}

// BotToken returns the Slack bot token
func (x *Slack) BotToken() string {
	return x.botToken
}

// SigningSecret returns the Slack signing secret
func (x *Slack) SigningSecret() string {
	return x.signingSecret
}

// IsWebhookConfigured checks if Slack webhook verification is configured
func (x *Slack) IsWebhookConfigured() bool {
	return x.signingSecret != ""
}
