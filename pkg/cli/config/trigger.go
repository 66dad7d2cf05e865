package config

import (
	"log/slog"

	"github.com/tracknest/tracknest/pkg/service/trigger"
	"github.com/urfave/cli/v3"
)

// Trigger holds CLI flags for the task execution platform
type Trigger struct {
	apiURL string
	apiKey string
}

// Flags returns CLI flags for trigger platform configuration
func (x *Trigger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "trigger-api-url",
			Usage:       "Task execution platform API URL",
			Category:    "Trigger",
			Sources:     cli.EnvVars("TRACKNEST_TRIGGER_API_URL"),
			Destination: &x.apiURL,
		},
		&cli.StringFlag{
			Name:        "trigger-api-key",
			Usage:       "Task execution platform API key",
			Category:    "Trigger",
			Sources:     cli.EnvVars("TRACKNEST_TRIGGER_API_KEY"),
			Destination: &x.apiKey,
		},
	}
}

func (x Trigger) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("api-url", x.apiURL),
		slog.Int("api-key.len", len(x.apiKey)),
	)
}

// IsConfigured reports whether the platform credentials are set
func (x *Trigger) IsConfigured() bool {
	return x.apiURL != "" && x.apiKey != ""
}

// Configure builds the platform client, or returns nil when the
// platform is not configured
func (x *Trigger) Configure() (trigger.Client, error) {
	if !x.IsConfigured() {
		return nil, nil
	}
	return trigger.New(x.apiURL, x.apiKey)
}
