package config

import (
	"log/slog"

	"github.com/tracknest/tracknest/pkg/service/github"
	"github.com/urfave/cli/v3"
)

// GitHub holds CLI flags for GitHub App configuration
type GitHub struct {
	appID      int64
	privateKey string
}

func (x *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID",
			Category:    "GitHub",
			Sources:     cli.EnvVars("TRACKNEST_GITHUB_APP_ID"),
			Destination: &x.appID,
		},
		&cli.StringFlag{
			Name:        "github-app-private-key",
			Usage:       "GitHub App private key (PEM string or file path)",
			Category:    "GitHub",
			Sources:     cli.EnvVars("TRACKNEST_GITHUB_APP_PRIVATE_KEY"),
			Destination: &x.privateKey,
		},
	}
}

func (x GitHub) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("app-id", x.appID),
		slog.Int("private-key.len", len(x.privateKey)),
	)
}

// IsConfigured reports whether the App credentials are set
func (x *GitHub) IsConfigured() bool {
	return x.appID != 0 && x.privateKey != ""
}

// Configure builds the GitHub App service, or returns nil when the App
// is not configured
func (x *GitHub) Configure() (github.Service, error) {
	if !x.IsConfigured() {
		return nil, nil
	}
	return github.New(x.appID, x.privateKey)
}
