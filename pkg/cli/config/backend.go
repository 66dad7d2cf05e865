package config

import (
	"log/slog"

	"github.com/tracknest/tracknest/pkg/service/backend"
	"github.com/urfave/cli/v3"
)

// Backend holds CLI flags for the backend REST API. Task-runner
// commands reach the data layer through this surface instead of a
// direct repository connection.
type Backend struct {
	baseURL string
	apiKey  string
}

func (x *Backend) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "backend-url",
			Usage:       "Backend API base URL",
			Category:    "Backend",
			Sources:     cli.EnvVars("TRACKNEST_BACKEND_URL"),
			Destination: &x.baseURL,
		},
		&cli.StringFlag{
			Name:        "backend-api-key",
			Usage:       "Personal access token of the workflow user",
			Category:    "Backend",
			Sources:     cli.EnvVars("TRACKNEST_BACKEND_API_KEY"),
			Destination: &x.apiKey,
		},
	}
}

func (x Backend) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("url", x.baseURL),
		slog.Int("api-key.len", len(x.apiKey)),
	)
}

// Configure builds the backend API client
func (x *Backend) Configure() (*backend.Client, error) {
	return backend.New(x.baseURL, x.apiKey)
}
