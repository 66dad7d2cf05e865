package github

import (
	"context"
	"net/http"
	"os"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/m-mizutani/goerr/v2"
)

type client struct {
	apps *ghinstallation.AppsTransport
}

// New creates a GitHub Service using GitHub App authentication.
// privateKey can be a PEM string or a file path to a PEM file.
func New(appID int64, privateKey string) (Service, error) {
	var key []byte

	// Try reading as file path first
	// #nosec G304 -- path comes from CLI flag, not user input
	if data, err := os.ReadFile(privateKey); err == nil {
		key = data
	} else {
		// Treat as PEM string
		key = []byte(privateKey)
	}

	apps, err := ghinstallation.NewAppsTransport(http.DefaultTransport, appID, key)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub App transport", goerr.V("app_id", appID))
	}

	return &client{apps: apps}, nil
}

// GetInstallationToken mints a token for the given App installation
func (c *client) GetInstallationToken(ctx context.Context, installationID int64) (string, error) {
	tr := ghinstallation.NewFromAppsTransport(c.apps, installationID)

	token, err := tr.Token(ctx)
	if err != nil {
		return "", goerr.Wrap(err, "failed to get installation token",
			goerr.V("installation_id", installationID))
	}

	return token, nil
}
