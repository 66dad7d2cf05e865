package github

import (
	"context"
)

// Service mints GitHub App installation tokens for integration
// accounts
type Service interface {
	// GetInstallationToken returns a short-lived token scoped to the
	// given App installation
	GetInstallationToken(ctx context.Context, installationID int64) (string, error)
}
