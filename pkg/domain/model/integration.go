package model

import (
	"time"

	"github.com/tracknest/tracknest/pkg/domain/types"
)

// Integration names used in action configs and account records
const (
	IntegrationSlack  = "slack"
	IntegrationGithub = "github"
)

// IntegrationAccount is a connected external account (Slack workspace,
// GitHub installation, ...) scoped to a workspace
type IntegrationAccount struct {
	ID              string
	WorkspaceID     string
	IntegrationName string
	AccountID       string
	Settings        map[string]any
	Token           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IntegrationEvent is the tagged payload dispatched to an integration
// handler
type IntegrationEvent struct {
	Event                types.IntegrationEventType `json:"event"`
	UserID               string                     `json:"userId,omitempty"`
	WorkspaceID          string                     `json:"workspaceId,omitempty"`
	IntegrationAccountID string                     `json:"integrationAccountId,omitempty"`
	Data                 IntegrationEventData       `json:"data,omitempty"`
}

// IntegrationEventData carries event-specific fields
type IntegrationEventData struct {
	InstallationID string         `json:"installationId,omitempty"`
	EventBody      map[string]any `json:"eventBody,omitempty"`
	Settings       map[string]any `json:"settings,omitempty"`
}

// IntegrationResult is what an integration handler returns. Unknown
// event types produce a descriptive message rather than an error.
type IntegrationResult struct {
	Message string         `json:"message,omitempty"`
	Spec    map[string]any `json:"spec,omitempty"`
	Account *IntegrationAccount
	Token   string `json:"token,omitempty"`
}
