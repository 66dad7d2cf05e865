package usecase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/tracknest/tracknest/pkg/domain/interfaces"
	"github.com/tracknest/tracknest/pkg/domain/model"
	"github.com/tracknest/tracknest/pkg/domain/types"
	"github.com/tracknest/tracknest/pkg/service/github"
)

// IntegrationUseCase handles the tagged event protocol spoken between
// the platform and integration definitions
type IntegrationUseCase struct {
	repo   interfaces.Repository
	github github.Service
}

func NewIntegrationUseCase(repo interfaces.Repository, githubService github.Service) *IntegrationUseCase {
	return &IntegrationUseCase{
		repo:   repo,
		github: githubService,
	}
}

// integrationSpecs describes the connect surface of each supported
// integration. Served verbatim on SPEC events.
var integrationSpecs = map[string]map[string]any{
	model.IntegrationSlack: {
		"name": "Slack",
		"auth": map[string]any{
			"OAuth2": map[string]any{
				"token_url": "https://slack.com/api/oauth.v2.access",
				"scopes":    []string{"channels:history", "chat:write", "groups:history"},
			},
		},
	},
	model.IntegrationGithub: {
		"name": "GitHub",
		"auth": map[string]any{
			"App": map[string]any{
				"installation_url": "https://github.com/apps",
			},
		},
	},
}

// HandleEvent dispatches one tagged integration event. Unknown event
// types are reported back as a no-op message, never an error, so new
// platform events do not break deployed integrations.
func (uc *IntegrationUseCase) HandleEvent(ctx context.Context, integrationName string, event *model.IntegrationEvent) (*model.IntegrationResult, error) {
	switch event.Event {
	case types.IntegrationEventSpec:
		return uc.handleSpec(integrationName)
	case types.IntegrationEventCreate:
		return uc.handleCreate(ctx, integrationName, event)
	case types.IntegrationEventGetIdentifier:
		return uc.handleGetIdentifier(integrationName, event)
	case types.IntegrationEventGetToken:
		return uc.handleGetToken(ctx, event)
	default:
		return &model.IntegrationResult{
			Message: fmt.Sprintf("the event payload type is %s", event.Event),
		}, nil
	}
}

func (uc *IntegrationUseCase) handleSpec(integrationName string) (*model.IntegrationResult, error) {
	spec, ok := integrationSpecs[integrationName]
	if !ok {
		return nil, goerr.New("unknown integration", goerr.V("integration", integrationName))
	}
	return &model.IntegrationResult{Spec: spec}, nil
}

func (uc *IntegrationUseCase) handleCreate(ctx context.Context, integrationName string, event *model.IntegrationEvent) (*model.IntegrationResult, error) {
	if event.WorkspaceID == "" {
		return nil, goerr.New("workspace ID is required for integration create",
			goerr.V("integration", integrationName))
	}

	token := ""
	if raw, ok := event.Data.Settings["token"].(string); ok {
		token = raw
	}

	account, err := uc.repo.Integration().Upsert(ctx, &model.IntegrationAccount{
		WorkspaceID:     event.WorkspaceID,
		IntegrationName: integrationName,
		AccountID:       event.Data.InstallationID,
		Settings:        event.Data.Settings,
		Token:           token,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to upsert integration account",
			goerr.V(WorkspaceIDKey, event.WorkspaceID), goerr.V("integration", integrationName))
	}

	return &model.IntegrationResult{
		Message: fmt.Sprintf("connected %s to workspace %s", integrationName, event.WorkspaceID),
		Account: account,
	}, nil
}

// handleGetIdentifier extracts the installation identity from a raw
// webhook body so the platform can route it to the right account
func (uc *IntegrationUseCase) handleGetIdentifier(integrationName string, event *model.IntegrationEvent) (*model.IntegrationResult, error) {
	body := event.Data.EventBody

	switch integrationName {
	case model.IntegrationGithub:
		installation, ok := body["installation"].(map[string]any)
		if !ok {
			return nil, goerr.New("webhook body has no installation", goerr.V("integration", integrationName))
		}
		switch id := installation["id"].(type) {
		case float64:
			return &model.IntegrationResult{Message: strconv.FormatInt(int64(id), 10)}, nil
		case string:
			return &model.IntegrationResult{Message: id}, nil
		default:
			return nil, goerr.New("installation ID has unexpected type", goerr.V("integration", integrationName))
		}

	case model.IntegrationSlack:
		teamID, ok := body["team_id"].(string)
		if !ok {
			return nil, goerr.New("webhook body has no team_id", goerr.V("integration", integrationName))
		}
		return &model.IntegrationResult{Message: teamID}, nil

	default:
		return nil, goerr.New("unknown integration", goerr.V("integration", integrationName))
	}
}

func (uc *IntegrationUseCase) handleGetToken(ctx context.Context, event *model.IntegrationEvent) (*model.IntegrationResult, error) {
	if uc.github == nil {
		return nil, goerr.New("GitHub App service is not configured")
	}

	account, err := uc.repo.Integration().Get(ctx, event.IntegrationAccountID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load integration account",
			goerr.V("account_id", event.IntegrationAccountID))
	}

	installationID, err := strconv.ParseInt(account.AccountID, 10, 64)
	if err != nil {
		return nil, goerr.Wrap(err, "account ID is not an installation ID",
			goerr.V("account_id", account.AccountID))
	}

	token, err := uc.github.GetInstallationToken(ctx, installationID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to mint installation token",
			goerr.V("installation_id", installationID))
	}

	return &model.IntegrationResult{Token: token}, nil
}
