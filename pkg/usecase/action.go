package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/tracknest/tracknest/pkg/domain/interfaces"
	"github.com/tracknest/tracknest/pkg/domain/model"
	"github.com/tracknest/tracknest/pkg/domain/types"
	"github.com/tracknest/tracknest/pkg/service/trigger"
	"github.com/tracknest/tracknest/pkg/utils/logging"
)

// ActionUseCase manages action deployments, schedules and run access
type ActionUseCase struct {
	repo    interfaces.Repository
	trigger trigger.Client
}

func NewActionUseCase(repo interfaces.Repository, triggerClient trigger.Client) *ActionUseCase {
	return &ActionUseCase{
		repo:    repo,
		trigger: triggerClient,
	}
}

// CreateActionInput is one action deployment request
type CreateActionInput struct {
	Config      model.ActionConfig
	WorkspaceID string
	UserID      string
	Version     string
	IsDev       bool
	IsPersonal  bool
}

// CreateOrUpdateAction deploys an action: quota check for new slugs,
// workflow user provisioning, find-or-create by (slug, workspace) and
// wholesale regeneration of the trigger entity set. The access token
// for the workflow user is provisioned after the data writes; it is an
// idempotent side effect, not part of the deployment itself.
func (uc *ActionUseCase) CreateOrUpdateAction(ctx context.Context, input CreateActionInput) (*model.Action, error) {
	if input.Config.Slug == "" {
		return nil, goerr.New("action slug is required", goerr.V(WorkspaceIDKey, input.WorkspaceID))
	}

	workspace, err := uc.repo.Workspace().Get(ctx, input.WorkspaceID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load workspace", goerr.V(WorkspaceIDKey, input.WorkspaceID))
	}

	existing, err := uc.repo.Action().GetBySlug(ctx, input.WorkspaceID, input.Config.Slug)
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		return nil, goerr.Wrap(err, "failed to find action", goerr.V(ActionSlugKey, input.Config.Slug))
	}

	if existing == nil {
		if err := uc.checkQuota(ctx, workspace); err != nil {
			return nil, err
		}
	}

	var workflowUser *model.User
	if !input.IsDev && !input.IsPersonal {
		workflowUser, err = uc.provisionWorkflowUser(ctx, workspace, input.Config)
		if err != nil {
			return nil, err
		}
	}

	creatorID := input.UserID
	if workflowUser != nil {
		creatorID = workflowUser.ID
	}

	triggerVersion := uc.latestTriggerVersion(ctx, input.Config.Name+"-handler")

	var action *model.Action
	if existing == nil {
		action, err = uc.repo.Action().Create(ctx, &model.Action{
			WorkspaceID:    input.WorkspaceID,
			CreatedByID:    creatorID,
			Name:           input.Config.Name,
			Slug:           input.Config.Slug,
			Description:    input.Config.Description,
			Integrations:   input.Config.Integrations,
			Config:         input.Config,
			Status:         input.Config.InitialStatus(),
			Version:        input.Version,
			TriggerVersion: triggerVersion,
			IsDev:          input.IsDev,
			IsPersonal:     input.IsPersonal,
		})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create action", goerr.V(ActionSlugKey, input.Config.Slug))
		}
	} else {
		// A redeploy keeps the stored name but refreshes everything the
		// config drives, and revives a soft-deleted action
		updated := *existing
		updated.Description = input.Config.Description
		updated.Integrations = input.Config.Integrations
		updated.Config = input.Config
		updated.Status = types.ActionStatusActive
		updated.Version = input.Version
		updated.TriggerVersion = triggerVersion
		updated.Deleted = nil

		action, err = uc.repo.Action().Update(ctx, &updated)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to update action", goerr.V(ActionIDKey, existing.ID))
		}
	}

	if _, err := uc.repo.ActionEntity().Replace(ctx, action.ID, input.Config.EntityPairs()); err != nil {
		return nil, goerr.Wrap(err, "failed to replace action entities", goerr.V(ActionIDKey, action.ID))
	}

	if workflowUser != nil {
		if err := uc.ensureTriggerToken(ctx, workflowUser.ID, workspace.ID); err != nil {
			// The action itself is deployed; the token can be provisioned
			// on the next deploy
			logging.From(ctx).Warn("failed to provision trigger token",
				"error", err, "user_id", workflowUser.ID)
		}
	}

	return action, nil
}

func (uc *ActionUseCase) checkQuota(ctx context.Context, workspace *model.Workspace) error {
	if !workspace.ActionsEnabled {
		return nil
	}

	actions, err := uc.repo.Action().List(ctx, workspace.ID)
	if err != nil {
		return goerr.Wrap(err, "failed to count actions", goerr.V(WorkspaceIDKey, workspace.ID))
	}

	if len(actions) >= workspace.Preferences.ActionCount {
		return goerr.Wrap(ErrQuotaExceeded, "cannot deploy new action",
			goerr.V(WorkspaceIDKey, workspace.ID),
			goerr.V("action_count", len(actions)),
			goerr.V("quota", workspace.Preferences.ActionCount))
	}

	return nil
}

// provisionWorkflowUser upserts the bot account representing the
// action and attaches it to the workspace with the current team list
func (uc *ActionUseCase) provisionWorkflowUser(ctx context.Context, workspace *model.Workspace, config model.ActionConfig) (*model.User, error) {
	email := model.WorkflowUserEmail(config.Slug, workspace.ID)

	user, err := uc.repo.User().Upsert(ctx, &model.User{
		Email:    email,
		FullName: config.Name,
		Username: config.Slug,
		Image:    config.Icon,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to upsert workflow user", goerr.V("email", email))
	}

	teams, err := uc.repo.Workspace().ListTeams(ctx, workspace.ID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list teams", goerr.V(WorkspaceIDKey, workspace.ID))
	}
	teamIDs := make([]string, 0, len(teams))
	for _, team := range teams {
		teamIDs = append(teamIDs, team.ID)
	}

	if err := uc.repo.User().UpsertMembership(ctx, &model.UserOnWorkspace{
		UserID:      user.ID,
		WorkspaceID: workspace.ID,
		Role:        types.RoleBot,
		TeamIDs:     teamIDs,
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to upsert workflow membership", goerr.V("user_id", user.ID))
	}

	return user, nil
}

func (uc *ActionUseCase) ensureTriggerToken(ctx context.Context, userID, workspaceID string) error {
	token, err := uc.repo.User().FindToken(ctx, userID, model.TokenTypeTrigger)
	if err != nil {
		return goerr.Wrap(err, "failed to find trigger token", goerr.V("user_id", userID))
	}
	if token != nil {
		return nil
	}

	if _, err := uc.repo.User().CreateToken(ctx, &model.PersonalAccessToken{
		UserID:      userID,
		WorkspaceID: workspaceID,
		Name:        model.TokenTypeTrigger,
		Type:        model.TokenTypeTrigger,
		Token:       uuid.NewString(),
	}); err != nil {
		return goerr.Wrap(err, "failed to create trigger token", goerr.V("user_id", userID))
	}

	return nil
}

func (uc *ActionUseCase) latestTriggerVersion(ctx context.Context, taskID string) string {
	if uc.trigger == nil {
		return ""
	}

	version, err := uc.trigger.GetLatestVersion(ctx, taskID)
	if err != nil {
		// Version tracking is advisory; a deploy must not fail because
		// the platform is unreachable
		logging.From(ctx).Warn("failed to get latest task version", "error", err, "task_id", taskID)
		return ""
	}
	return version
}

// UpdateActionInputs stores the configured inputs and activates the
// action. Activation is the only legal transition out of
// NEEDS_CONFIGURATION.
func (uc *ActionUseCase) UpdateActionInputs(ctx context.Context, slug, workspaceID string, inputs map[string]any) (*model.Action, error) {
	action, err := uc.getBySlug(ctx, workspaceID, slug)
	if err != nil {
		return nil, err
	}

	updated := *action
	if updated.Data == nil {
		updated.Data = make(map[string]any, len(inputs))
	}
	for key, value := range inputs {
		updated.Data[key] = value
	}
	updated.Status = types.ActionStatusActive

	result, err := uc.repo.Action().Update(ctx, &updated)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update action inputs", goerr.V(ActionIDKey, action.ID))
	}

	return result, nil
}

// DeleteAction soft-deletes an action and removes its trigger entity
// rows. Repeat calls refresh the deletion timestamp.
func (uc *ActionUseCase) DeleteAction(ctx context.Context, id string) (*model.Action, error) {
	action, err := uc.repo.Action().Get(ctx, id)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, goerr.Wrap(ErrActionNotFound, "cannot delete action", goerr.V(ActionIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to load action", goerr.V(ActionIDKey, id))
	}

	if err := uc.repo.ActionEntity().DeleteForAction(ctx, action.ID); err != nil {
		return nil, goerr.Wrap(err, "failed to delete action entities", goerr.V(ActionIDKey, id))
	}

	now := timeNow()
	updated := *action
	updated.Deleted = &now

	result, err := uc.repo.Action().Update(ctx, &updated)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to mark action deleted", goerr.V(ActionIDKey, id))
	}

	return result, nil
}

// CleanDevActions removes the caller's dev deployment of a slug if one
// exists. A missing dev action is not an error.
func (uc *ActionUseCase) CleanDevActions(ctx context.Context, slug, workspaceID, userID string) error {
	action, err := uc.repo.Action().FindDev(ctx, workspaceID, slug, userID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil
		}
		return goerr.Wrap(err, "failed to find dev action", goerr.V(ActionSlugKey, slug))
	}

	if _, err := uc.DeleteAction(ctx, action.ID); err != nil {
		return err
	}

	return nil
}

// GetAction retrieves a single action by ID
func (uc *ActionUseCase) GetAction(ctx context.Context, id string) (*model.Action, error) {
	action, err := uc.repo.Action().Get(ctx, id)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, goerr.Wrap(ErrActionNotFound, "action not found", goerr.V(ActionIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get action", goerr.V(ActionIDKey, id))
	}
	return action, nil
}

// GetActions lists the workspace's non-deleted actions
func (uc *ActionUseCase) GetActions(ctx context.Context, workspaceID string) ([]*model.Action, error) {
	actions, err := uc.repo.Action().List(ctx, workspaceID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list actions", goerr.V(WorkspaceIDKey, workspaceID))
	}
	return actions, nil
}

func (uc *ActionUseCase) getBySlug(ctx context.Context, workspaceID, slug string) (*model.Action, error) {
	action, err := uc.repo.Action().GetBySlug(ctx, workspaceID, slug)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, goerr.Wrap(ErrActionNotFound, "action not found",
				goerr.V(ActionSlugKey, slug), goerr.V(WorkspaceIDKey, workspaceID))
		}
		return nil, goerr.Wrap(err, "failed to get action", goerr.V(ActionSlugKey, slug))
	}
	return action, nil
}

func (uc *ActionUseCase) requireTrigger() error {
	if uc.trigger == nil {
		return goerr.New("task execution platform is not configured")
	}
	return nil
}

// GetRunsForSlug lists handler runs of an action in its environment
func (uc *ActionUseCase) GetRunsForSlug(ctx context.Context, slug, workspaceID string) ([]*trigger.Run, error) {
	if err := uc.requireTrigger(); err != nil {
		return nil, err
	}

	action, err := uc.getBySlug(ctx, workspaceID, slug)
	if err != nil {
		return nil, err
	}

	runs, err := uc.trigger.ListRuns(ctx, action.HandlerTask(), action.RunEnv().String())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list runs", goerr.V(ActionSlugKey, slug))
	}
	return runs, nil
}

// GetRunForSlug fetches a single run of an action's handler
func (uc *ActionUseCase) GetRunForSlug(ctx context.Context, slug, workspaceID, runID string) (*trigger.Run, error) {
	if err := uc.requireTrigger(); err != nil {
		return nil, err
	}

	if _, err := uc.getBySlug(ctx, workspaceID, slug); err != nil {
		return nil, err
	}

	run, err := uc.trigger.GetRun(ctx, runID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get run", goerr.V("run_id", runID))
	}
	return run, nil
}

// ReplayRunForSlug re-executes a finished handler run
func (uc *ActionUseCase) ReplayRunForSlug(ctx context.Context, slug, workspaceID, runID string) (*trigger.RunHandle, error) {
	if err := uc.requireTrigger(); err != nil {
		return nil, err
	}

	if _, err := uc.getBySlug(ctx, workspaceID, slug); err != nil {
		return nil, err
	}

	handle, err := uc.trigger.ReplayRun(ctx, runID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to replay run", goerr.V("run_id", runID))
	}
	return handle, nil
}

// CancelRunForSlug stops an in-flight handler run
func (uc *ActionUseCase) CancelRunForSlug(ctx context.Context, slug, workspaceID, runID string) error {
	if err := uc.requireTrigger(); err != nil {
		return err
	}

	if _, err := uc.getBySlug(ctx, workspaceID, slug); err != nil {
		return err
	}

	if err := uc.trigger.CancelRun(ctx, runID); err != nil {
		return goerr.Wrap(err, "failed to cancel run", goerr.V("run_id", runID))
	}
	return nil
}

// GetInputsForSlug asks the action's own task for its input schema by
// firing a GET_INPUTS event and awaiting the run output
func (uc *ActionUseCase) GetInputsForSlug(ctx context.Context, slug, workspaceID string) (any, error) {
	if err := uc.requireTrigger(); err != nil {
		return nil, err
	}

	action, err := uc.getBySlug(ctx, workspaceID, slug)
	if err != nil {
		return nil, err
	}

	accounts, err := resolveIntegrationAccounts(ctx, uc.repo, workspaceID, action.Integrations)
	if err != nil {
		return nil, err
	}

	run, err := uc.trigger.TriggerTask(ctx, action.HandlerTask(), &model.TriggerEventPayload{
		Event: types.ActionEventGetInputs,
		Payload: model.TriggerEventData{
			Data: model.TriggerEventBody{
				IntegrationAccounts: accounts,
			},
		},
	}, "")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch action inputs", goerr.V(ActionSlugKey, slug))
	}

	return run.Output, nil
}

// resolveIntegrationAccounts maps integration names to the workspace's
// connected accounts. Names without an account are skipped.
func resolveIntegrationAccounts(ctx context.Context, repo interfaces.Repository, workspaceID string, names []string) (map[string]*model.IntegrationAccount, error) {
	accounts := make(map[string]*model.IntegrationAccount, len(names))
	for _, name := range names {
		if _, ok := accounts[name]; ok {
			continue
		}

		account, err := repo.Integration().GetByName(ctx, workspaceID, name)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				continue
			}
			return nil, goerr.Wrap(err, "failed to resolve integration account",
				goerr.V(WorkspaceIDKey, workspaceID), goerr.V("integration", name))
		}
		accounts[name] = account
	}

	return accounts, nil
}
