package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/tracknest/tracknest/pkg/domain/interfaces"
	"github.com/tracknest/tracknest/pkg/domain/model"
	"github.com/tracknest/tracknest/pkg/domain/types"
	"github.com/tracknest/tracknest/pkg/service/trigger"
	"golang.org/x/sync/errgroup"
)

// DispatchUseCase fans replication events out to the handler tasks of
// subscribed actions
type DispatchUseCase struct {
	repo    interfaces.Repository
	trigger trigger.Client
}

func NewDispatchUseCase(repo interfaces.Repository, triggerClient trigger.Client) *DispatchUseCase {
	return &DispatchUseCase{
		repo:    repo,
		trigger: triggerClient,
	}
}

// DispatchIssueCommentEvent triggers the handler of every action
// subscribed to the event derived from a comment replication. Tasks
// are fired concurrently and never awaited; the result carries the run
// handles for diagnostics. No subscriber is a no-op, not an error.
func (uc *DispatchUseCase) DispatchIssueCommentEvent(ctx context.Context, event *model.ReplicationEvent) (*model.DispatchResult, error) {
	if uc.trigger == nil {
		return nil, goerr.New("task execution platform is not configured")
	}

	eventType, err := dispatchEventType(event)
	if err != nil {
		return nil, err
	}

	comment, err := uc.repo.Issue().GetComment(ctx, event.ModelID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load issue comment", goerr.V("comment_id", event.ModelID))
	}

	issue, err := uc.repo.Issue().Get(ctx, comment.IssueID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load issue", goerr.V("issue_id", comment.IssueID))
	}

	team, err := uc.repo.Workspace().GetTeam(ctx, issue.TeamID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load team", goerr.V("team_id", issue.TeamID))
	}

	matches, err := uc.repo.ActionEntity().FindMatches(ctx, eventType, types.ModelNameLinkedIssue)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to find subscribed actions", goerr.V("event_type", eventType))
	}
	if len(matches) == 0 {
		return &model.DispatchResult{
			Message: fmt.Sprintf("no actions subscribed to %s on %s", eventType, types.ModelNameLinkedIssue),
		}, nil
	}

	actions := make([]*model.Action, 0, len(matches))
	for _, match := range matches {
		action, err := uc.repo.Action().Get(ctx, match.ActionID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to load subscribed action", goerr.V(ActionIDKey, match.ActionID))
		}
		if action.Deleted != nil || action.WorkspaceID != team.WorkspaceID {
			continue
		}
		actions = append(actions, action)
	}
	if len(actions) == 0 {
		return &model.DispatchResult{
			Message: fmt.Sprintf("no actions subscribed to %s on %s", eventType, types.ModelNameLinkedIssue),
		}, nil
	}

	// Resolve the union of integration names once; each task payload
	// carries only its own action's accounts
	names := make([]string, 0)
	for _, action := range actions {
		names = append(names, action.Integrations...)
	}
	accounts, err := resolveIntegrationAccounts(ctx, uc.repo, team.WorkspaceID, names)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	handleIDs := make([]string, 0, len(actions))

	eg, egCtx := errgroup.WithContext(ctx)
	for _, action := range actions {
		action := action
		eg.Go(func() error {
			actionAccounts := make(map[string]*model.IntegrationAccount, len(action.Integrations))
			for _, name := range action.Integrations {
				if account, ok := accounts[name]; ok {
					actionAccounts[name] = account
				}
			}

			handle, err := uc.trigger.TriggerTaskAsync(egCtx, action.HandlerTask(), &model.TriggerEventPayload{
				Event: eventType,
				Payload: model.TriggerEventData{
					UserID: comment.UserID,
					Data: model.TriggerEventBody{
						Type:                types.ModelNameIssueComment,
						IssueCommentID:      comment.ID,
						IntegrationAccounts: actionAccounts,
					},
				},
			}, event.ActionAPIKey)
			if err != nil {
				return goerr.Wrap(err, "failed to trigger action handler",
					goerr.V(ActionIDKey, action.ID), goerr.V("task", action.HandlerTask()))
			}

			mu.Lock()
			handleIDs = append(handleIDs, handle.ID)
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return &model.DispatchResult{
		Message:   fmt.Sprintf("triggered %d action handlers for %s", len(handleIDs), eventType),
		HandleIDs: handleIDs,
	}, nil
}

// dispatchEventType maps the replication operation to the trigger
// event. A soft delete replicates as an update, so the IsDeleted flag
// wins over the operation.
func dispatchEventType(event *model.ReplicationEvent) (types.ActionEventType, error) {
	if event.IsDeleted {
		return types.ActionEventOnDelete, nil
	}

	eventType, err := event.Operation.ActionEventType()
	if err != nil {
		return "", goerr.Wrap(err, "cannot dispatch replication event", goerr.V("operation", event.Operation))
	}
	return eventType, nil
}
