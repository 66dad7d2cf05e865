package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/tracknest/tracknest/pkg/domain/interfaces"
	"github.com/tracknest/tracknest/pkg/domain/model"
	"github.com/tracknest/tracknest/pkg/domain/types"
	"github.com/tracknest/tracknest/pkg/usecase"
)

// seedComment stores an issue with one comment under the seeded team
// and returns the comment
func seedComment(t *testing.T, repo interfaces.Repository, teamID string) *model.IssueComment {
	t.Helper()
	ctx := context.Background()

	issue, err := repo.Issue().Put(ctx, &model.Issue{
		ID:     "issue-1",
		TeamID: teamID,
		Number: 42,
		Title:  "Fix login",
	})
	gt.NoError(t, err).Required()

	comment, err := repo.Issue().CreateComment(ctx, &model.IssueComment{
		IssueID: issue.ID,
		UserID:  "commenter",
		Body:    "please take a look",
	})
	gt.NoError(t, err).Required()

	return comment
}

func deploySubscribedAction(t *testing.T, uc *usecase.ActionUseCase, name string, eventType types.ActionEventType) *model.Action {
	t.Helper()

	action, err := uc.CreateOrUpdateAction(context.Background(), usecase.CreateActionInput{
		WorkspaceID: testWorkspaceID,
		Config: model.ActionConfig{
			Name: name,
			Slug: name,
			Triggers: []model.ActionTrigger{
				{Type: eventType, Entities: []types.ModelName{types.ModelNameLinkedIssue}},
			},
		},
	})
	gt.NoError(t, err).Required()
	return action
}

func TestDispatchIssueCommentEvent(t *testing.T) {
	t.Run("no subscribers is a no-op", func(t *testing.T) {
		repo := newMemoryRepo(t)
		_, team := seedWorkspace(t, repo, testWorkspaceID, false, 0)
		comment := seedComment(t, repo, team.ID)
		mock := &mockTrigger{}
		uc := usecase.NewDispatchUseCase(repo, mock)

		result, err := uc.DispatchIssueCommentEvent(context.Background(), &model.ReplicationEvent{
			Operation: types.ReplicationOpInsert,
			ModelName: types.ModelNameIssueComment,
			ModelID:   comment.ID,
		})
		gt.NoError(t, err).Required()

		gt.Value(t, result.Message).Equal("no actions subscribed to on_create on LinkedIssue")
		gt.Array(t, result.HandleIDs).Length(0)
		gt.Array(t, mock.Triggered()).Length(0)
	})

	t.Run("fires every subscribed handler and collects handles", func(t *testing.T) {
		repo := newMemoryRepo(t)
		_, team := seedWorkspace(t, repo, testWorkspaceID, false, 0)
		comment := seedComment(t, repo, team.ID)
		mock := &mockTrigger{}
		actionUC := usecase.NewActionUseCase(repo, mock)
		deploySubscribedAction(t, actionUC, "first", types.ActionEventOnCreate)
		deploySubscribedAction(t, actionUC, "second", types.ActionEventOnCreate)
		uc := usecase.NewDispatchUseCase(repo, mock)

		result, err := uc.DispatchIssueCommentEvent(context.Background(), &model.ReplicationEvent{
			Operation: types.ReplicationOpInsert,
			ModelName: types.ModelNameIssueComment,
			ModelID:   comment.ID,
		})
		gt.NoError(t, err).Required()

		gt.Array(t, result.HandleIDs).Length(2)
		gt.Value(t, result.Message).Equal("triggered 2 action handlers for on_create")

		fired := mock.Triggered()
		gt.Array(t, fired).Length(2)
		for _, task := range fired {
			payload := gt.Cast[*model.TriggerEventPayload](t, task.Payload)
			gt.Value(t, payload.Event).Equal(types.ActionEventOnCreate)
			gt.Value(t, payload.Payload.UserID).Equal("commenter")
			gt.Value(t, payload.Payload.Data.Type).Equal(types.ModelNameIssueComment)
			gt.Value(t, payload.Payload.Data.IssueCommentID).Equal(comment.ID)
			gt.Value(t, task.APIKey).Equal("")
		}
	})

	t.Run("the event API key travels with every trigger", func(t *testing.T) {
		repo := newMemoryRepo(t)
		_, team := seedWorkspace(t, repo, testWorkspaceID, false, 0)
		comment := seedComment(t, repo, team.ID)
		mock := &mockTrigger{}
		actionUC := usecase.NewActionUseCase(repo, mock)
		deploySubscribedAction(t, actionUC, "keyed", types.ActionEventOnCreate)
		uc := usecase.NewDispatchUseCase(repo, mock)

		_, err := uc.DispatchIssueCommentEvent(context.Background(), &model.ReplicationEvent{
			Operation:    types.ReplicationOpInsert,
			ModelName:    types.ModelNameIssueComment,
			ModelID:      comment.ID,
			ActionAPIKey: "pat_action_key",
		})
		gt.NoError(t, err).Required()

		fired := mock.Triggered()
		gt.Array(t, fired).Length(1)
		gt.Value(t, fired[0].APIKey).Equal("pat_action_key")
	})

	t.Run("IsDeleted forces on_delete over the operation", func(t *testing.T) {
		repo := newMemoryRepo(t)
		_, team := seedWorkspace(t, repo, testWorkspaceID, false, 0)
		comment := seedComment(t, repo, team.ID)
		mock := &mockTrigger{}
		actionUC := usecase.NewActionUseCase(repo, mock)
		deploySubscribedAction(t, actionUC, "cleanup", types.ActionEventOnDelete)
		uc := usecase.NewDispatchUseCase(repo, mock)

		// A soft delete replicates as an update
		result, err := uc.DispatchIssueCommentEvent(context.Background(), &model.ReplicationEvent{
			Operation: types.ReplicationOpUpdate,
			ModelName: types.ModelNameIssueComment,
			ModelID:   comment.ID,
			IsDeleted: true,
		})
		gt.NoError(t, err).Required()
		gt.Array(t, result.HandleIDs).Length(1)

		fired := mock.Triggered()
		gt.Array(t, fired).Length(1)
		payload := gt.Cast[*model.TriggerEventPayload](t, fired[0].Payload)
		gt.Value(t, payload.Event).Equal(types.ActionEventOnDelete)
	})

	t.Run("deleted actions are skipped", func(t *testing.T) {
		repo := newMemoryRepo(t)
		_, team := seedWorkspace(t, repo, testWorkspaceID, false, 0)
		comment := seedComment(t, repo, team.ID)
		mock := &mockTrigger{}
		actionUC := usecase.NewActionUseCase(repo, mock)
		action := deploySubscribedAction(t, actionUC, "doomed", types.ActionEventOnCreate)

		// Soft-delete the action but keep a stale entity row behind, as a
		// crashed delete would
		now := time.Now().UTC()
		action.Deleted = &now
		_, err := repo.Action().Update(context.Background(), action)
		gt.NoError(t, err).Required()

		uc := usecase.NewDispatchUseCase(repo, mock)
		result, err := uc.DispatchIssueCommentEvent(context.Background(), &model.ReplicationEvent{
			Operation: types.ReplicationOpInsert,
			ModelName: types.ModelNameIssueComment,
			ModelID:   comment.ID,
		})
		gt.NoError(t, err).Required()

		gt.Array(t, result.HandleIDs).Length(0)
		gt.Array(t, mock.Triggered()).Length(0)
	})

	t.Run("unknown operation is an error", func(t *testing.T) {
		repo := newMemoryRepo(t)
		uc := usecase.NewDispatchUseCase(repo, &mockTrigger{})

		_, err := uc.DispatchIssueCommentEvent(context.Background(), &model.ReplicationEvent{
			Operation: types.ReplicationOp("truncate"),
			ModelName: types.ModelNameIssueComment,
			ModelID:   "comment-1",
		})
		gt.Error(t, err)
	})

	t.Run("missing trigger client is an error", func(t *testing.T) {
		repo := newMemoryRepo(t)
		uc := usecase.NewDispatchUseCase(repo, nil)

		_, err := uc.DispatchIssueCommentEvent(context.Background(), &model.ReplicationEvent{
			Operation: types.ReplicationOpInsert,
			ModelID:   "comment-1",
		})
		gt.Error(t, err)
	})
}
