package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/tracknest/tracknest/pkg/domain/model"
	"github.com/tracknest/tracknest/pkg/domain/types"
)

type actionRepository struct {
	mu      sync.RWMutex
	actions map[string]*model.Action
}

func newActionRepository() *actionRepository {
	return &actionRepository{
		actions: make(map[string]*model.Action),
	}
}

// copyAction creates a deep copy of an action
func copyAction(a *model.Action) *model.Action {
	copied := *a
	copied.Integrations = slices.Clone(a.Integrations)
	copied.Config.Integrations = slices.Clone(a.Config.Integrations)
	copied.Config.Triggers = make([]model.ActionTrigger, len(a.Config.Triggers))
	for i, trigger := range a.Config.Triggers {
		copied.Config.Triggers[i] = model.ActionTrigger{
			Type:     trigger.Type,
			Entities: slices.Clone(trigger.Entities),
		}
	}
	copied.Config.Inputs = maps.Clone(a.Config.Inputs)
	copied.Data = maps.Clone(a.Data)
	if a.Deleted != nil {
		deleted := *a.Deleted
		copied.Deleted = &deleted
	}
	return &copied
}

func (r *actionRepository) Create(ctx context.Context, action *model.Action) (*model.Action, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := copyAction(action)
	if created.ID == "" {
		created.ID = types.NewID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	r.actions[created.ID] = created
	return copyAction(created), nil
}

func (r *actionRepository) Get(ctx context.Context, id string) (*model.Action, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	action, exists := r.actions[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "action not found", goerr.V("id", id))
	}

	return copyAction(action), nil
}

func (r *actionRepository) GetBySlug(ctx context.Context, workspaceID, slug string) (*model.Action, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, action := range r.actions {
		if action.WorkspaceID == workspaceID && action.Slug == slug {
			return copyAction(action), nil
		}
	}

	return nil, goerr.Wrap(ErrNotFound, "action not found",
		goerr.V("workspace_id", workspaceID), goerr.V("slug", slug))
}

func (r *actionRepository) FindDev(ctx context.Context, workspaceID, slug, createdByID string) (*model.Action, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, action := range r.actions {
		if action.WorkspaceID == workspaceID && action.Slug == slug &&
			action.CreatedByID == createdByID && action.IsDev && action.Deleted == nil {
			return copyAction(action), nil
		}
	}

	return nil, goerr.Wrap(ErrNotFound, "dev action not found",
		goerr.V("workspace_id", workspaceID), goerr.V("slug", slug))
}

func (r *actionRepository) List(ctx context.Context, workspaceID string) ([]*model.Action, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	actions := make([]*model.Action, 0)
	for _, action := range r.actions {
		if action.WorkspaceID == workspaceID && action.Deleted == nil {
			actions = append(actions, copyAction(action))
		}
	}

	return actions, nil
}

func (r *actionRepository) Update(ctx context.Context, action *model.Action) (*model.Action, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.actions[action.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "action not found", goerr.V("id", action.ID))
	}

	updated := copyAction(action)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.actions[updated.ID] = updated
	return copyAction(updated), nil
}
