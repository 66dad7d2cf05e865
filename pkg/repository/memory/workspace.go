package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/tracknest/tracknest/pkg/domain/model"
	"github.com/tracknest/tracknest/pkg/domain/types"
)

type workspaceRepository struct {
	mu         sync.RWMutex
	workspaces map[string]*model.Workspace
	teams      map[string]*model.Team
}

func newWorkspaceRepository() *workspaceRepository {
	return &workspaceRepository{
		workspaces: make(map[string]*model.Workspace),
		teams:      make(map[string]*model.Team),
	}
}

func copyWorkspace(w *model.Workspace) *model.Workspace {
	copied := *w
	return &copied
}

func copyTeam(t *model.Team) *model.Team {
	copied := *t
	return &copied
}

func (r *workspaceRepository) Get(ctx context.Context, id string) (*model.Workspace, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	workspace, exists := r.workspaces[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "workspace not found", goerr.V("id", id))
	}

	return copyWorkspace(workspace), nil
}

func (r *workspaceRepository) Put(ctx context.Context, workspace *model.Workspace) (*model.Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	stored := copyWorkspace(workspace)
	if stored.ID == "" {
		stored.ID = types.NewID()
	}
	if existing, exists := r.workspaces[stored.ID]; exists {
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	r.workspaces[stored.ID] = stored
	return copyWorkspace(stored), nil
}

func (r *workspaceRepository) ListTeams(ctx context.Context, workspaceID string) ([]*model.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	teams := make([]*model.Team, 0)
	for _, team := range r.teams {
		if team.WorkspaceID == workspaceID {
			teams = append(teams, copyTeam(team))
		}
	}

	return teams, nil
}

func (r *workspaceRepository) GetTeam(ctx context.Context, id string) (*model.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	team, exists := r.teams[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "team not found", goerr.V("id", id))
	}

	return copyTeam(team), nil
}

func (r *workspaceRepository) PutTeam(ctx context.Context, team *model.Team) (*model.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := copyTeam(team)
	if stored.ID == "" {
		stored.ID = types.NewID()
	}

	r.teams[stored.ID] = stored
	return copyTeam(stored), nil
}
