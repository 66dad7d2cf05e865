package interfaces

import (
	"context"

	"github.com/tracknest/tracknest/pkg/domain/model"
)

// WorkspaceRepository defines the interface for Workspace data access
type WorkspaceRepository interface {
	// Get retrieves a workspace by ID
	Get(ctx context.Context, id string) (*model.Workspace, error)

	// Put creates or replaces a workspace
	Put(ctx context.Context, workspace *model.Workspace) (*model.Workspace, error)

	// ListTeams retrieves all teams of a workspace
	ListTeams(ctx context.Context, workspaceID string) ([]*model.Team, error)

	// GetTeam retrieves a team by ID
	GetTeam(ctx context.Context, id string) (*model.Team, error)

	// PutTeam creates or replaces a team
	PutTeam(ctx context.Context, team *model.Team) (*model.Team, error)
}

// UserRepository defines the interface for User, membership and token
// data access
type UserRepository interface {
	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// Upsert creates a user keyed by email, or refreshes full name and
	// image of an existing one
	Upsert(ctx context.Context, user *model.User) (*model.User, error)

	// UpsertMembership creates or updates a workspace membership keyed
	// by (user, workspace)
	UpsertMembership(ctx context.Context, membership *model.UserOnWorkspace) error

	// FindToken retrieves a personal access token by user and type,
	// or nil if none exists
	FindToken(ctx context.Context, userID, tokenType string) (*model.PersonalAccessToken, error)

	// CreateToken stores a new personal access token
	CreateToken(ctx context.Context, token *model.PersonalAccessToken) (*model.PersonalAccessToken, error)
}
