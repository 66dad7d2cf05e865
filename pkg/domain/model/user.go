package model

import (
	"fmt"
	"time"

	"github.com/tracknest/tracknest/pkg/domain/types"
)

// WorkflowUserDomain is the mail domain used for synthetic bot accounts
const WorkflowUserDomain = "tracknest.dev"

// User is an account. Workflow users are synthetic bot accounts that
// represent a non-personal action's identity for attribution.
type User struct {
	ID        string
	Email     string
	FullName  string
	Username  string
	Image     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WorkflowUserEmail derives the deterministic bot address for an action
// slug in a workspace. One workflow user exists per (slug, workspace).
func WorkflowUserEmail(slug, workspaceID string) string {
	return fmt.Sprintf("%s_%s@%s", slug, workspaceID, WorkflowUserDomain)
}

// UserOnWorkspace is a workspace membership
type UserOnWorkspace struct {
	UserID      string
	WorkspaceID string
	Role        types.Role
	TeamIDs     []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PersonalAccessToken authenticates a user against the internal API.
// Workflow users get one token of type "trigger" used by their handler
// tasks.
type PersonalAccessToken struct {
	ID          string
	UserID      string
	WorkspaceID string
	Name        string
	Type        string
	Token       string
	CreatedAt   time.Time
}

// TokenTypeTrigger marks tokens provisioned for action handler tasks
const TokenTypeTrigger = "trigger"
