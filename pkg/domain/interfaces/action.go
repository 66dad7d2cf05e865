package interfaces

import (
	"context"

	"github.com/tracknest/tracknest/pkg/domain/model"
	"github.com/tracknest/tracknest/pkg/domain/types"
)

// ActionRepository defines the interface for Action data access
type ActionRepository interface {
	// Create creates a new action. The ID is generated if empty.
	Create(ctx context.Context, action *model.Action) (*model.Action, error)

	// Get retrieves an action by ID, including soft-deleted ones
	Get(ctx context.Context, id string) (*model.Action, error)

	// GetBySlug retrieves an action by (slug, workspace), including
	// soft-deleted ones so that a redeploy can revive it
	GetBySlug(ctx context.Context, workspaceID, slug string) (*model.Action, error)

	// FindDev retrieves a non-deleted dev action by slug, workspace and
	// creator
	FindDev(ctx context.Context, workspaceID, slug, createdByID string) (*model.Action, error)

	// List retrieves all non-deleted actions of a workspace
	List(ctx context.Context, workspaceID string) ([]*model.Action, error)

	// Update updates an existing action
	Update(ctx context.Context, action *model.Action) (*model.Action, error)
}

// ActionEntityRepository manages the (trigger type, entity) pairs an
// action listens for
type ActionEntityRepository interface {
	// Replace atomically swaps the action's entity set: all existing
	// rows are removed and the given pairs inserted. The set is never
	// partially patched.
	Replace(ctx context.Context, actionID string, pairs []model.EntityPair) ([]*model.ActionEntity, error)

	// DeleteForAction removes all rows of an action
	DeleteForAction(ctx context.Context, actionID string) error

	// ListForAction retrieves the current (non-deleted) rows of an action
	ListForAction(ctx context.Context, actionID string) ([]*model.ActionEntity, error)

	// FindMatches retrieves all non-deleted rows matching the given
	// trigger type and entity across actions
	FindMatches(ctx context.Context, eventType types.ActionEventType, entity types.ModelName) ([]*model.ActionEntity, error)
}

// ScheduleRepository manages action schedules. Schedules are
// soft-deleted, never removed.
type ScheduleRepository interface {
	// Create creates a new schedule. The ID is generated if empty.
	Create(ctx context.Context, schedule *model.ActionSchedule) (*model.ActionSchedule, error)

	// Get retrieves a schedule by ID
	Get(ctx context.Context, id string) (*model.ActionSchedule, error)

	// Update updates an existing schedule
	Update(ctx context.Context, schedule *model.ActionSchedule) (*model.ActionSchedule, error)

	// HardDelete removes a schedule row. Used only to compensate a
	// failed remote registration during create; regular deletes are
	// soft via Update.
	HardDelete(ctx context.Context, id string) error
}
