package model

import (
	"time"

	"github.com/tracknest/tracknest/pkg/domain/types"
)

// ActionTrigger declares the (event type, entities) pairs an action
// wants to react to
type ActionTrigger struct {
	Type     types.ActionEventType `json:"type" toml:"type"`
	Entities []types.ModelName     `json:"entities" toml:"entities"`
}

// ActionConfig is the declarative configuration shipped with an action
// deployment
type ActionConfig struct {
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	Description  string          `json:"description,omitempty"`
	Icon         string          `json:"icon,omitempty"`
	Integrations []string        `json:"integrations,omitempty"`
	Inputs       map[string]any  `json:"inputs,omitempty"`
	Triggers     []ActionTrigger `json:"triggers,omitempty"`
}

// EntityPair is one (trigger type, entity) subscription derived from a
// trigger declaration
type EntityPair struct {
	Type   types.ActionEventType
	Entity types.ModelName
}

// EntityPairs flattens the trigger declarations into the subscription
// set. Triggers without entities contribute nothing.
func (c ActionConfig) EntityPairs() []EntityPair {
	var pairs []EntityPair
	for _, trigger := range c.Triggers {
		for _, entity := range trigger.Entities {
			pairs = append(pairs, EntityPair{Type: trigger.Type, Entity: entity})
		}
	}
	return pairs
}

// InitialStatus returns the status a freshly created action starts in.
// Declared inputs must be configured before the action becomes active.
func (c ActionConfig) InitialStatus() types.ActionStatus {
	if len(c.Inputs) > 0 {
		return types.ActionStatusNeedsConfiguration
	}
	return types.ActionStatusActive
}

// Action is a deployable integration handler bound to a workspace
type Action struct {
	ID             string
	WorkspaceID    string
	CreatedByID    string
	Name           string
	Slug           string
	Description    string
	Integrations   []string
	Config         ActionConfig
	Status         types.ActionStatus
	Version        string
	TriggerVersion string
	IsDev          bool
	IsPersonal     bool
	Data           map[string]any
	Deleted        *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RunEnv returns the task execution environment the action runs in
func (a *Action) RunEnv() types.RunEnv {
	if a.IsDev {
		return types.RunEnvDev
	}
	return types.RunEnvProd
}

// HandlerTask is the task identifier of the action's handler on the
// execution platform
func (a *Action) HandlerTask() string {
	return a.Name + "-handler"
}

// ActionEntity is one (trigger type, entity type) pair an action
// listens for. The set is regenerated wholesale whenever the action's
// trigger configuration changes.
type ActionEntity struct {
	ID        string
	ActionID  string
	Type      types.ActionEventType
	Entity    types.ModelName
	Deleted   *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ActionSchedule is a recurring invocation of an action. Status flips
// to ACTIVE only after the external scheduler has accepted the
// registration; rows are soft-deleted, never removed.
type ActionSchedule struct {
	ID            string
	ActionID      string
	Cron          string
	Timezone      string
	Status        types.ScheduleStatus
	ScheduleID    string
	ScheduledByID string
	Deleted       *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
