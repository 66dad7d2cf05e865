package types

import "fmt"

// ActionStatus represents the deployment status of an action
type ActionStatus string

const (
	// ActionStatusNeedsConfiguration means the action declares required
	// inputs that have not been provided yet
	ActionStatusNeedsConfiguration ActionStatus = "NEEDS_CONFIGURATION"
	// ActionStatusActive means the action is deployed and reacting to events
	ActionStatusActive ActionStatus = "ACTIVE"
)

// AllActionStatuses returns all valid action statuses
func AllActionStatuses() []ActionStatus {
	return []ActionStatus{
		ActionStatusNeedsConfiguration,
		ActionStatusActive,
	}
}

// IsValid checks if the action status is valid
func (s ActionStatus) IsValid() bool {
	switch s {
	case ActionStatusNeedsConfiguration, ActionStatusActive:
		return true
	default:
		return false
	}
}

// String returns the string representation of the action status
func (s ActionStatus) String() string {
	return string(s)
}

// ParseActionStatus parses a string into an ActionStatus
func ParseActionStatus(s string) (ActionStatus, error) {
	status := ActionStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid action status: %s", s)
	}
	return status, nil
}
