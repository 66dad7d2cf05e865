package types

import "fmt"

// ActionEventType is the trigger event delivered to an action handler task
type ActionEventType string

const (
	ActionEventOnCreate   ActionEventType = "on_create"
	ActionEventOnUpdate   ActionEventType = "on_update"
	ActionEventOnDelete   ActionEventType = "on_delete"
	ActionEventOnSchedule ActionEventType = "on_schedule"
	ActionEventGetInputs  ActionEventType = "get_inputs"
)

// String returns the string representation of the event type
func (t ActionEventType) String() string {
	return string(t)
}

// ReplicationOp is the database operation carried by a replication event
type ReplicationOp string

const (
	ReplicationOpInsert ReplicationOp = "insert"
	ReplicationOpUpdate ReplicationOp = "update"
	ReplicationOpDelete ReplicationOp = "delete"
)

// ActionEventType maps a replication operation to the action event that
// handlers subscribe to. Deletes always map to on_delete regardless of
// the operation field because soft deletes replicate as updates.
func (op ReplicationOp) ActionEventType() (ActionEventType, error) {
	switch op {
	case ReplicationOpInsert:
		return ActionEventOnCreate, nil
	case ReplicationOpUpdate:
		return ActionEventOnUpdate, nil
	case ReplicationOpDelete:
		return ActionEventOnDelete, nil
	default:
		return "", fmt.Errorf("unknown replication operation: %s", op)
	}
}

// IntegrationEventType is the tagged event delivered to an integration
// handler (spec / create / get_identifier / get_token)
type IntegrationEventType string

const (
	IntegrationEventSpec          IntegrationEventType = "spec"
	IntegrationEventCreate        IntegrationEventType = "create"
	IntegrationEventGetIdentifier IntegrationEventType = "get_identifier"
	IntegrationEventGetToken      IntegrationEventType = "get_token"
)

// String returns the string representation of the event type
func (t IntegrationEventType) String() string {
	return string(t)
}
