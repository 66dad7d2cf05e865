package model

import "github.com/tracknest/tracknest/pkg/domain/types"

// ReplicationEvent is a change notification for a replicated domain
// record. IsDeleted forces on_delete regardless of the operation,
// because soft deletes replicate as updates.
type ReplicationEvent struct {
	Operation    types.ReplicationOp `json:"operation"`
	ModelName    types.ModelName     `json:"modelName"`
	ModelID      string              `json:"modelId"`
	IsDeleted    bool                `json:"isDeleted,omitempty"`
	ActionAPIKey string              `json:"actionApiKey,omitempty"`
}

// TriggerEventPayload is the body delivered to an action handler task
// for one dispatched event
type TriggerEventPayload struct {
	Event   types.ActionEventType `json:"event"`
	Payload TriggerEventData      `json:"payload"`
}

// TriggerEventData carries the affected record and the integration
// accounts resolved for the owning action
type TriggerEventData struct {
	UserID string           `json:"userId,omitempty"`
	Data   TriggerEventBody `json:"data"`
}

// TriggerEventBody identifies the changed record and maps integration
// names to resolved accounts
type TriggerEventBody struct {
	Type                types.ModelName                `json:"type"`
	IssueCommentID      string                         `json:"issueCommentId,omitempty"`
	LinkedIssueID       string                         `json:"linkIssueId,omitempty"`
	IntegrationAccounts map[string]*IntegrationAccount `json:"integrationAccounts,omitempty"`
}

// DispatchResult summarizes one fan-out pass of the event dispatcher
type DispatchResult struct {
	// Message is human readable, also returned for the no-match no-op
	Message string `json:"message"`
	// HandleIDs are the run handles of the triggered tasks, diagnostics
	// only. Task completion is never awaited.
	HandleIDs []string `json:"handleIds,omitempty"`
}
