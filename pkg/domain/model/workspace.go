package model

import "time"

// WorkspacePreferences holds per-workspace limits
type WorkspacePreferences struct {
	// ActionCount is the maximum number of non-deleted actions the
	// workspace may deploy. Zero means no actions allowed.
	ActionCount int
}

// Workspace is a tenant of the tracker
type Workspace struct {
	ID             string
	Name           string
	Slug           string
	ActionsEnabled bool
	Preferences    WorkspacePreferences
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Team is a group within a workspace. Identifier is the issue key
// prefix (e.g. "ENG" in ENG-42).
type Team struct {
	ID          string
	WorkspaceID string
	Name        string
	Identifier  string
}
