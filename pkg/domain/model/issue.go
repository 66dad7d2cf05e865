package model

import "time"

// Issue is the minimal projection of an issue needed by the
// orchestration flows (identifier rendering and deep links)
type Issue struct {
	ID        string
	TeamID    string
	Number    int
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IssueComment is a comment on an issue. Comments created by
// integration handlers carry SourceMetadata pointing at the external
// message they mirror.
type IssueComment struct {
	ID             string
	IssueID        string
	UserID         string
	Body           string
	ParentID       string
	SourceMetadata map[string]any
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Label is a workspace label. Only the update surface is exposed here.
type Label struct {
	ID          string
	WorkspaceID string
	Name        string
	Color       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
