package model

import (
	"fmt"
	"time"
)

// LinkedIssueSource identifies where an external link came from
type LinkedIssueSource struct {
	Type                 string `json:"type"`
	IntegrationAccountID string `json:"integrationAccountId,omitempty"`
}

// LinkedIssueSourceSlack is the source type for Slack thread links
const LinkedIssueSourceSlack = "Slack"

// LinkedIssue associates an internal issue with an external resource
// such as a Slack thread. SourceID is derived deterministically from
// source-specific identifiers so that re-processing the same external
// resource converges on one record.
type LinkedIssue struct {
	ID          string
	IssueID     string
	URL         string
	Title       string
	SourceID    string
	Source      LinkedIssueSource
	SourceData  map[string]any
	CreatedByID string
	Deleted     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LinkedIssueUpdate is the patch applied when enriching a link with
// source metadata
type LinkedIssueUpdate struct {
	Title      string
	SourceID   string
	Source     *LinkedIssueSource
	SourceData map[string]any
}

// LinkedIssueContext is a linked issue joined with the issue, team and
// workspace it belongs to. The sync trigger needs the whole chain to
// build the issue identifier and deep link.
type LinkedIssueContext struct {
	LinkedIssue *LinkedIssue
	Issue       *Issue
	Team        *Team
	Workspace   *Workspace
}

// IssueIdentifier renders the human-readable issue key, e.g. "ENG-42"
func (c *LinkedIssueContext) IssueIdentifier() string {
	if c.Team == nil || c.Issue == nil {
		return ""
	}
	return RenderIssueIdentifier(c.Team.Identifier, c.Issue.Number)
}

// RenderIssueIdentifier joins a team identifier and issue number into
// the canonical issue key
func RenderIssueIdentifier(teamIdentifier string, number int) string {
	if teamIdentifier == "" {
		return ""
	}
	return fmt.Sprintf("%s-%d", teamIdentifier, number)
}
