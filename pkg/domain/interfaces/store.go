package interfaces

import (
	"context"

	"github.com/tracknest/tracknest/pkg/domain/model"
)

// LinkedIssueStore is the data surface the link-issue sync flow runs
// against. Two implementations exist: a repository adapter used when
// the sync runs inside the server process, and an HTTP client used
// when it runs on the task platform.
type LinkedIssueStore interface {
	// GetLinkedIssueContext retrieves a linked issue joined with its
	// issue, team, and workspace
	GetLinkedIssueContext(ctx context.Context, id string) (*model.LinkedIssueContext, error)

	// UpdateLinkedIssue applies a source metadata patch to a linked
	// issue
	UpdateLinkedIssue(ctx context.Context, id string, patch *model.LinkedIssueUpdate) (*model.LinkedIssue, error)

	// CreateIssueComment stores a comment produced by the sync flow
	CreateIssueComment(ctx context.Context, comment *model.IssueComment) (*model.IssueComment, error)
}
