package interfaces

import (
	"context"

	"github.com/tracknest/tracknest/pkg/domain/model"
)

// IssueRepository defines the interface for Issue and IssueComment data
// access
type IssueRepository interface {
	// Get retrieves an issue by ID
	Get(ctx context.Context, id string) (*model.Issue, error)

	// Put creates or replaces an issue
	Put(ctx context.Context, issue *model.Issue) (*model.Issue, error)

	// GetComment retrieves a comment by ID
	GetComment(ctx context.Context, id string) (*model.IssueComment, error)

	// CreateComment stores a new comment. The ID is generated if empty.
	CreateComment(ctx context.Context, comment *model.IssueComment) (*model.IssueComment, error)
}

// LinkedIssueRepository defines the interface for LinkedIssue data
// access
type LinkedIssueRepository interface {
	// Get retrieves a linked issue by ID
	Get(ctx context.Context, id string) (*model.LinkedIssue, error)

	// Create stores a new linked issue. The ID is generated if empty.
	Create(ctx context.Context, link *model.LinkedIssue) (*model.LinkedIssue, error)

	// Update applies an enrichment patch to a linked issue
	Update(ctx context.Context, id string, patch *model.LinkedIssueUpdate) (*model.LinkedIssue, error)

	// UpdateBySource applies a patch to every non-deleted linked issue
	// sharing the given source ID
	UpdateBySource(ctx context.Context, sourceID string, patch *model.LinkedIssueUpdate) ([]*model.LinkedIssue, error)
}

// IntegrationRepository defines the interface for IntegrationAccount
// data access
type IntegrationRepository interface {
	// Get retrieves an integration account by ID
	Get(ctx context.Context, id string) (*model.IntegrationAccount, error)

	// GetByName retrieves a workspace's account for an integration name
	GetByName(ctx context.Context, workspaceID, integrationName string) (*model.IntegrationAccount, error)

	// Upsert creates or updates an account keyed by (workspace, name)
	Upsert(ctx context.Context, account *model.IntegrationAccount) (*model.IntegrationAccount, error)
}

// LabelRepository defines the interface for Label data access
type LabelRepository interface {
	// Get retrieves a label by ID
	Get(ctx context.Context, id string) (*model.Label, error)

	// Put creates or replaces a label
	Put(ctx context.Context, label *model.Label) (*model.Label, error)
}
