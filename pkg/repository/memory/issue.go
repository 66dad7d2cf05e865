package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/tracknest/tracknest/pkg/domain/model"
	"github.com/tracknest/tracknest/pkg/domain/types"
)

type issueRepository struct {
	mu       sync.RWMutex
	issues   map[string]*model.Issue
	comments map[string]*model.IssueComment
}

func newIssueRepository() *issueRepository {
	return &issueRepository{
		issues:   make(map[string]*model.Issue),
		comments: make(map[string]*model.IssueComment),
	}
}

func copyIssue(i *model.Issue) *model.Issue {
	copied := *i
	return &copied
}

func copyComment(c *model.IssueComment) *model.IssueComment {
	copied := *c
	copied.SourceMetadata = maps.Clone(c.SourceMetadata)
	return &copied
}

func (r *issueRepository) Get(ctx context.Context, id string) (*model.Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	issue, exists := r.issues[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "issue not found", goerr.V("id", id))
	}

	return copyIssue(issue), nil
}

func (r *issueRepository) Put(ctx context.Context, issue *model.Issue) (*model.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	stored := copyIssue(issue)
	if stored.ID == "" {
		stored.ID = types.NewID()
	}
	if existing, exists := r.issues[stored.ID]; exists {
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	r.issues[stored.ID] = stored
	return copyIssue(stored), nil
}

func (r *issueRepository) GetComment(ctx context.Context, id string) (*model.IssueComment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	comment, exists := r.comments[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "issue comment not found", goerr.V("id", id))
	}

	return copyComment(comment), nil
}

func (r *issueRepository) CreateComment(ctx context.Context, comment *model.IssueComment) (*model.IssueComment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := copyComment(comment)
	if created.ID == "" {
		created.ID = types.NewID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	r.comments[created.ID] = created
	return copyComment(created), nil
}
