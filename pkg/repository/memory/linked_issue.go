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

type linkedIssueRepository struct {
	mu    sync.RWMutex
	links map[string]*model.LinkedIssue
}

func newLinkedIssueRepository() *linkedIssueRepository {
	return &linkedIssueRepository{
		links: make(map[string]*model.LinkedIssue),
	}
}

func copyLinkedIssue(l *model.LinkedIssue) *model.LinkedIssue {
	copied := *l
	copied.SourceData = maps.Clone(l.SourceData)
	if l.Deleted != nil {
		deleted := *l.Deleted
		copied.Deleted = &deleted
	}
	return &copied
}

func applyLinkedIssuePatch(link *model.LinkedIssue, patch *model.LinkedIssueUpdate) {
	if patch.Title != "" {
		link.Title = patch.Title
	}
	if patch.SourceID != "" {
		link.SourceID = patch.SourceID
	}
	if patch.Source != nil {
		link.Source = *patch.Source
	}
	if patch.SourceData != nil {
		link.SourceData = maps.Clone(patch.SourceData)
	}
	link.UpdatedAt = time.Now().UTC()
}

func (r *linkedIssueRepository) Get(ctx context.Context, id string) (*model.LinkedIssue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	link, exists := r.links[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "linked issue not found", goerr.V("id", id))
	}

	return copyLinkedIssue(link), nil
}

func (r *linkedIssueRepository) Create(ctx context.Context, link *model.LinkedIssue) (*model.LinkedIssue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := copyLinkedIssue(link)
	if created.ID == "" {
		created.ID = types.NewID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	r.links[created.ID] = created
	return copyLinkedIssue(created), nil
}

func (r *linkedIssueRepository) Update(ctx context.Context, id string, patch *model.LinkedIssueUpdate) (*model.LinkedIssue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	link, exists := r.links[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "linked issue not found", goerr.V("id", id))
	}

	applyLinkedIssuePatch(link, patch)
	return copyLinkedIssue(link), nil
}

func (r *linkedIssueRepository) UpdateBySource(ctx context.Context, sourceID string, patch *model.LinkedIssueUpdate) ([]*model.LinkedIssue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	updated := make([]*model.LinkedIssue, 0)
	for _, link := range r.links {
		if link.SourceID == sourceID && link.Deleted == nil {
			applyLinkedIssuePatch(link, patch)
			updated = append(updated, copyLinkedIssue(link))
		}
	}

	return updated, nil
}
