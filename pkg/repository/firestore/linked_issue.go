package firestore

import (
	"context"
	"maps"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/tracknest/tracknest/pkg/domain/model"
	"github.com/tracknest/tracknest/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type linkedIssueRepository struct {
	client *firestore.Client
	prefix string
}

func (r *linkedIssueRepository) collection() string {
	return collectionName(r.prefix, "linked_issues")
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
	docSnap, err := r.client.Collection(r.collection()).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "linked issue not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get linked issue", goerr.V("id", id))
	}

	var l model.LinkedIssue
	if err := docSnap.DataTo(&l); err != nil {
		return nil, goerr.Wrap(err, "failed to decode linked issue", goerr.V("id", id))
	}

	return &l, nil
}

func (r *linkedIssueRepository) Create(ctx context.Context, link *model.LinkedIssue) (*model.LinkedIssue, error) {
	now := time.Now().UTC()
	created := *link
	if created.ID == "" {
		created.ID = types.NewID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	if _, err := r.client.Collection(r.collection()).Doc(created.ID).Set(ctx, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to create linked issue", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *linkedIssueRepository) Update(ctx context.Context, id string, patch *model.LinkedIssueUpdate) (*model.LinkedIssue, error) {
	docRef := r.client.Collection(r.collection()).Doc(id)

	docSnap, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "linked issue not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get linked issue", goerr.V("id", id))
	}

	var l model.LinkedIssue
	if err := docSnap.DataTo(&l); err != nil {
		return nil, goerr.Wrap(err, "failed to decode linked issue", goerr.V("id", id))
	}

	applyLinkedIssuePatch(&l, patch)

	if _, err := docRef.Set(ctx, &l); err != nil {
		return nil, goerr.Wrap(err, "failed to update linked issue", goerr.V("id", id))
	}

	return &l, nil
}

func (r *linkedIssueRepository) UpdateBySource(ctx context.Context, sourceID string, patch *model.LinkedIssueUpdate) ([]*model.LinkedIssue, error) {
	iter := r.client.Collection(r.collection()).
		Where("SourceID", "==", sourceID).
		Documents(ctx)
	defer iter.Stop()

	updated := make([]*model.LinkedIssue, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate linked issues", goerr.V("source_id", sourceID))
		}

		var l model.LinkedIssue
		if err := docSnap.DataTo(&l); err != nil {
			return nil, goerr.Wrap(err, "failed to decode linked issue", goerr.V("doc_id", docSnap.Ref.ID))
		}
		if l.Deleted != nil {
			continue
		}

		applyLinkedIssuePatch(&l, patch)
		if _, err := docSnap.Ref.Set(ctx, &l); err != nil {
			return nil, goerr.Wrap(err, "failed to update linked issue", goerr.V("id", l.ID))
		}
		updated = append(updated, &l)
	}

	return updated, nil
}
