package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/tracknest/tracknest/pkg/domain/model"
	"github.com/tracknest/tracknest/pkg/domain/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type issueRepository struct {
	client *firestore.Client
	prefix string
}

func (r *issueRepository) collection() string {
	return collectionName(r.prefix, "issues")
}

func (r *issueRepository) commentCollection() string {
	return collectionName(r.prefix, "issue_comments")
}

func (r *issueRepository) Get(ctx context.Context, id string) (*model.Issue, error) {
	docSnap, err := r.client.Collection(r.collection()).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "issue not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get issue", goerr.V("id", id))
	}

	var i model.Issue
	if err := docSnap.DataTo(&i); err != nil {
		return nil, goerr.Wrap(err, "failed to decode issue", goerr.V("id", id))
	}

	return &i, nil
}

func (r *issueRepository) Put(ctx context.Context, issue *model.Issue) (*model.Issue, error) {
	now := time.Now().UTC()
	stored := *issue
	if stored.ID == "" {
		stored.ID = types.NewID()
	}

	docRef := r.client.Collection(r.collection()).Doc(stored.ID)
	docSnap, err := docRef.Get(ctx)
	switch {
	case err == nil:
		var existing model.Issue
		if err := docSnap.DataTo(&existing); err != nil {
			return nil, goerr.Wrap(err, "failed to decode issue", goerr.V("id", stored.ID))
		}
		stored.CreatedAt = existing.CreatedAt
	case status.Code(err) == codes.NotFound:
		stored.CreatedAt = now
	default:
		return nil, goerr.Wrap(err, "failed to check issue existence", goerr.V("id", stored.ID))
	}
	stored.UpdatedAt = now

	if _, err := docRef.Set(ctx, &stored); err != nil {
		return nil, goerr.Wrap(err, "failed to put issue", goerr.V("id", stored.ID))
	}

	return &stored, nil
}

func (r *issueRepository) GetComment(ctx context.Context, id string) (*model.IssueComment, error) {
	docSnap, err := r.client.Collection(r.commentCollection()).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "issue comment not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get issue comment", goerr.V("id", id))
	}

	var c model.IssueComment
	if err := docSnap.DataTo(&c); err != nil {
		return nil, goerr.Wrap(err, "failed to decode issue comment", goerr.V("id", id))
	}

	return &c, nil
}

func (r *issueRepository) CreateComment(ctx context.Context, comment *model.IssueComment) (*model.IssueComment, error) {
	now := time.Now().UTC()
	created := *comment
	if created.ID == "" {
		created.ID = types.NewID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	if _, err := r.client.Collection(r.commentCollection()).Doc(created.ID).Set(ctx, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to create issue comment", goerr.V("id", created.ID))
	}

	return &created, nil
}
