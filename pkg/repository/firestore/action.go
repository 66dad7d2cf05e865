package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/tracknest/tracknest/pkg/domain/model"
	"github.com/tracknest/tracknest/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type actionRepository struct {
	client *firestore.Client
	prefix string
}

func (r *actionRepository) collection() string {
	return collectionName(r.prefix, "actions")
}

func (r *actionRepository) Create(ctx context.Context, action *model.Action) (*model.Action, error) {
	now := time.Now().UTC()
	created := *action
	if created.ID == "" {
		created.ID = types.NewID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	if _, err := r.client.Collection(r.collection()).Doc(created.ID).Set(ctx, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to create action", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *actionRepository) Get(ctx context.Context, id string) (*model.Action, error) {
	docSnap, err := r.client.Collection(r.collection()).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "action not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get action", goerr.V("id", id))
	}

	var a model.Action
	if err := docSnap.DataTo(&a); err != nil {
		return nil, goerr.Wrap(err, "failed to decode action", goerr.V("id", id))
	}

	return &a, nil
}

func (r *actionRepository) GetBySlug(ctx context.Context, workspaceID, slug string) (*model.Action, error) {
	iter := r.client.Collection(r.collection()).
		Where("WorkspaceID", "==", workspaceID).
		Where("Slug", "==", slug).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	docSnap, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(ErrNotFound, "action not found",
			goerr.V("workspace_id", workspaceID), goerr.V("slug", slug))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query action by slug", goerr.V("slug", slug))
	}

	var a model.Action
	if err := docSnap.DataTo(&a); err != nil {
		return nil, goerr.Wrap(err, "failed to decode action", goerr.V("doc_id", docSnap.Ref.ID))
	}

	return &a, nil
}

func (r *actionRepository) FindDev(ctx context.Context, workspaceID, slug, createdByID string) (*model.Action, error) {
	iter := r.client.Collection(r.collection()).
		Where("WorkspaceID", "==", workspaceID).
		Where("Slug", "==", slug).
		Where("CreatedByID", "==", createdByID).
		Where("IsDev", "==", true).
		Documents(ctx)
	defer iter.Stop()

	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to query dev action", goerr.V("slug", slug))
		}

		var a model.Action
		if err := docSnap.DataTo(&a); err != nil {
			return nil, goerr.Wrap(err, "failed to decode action", goerr.V("doc_id", docSnap.Ref.ID))
		}
		if a.Deleted == nil {
			return &a, nil
		}
	}

	return nil, goerr.Wrap(ErrNotFound, "dev action not found",
		goerr.V("workspace_id", workspaceID), goerr.V("slug", slug))
}

func (r *actionRepository) List(ctx context.Context, workspaceID string) ([]*model.Action, error) {
	iter := r.client.Collection(r.collection()).
		Where("WorkspaceID", "==", workspaceID).
		Documents(ctx)
	defer iter.Stop()

	actions := make([]*model.Action, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate actions", goerr.V("workspace_id", workspaceID))
		}

		var a model.Action
		if err := docSnap.DataTo(&a); err != nil {
			return nil, goerr.Wrap(err, "failed to decode action", goerr.V("doc_id", docSnap.Ref.ID))
		}

		// Soft-deleted actions are filtered here to avoid a composite index
		if a.Deleted == nil {
			actions = append(actions, &a)
		}
	}

	return actions, nil
}

func (r *actionRepository) Update(ctx context.Context, action *model.Action) (*model.Action, error) {
	docRef := r.client.Collection(r.collection()).Doc(action.ID)

	docSnap, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "action not found", goerr.V("id", action.ID))
		}
		return nil, goerr.Wrap(err, "failed to check action existence", goerr.V("id", action.ID))
	}

	var existing model.Action
	if err := docSnap.DataTo(&existing); err != nil {
		return nil, goerr.Wrap(err, "failed to decode action", goerr.V("id", action.ID))
	}

	updated := *action
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	if _, err := docRef.Set(ctx, &updated); err != nil {
		return nil, goerr.Wrap(err, "failed to update action", goerr.V("id", action.ID))
	}

	return &updated, nil
}
