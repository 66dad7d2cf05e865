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

type labelRepository struct {
	client *firestore.Client
	prefix string
}

func (r *labelRepository) collection() string {
	return collectionName(r.prefix, "labels")
}

func (r *labelRepository) Get(ctx context.Context, id string) (*model.Label, error) {
	docSnap, err := r.client.Collection(r.collection()).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "label not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get label", goerr.V("id", id))
	}

	var l model.Label
	if err := docSnap.DataTo(&l); err != nil {
		return nil, goerr.Wrap(err, "failed to decode label", goerr.V("id", id))
	}

	return &l, nil
}

func (r *labelRepository) Put(ctx context.Context, label *model.Label) (*model.Label, error) {
	now := time.Now().UTC()
	stored := *label
	if stored.ID == "" {
		stored.ID = types.NewID()
	}

	docRef := r.client.Collection(r.collection()).Doc(stored.ID)
	docSnap, err := docRef.Get(ctx)
	switch {
	case err == nil:
		var existing model.Label
		if err := docSnap.DataTo(&existing); err != nil {
			return nil, goerr.Wrap(err, "failed to decode label", goerr.V("id", stored.ID))
		}
		stored.CreatedAt = existing.CreatedAt
	case status.Code(err) == codes.NotFound:
		stored.CreatedAt = now
	default:
		return nil, goerr.Wrap(err, "failed to check label existence", goerr.V("id", stored.ID))
	}
	stored.UpdatedAt = now

	if _, err := docRef.Set(ctx, &stored); err != nil {
		return nil, goerr.Wrap(err, "failed to put label", goerr.V("id", stored.ID))
	}

	return &stored, nil
}
