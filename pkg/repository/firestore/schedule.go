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

type scheduleRepository struct {
	client *firestore.Client
	prefix string
}

func (r *scheduleRepository) collection() string {
	return collectionName(r.prefix, "action_schedules")
}

func (r *scheduleRepository) Create(ctx context.Context, schedule *model.ActionSchedule) (*model.ActionSchedule, error) {
	now := time.Now().UTC()
	created := *schedule
	if created.ID == "" {
		created.ID = types.NewID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	if _, err := r.client.Collection(r.collection()).Doc(created.ID).Set(ctx, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to create schedule", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *scheduleRepository) Get(ctx context.Context, id string) (*model.ActionSchedule, error) {
	docSnap, err := r.client.Collection(r.collection()).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "schedule not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get schedule", goerr.V("id", id))
	}

	var s model.ActionSchedule
	if err := docSnap.DataTo(&s); err != nil {
		return nil, goerr.Wrap(err, "failed to decode schedule", goerr.V("id", id))
	}

	return &s, nil
}

func (r *scheduleRepository) Update(ctx context.Context, schedule *model.ActionSchedule) (*model.ActionSchedule, error) {
	docRef := r.client.Collection(r.collection()).Doc(schedule.ID)

	docSnap, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "schedule not found", goerr.V("id", schedule.ID))
		}
		return nil, goerr.Wrap(err, "failed to check schedule existence", goerr.V("id", schedule.ID))
	}

	var existing model.ActionSchedule
	if err := docSnap.DataTo(&existing); err != nil {
		return nil, goerr.Wrap(err, "failed to decode schedule", goerr.V("id", schedule.ID))
	}

	updated := *schedule
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	if _, err := docRef.Set(ctx, &updated); err != nil {
		return nil, goerr.Wrap(err, "failed to update schedule", goerr.V("id", schedule.ID))
	}

	return &updated, nil
}

func (r *scheduleRepository) HardDelete(ctx context.Context, id string) error {
	docRef := r.client.Collection(r.collection()).Doc(id)

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "schedule not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to check schedule existence", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete schedule", goerr.V("id", id))
	}

	return nil
}
