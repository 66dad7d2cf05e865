package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/tracknest/tracknest/pkg/domain/model"
	"github.com/tracknest/tracknest/pkg/domain/types"
	"google.golang.org/api/iterator"
)

type actionEntityRepository struct {
	client *firestore.Client
	prefix string
}

func (r *actionEntityRepository) collection() string {
	return collectionName(r.prefix, "action_entities")
}

func (r *actionEntityRepository) refsForAction(ctx context.Context, actionID string) ([]*firestore.DocumentRef, error) {
	iter := r.client.Collection(r.collection()).
		Where("ActionID", "==", actionID).
		Documents(ctx)
	defer iter.Stop()

	var refs []*firestore.DocumentRef
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate action entities", goerr.V("action_id", actionID))
		}
		refs = append(refs, docSnap.Ref)
	}

	return refs, nil
}

// Replace swaps the whole entity set of an action in a single batch so
// no reader observes a partially replaced set
func (r *actionEntityRepository) Replace(ctx context.Context, actionID string, pairs []model.EntityPair) ([]*model.ActionEntity, error) {
	refs, err := r.refsForAction(ctx, actionID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created := make([]*model.ActionEntity, 0, len(pairs))

	batch := r.client.BulkWriter(ctx)
	for _, ref := range refs {
		if _, err := batch.Delete(ref); err != nil {
			return nil, goerr.Wrap(err, "failed to queue entity delete", goerr.V("action_id", actionID))
		}
	}
	for _, pair := range pairs {
		entity := &model.ActionEntity{
			ID:        types.NewID(),
			ActionID:  actionID,
			Type:      pair.Type,
			Entity:    pair.Entity,
			CreatedAt: now,
			UpdatedAt: now,
		}
		ref := r.client.Collection(r.collection()).Doc(entity.ID)
		if _, err := batch.Set(ref, entity); err != nil {
			return nil, goerr.Wrap(err, "failed to queue entity insert", goerr.V("action_id", actionID))
		}
		created = append(created, entity)
	}
	batch.End()

	return created, nil
}

func (r *actionEntityRepository) DeleteForAction(ctx context.Context, actionID string) error {
	refs, err := r.refsForAction(ctx, actionID)
	if err != nil {
		return err
	}

	batch := r.client.BulkWriter(ctx)
	for _, ref := range refs {
		if _, err := batch.Delete(ref); err != nil {
			return goerr.Wrap(err, "failed to queue entity delete", goerr.V("action_id", actionID))
		}
	}
	batch.End()

	return nil
}

func (r *actionEntityRepository) ListForAction(ctx context.Context, actionID string) ([]*model.ActionEntity, error) {
	iter := r.client.Collection(r.collection()).
		Where("ActionID", "==", actionID).
		Documents(ctx)
	defer iter.Stop()

	entities := make([]*model.ActionEntity, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate action entities", goerr.V("action_id", actionID))
		}

		var e model.ActionEntity
		if err := docSnap.DataTo(&e); err != nil {
			return nil, goerr.Wrap(err, "failed to decode action entity", goerr.V("doc_id", docSnap.Ref.ID))
		}
		if e.Deleted == nil {
			entities = append(entities, &e)
		}
	}

	return entities, nil
}

func (r *actionEntityRepository) FindMatches(ctx context.Context, eventType types.ActionEventType, entity types.ModelName) ([]*model.ActionEntity, error) {
	iter := r.client.Collection(r.collection()).
		Where("Type", "==", string(eventType)).
		Where("Entity", "==", string(entity)).
		Documents(ctx)
	defer iter.Stop()

	matches := make([]*model.ActionEntity, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate entity matches",
				goerr.V("type", eventType), goerr.V("entity", entity))
		}

		var e model.ActionEntity
		if err := docSnap.DataTo(&e); err != nil {
			return nil, goerr.Wrap(err, "failed to decode action entity", goerr.V("doc_id", docSnap.Ref.ID))
		}
		if e.Deleted == nil {
			matches = append(matches, &e)
		}
	}

	return matches, nil
}
