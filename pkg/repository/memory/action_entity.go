package memory

import (
	"context"
	"sync"
	"time"

	"github.com/tracknest/tracknest/pkg/domain/model"
	"github.com/tracknest/tracknest/pkg/domain/types"
)

type actionEntityRepository struct {
	mu       sync.RWMutex
	entities map[string]*model.ActionEntity
}

func newActionEntityRepository() *actionEntityRepository {
	return &actionEntityRepository{
		entities: make(map[string]*model.ActionEntity),
	}
}

func copyActionEntity(e *model.ActionEntity) *model.ActionEntity {
	copied := *e
	if e.Deleted != nil {
		deleted := *e.Deleted
		copied.Deleted = &deleted
	}
	return &copied
}

func (r *actionEntityRepository) Replace(ctx context.Context, actionID string, pairs []model.EntityPair) ([]*model.ActionEntity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, entity := range r.entities {
		if entity.ActionID == actionID {
			delete(r.entities, id)
		}
	}

	now := time.Now().UTC()
	created := make([]*model.ActionEntity, 0, len(pairs))
	for _, pair := range pairs {
		entity := &model.ActionEntity{
			ID:        types.NewID(),
			ActionID:  actionID,
			Type:      pair.Type,
			Entity:    pair.Entity,
			CreatedAt: now,
			UpdatedAt: now,
		}
		r.entities[entity.ID] = entity
		created = append(created, copyActionEntity(entity))
	}

	return created, nil
}

func (r *actionEntityRepository) DeleteForAction(ctx context.Context, actionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, entity := range r.entities {
		if entity.ActionID == actionID {
			delete(r.entities, id)
		}
	}

	return nil
}

func (r *actionEntityRepository) ListForAction(ctx context.Context, actionID string) ([]*model.ActionEntity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entities := make([]*model.ActionEntity, 0)
	for _, entity := range r.entities {
		if entity.ActionID == actionID && entity.Deleted == nil {
			entities = append(entities, copyActionEntity(entity))
		}
	}

	return entities, nil
}

func (r *actionEntityRepository) FindMatches(ctx context.Context, eventType types.ActionEventType, entity types.ModelName) ([]*model.ActionEntity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := make([]*model.ActionEntity, 0)
	for _, e := range r.entities {
		if e.Type == eventType && e.Entity == entity && e.Deleted == nil {
			matches = append(matches, copyActionEntity(e))
		}
	}

	return matches, nil
}
