package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/tracknest/tracknest/pkg/domain/model"
	"github.com/tracknest/tracknest/pkg/domain/types"
)

type labelRepository struct {
	mu     sync.RWMutex
	labels map[string]*model.Label
}

func newLabelRepository() *labelRepository {
	return &labelRepository{
		labels: make(map[string]*model.Label),
	}
}

func (r *labelRepository) Get(ctx context.Context, id string) (*model.Label, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	label, exists := r.labels[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "label not found", goerr.V("id", id))
	}

	copied := *label
	return &copied, nil
}

func (r *labelRepository) Put(ctx context.Context, label *model.Label) (*model.Label, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	stored := *label
	if stored.ID == "" {
		stored.ID = types.NewID()
	}
	if existing, exists := r.labels[stored.ID]; exists {
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	r.labels[stored.ID] = &stored
	copied := stored
	return &copied, nil
}
