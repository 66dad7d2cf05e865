package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/tracknest/tracknest/pkg/domain/model"
	"github.com/tracknest/tracknest/pkg/domain/types"
)

type scheduleRepository struct {
	mu        sync.RWMutex
	schedules map[string]*model.ActionSchedule
}

func newScheduleRepository() *scheduleRepository {
	return &scheduleRepository{
		schedules: make(map[string]*model.ActionSchedule),
	}
}

func copySchedule(s *model.ActionSchedule) *model.ActionSchedule {
	copied := *s
	if s.Deleted != nil {
		deleted := *s.Deleted
		copied.Deleted = &deleted
	}
	return &copied
}

func (r *scheduleRepository) Create(ctx context.Context, schedule *model.ActionSchedule) (*model.ActionSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := copySchedule(schedule)
	if created.ID == "" {
		created.ID = types.NewID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	r.schedules[created.ID] = created
	return copySchedule(created), nil
}

func (r *scheduleRepository) Get(ctx context.Context, id string) (*model.ActionSchedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schedule, exists := r.schedules[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "schedule not found", goerr.V("id", id))
	}

	return copySchedule(schedule), nil
}

func (r *scheduleRepository) Update(ctx context.Context, schedule *model.ActionSchedule) (*model.ActionSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.schedules[schedule.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "schedule not found", goerr.V("id", schedule.ID))
	}

	updated := copySchedule(schedule)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.schedules[updated.ID] = updated
	return copySchedule(updated), nil
}

func (r *scheduleRepository) HardDelete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.schedules[id]; !exists {
		return goerr.Wrap(ErrNotFound, "schedule not found", goerr.V("id", id))
	}

	delete(r.schedules, id)
	return nil
}
