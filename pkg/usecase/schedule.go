package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/tracknest/tracknest/pkg/domain/model"
	"github.com/tracknest/tracknest/pkg/domain/types"
	"github.com/tracknest/tracknest/pkg/service/trigger"
	"github.com/tracknest/tracknest/pkg/utils/logging"
)

// ScheduleInput describes a recurring invocation of an action
type ScheduleInput struct {
	Cron     string
	Timezone string
}

// CreateSchedule registers a cron schedule for an action. The local
// row is written first in IN_ACTIVE, then the external scheduler is
// called, and only a successful registration activates the row. A
// failed registration removes the pending row so the visible state
// matches the state before the call.
func (uc *ActionUseCase) CreateSchedule(ctx context.Context, slug, workspaceID string, input ScheduleInput, scheduledByID string) (*model.ActionSchedule, error) {
	if err := uc.requireTrigger(); err != nil {
		return nil, err
	}
	if input.Cron == "" {
		return nil, goerr.New("cron expression is required", goerr.V(ActionSlugKey, slug))
	}

	action, err := uc.getBySlug(ctx, workspaceID, slug)
	if err != nil {
		return nil, err
	}

	pending, err := uc.repo.Schedule().Create(ctx, &model.ActionSchedule{
		ActionID:      action.ID,
		Cron:          input.Cron,
		Timezone:      input.Timezone,
		Status:        types.ScheduleStatusInActive,
		ScheduledByID: scheduledByID,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create schedule row", goerr.V(ActionIDKey, action.ID))
	}

	remote, err := uc.trigger.CreateScheduleTask(ctx, &trigger.ScheduleTaskInput{
		TaskID:           action.HandlerTask(),
		Cron:             input.Cron,
		Timezone:         input.Timezone,
		DeduplicationKey: pending.ID,
		ExternalID:       pending.ID,
	})
	if err != nil {
		// Compensate: the pending row must not survive a failed remote
		// registration
		if delErr := uc.repo.Schedule().HardDelete(ctx, pending.ID); delErr != nil {
			return nil, goerr.Wrap(err, "failed to register schedule, and also failed to remove pending row",
				goerr.V("rollback_error", delErr),
				goerr.V(ScheduleIDKey, pending.ID))
		}
		return nil, goerr.Wrap(err, "failed to register schedule", goerr.V(ScheduleIDKey, pending.ID))
	}

	confirmed := *pending
	confirmed.Status = types.ScheduleStatusActive
	confirmed.ScheduleID = remote.ID

	result, err := uc.repo.Schedule().Update(ctx, &confirmed)
	if err != nil {
		// The remote registration exists without a confirmed local row.
		// The deduplication key makes a re-created schedule converge on
		// the same remote registration, so log and surface the error.
		logging.From(ctx).Error("schedule registered remotely but local confirm failed",
			"error", err, "schedule_id", pending.ID, "remote_id", remote.ID)
		return nil, goerr.Wrap(err, "failed to confirm schedule", goerr.V(ScheduleIDKey, pending.ID))
	}

	return result, nil
}

// UpdateSchedule changes the cron definition of a schedule. On remote
// failure the local row is restored from its pre-call snapshot.
func (uc *ActionUseCase) UpdateSchedule(ctx context.Context, scheduleID string, input ScheduleInput) (*model.ActionSchedule, error) {
	if err := uc.requireTrigger(); err != nil {
		return nil, err
	}

	snapshot, err := uc.getSchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	action, err := uc.repo.Action().Get(ctx, snapshot.ActionID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load schedule action", goerr.V(ScheduleIDKey, scheduleID))
	}

	patched := *snapshot
	if input.Cron != "" {
		patched.Cron = input.Cron
	}
	if input.Timezone != "" {
		patched.Timezone = input.Timezone
	}

	updated, err := uc.repo.Schedule().Update(ctx, &patched)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update schedule row", goerr.V(ScheduleIDKey, scheduleID))
	}

	if _, err := uc.trigger.UpdateScheduleTask(ctx, snapshot.ScheduleID, &trigger.ScheduleTaskInput{
		TaskID:           action.HandlerTask(),
		Cron:             patched.Cron,
		Timezone:         patched.Timezone,
		DeduplicationKey: snapshot.ID,
		ExternalID:       snapshot.ID,
	}); err != nil {
		if restoreErr := uc.restoreSchedule(ctx, snapshot); restoreErr != nil {
			return nil, goerr.Wrap(err, "failed to update remote schedule, and also failed to restore row",
				goerr.V("rollback_error", restoreErr),
				goerr.V(ScheduleIDKey, scheduleID))
		}
		return nil, goerr.Wrap(err, "failed to update remote schedule", goerr.V(ScheduleIDKey, scheduleID))
	}

	return updated, nil
}

// DeleteSchedule soft-deletes a schedule. The platform exposes no
// delete primitive, so the remote registration is updated in place;
// the deactivated local row keeps it from firing the action.
func (uc *ActionUseCase) DeleteSchedule(ctx context.Context, scheduleID string) (*model.ActionSchedule, error) {
	if err := uc.requireTrigger(); err != nil {
		return nil, err
	}

	snapshot, err := uc.getSchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	action, err := uc.repo.Action().Get(ctx, snapshot.ActionID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load schedule action", goerr.V(ScheduleIDKey, scheduleID))
	}

	now := timeNow()
	patched := *snapshot
	patched.Status = types.ScheduleStatusInActive
	patched.Deleted = &now

	deleted, err := uc.repo.Schedule().Update(ctx, &patched)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to mark schedule deleted", goerr.V(ScheduleIDKey, scheduleID))
	}

	if _, err := uc.trigger.UpdateScheduleTask(ctx, snapshot.ScheduleID, &trigger.ScheduleTaskInput{
		TaskID:           action.HandlerTask(),
		Cron:             snapshot.Cron,
		Timezone:         snapshot.Timezone,
		DeduplicationKey: snapshot.ID,
		ExternalID:       snapshot.ID,
	}); err != nil {
		if restoreErr := uc.restoreSchedule(ctx, snapshot); restoreErr != nil {
			return nil, goerr.Wrap(err, "failed to update remote schedule, and also failed to restore row",
				goerr.V("rollback_error", restoreErr),
				goerr.V(ScheduleIDKey, scheduleID))
		}
		return nil, goerr.Wrap(err, "failed to update remote schedule", goerr.V(ScheduleIDKey, scheduleID))
	}

	return deleted, nil
}

// TriggerScheduledAction fires an action's handler with an ON_SCHEDULE
// event. Called by the platform when a registered schedule fires.
func (uc *ActionUseCase) TriggerScheduledAction(ctx context.Context, actionID string) (*trigger.RunHandle, error) {
	if err := uc.requireTrigger(); err != nil {
		return nil, err
	}

	action, err := uc.repo.Action().Get(ctx, actionID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, goerr.Wrap(ErrActionNotFound, "cannot trigger scheduled action", goerr.V(ActionIDKey, actionID))
		}
		return nil, goerr.Wrap(err, "failed to load action", goerr.V(ActionIDKey, actionID))
	}

	accounts, err := resolveIntegrationAccounts(ctx, uc.repo, action.WorkspaceID, action.Integrations)
	if err != nil {
		return nil, err
	}

	handle, err := uc.trigger.TriggerTaskAsync(ctx, action.HandlerTask(), &model.TriggerEventPayload{
		Event: types.ActionEventOnSchedule,
		Payload: model.TriggerEventData{
			Data: model.TriggerEventBody{
				IntegrationAccounts: accounts,
			},
		},
	}, "")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to trigger scheduled action", goerr.V(ActionIDKey, actionID))
	}

	return handle, nil
}

func (uc *ActionUseCase) getSchedule(ctx context.Context, scheduleID string) (*model.ActionSchedule, error) {
	schedule, err := uc.repo.Schedule().Get(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, goerr.Wrap(ErrScheduleNotFound, "schedule not found", goerr.V(ScheduleIDKey, scheduleID))
		}
		return nil, goerr.Wrap(err, "failed to get schedule", goerr.V(ScheduleIDKey, scheduleID))
	}
	return schedule, nil
}

func (uc *ActionUseCase) restoreSchedule(ctx context.Context, snapshot *model.ActionSchedule) error {
	if _, err := uc.repo.Schedule().Update(ctx, snapshot); err != nil {
		return goerr.Wrap(err, "failed to restore schedule snapshot", goerr.V(ScheduleIDKey, snapshot.ID))
	}
	return nil
}
