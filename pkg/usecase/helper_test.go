package usecase_test

import (
	"context"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/tracknest/tracknest/pkg/domain/interfaces"
	"github.com/tracknest/tracknest/pkg/domain/model"
	"github.com/tracknest/tracknest/pkg/repository/memory"
	"github.com/tracknest/tracknest/pkg/service/slack"
	"github.com/tracknest/tracknest/pkg/service/trigger"
)

// triggeredTask records one fired task for assertions
type triggeredTask struct {
	TaskID  string
	Payload any
	APIKey  string
}

// mockTrigger is a scriptable trigger.Client. Unset hooks succeed with
// canned responses; every fired task is recorded.
type mockTrigger struct {
	mu        sync.Mutex
	triggered []triggeredTask

	triggerTaskFn      func(ctx context.Context, taskID string, payload any, apiKey string) (*trigger.Run, error)
	triggerTaskAsyncFn func(ctx context.Context, taskID string, payload any, apiKey string) (*trigger.RunHandle, error)
	createScheduleFn   func(ctx context.Context, input *trigger.ScheduleTaskInput) (*trigger.Schedule, error)
	updateScheduleFn   func(ctx context.Context, scheduleID string, input *trigger.ScheduleTaskInput) (*trigger.Schedule, error)
	getLatestVersionFn func(ctx context.Context, taskID string) (string, error)
	getRunFn           func(ctx context.Context, runID string) (*trigger.Run, error)
	listRunsFn         func(ctx context.Context, taskID, env string) ([]*trigger.Run, error)
	replayRunFn        func(ctx context.Context, runID string) (*trigger.RunHandle, error)
	cancelRunFn        func(ctx context.Context, runID string) error
}

var _ trigger.Client = &mockTrigger{}

func (m *mockTrigger) record(taskID string, payload any, apiKey string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.triggered = append(m.triggered, triggeredTask{TaskID: taskID, Payload: payload, APIKey: apiKey})
}

func (m *mockTrigger) Triggered() []triggeredTask {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]triggeredTask{}, m.triggered...)
}

func (m *mockTrigger) TriggerTask(ctx context.Context, taskID string, payload any, apiKey string) (*trigger.Run, error) {
	m.record(taskID, payload, apiKey)
	if m.triggerTaskFn != nil {
		return m.triggerTaskFn(ctx, taskID, payload, apiKey)
	}
	return &trigger.Run{ID: "run-1", Status: trigger.RunStatusCompleted}, nil
}

func (m *mockTrigger) TriggerTaskAsync(ctx context.Context, taskID string, payload any, apiKey string) (*trigger.RunHandle, error) {
	m.record(taskID, payload, apiKey)
	if m.triggerTaskAsyncFn != nil {
		return m.triggerTaskAsyncFn(ctx, taskID, payload, apiKey)
	}
	return &trigger.RunHandle{ID: "handle-1"}, nil
}

func (m *mockTrigger) CreateScheduleTask(ctx context.Context, input *trigger.ScheduleTaskInput) (*trigger.Schedule, error) {
	if m.createScheduleFn != nil {
		return m.createScheduleFn(ctx, input)
	}
	return &trigger.Schedule{ID: "sched-remote-1", TaskID: input.TaskID}, nil
}

func (m *mockTrigger) UpdateScheduleTask(ctx context.Context, scheduleID string, input *trigger.ScheduleTaskInput) (*trigger.Schedule, error) {
	if m.updateScheduleFn != nil {
		return m.updateScheduleFn(ctx, scheduleID, input)
	}
	return &trigger.Schedule{ID: scheduleID, TaskID: input.TaskID}, nil
}

func (m *mockTrigger) GetLatestVersion(ctx context.Context, taskID string) (string, error) {
	if m.getLatestVersionFn != nil {
		return m.getLatestVersionFn(ctx, taskID)
	}
	return "", nil
}

func (m *mockTrigger) GetRun(ctx context.Context, runID string) (*trigger.Run, error) {
	if m.getRunFn != nil {
		return m.getRunFn(ctx, runID)
	}
	return &trigger.Run{ID: runID, Status: trigger.RunStatusCompleted}, nil
}

func (m *mockTrigger) ListRuns(ctx context.Context, taskID, env string) ([]*trigger.Run, error) {
	if m.listRunsFn != nil {
		return m.listRunsFn(ctx, taskID, env)
	}
	return nil, nil
}

func (m *mockTrigger) ReplayRun(ctx context.Context, runID string) (*trigger.RunHandle, error) {
	if m.replayRunFn != nil {
		return m.replayRunFn(ctx, runID)
	}
	return &trigger.RunHandle{ID: "handle-replay"}, nil
}

func (m *mockTrigger) CancelRun(ctx context.Context, runID string) error {
	if m.cancelRunFn != nil {
		return m.cancelRunFn(ctx, runID)
	}
	return nil
}

// mockSlack is a scriptable slack.Service
type mockSlack struct {
	threadMessage string
	threadErr     error

	notifyResult *slack.NotifyResult
	notifyErr    error
	notified     []*slack.NotifyInput
}

var _ slack.Service = &mockSlack{}

func (m *mockSlack) GetThreadMessage(ctx context.Context, channelID, threadTs string) (string, error) {
	return m.threadMessage, m.threadErr
}

func (m *mockSlack) NotifyIssueLinked(ctx context.Context, input *slack.NotifyInput) (*slack.NotifyResult, error) {
	m.notified = append(m.notified, input)
	if m.notifyErr != nil {
		return &slack.NotifyResult{OK: false}, m.notifyErr
	}
	if m.notifyResult != nil {
		return m.notifyResult, nil
	}
	return &slack.NotifyResult{OK: true, Timestamp: "1700000001.000001"}, nil
}

func slackFactoryFor(svc slack.Service) slack.Factory {
	return func(token string) (slack.Service, error) {
		return svc, nil
	}
}

// seedWorkspace stores a workspace with one team and returns both
func seedWorkspace(t *testing.T, repo interfaces.Repository, id string, actionsEnabled bool, actionCount int) (*model.Workspace, *model.Team) {
	t.Helper()
	ctx := context.Background()

	workspace, err := repo.Workspace().Put(ctx, &model.Workspace{
		ID:             id,
		Name:           "Test Workspace",
		Slug:           id,
		ActionsEnabled: actionsEnabled,
		Preferences:    model.WorkspacePreferences{ActionCount: actionCount},
	})
	gt.NoError(t, err).Required()

	team, err := repo.Workspace().PutTeam(ctx, &model.Team{
		ID:          id + "-team",
		WorkspaceID: id,
		Name:        "Engineering",
		Identifier:  "ENG",
	})
	gt.NoError(t, err).Required()

	return workspace, team
}

func newMemoryRepo(t *testing.T) interfaces.Repository {
	t.Helper()
	return memory.New()
}
