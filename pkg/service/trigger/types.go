package trigger

import (
	"context"
)

// Client provides access to the task execution platform. Tasks are
// referenced by their registered identifier, schedules by the ID the
// platform assigned at creation.
type Client interface {
	// TriggerTask fires a task and waits for its terminal run state.
	// A non-empty apiKey overrides the client credential for this call.
	TriggerTask(ctx context.Context, taskID string, payload any, apiKey string) (*Run, error)

	// TriggerTaskAsync fires a task and returns the run handle without
	// awaiting completion. A non-empty apiKey overrides the client
	// credential for this call.
	TriggerTaskAsync(ctx context.Context, taskID string, payload any, apiKey string) (*RunHandle, error)

	// CreateScheduleTask registers a cron schedule for a task
	CreateScheduleTask(ctx context.Context, input *ScheduleTaskInput) (*Schedule, error)

	// UpdateScheduleTask replaces the definition of an existing schedule
	UpdateScheduleTask(ctx context.Context, scheduleID string, input *ScheduleTaskInput) (*Schedule, error)

	// GetLatestVersion returns the most recently deployed version of a task
	GetLatestVersion(ctx context.Context, taskID string) (string, error)

	// GetRun fetches the current state of a run
	GetRun(ctx context.Context, runID string) (*Run, error)

	// ListRuns lists runs of a task, optionally filtered by environment
	ListRuns(ctx context.Context, taskID, env string) ([]*Run, error)

	// ReplayRun re-executes a finished run with its original payload
	ReplayRun(ctx context.Context, runID string) (*RunHandle, error)

	// CancelRun stops an in-flight run
	CancelRun(ctx context.Context, runID string) error
}

// ScheduleTaskInput describes a cron schedule registration. The
// deduplication key makes repeated registrations converge on a single
// remote schedule.
type ScheduleTaskInput struct {
	TaskID           string `json:"task"`
	Cron             string `json:"cron"`
	Timezone         string `json:"timezone,omitempty"`
	DeduplicationKey string `json:"deduplicationKey"`
	ExternalID       string `json:"externalId"`
}

// Schedule is the platform's view of a registered schedule
type Schedule struct {
	ID               string `json:"id"`
	TaskID           string `json:"task"`
	Cron             string `json:"generator,omitempty"`
	Timezone         string `json:"timezone,omitempty"`
	DeduplicationKey string `json:"deduplicationKey,omitempty"`
	ExternalID       string `json:"externalId,omitempty"`
}

// RunHandle identifies a fired run
type RunHandle struct {
	ID string `json:"id"`
}

// Run is the state of a task run
type Run struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Output any    `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Terminal run statuses reported by the platform
const (
	RunStatusCompleted = "COMPLETED"
	RunStatusFailed    = "FAILED"
	RunStatusCanceled  = "CANCELED"
)

// IsTerminal reports whether the run has finished
func (r *Run) IsTerminal() bool {
	switch r.Status {
	case RunStatusCompleted, RunStatusFailed, RunStatusCanceled:
		return true
	}
	return false
}
