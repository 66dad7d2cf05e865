package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrActionNotFound   = errors.New("action not found")
	ErrScheduleNotFound = errors.New("schedule not found")

	// Quota errors
	ErrQuotaExceeded = errors.New("workspace action quota exceeded")

	// Validation errors
	ErrInvalidRequest = errors.New("invalid request")

	// Configuration errors
	ErrIntegrationMissing = errors.New("integration account not configured")
)

// Context keys for error values
const (
	ActionIDKey    = "action_id"
	ActionSlugKey  = "action_slug"
	ScheduleIDKey  = "schedule_id"
	WorkspaceIDKey = "workspace_id"
)
