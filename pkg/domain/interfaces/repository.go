package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Workspace() WorkspaceRepository
	User() UserRepository
	Action() ActionRepository
	ActionEntity() ActionEntityRepository
	Schedule() ScheduleRepository
	Issue() IssueRepository
	LinkedIssue() LinkedIssueRepository
	Integration() IntegrationRepository
	Label() LabelRepository

	Close() error
}
