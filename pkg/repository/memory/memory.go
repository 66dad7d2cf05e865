package memory

import (
	"github.com/tracknest/tracknest/pkg/domain/interfaces"
	"github.com/tracknest/tracknest/pkg/domain/types"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = types.ErrNotFound

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory is an in-memory repository backend for development and tests
type Memory struct {
	workspace    *workspaceRepository
	user         *userRepository
	action       *actionRepository
	actionEntity *actionEntityRepository
	schedule     *scheduleRepository
	issue        *issueRepository
	linkedIssue  *linkedIssueRepository
	integration  *integrationRepository
	label        *labelRepository
}

var _ interfaces.Repository = &Memory{}

// New creates an empty in-memory repository
func New() *Memory {
	return &Memory{
		workspace:    newWorkspaceRepository(),
		user:         newUserRepository(),
		action:       newActionRepository(),
		actionEntity: newActionEntityRepository(),
		schedule:     newScheduleRepository(),
		issue:        newIssueRepository(),
		linkedIssue:  newLinkedIssueRepository(),
		integration:  newIntegrationRepository(),
		label:        newLabelRepository(),
	}
}

func (m *Memory) Workspace() interfaces.WorkspaceRepository {
	return m.workspace
}

func (m *Memory) User() interfaces.UserRepository {
	return m.user
}

func (m *Memory) Action() interfaces.ActionRepository {
	return m.action
}

func (m *Memory) ActionEntity() interfaces.ActionEntityRepository {
	return m.actionEntity
}

func (m *Memory) Schedule() interfaces.ScheduleRepository {
	return m.schedule
}

func (m *Memory) Issue() interfaces.IssueRepository {
	return m.issue
}

func (m *Memory) LinkedIssue() interfaces.LinkedIssueRepository {
	return m.linkedIssue
}

func (m *Memory) Integration() interfaces.IntegrationRepository {
	return m.integration
}

func (m *Memory) Label() interfaces.LabelRepository {
	return m.label
}

func (m *Memory) Close() error {
	return nil
}
