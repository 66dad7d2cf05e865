package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/tracknest/tracknest/pkg/domain/interfaces"
	"github.com/tracknest/tracknest/pkg/domain/types"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = types.ErrNotFound

// Firestore is the persistent repository backend
type Firestore struct {
	client       *firestore.Client
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

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix namespaces all collections, used to isolate
// test data
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.workspace.prefix = prefix
		f.user.prefix = prefix
		f.action.prefix = prefix
		f.actionEntity.prefix = prefix
		f.schedule.prefix = prefix
		f.issue.prefix = prefix
		f.linkedIssue.prefix = prefix
		f.integration.prefix = prefix
		f.label.prefix = prefix
	}
}

// New creates a Firestore-backed repository
func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:       client,
		workspace:    &workspaceRepository{client: client},
		user:         &userRepository{client: client},
		action:       &actionRepository{client: client},
		actionEntity: &actionEntityRepository{client: client},
		schedule:     &scheduleRepository{client: client},
		issue:        &issueRepository{client: client},
		linkedIssue:  &linkedIssueRepository{client: client},
		integration:  &integrationRepository{client: client},
		label:        &labelRepository{client: client},
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Workspace() interfaces.WorkspaceRepository {
	return f.workspace
}

func (f *Firestore) User() interfaces.UserRepository {
	return f.user
}

func (f *Firestore) Action() interfaces.ActionRepository {
	return f.action
}

func (f *Firestore) ActionEntity() interfaces.ActionEntityRepository {
	return f.actionEntity
}

func (f *Firestore) Schedule() interfaces.ScheduleRepository {
	return f.schedule
}

func (f *Firestore) Issue() interfaces.IssueRepository {
	return f.issue
}

func (f *Firestore) LinkedIssue() interfaces.LinkedIssueRepository {
	return f.linkedIssue
}

func (f *Firestore) Integration() interfaces.IntegrationRepository {
	return f.integration
}

func (f *Firestore) Label() interfaces.LabelRepository {
	return f.label
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func collectionName(prefix, name string) string {
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}
