package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/tracknest/tracknest/pkg/domain/model"
	"github.com/tracknest/tracknest/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type workspaceRepository struct {
	client *firestore.Client
	prefix string
}

func (r *workspaceRepository) collection() string {
	return collectionName(r.prefix, "workspaces")
}

func (r *workspaceRepository) teamCollection() string {
	return collectionName(r.prefix, "teams")
}

func (r *workspaceRepository) Get(ctx context.Context, id string) (*model.Workspace, error) {
	docSnap, err := r.client.Collection(r.collection()).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "workspace not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get workspace", goerr.V("id", id))
	}

	var w model.Workspace
	if err := docSnap.DataTo(&w); err != nil {
		return nil, goerr.Wrap(err, "failed to decode workspace", goerr.V("id", id))
	}

	return &w, nil
}

func (r *workspaceRepository) Put(ctx context.Context, workspace *model.Workspace) (*model.Workspace, error) {
	now := time.Now().UTC()
	stored := *workspace
	if stored.ID == "" {
		stored.ID = types.NewID()
	}

	docRef := r.client.Collection(r.collection()).Doc(stored.ID)
	docSnap, err := docRef.Get(ctx)
	switch {
	case err == nil:
		var existing model.Workspace
		if err := docSnap.DataTo(&existing); err != nil {
			return nil, goerr.Wrap(err, "failed to decode workspace", goerr.V("id", stored.ID))
		}
		stored.CreatedAt = existing.CreatedAt
	case status.Code(err) == codes.NotFound:
		stored.CreatedAt = now
	default:
		return nil, goerr.Wrap(err, "failed to check workspace existence", goerr.V("id", stored.ID))
	}
	stored.UpdatedAt = now

	if _, err := docRef.Set(ctx, &stored); err != nil {
		return nil, goerr.Wrap(err, "failed to put workspace", goerr.V("id", stored.ID))
	}

	return &stored, nil
}

func (r *workspaceRepository) ListTeams(ctx context.Context, workspaceID string) ([]*model.Team, error) {
	iter := r.client.Collection(r.teamCollection()).
		Where("WorkspaceID", "==", workspaceID).
		Documents(ctx)
	defer iter.Stop()

	teams := make([]*model.Team, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate teams", goerr.V("workspace_id", workspaceID))
		}

		var t model.Team
		if err := docSnap.DataTo(&t); err != nil {
			return nil, goerr.Wrap(err, "failed to decode team", goerr.V("doc_id", docSnap.Ref.ID))
		}
		teams = append(teams, &t)
	}

	return teams, nil
}

func (r *workspaceRepository) GetTeam(ctx context.Context, id string) (*model.Team, error) {
	docSnap, err := r.client.Collection(r.teamCollection()).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "team not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get team", goerr.V("id", id))
	}

	var t model.Team
	if err := docSnap.DataTo(&t); err != nil {
		return nil, goerr.Wrap(err, "failed to decode team", goerr.V("id", id))
	}

	return &t, nil
}

func (r *workspaceRepository) PutTeam(ctx context.Context, team *model.Team) (*model.Team, error) {
	stored := *team
	if stored.ID == "" {
		stored.ID = types.NewID()
	}

	if _, err := r.client.Collection(r.teamCollection()).Doc(stored.ID).Set(ctx, &stored); err != nil {
		return nil, goerr.Wrap(err, "failed to put team", goerr.V("id", stored.ID))
	}

	return &stored, nil
}
