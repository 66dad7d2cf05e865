package firestore

import (
	"context"
	"errors"
	"maps"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/tracknest/tracknest/pkg/domain/model"
	"github.com/tracknest/tracknest/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type integrationRepository struct {
	client *firestore.Client
	prefix string
}

func (r *integrationRepository) collection() string {
	return collectionName(r.prefix, "integration_accounts")
}

func (r *integrationRepository) Get(ctx context.Context, id string) (*model.IntegrationAccount, error) {
	docSnap, err := r.client.Collection(r.collection()).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "integration account not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get integration account", goerr.V("id", id))
	}

	var a model.IntegrationAccount
	if err := docSnap.DataTo(&a); err != nil {
		return nil, goerr.Wrap(err, "failed to decode integration account", goerr.V("id", id))
	}

	return &a, nil
}

func (r *integrationRepository) GetByName(ctx context.Context, workspaceID, integrationName string) (*model.IntegrationAccount, error) {
	iter := r.client.Collection(r.collection()).
		Where("WorkspaceID", "==", workspaceID).
		Where("IntegrationName", "==", integrationName).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	docSnap, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(ErrNotFound, "integration account not found",
			goerr.V("workspace_id", workspaceID), goerr.V("integration", integrationName))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query integration account",
			goerr.V("workspace_id", workspaceID), goerr.V("integration", integrationName))
	}

	var a model.IntegrationAccount
	if err := docSnap.DataTo(&a); err != nil {
		return nil, goerr.Wrap(err, "failed to decode integration account", goerr.V("doc_id", docSnap.Ref.ID))
	}

	return &a, nil
}

func (r *integrationRepository) Upsert(ctx context.Context, account *model.IntegrationAccount) (*model.IntegrationAccount, error) {
	now := time.Now().UTC()

	existing, err := r.GetByName(ctx, account.WorkspaceID, account.IntegrationName)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		existing.AccountID = account.AccountID
		existing.Settings = maps.Clone(account.Settings)
		existing.Token = account.Token
		existing.UpdatedAt = now
		if _, err := r.client.Collection(r.collection()).Doc(existing.ID).Set(ctx, existing); err != nil {
			return nil, goerr.Wrap(err, "failed to update integration account", goerr.V("id", existing.ID))
		}
		return existing, nil
	}

	created := *account
	if created.ID == "" {
		created.ID = types.NewID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now
	created.Settings = maps.Clone(account.Settings)
	if _, err := r.client.Collection(r.collection()).Doc(created.ID).Set(ctx, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to create integration account", goerr.V("id", created.ID))
	}

	return &created, nil
}
