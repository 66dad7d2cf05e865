package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/tracknest/tracknest/pkg/domain/interfaces"
	"github.com/tracknest/tracknest/pkg/domain/model"
	"github.com/tracknest/tracknest/pkg/domain/types"
	"github.com/tracknest/tracknest/pkg/repository/memory"
)

func runIntegrationRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	const wsID = "test-ws"

	t.Run("Upsert creates and GetByName retrieves", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Integration().Upsert(ctx, &model.IntegrationAccount{
			WorkspaceID:     wsID,
			IntegrationName: model.IntegrationSlack,
			AccountID:       "T123",
			Token:           "xoxb-token",
			Settings:        map[string]any{"token": "xoxb-token"},
		})
		gt.NoError(t, err).Required()
		gt.Value(t, created.ID).NotEqual("")

		found, err := repo.Integration().GetByName(ctx, wsID, model.IntegrationSlack)
		gt.NoError(t, err).Required()
		gt.Value(t, found.ID).Equal(created.ID)
		gt.Value(t, found.Token).Equal("xoxb-token")
	})

	t.Run("Upsert is keyed by workspace and integration name", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		first, err := repo.Integration().Upsert(ctx, &model.IntegrationAccount{
			WorkspaceID:     wsID,
			IntegrationName: model.IntegrationSlack,
			AccountID:       "T123",
		})
		gt.NoError(t, err).Required()

		// Re-connecting replaces the account in place
		second, err := repo.Integration().Upsert(ctx, &model.IntegrationAccount{
			WorkspaceID:     wsID,
			IntegrationName: model.IntegrationSlack,
			AccountID:       "T456",
			Token:           "xoxb-new",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, second.ID).Equal(first.ID)
		gt.Value(t, second.AccountID).Equal("T456")

		// A different integration gets its own account
		github, err := repo.Integration().Upsert(ctx, &model.IntegrationAccount{
			WorkspaceID:     wsID,
			IntegrationName: model.IntegrationGithub,
			AccountID:       "12345",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, github.ID).NotEqual(first.ID)
	})

	t.Run("GetByName returns ErrNotFound when not connected", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Integration().GetByName(ctx, wsID, model.IntegrationGithub)
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, types.ErrNotFound)).True()
	})
}

func TestIntegrationRepository_Memory(t *testing.T) {
	runIntegrationRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestIntegrationRepository_Firestore(t *testing.T) {
	runIntegrationRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return newFirestoreRepo(t)
	})
}
