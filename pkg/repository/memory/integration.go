package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/tracknest/tracknest/pkg/domain/model"
	"github.com/tracknest/tracknest/pkg/domain/types"
)

type integrationRepository struct {
	mu       sync.RWMutex
	accounts map[string]*model.IntegrationAccount
}

func newIntegrationRepository() *integrationRepository {
	return &integrationRepository{
		accounts: make(map[string]*model.IntegrationAccount),
	}
}

func copyAccount(a *model.IntegrationAccount) *model.IntegrationAccount {
	copied := *a
	copied.Settings = maps.Clone(a.Settings)
	return &copied
}

func (r *integrationRepository) Get(ctx context.Context, id string) (*model.IntegrationAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, exists := r.accounts[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "integration account not found", goerr.V("id", id))
	}

	return copyAccount(account), nil
}

func (r *integrationRepository) GetByName(ctx context.Context, workspaceID, integrationName string) (*model.IntegrationAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, account := range r.accounts {
		if account.WorkspaceID == workspaceID && account.IntegrationName == integrationName {
			return copyAccount(account), nil
		}
	}

	return nil, goerr.Wrap(ErrNotFound, "integration account not found",
		goerr.V("workspace_id", workspaceID), goerr.V("integration", integrationName))
}

func (r *integrationRepository) Upsert(ctx context.Context, account *model.IntegrationAccount) (*model.IntegrationAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for _, existing := range r.accounts {
		if existing.WorkspaceID == account.WorkspaceID && existing.IntegrationName == account.IntegrationName {
			existing.AccountID = account.AccountID
			existing.Settings = maps.Clone(account.Settings)
			existing.Token = account.Token
			existing.UpdatedAt = now
			return copyAccount(existing), nil
		}
	}

	created := copyAccount(account)
	if created.ID == "" {
		created.ID = types.NewID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now
	r.accounts[created.ID] = created
	return copyAccount(created), nil
}
