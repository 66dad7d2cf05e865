package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/tracknest/tracknest/pkg/domain/model"
	"github.com/tracknest/tracknest/pkg/domain/types"
)

type membershipKey struct {
	userID      string
	workspaceID string
}

type userRepository struct {
	mu          sync.RWMutex
	users       map[string]*model.User // keyed by email
	memberships map[membershipKey]*model.UserOnWorkspace
	tokens      map[string]*model.PersonalAccessToken
}

func newUserRepository() *userRepository {
	return &userRepository{
		users:       make(map[string]*model.User),
		memberships: make(map[membershipKey]*model.UserOnWorkspace),
		tokens:      make(map[string]*model.PersonalAccessToken),
	}
}

func copyUser(u *model.User) *model.User {
	copied := *u
	return &copied
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[email]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("email", email))
	}

	return copyUser(user), nil
}

func (r *userRepository) Upsert(ctx context.Context, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if existing, exists := r.users[user.Email]; exists {
		updated := copyUser(existing)
		updated.FullName = user.FullName
		updated.Image = user.Image
		updated.UpdatedAt = now
		r.users[user.Email] = updated
		return copyUser(updated), nil
	}

	created := copyUser(user)
	if created.ID == "" {
		created.ID = types.NewID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now
	r.users[created.Email] = created
	return copyUser(created), nil
}

func (r *userRepository) UpsertMembership(ctx context.Context, membership *model.UserOnWorkspace) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := membershipKey{userID: membership.UserID, workspaceID: membership.WorkspaceID}
	now := time.Now().UTC()

	if existing, exists := r.memberships[key]; exists {
		// Only the role is refreshed on re-deploys; team assignments are
		// kept as provisioned
		existing.Role = membership.Role
		existing.UpdatedAt = now
		return nil
	}

	stored := &model.UserOnWorkspace{
		UserID:      membership.UserID,
		WorkspaceID: membership.WorkspaceID,
		Role:        membership.Role,
		TeamIDs:     slices.Clone(membership.TeamIDs),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.memberships[key] = stored
	return nil
}

func (r *userRepository) FindToken(ctx context.Context, userID, tokenType string) (*model.PersonalAccessToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, token := range r.tokens {
		if token.UserID == userID && token.Type == tokenType {
			copied := *token
			return &copied, nil
		}
	}

	return nil, nil
}

func (r *userRepository) CreateToken(ctx context.Context, token *model.PersonalAccessToken) (*model.PersonalAccessToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := *token
	if created.ID == "" {
		created.ID = types.NewID()
	}
	created.CreatedAt = time.Now().UTC()

	r.tokens[created.ID] = &created
	copied := created
	return &copied, nil
}
