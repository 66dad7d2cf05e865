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

type userRepository struct {
	client *firestore.Client
	prefix string
}

// Users are keyed by email so workflow user provisioning stays
// idempotent without an extra query
func (r *userRepository) collection() string {
	return collectionName(r.prefix, "users")
}

func (r *userRepository) membershipCollection() string {
	return collectionName(r.prefix, "user_on_workspaces")
}

func (r *userRepository) tokenCollection() string {
	return collectionName(r.prefix, "personal_access_tokens")
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	docSnap, err := r.client.Collection(r.collection()).Doc(email).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("email", email))
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("email", email))
	}

	var u model.User
	if err := docSnap.DataTo(&u); err != nil {
		return nil, goerr.Wrap(err, "failed to decode user", goerr.V("email", email))
	}

	return &u, nil
}

func (r *userRepository) Upsert(ctx context.Context, user *model.User) (*model.User, error) {
	now := time.Now().UTC()
	docRef := r.client.Collection(r.collection()).Doc(user.Email)

	docSnap, err := docRef.Get(ctx)
	switch {
	case err == nil:
		var existing model.User
		if err := docSnap.DataTo(&existing); err != nil {
			return nil, goerr.Wrap(err, "failed to decode user", goerr.V("email", user.Email))
		}
		existing.FullName = user.FullName
		existing.Image = user.Image
		existing.UpdatedAt = now
		if _, err := docRef.Set(ctx, &existing); err != nil {
			return nil, goerr.Wrap(err, "failed to update user", goerr.V("email", user.Email))
		}
		return &existing, nil

	case status.Code(err) == codes.NotFound:
		created := *user
		if created.ID == "" {
			created.ID = types.NewID()
		}
		created.CreatedAt = now
		created.UpdatedAt = now
		if _, err := docRef.Set(ctx, &created); err != nil {
			return nil, goerr.Wrap(err, "failed to create user", goerr.V("email", user.Email))
		}
		return &created, nil

	default:
		return nil, goerr.Wrap(err, "failed to check user existence", goerr.V("email", user.Email))
	}
}

func (r *userRepository) UpsertMembership(ctx context.Context, membership *model.UserOnWorkspace) error {
	now := time.Now().UTC()
	docID := membership.UserID + "_" + membership.WorkspaceID
	docRef := r.client.Collection(r.membershipCollection()).Doc(docID)

	docSnap, err := docRef.Get(ctx)
	switch {
	case err == nil:
		var existing model.UserOnWorkspace
		if err := docSnap.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to decode membership", goerr.V("doc_id", docID))
		}
		// Only the role is refreshed on re-deploys; team assignments are
		// kept as provisioned
		existing.Role = membership.Role
		existing.UpdatedAt = now
		if _, err := docRef.Set(ctx, &existing); err != nil {
			return goerr.Wrap(err, "failed to update membership", goerr.V("doc_id", docID))
		}
		return nil

	case status.Code(err) == codes.NotFound:
		stored := *membership
		stored.CreatedAt = now
		stored.UpdatedAt = now
		if _, err := docRef.Set(ctx, &stored); err != nil {
			return goerr.Wrap(err, "failed to create membership", goerr.V("doc_id", docID))
		}
		return nil

	default:
		return goerr.Wrap(err, "failed to check membership existence", goerr.V("doc_id", docID))
	}
}

func (r *userRepository) FindToken(ctx context.Context, userID, tokenType string) (*model.PersonalAccessToken, error) {
	iter := r.client.Collection(r.tokenCollection()).
		Where("UserID", "==", userID).
		Where("Type", "==", tokenType).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	docSnap, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query token",
			goerr.V("user_id", userID), goerr.V("type", tokenType))
	}

	var t model.PersonalAccessToken
	if err := docSnap.DataTo(&t); err != nil {
		return nil, goerr.Wrap(err, "failed to decode token", goerr.V("doc_id", docSnap.Ref.ID))
	}

	return &t, nil
}

func (r *userRepository) CreateToken(ctx context.Context, token *model.PersonalAccessToken) (*model.PersonalAccessToken, error) {
	created := *token
	if created.ID == "" {
		created.ID = types.NewID()
	}
	created.CreatedAt = time.Now().UTC()

	if _, err := r.client.Collection(r.tokenCollection()).Doc(created.ID).Set(ctx, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to create token", goerr.V("id", created.ID))
	}

	return &created, nil
}
