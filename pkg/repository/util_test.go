package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/tracknest/tracknest/pkg/domain/interfaces"
	"github.com/tracknest/tracknest/pkg/repository/firestore"
)

// newFirestoreRepo builds a Firestore-backed repository for tests, or
// skips when no test project is configured. Collections are prefixed
// per run so parallel CI jobs do not collide.
func newFirestoreRepo(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}
	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")

	prefix := fmt.Sprintf("test_%d", time.Now().UnixNano())
	repo, err := firestore.New(context.Background(), projectID, databaseID,
		firestore.WithCollectionPrefix(prefix))
	gt.NoError(t, err).Required()

	t.Cleanup(func() {
		_ = repo.Close()
	})

	return repo
}
