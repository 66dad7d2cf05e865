package backend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/tracknest/tracknest/pkg/domain/model"
	"github.com/tracknest/tracknest/pkg/service/backend"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *backend.Client {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	client, err := backend.New(ts.URL, "workflow-user-token")
	gt.NoError(t, err).Required()
	return client
}

func TestNew(t *testing.T) {
	_, err := backend.New("", "token")
	gt.Error(t, err)
}

func TestGetLinkedIssueContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.Method).Equal(http.MethodGet)
		gt.Value(t, r.URL.Path).Equal("/v1/linked_issues/link-1")
		gt.Value(t, r.Header.Get("Authorization")).Equal("Bearer workflow-user-token")

		gt.NoError(t, json.NewEncoder(w).Encode(&model.LinkedIssueContext{
			LinkedIssue: &model.LinkedIssue{ID: "link-1", URL: "https://acme.slack.com/archives/C123/p1700000000000001"},
			Issue:       &model.Issue{ID: "issue-1", Number: 42},
			Team:        &model.Team{ID: "team-1", Identifier: "ENG"},
			Workspace:   &model.Workspace{ID: "ws-1", Slug: "acme"},
		}))
	})

	lctx, err := client.GetLinkedIssueContext(context.Background(), "link-1")
	gt.NoError(t, err).Required()

	gt.Value(t, lctx.LinkedIssue.ID).Equal("link-1")
	gt.Value(t, lctx.IssueIdentifier()).Equal("ENG-42")
}

func TestUpdateLinkedIssue(t *testing.T) {
	var got model.LinkedIssueUpdate

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.Method).Equal(http.MethodPost)
		gt.Value(t, r.URL.Path).Equal("/v1/linked_issues/link-1")
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		gt.NoError(t, json.NewEncoder(w).Encode(&model.LinkedIssue{
			ID:       "link-1",
			SourceID: got.SourceID,
		}))
	})

	link, err := client.UpdateLinkedIssue(context.Background(), "link-1", &model.LinkedIssueUpdate{
		SourceID: "C123_1700000000.000001",
	})
	gt.NoError(t, err).Required()

	gt.Value(t, link.SourceID).Equal("C123_1700000000.000001")
	gt.Value(t, got.SourceID).Equal("C123_1700000000.000001")
}

func TestCreateIssueComment(t *testing.T) {
	t.Run("posts the comment", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gt.Value(t, r.Method).Equal(http.MethodPost)
			gt.Value(t, r.URL.Path).Equal("/v1/issue_comments")

			var comment model.IssueComment
			gt.NoError(t, json.NewDecoder(r.Body).Decode(&comment))
			comment.ID = "comment-1"
			w.WriteHeader(http.StatusCreated)
			gt.NoError(t, json.NewEncoder(w).Encode(&comment))
		})

		created, err := client.CreateIssueComment(context.Background(), &model.IssueComment{
			IssueID: "issue-1",
			Body:    "synced from thread",
		})
		gt.NoError(t, err).Required()

		gt.Value(t, created.ID).Equal("comment-1")
		gt.Value(t, created.IssueID).Equal("issue-1")
	})

	t.Run("error responses surface", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "issue ID is required", http.StatusBadRequest)
		})

		_, err := client.CreateIssueComment(context.Background(), &model.IssueComment{})
		gt.Error(t, err)
	})
}
