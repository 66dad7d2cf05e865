package http_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	server "github.com/tracknest/tracknest/pkg/controller/http"
	"github.com/tracknest/tracknest/pkg/domain/interfaces"
	"github.com/tracknest/tracknest/pkg/domain/model"
	"github.com/tracknest/tracknest/pkg/domain/types"
	"github.com/tracknest/tracknest/pkg/repository/memory"
	"github.com/tracknest/tracknest/pkg/service/trigger"
	"github.com/tracknest/tracknest/pkg/usecase"
)

// stubTrigger satisfies trigger.Client with canned responses
type stubTrigger struct{}

var _ trigger.Client = &stubTrigger{}

func (s *stubTrigger) TriggerTask(ctx context.Context, taskID string, payload any, apiKey string) (*trigger.Run, error) {
	return &trigger.Run{ID: "run-1", Status: trigger.RunStatusCompleted}, nil
}

func (s *stubTrigger) TriggerTaskAsync(ctx context.Context, taskID string, payload any, apiKey string) (*trigger.RunHandle, error) {
	return &trigger.RunHandle{ID: "handle-1"}, nil
}

func (s *stubTrigger) CreateScheduleTask(ctx context.Context, input *trigger.ScheduleTaskInput) (*trigger.Schedule, error) {
	return &trigger.Schedule{ID: "sched-1", TaskID: input.TaskID}, nil
}

func (s *stubTrigger) UpdateScheduleTask(ctx context.Context, scheduleID string, input *trigger.ScheduleTaskInput) (*trigger.Schedule, error) {
	return &trigger.Schedule{ID: scheduleID, TaskID: input.TaskID}, nil
}

func (s *stubTrigger) GetLatestVersion(ctx context.Context, taskID string) (string, error) {
	return "v1", nil
}

func (s *stubTrigger) GetRun(ctx context.Context, runID string) (*trigger.Run, error) {
	return &trigger.Run{ID: runID, Status: trigger.RunStatusCompleted}, nil
}

func (s *stubTrigger) ListRuns(ctx context.Context, taskID, env string) ([]*trigger.Run, error) {
	return nil, nil
}

func (s *stubTrigger) ReplayRun(ctx context.Context, runID string) (*trigger.RunHandle, error) {
	return &trigger.RunHandle{ID: "handle-replay"}, nil
}

func (s *stubTrigger) CancelRun(ctx context.Context, runID string) error {
	return nil
}

func newTestServer(t *testing.T, opts ...server.Options) (*server.Server, interfaces.Repository) {
	t.Helper()
	repo := memory.New()
	uc := usecase.New(repo,
		usecase.WithTrigger(&stubTrigger{}),
		usecase.WithFrontendURL("https://app.tracknest.dev"),
	)
	return server.New(uc, opts...), repo
}

// seedIssueChain stores workspace, team and issue and returns the issue
func seedIssueChain(t *testing.T, repo interfaces.Repository) *model.Issue {
	t.Helper()
	ctx := context.Background()

	_, err := repo.Workspace().Put(ctx, &model.Workspace{
		ID:   "ws-1",
		Name: "Acme",
		Slug: "acme",
	})
	gt.NoError(t, err).Required()

	team, err := repo.Workspace().PutTeam(ctx, &model.Team{
		ID:          "team-1",
		WorkspaceID: "ws-1",
		Name:        "Engineering",
		Identifier:  "ENG",
	})
	gt.NoError(t, err).Required()

	issue, err := repo.Issue().Put(ctx, &model.Issue{
		ID:     "issue-1",
		TeamID: team.ID,
		Number: 42,
		Title:  "Fix login",
	})
	gt.NoError(t, err).Required()

	return issue
}

func postJSON(t *testing.T, s *server.Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	gt.NoError(t, err).Required()

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, s *server.Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/health")
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.Value(t, rec.Body.String()).Equal("OK")
}

func TestGetLinkedIssue(t *testing.T) {
	s, repo := newTestServer(t)
	issue := seedIssueChain(t, repo)

	link, err := repo.LinkedIssue().Create(context.Background(), &model.LinkedIssue{
		IssueID: issue.ID,
		URL:     "https://acme.slack.com/archives/C123/p1700000000000001",
	})
	gt.NoError(t, err).Required()

	t.Run("returns the joined context", func(t *testing.T) {
		rec := get(t, s, "/v1/linked_issues/"+link.ID)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var lctx model.LinkedIssueContext
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lctx)).Required()
		gt.Value(t, lctx.LinkedIssue.ID).Equal(link.ID)
		gt.Value(t, lctx.Issue.ID).Equal(issue.ID)
		gt.Value(t, lctx.Workspace.Slug).Equal("acme")
	})

	t.Run("missing link is 404", func(t *testing.T) {
		rec := get(t, s, "/v1/linked_issues/no-such-link")
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})
}

func TestCreateIssueComment(t *testing.T) {
	s, repo := newTestServer(t)
	issue := seedIssueChain(t, repo)

	t.Run("creates and returns the comment", func(t *testing.T) {
		rec := postJSON(t, s, "/v1/issue_comments", map[string]any{
			"issueId": issue.ID,
			"userId":  "user-1",
			"body":    "synced from thread",
		})
		gt.Value(t, rec.Code).Equal(http.StatusCreated)

		var created model.IssueComment
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created)).Required()
		gt.Value(t, created.IssueID).Equal(issue.ID)
		gt.Value(t, created.ID).NotEqual("")
	})

	t.Run("missing issue ID is 400", func(t *testing.T) {
		rec := postJSON(t, s, "/v1/issue_comments", map[string]any{"body": "orphan"})
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})
}

func TestLinkIssueSyncTask(t *testing.T) {
	t.Run("non-Slack URL is 422 so the platform aborts the run", func(t *testing.T) {
		s, repo := newTestServer(t)
		issue := seedIssueChain(t, repo)
		link, err := repo.LinkedIssue().Create(context.Background(), &model.LinkedIssue{
			IssueID: issue.ID,
			URL:     "https://github.com/acme/repo/issues/1",
		})
		gt.NoError(t, err).Required()

		rec := postJSON(t, s, "/tasks/link-issue-sync", map[string]any{
			"linkIssueId": link.ID,
		})
		gt.Value(t, rec.Code).Equal(http.StatusUnprocessableEntity)
	})

	t.Run("missing link ID is 400", func(t *testing.T) {
		s, _ := newTestServer(t)
		rec := postJSON(t, s, "/tasks/link-issue-sync", map[string]any{})
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("sync without accounts returns the updated link", func(t *testing.T) {
		s, repo := newTestServer(t)
		issue := seedIssueChain(t, repo)
		link, err := repo.LinkedIssue().Create(context.Background(), &model.LinkedIssue{
			IssueID: issue.ID,
			URL:     "https://acme.slack.com/archives/C123/p1700000000000001",
		})
		gt.NoError(t, err).Required()

		rec := postJSON(t, s, "/tasks/link-issue-sync", map[string]any{
			"linkIssueId": link.ID,
		})
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		stored, err := repo.LinkedIssue().Get(context.Background(), link.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, stored.SourceID).Equal("C123_1700000000.000001")
	})
}

func TestReplicationHook(t *testing.T) {
	s, repo := newTestServer(t)
	issue := seedIssueChain(t, repo)
	comment, err := repo.Issue().CreateComment(context.Background(), &model.IssueComment{
		IssueID: issue.ID,
		UserID:  "commenter",
		Body:    "please take a look",
	})
	gt.NoError(t, err).Required()

	t.Run("no subscribers is an accepted no-op", func(t *testing.T) {
		rec := postJSON(t, s, "/hooks/replication", map[string]any{
			"operation": string(types.ReplicationOpInsert),
			"modelName": string(types.ModelNameIssueComment),
			"modelId":   comment.ID,
		})
		gt.Value(t, rec.Code).Equal(http.StatusAccepted)

		var result model.DispatchResult
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result)).Required()
		gt.Value(t, result.Message).Equal("no actions subscribed to on_create on LinkedIssue")
		gt.Array(t, result.HandleIDs).Length(0)
	})

	t.Run("unknown operation is 500", func(t *testing.T) {
		rec := postJSON(t, s, "/hooks/replication", map[string]any{
			"operation": "truncate",
			"modelName": string(types.ModelNameIssueComment),
			"modelId":   comment.ID,
		})
		gt.Value(t, rec.Code).Equal(http.StatusInternalServerError)
	})
}

func TestIntegrationEventTask(t *testing.T) {
	s, _ := newTestServer(t)

	t.Run("unknown event reports instead of failing", func(t *testing.T) {
		rec := postJSON(t, s, "/tasks/integration/slack", map[string]any{
			"event": "delete",
		})
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var result model.IntegrationResult
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result)).Required()
		gt.Value(t, result.Message).Equal("the event payload type is delete")
	})

	t.Run("spec returns the connect surface", func(t *testing.T) {
		rec := postJSON(t, s, "/tasks/integration/slack", map[string]any{
			"event": "spec",
		})
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var result model.IntegrationResult
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result)).Required()
		gt.Value(t, result.Spec["name"]).Equal("Slack")
	})
}

func TestActionAPI(t *testing.T) {
	s, repo := newTestServer(t)
	_, err := repo.Workspace().Put(context.Background(), &model.Workspace{
		ID:   "ws-1",
		Name: "Acme",
		Slug: "acme",
	})
	gt.NoError(t, err).Required()

	t.Run("deploy then list", func(t *testing.T) {
		rec := postJSON(t, s, "/api/v1/actions", map[string]any{
			"workspaceId": "ws-1",
			"config": map[string]any{
				"name": "slack-reply",
				"slug": "slack-reply",
			},
		})
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var action model.Action
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &action)).Required()
		gt.Value(t, action.Status).Equal(types.ActionStatusActive)

		rec = get(t, s, "/api/v1/actions?workspace_id=ws-1")
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var actions []*model.Action
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &actions)).Required()
		gt.Array(t, actions).Length(1)
	})

	t.Run("deploy without a workspace is 400", func(t *testing.T) {
		rec := postJSON(t, s, "/api/v1/actions", map[string]any{
			"config": map[string]any{"name": "orphan", "slug": "orphan"},
		})
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("list without a workspace is 400", func(t *testing.T) {
		rec := get(t, s, "/api/v1/actions")
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("missing action is 404", func(t *testing.T) {
		rec := get(t, s, "/api/v1/actions/no-such-action")
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})
}

func TestScheduleFiredTask(t *testing.T) {
	s, _ := newTestServer(t)

	// The handler acknowledges before the trigger completes
	rec := postJSON(t, s, "/tasks/schedule/action-1", map[string]any{})
	gt.Value(t, rec.Code).Equal(http.StatusAccepted)

	var body map[string]string
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body)).Required()
	gt.Value(t, body["status"]).Equal("accepted")
}

func slackSign(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "v0:%s:%s", timestamp, body)
	return "v0=" + hex.EncodeToString(mac.Sum(nil))
}

func TestSlackEventHook(t *testing.T) {
	const secret = "test-signing-secret"

	newSignedRequest := func(t *testing.T, body []byte) *http.Request {
		t.Helper()
		timestamp := strconv.FormatInt(time.Now().Unix(), 10)
		req := httptest.NewRequest(http.MethodPost, "/hooks/slack/event", bytes.NewReader(body))
		req.Header.Set("X-Slack-Request-Timestamp", timestamp)
		req.Header.Set("X-Slack-Signature", slackSign(secret, timestamp, body))
		return req
	}

	t.Run("hook is absent without a signing secret", func(t *testing.T) {
		s, _ := newTestServer(t)
		rec := postJSON(t, s, "/hooks/slack/event", map[string]any{"type": "event_callback"})
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})

	t.Run("bad signature is 401", func(t *testing.T) {
		s, _ := newTestServer(t, server.WithSlackSigningSecret(secret))

		body := []byte(`{"type":"event_callback"}`)
		timestamp := strconv.FormatInt(time.Now().Unix(), 10)
		req := httptest.NewRequest(http.MethodPost, "/hooks/slack/event", bytes.NewReader(body))
		req.Header.Set("X-Slack-Request-Timestamp", timestamp)
		req.Header.Set("X-Slack-Signature", "v0=deadbeef")

		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)
	})

	t.Run("stale timestamp is 401", func(t *testing.T) {
		s, _ := newTestServer(t, server.WithSlackSigningSecret(secret))

		body := []byte(`{"type":"event_callback"}`)
		timestamp := strconv.FormatInt(time.Now().Add(-10*time.Minute).Unix(), 10)
		req := httptest.NewRequest(http.MethodPost, "/hooks/slack/event", bytes.NewReader(body))
		req.Header.Set("X-Slack-Request-Timestamp", timestamp)
		req.Header.Set("X-Slack-Signature", slackSign(secret, timestamp, body))

		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)
	})

	t.Run("url_verification echoes the challenge as plain text", func(t *testing.T) {
		s, _ := newTestServer(t, server.WithSlackSigningSecret(secret))

		body := []byte(`{"type":"url_verification","challenge":"chal-123"}`)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, newSignedRequest(t, body))

		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.Value(t, rec.Header().Get("Content-Type")).Equal("text/plain")
		gt.Value(t, rec.Body.String()).Equal("chal-123")
	})

	t.Run("event callbacks are acknowledged", func(t *testing.T) {
		s, _ := newTestServer(t, server.WithSlackSigningSecret(secret))

		body := []byte(`{"type":"event_callback","team_id":"T01","event":{"type":"message","channel":"C01","ts":"1700000000.000100"}}`)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, newSignedRequest(t, body))

		gt.Value(t, rec.Code).Equal(http.StatusOK)
	})

	t.Run("unparseable payload is 400", func(t *testing.T) {
		s, _ := newTestServer(t, server.WithSlackSigningSecret(secret))

		body := []byte(`not-json`)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, newSignedRequest(t, body))

		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})
}
