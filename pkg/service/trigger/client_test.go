package trigger_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/tracknest/tracknest/pkg/service/trigger"
)

const testAPIKey = "tr_test_key"

func newTestClient(t *testing.T, handler http.HandlerFunc) trigger.Client {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.Header.Get("Authorization")).Equal("Bearer " + testAPIKey)
		handler(w, r)
	}))
	t.Cleanup(ts.Close)

	client, err := trigger.New(ts.URL, testAPIKey, trigger.WithPollInterval(time.Millisecond))
	gt.NoError(t, err).Required()
	return client
}

func writeJSON(t *testing.T, w http.ResponseWriter, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	gt.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestNew(t *testing.T) {
	t.Run("requires a base URL", func(t *testing.T) {
		_, err := trigger.New("", "key")
		gt.Error(t, err)
	})

	t.Run("requires an API key", func(t *testing.T) {
		_, err := trigger.New("https://api.trigger.dev", "")
		gt.Error(t, err)
	})
}

func TestTriggerTaskAsync(t *testing.T) {
	t.Run("posts the wrapped payload", func(t *testing.T) {
		var gotPath string
		var gotBody map[string]any

		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gt.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			writeJSON(t, w, &trigger.RunHandle{ID: "run-abc"})
		})

		handle, err := client.TriggerTaskAsync(context.Background(), "slack-reply-handler", map[string]any{"event": "on_create"}, "")
		gt.NoError(t, err).Required()

		gt.Value(t, handle.ID).Equal("run-abc")
		gt.Value(t, gotPath).Equal("/api/v1/tasks/slack-reply-handler/trigger")

		// The payload travels wrapped
		payload := gt.Cast[map[string]any](t, gotBody["payload"])
		gt.Value(t, payload["event"]).Equal("on_create")
	})

	t.Run("a per-call API key replaces the client credential", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gt.Value(t, r.Header.Get("Authorization")).Equal("Bearer pat_action_key")
			writeJSON(t, w, &trigger.RunHandle{ID: "run-abc"})
		}))
		t.Cleanup(ts.Close)

		client, err := trigger.New(ts.URL, testAPIKey)
		gt.NoError(t, err).Required()

		_, err = client.TriggerTaskAsync(context.Background(), "slack-reply-handler", nil, "pat_action_key")
		gt.NoError(t, err).Required()
	})
}

func TestTriggerTask(t *testing.T) {
	t.Run("polls until the run completes", func(t *testing.T) {
		var polls atomic.Int32

		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/api/v1/tasks/slack-reply-handler/trigger":
				writeJSON(t, w, &trigger.RunHandle{ID: "run-abc"})
			case "/api/v3/runs/run-abc":
				status := "EXECUTING"
				if polls.Add(1) >= 3 {
					status = trigger.RunStatusCompleted
				}
				writeJSON(t, w, &trigger.Run{ID: "run-abc", Status: status})
			default:
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
		})

		run, err := client.TriggerTask(context.Background(), "slack-reply-handler", nil, "")
		gt.NoError(t, err).Required()

		gt.Value(t, run.Status).Equal(trigger.RunStatusCompleted)
		gt.Number(t, polls.Load()).GreaterOrEqual(3)
	})

	t.Run("failed run returns the run with an error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/api/v1/tasks/slack-reply-handler/trigger":
				writeJSON(t, w, &trigger.RunHandle{ID: "run-abc"})
			case "/api/v3/runs/run-abc":
				writeJSON(t, w, &trigger.Run{ID: "run-abc", Status: trigger.RunStatusFailed, Error: "handler crashed"})
			}
		})

		run, err := client.TriggerTask(context.Background(), "slack-reply-handler", nil, "")
		gt.Error(t, err)
		gt.Value(t, run).NotNil()
		gt.Value(t, run.Status).Equal(trigger.RunStatusFailed)
	})

	t.Run("cancellation stops the poll loop", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/api/v1/tasks/slack-reply-handler/trigger":
				writeJSON(t, w, &trigger.RunHandle{ID: "run-abc"})
			case "/api/v3/runs/run-abc":
				writeJSON(t, w, &trigger.Run{ID: "run-abc", Status: "EXECUTING"})
			}
		})

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := client.TriggerTask(ctx, "slack-reply-handler", nil, "")
		gt.Error(t, err)
	})
}

func TestScheduleTasks(t *testing.T) {
	t.Run("create posts the schedule definition", func(t *testing.T) {
		var got trigger.ScheduleTaskInput

		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gt.Value(t, r.Method).Equal(http.MethodPost)
			gt.Value(t, r.URL.Path).Equal("/api/v1/schedules")
			gt.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			writeJSON(t, w, &trigger.Schedule{ID: "sched-remote-1", TaskID: got.TaskID})
		})

		schedule, err := client.CreateScheduleTask(context.Background(), &trigger.ScheduleTaskInput{
			TaskID:           "nightly-handler",
			Cron:             "0 9 * * 1",
			Timezone:         "Asia/Tokyo",
			DeduplicationKey: "local-1",
			ExternalID:       "local-1",
		})
		gt.NoError(t, err).Required()

		gt.Value(t, schedule.ID).Equal("sched-remote-1")
		gt.Value(t, got.Cron).Equal("0 9 * * 1")
		gt.Value(t, got.DeduplicationKey).Equal("local-1")
	})

	t.Run("update puts to the schedule resource", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gt.Value(t, r.Method).Equal(http.MethodPut)
			gt.Value(t, r.URL.Path).Equal("/api/v1/schedules/sched-remote-1")
			writeJSON(t, w, &trigger.Schedule{ID: "sched-remote-1"})
		})

		schedule, err := client.UpdateScheduleTask(context.Background(), "sched-remote-1",
			&trigger.ScheduleTaskInput{TaskID: "nightly-handler", Cron: "30 8 * * *"})
		gt.NoError(t, err).Required()
		gt.Value(t, schedule.ID).Equal("sched-remote-1")
	})
}

func TestGetLatestVersion(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.URL.Path).Equal("/api/v1/tasks/slack-reply-handler/versions/latest")
		writeJSON(t, w, map[string]string{"version": "20260901.1"})
	})

	version, err := client.GetLatestVersion(context.Background(), "slack-reply-handler")
	gt.NoError(t, err).Required()
	gt.Value(t, version).Equal("20260901.1")
}

func TestListRuns(t *testing.T) {
	t.Run("filters by task and environment", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gt.Value(t, r.URL.Query().Get("filter[taskIdentifier]")).Equal("slack-reply-handler")
			gt.Value(t, r.URL.Query().Get("filter[env]")).Equal("dev")
			writeJSON(t, w, map[string]any{"data": []*trigger.Run{
				{ID: "run-1", Status: trigger.RunStatusCompleted},
				{ID: "run-2", Status: "EXECUTING"},
			}})
		})

		runs, err := client.ListRuns(context.Background(), "slack-reply-handler", "dev")
		gt.NoError(t, err).Required()
		gt.Array(t, runs).Length(2)
	})

	t.Run("omits the env filter when empty", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gt.Bool(t, r.URL.Query().Has("filter[env]")).False()
			writeJSON(t, w, map[string]any{"data": []*trigger.Run{}})
		})

		runs, err := client.ListRuns(context.Background(), "slack-reply-handler", "")
		gt.NoError(t, err).Required()
		gt.Array(t, runs).Length(0)
	})
}

func TestRunControl(t *testing.T) {
	t.Run("replay", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gt.Value(t, r.URL.Path).Equal("/api/v2/runs/run-1/replay")
			writeJSON(t, w, &trigger.RunHandle{ID: "run-replayed"})
		})

		handle, err := client.ReplayRun(context.Background(), "run-1")
		gt.NoError(t, err).Required()
		gt.Value(t, handle.ID).Equal("run-replayed")
	})

	t.Run("cancel", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gt.Value(t, r.URL.Path).Equal("/api/v2/runs/run-1/cancel")
			w.WriteHeader(http.StatusOK)
		})

		gt.NoError(t, client.CancelRun(context.Background(), "run-1"))
	})

	t.Run("API errors surface with the status", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "run not found", http.StatusNotFound)
		})

		_, err := client.ReplayRun(context.Background(), "no-such-run")
		gt.Error(t, err)
	})
}
