package trigger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/tracknest/tracknest/pkg/utils/safe"
)

const (
	// DefaultPollInterval is the wait between run state checks when a
	// synchronous trigger awaits completion
	DefaultPollInterval = 2 * time.Second
)

// client implements Client against the platform's REST API
type client struct {
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	pollInterval time.Duration
}

// Option is a functional option for client configuration
type Option func(*client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithPollInterval sets the wait between run state checks
func WithPollInterval(interval time.Duration) Option {
	return func(c *client) {
		c.pollInterval = interval
	}
}

// New creates a platform client with the given API URL and key
func New(baseURL, apiKey string, opts ...Option) (Client, error) {
	if baseURL == "" {
		return nil, goerr.New("trigger API URL is required")
	}
	if apiKey == "" {
		return nil, goerr.New("trigger API key is required")
	}

	c := &client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		apiKey:       apiKey,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		pollInterval: DefaultPollInterval,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// do issues one API call. A non-empty apiKey replaces the client
// credential for this request.
func (c *client) do(ctx context.Context, method, path string, body, out any, apiKey string) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return goerr.Wrap(err, "failed to marshal request body", goerr.V("path", path))
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return goerr.Wrap(err, "failed to create request", goerr.V("path", path))
	}
	if apiKey == "" {
		apiKey = c.apiKey
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "failed to call trigger API", goerr.V("path", path))
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return goerr.New("trigger API returned error",
			goerr.V("path", path),
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(raw)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return goerr.Wrap(err, "failed to decode response", goerr.V("path", path))
		}
	}

	return nil
}

type triggerRequest struct {
	Payload any `json:"payload"`
}

func (c *client) TriggerTask(ctx context.Context, taskID string, payload any, apiKey string) (*Run, error) {
	handle, err := c.TriggerTaskAsync(ctx, taskID, payload, apiKey)
	if err != nil {
		return nil, err
	}

	for {
		run, err := c.GetRun(ctx, handle.ID)
		if err != nil {
			return nil, err
		}
		if run.IsTerminal() {
			if run.Status != RunStatusCompleted {
				return run, goerr.New("task run did not complete",
					goerr.V("run_id", run.ID), goerr.V("status", run.Status), goerr.V("error", run.Error))
			}
			return run, nil
		}

		select {
		case <-ctx.Done():
			return nil, goerr.Wrap(ctx.Err(), "canceled while awaiting run", goerr.V("run_id", handle.ID))
		case <-time.After(c.pollInterval):
		}
	}
}

func (c *client) TriggerTaskAsync(ctx context.Context, taskID string, payload any, apiKey string) (*RunHandle, error) {
	var handle RunHandle
	path := fmt.Sprintf("/api/v1/tasks/%s/trigger", taskID)
	if err := c.do(ctx, http.MethodPost, path, &triggerRequest{Payload: payload}, &handle, apiKey); err != nil {
		return nil, goerr.Wrap(err, "failed to trigger task", goerr.V("task_id", taskID))
	}
	return &handle, nil
}

func (c *client) CreateScheduleTask(ctx context.Context, input *ScheduleTaskInput) (*Schedule, error) {
	var schedule Schedule
	if err := c.do(ctx, http.MethodPost, "/api/v1/schedules", input, &schedule, ""); err != nil {
		return nil, goerr.Wrap(err, "failed to create schedule",
			goerr.V("task_id", input.TaskID), goerr.V("dedup_key", input.DeduplicationKey))
	}
	return &schedule, nil
}

func (c *client) UpdateScheduleTask(ctx context.Context, scheduleID string, input *ScheduleTaskInput) (*Schedule, error) {
	var schedule Schedule
	path := fmt.Sprintf("/api/v1/schedules/%s", scheduleID)
	if err := c.do(ctx, http.MethodPut, path, input, &schedule, ""); err != nil {
		return nil, goerr.Wrap(err, "failed to update schedule", goerr.V("schedule_id", scheduleID))
	}
	return &schedule, nil
}

func (c *client) GetLatestVersion(ctx context.Context, taskID string) (string, error) {
	var resp struct {
		Version string `json:"version"`
	}
	path := fmt.Sprintf("/api/v1/tasks/%s/versions/latest", taskID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp, ""); err != nil {
		return "", goerr.Wrap(err, "failed to get latest task version", goerr.V("task_id", taskID))
	}
	return resp.Version, nil
}

func (c *client) GetRun(ctx context.Context, runID string) (*Run, error) {
	var run Run
	path := fmt.Sprintf("/api/v3/runs/%s", runID)
	if err := c.do(ctx, http.MethodGet, path, nil, &run, ""); err != nil {
		return nil, goerr.Wrap(err, "failed to get run", goerr.V("run_id", runID))
	}
	return &run, nil
}

func (c *client) ListRuns(ctx context.Context, taskID, env string) ([]*Run, error) {
	var resp struct {
		Data []*Run `json:"data"`
	}
	path := "/api/v1/runs?filter[taskIdentifier]=" + url.QueryEscape(taskID)
	if env != "" {
		path += "&filter[env]=" + url.QueryEscape(env)
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp, ""); err != nil {
		return nil, goerr.Wrap(err, "failed to list runs",
			goerr.V("task_id", taskID), goerr.V("env", env))
	}
	return resp.Data, nil
}

func (c *client) ReplayRun(ctx context.Context, runID string) (*RunHandle, error) {
	var handle RunHandle
	path := fmt.Sprintf("/api/v2/runs/%s/replay", runID)
	if err := c.do(ctx, http.MethodPost, path, nil, &handle, ""); err != nil {
		return nil, goerr.Wrap(err, "failed to replay run", goerr.V("run_id", runID))
	}
	return &handle, nil
}

func (c *client) CancelRun(ctx context.Context, runID string) error {
	path := fmt.Sprintf("/api/v2/runs/%s/cancel", runID)
	if err := c.do(ctx, http.MethodPost, path, nil, nil, ""); err != nil {
		return goerr.Wrap(err, "failed to cancel run", goerr.V("run_id", runID))
	}
	return nil
}
