package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/tracknest/tracknest/pkg/domain/interfaces"
	"github.com/tracknest/tracknest/pkg/domain/model"
	"github.com/tracknest/tracknest/pkg/utils/safe"
)

// Client is an HTTP implementation of LinkedIssueStore. It is used
// when the sync flow runs outside the server process and reaches the
// data layer through the REST surface.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ interfaces.LinkedIssueStore = &Client{}

// Option is a functional option for Client configuration
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a backend API client. apiKey is the personal access
// token of the workflow user and is sent as a bearer token.
func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, goerr.New("backend base URL is required")
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
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
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "failed to call backend API", goerr.V("path", path))
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return goerr.New("backend API returned error",
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

func (c *Client) GetLinkedIssueContext(ctx context.Context, id string) (*model.LinkedIssueContext, error) {
	var lctx model.LinkedIssueContext
	path := fmt.Sprintf("/v1/linked_issues/%s", id)
	if err := c.do(ctx, http.MethodGet, path, nil, &lctx); err != nil {
		return nil, goerr.Wrap(err, "failed to get linked issue", goerr.V("id", id))
	}
	return &lctx, nil
}

func (c *Client) UpdateLinkedIssue(ctx context.Context, id string, patch *model.LinkedIssueUpdate) (*model.LinkedIssue, error) {
	var link model.LinkedIssue
	path := fmt.Sprintf("/v1/linked_issues/%s", id)
	if err := c.do(ctx, http.MethodPost, path, patch, &link); err != nil {
		return nil, goerr.Wrap(err, "failed to update linked issue", goerr.V("id", id))
	}
	return &link, nil
}

func (c *Client) CreateIssueComment(ctx context.Context, comment *model.IssueComment) (*model.IssueComment, error) {
	var created model.IssueComment
	if err := c.do(ctx, http.MethodPost, "/v1/issue_comments", comment, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to create issue comment", goerr.V("issue_id", comment.IssueID))
	}
	return &created, nil
}
