package slack

import (
	"context"
)

// Service provides the Slack API surface used by the link-issue sync
// flow
type Service interface {
	// GetThreadMessage retrieves the text of the first message in a
	// thread. Returns an empty string when the thread has no messages.
	GetThreadMessage(ctx context.Context, channelID, threadTs string) (string, error)

	// NotifyIssueLinked posts a threaded context reply announcing that
	// the thread is linked with an issue. Returns the timestamp of the
	// posted message.
	NotifyIssueLinked(ctx context.Context, input *NotifyInput) (*NotifyResult, error)
}

// Factory builds a Service from a workspace integration token. The
// token belongs to the workspace's Slack integration account, so a
// client is constructed per call rather than at startup.
type Factory func(token string) (Service, error)

// NotifyInput describes the threaded reply to post
type NotifyInput struct {
	ChannelID       string
	ThreadTs        string
	IssueIdentifier string
	IssueURL        string
}

// NotifyResult reports the outcome of a notification post
type NotifyResult struct {
	OK        bool
	Timestamp string
}
