package slack

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

// client implements Service interface
type client struct {
	api *slack.Client
}

// Option is a functional option for client configuration
type Option func(*client)

// WithAPI replaces the underlying API client, used for tests
func WithAPI(api *slack.Client) Option {
	return func(c *client) {
		c.api = api
	}
}

// New creates a new Slack service with the provided bot token
func New(token string, opts ...Option) (Service, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}

	c := &client{
		api: slack.New(token),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// GetThreadMessage retrieves the text of the first message in a thread
func (c *client) GetThreadMessage(ctx context.Context, channelID, threadTs string) (string, error) {
	msgs, _, _, err := c.api.GetConversationRepliesContext(ctx, &slack.GetConversationRepliesParameters{
		ChannelID: channelID,
		Timestamp: threadTs,
		Limit:     1,
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to get thread replies",
			goerr.V("channel_id", channelID), goerr.V("thread_ts", threadTs))
	}

	if len(msgs) == 0 {
		return "", nil
	}

	return msgs[0].Text, nil
}

// NotifyIssueLinked posts a threaded context reply announcing the link
func (c *client) NotifyIssueLinked(ctx context.Context, input *NotifyInput) (*NotifyResult, error) {
	text := fmt.Sprintf("This thread is linked with a Tracknest issue <%s|%s>",
		input.IssueURL, input.IssueIdentifier)

	blocks := []slack.Block{
		slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType, text, false, false),
		),
	}

	_, ts, err := c.api.PostMessageContext(ctx, input.ChannelID,
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText(text, false),
		slack.MsgOptionTS(input.ThreadTs),
	)
	if err != nil {
		return &NotifyResult{OK: false}, goerr.Wrap(err, "failed to post linked issue notification",
			goerr.V("channel_id", input.ChannelID), goerr.V("thread_ts", input.ThreadTs))
	}

	return &NotifyResult{OK: true, Timestamp: ts}, nil
}
