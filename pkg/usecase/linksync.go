package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/tracknest/tracknest/pkg/domain/interfaces"
	"github.com/tracknest/tracknest/pkg/domain/model"
	"github.com/tracknest/tracknest/pkg/domain/types"
	"github.com/tracknest/tracknest/pkg/service/slack"
	"github.com/tracknest/tracknest/pkg/utils/logging"
)

// slackPermalinkRe matches Slack message permalinks. The timestamp in
// the path is seconds plus six digits of microseconds; an optional
// thread_ts query parameter points at the thread root when the link
// targets a reply.
var slackPermalinkRe = regexp.MustCompile(
	`^https://([\w-]+)\.slack\.com/archives/(\w+)/p(\d+)(\d{6})`)

// slackPermalink is the parsed form of a Slack message URL
type slackPermalink struct {
	TeamDomain string
	ChannelID  string
	ParentTs   string
	MessageTs  string
}

// SourceID is the deterministic deduplication key for the linked
// thread: every sync of the same (channel, thread) converges on it
func (p *slackPermalink) SourceID() string {
	return fmt.Sprintf("%s_%s", p.ChannelID, p.ParentTs)
}

func parseSlackPermalink(rawURL string) (*slackPermalink, error) {
	match := slackPermalinkRe.FindStringSubmatch(rawURL)
	if match == nil {
		return nil, goerr.Wrap(types.ErrAbort, "URL is not a Slack message permalink", goerr.V("url", rawURL))
	}

	parentTs := fmt.Sprintf("%s.%s", match[3], match[4])

	messageTs := parentTs
	if threadTs := permalinkThreadTs(rawURL); threadTs != "" {
		messageTs = strings.TrimPrefix(threadTs, "p")
	}

	return &slackPermalink{
		TeamDomain: match[1],
		ChannelID:  match[2],
		ParentTs:   parentTs,
		MessageTs:  messageTs,
	}, nil
}

var threadTsRe = regexp.MustCompile(`[?&]thread_ts=(p?[\d.]+)`)

func permalinkThreadTs(rawURL string) string {
	match := threadTsRe.FindStringSubmatch(rawURL)
	if match == nil {
		return ""
	}
	return match[1]
}

// LinkSyncUseCase enriches linked issues with Slack thread metadata
// and announces the link in the thread
type LinkSyncUseCase struct {
	store        interfaces.LinkedIssueStore
	slackFactory slack.Factory
	frontendURL  string
}

func NewLinkSyncUseCase(store interfaces.LinkedIssueStore, factory slack.Factory, frontendURL string) *LinkSyncUseCase {
	if factory == nil {
		factory = func(token string) (slack.Service, error) {
			return slack.New(token)
		}
	}
	return &LinkSyncUseCase{
		store:        store,
		slackFactory: factory,
		frontendURL:  strings.TrimSuffix(frontendURL, "/"),
	}
}

// SyncLinkedIssue resolves a Slack permalink into source metadata,
// stores it on the linked issue, and posts a threaded reply announcing
// the link. A URL that is not a Slack permalink aborts permanently. A
// failed announcement is tolerated; the comment mirroring the reply is
// only written when the post succeeded.
func (uc *LinkSyncUseCase) SyncLinkedIssue(ctx context.Context, accounts map[string]*model.IntegrationAccount, linkedIssueID string) (*model.LinkedIssue, error) {
	lctx, err := uc.store.GetLinkedIssueContext(ctx, linkedIssueID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load linked issue", goerr.V("linked_issue_id", linkedIssueID))
	}

	permalink, err := parseSlackPermalink(lctx.LinkedIssue.URL)
	if err != nil {
		return nil, err
	}

	slackAccount := accounts[model.IntegrationSlack]

	var message string
	if slackAccount != nil {
		message = uc.fetchThreadMessage(ctx, slackAccount, permalink)
	}

	sourceData := map[string]any{
		"channelId":       permalink.ChannelID,
		"messageTs":       permalink.MessageTs,
		"parentTs":        permalink.ParentTs,
		"slackTeamDomain": permalink.TeamDomain,
		"message":         message,
	}

	source := &model.LinkedIssueSource{Type: model.LinkedIssueSourceSlack}
	if slackAccount != nil {
		source.IntegrationAccountID = slackAccount.ID
	}

	updated, err := uc.store.UpdateLinkedIssue(ctx, linkedIssueID, &model.LinkedIssueUpdate{
		Title:      message,
		SourceID:   permalink.SourceID(),
		Source:     source,
		SourceData: sourceData,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to store source metadata", goerr.V("linked_issue_id", linkedIssueID))
	}

	uc.announceLink(ctx, slackAccount, permalink, lctx, message)

	return updated, nil
}

func (uc *LinkSyncUseCase) fetchThreadMessage(ctx context.Context, account *model.IntegrationAccount, permalink *slackPermalink) string {
	svc, err := uc.slackFactory(account.Token)
	if err != nil {
		logging.From(ctx).Warn("failed to create Slack client", "error", err)
		return ""
	}

	message, err := svc.GetThreadMessage(ctx, permalink.ChannelID, permalink.ParentTs)
	if err != nil {
		// The link still syncs without the message text
		logging.From(ctx).Warn("failed to fetch thread message",
			"error", err, "channel_id", permalink.ChannelID)
		return ""
	}
	return message
}

// announceLink posts the threaded reply and mirrors it as an issue
// comment. Every failure here is swallowed: the sync result does not
// depend on the announcement.
func (uc *LinkSyncUseCase) announceLink(ctx context.Context, account *model.IntegrationAccount, permalink *slackPermalink, lctx *model.LinkedIssueContext, message string) {
	if account == nil {
		return
	}

	identifier := lctx.IssueIdentifier()
	if identifier == "" {
		return
	}

	svc, err := uc.slackFactory(account.Token)
	if err != nil {
		logging.From(ctx).Warn("failed to create Slack client", "error", err)
		return
	}

	result, err := svc.NotifyIssueLinked(ctx, &slack.NotifyInput{
		ChannelID:       permalink.ChannelID,
		ThreadTs:        permalink.ParentTs,
		IssueIdentifier: identifier,
		IssueURL:        uc.issueURL(lctx.Workspace.Slug, identifier),
	})
	if err != nil || !result.OK {
		logging.From(ctx).Warn("failed to announce linked issue",
			"error", err, "channel_id", permalink.ChannelID)
		return
	}

	if _, err := uc.store.CreateIssueComment(ctx, &model.IssueComment{
		IssueID: lctx.Issue.ID,
		UserID:  lctx.LinkedIssue.CreatedByID,
		Body:    message,
		SourceMetadata: map[string]any{
			"type":      model.LinkedIssueSourceSlack,
			"channelId": permalink.ChannelID,
			"parentTs":  permalink.ParentTs,
			"idTs":      result.Timestamp,
		},
	}); err != nil {
		logging.From(ctx).Warn("failed to mirror announcement as comment",
			"error", err, "issue_id", lctx.Issue.ID)
	}
}

func (uc *LinkSyncUseCase) issueURL(workspaceSlug, identifier string) string {
	return fmt.Sprintf("%s/%s/issue/%s", uc.frontendURL, workspaceSlug, identifier)
}

// repositoryStore adapts the repository to the LinkedIssueStore
// surface for in-process sync runs
type repositoryStore struct {
	repo interfaces.Repository
}

var _ interfaces.LinkedIssueStore = &repositoryStore{}

// NewRepositoryStore wraps a repository as a LinkedIssueStore
func NewRepositoryStore(repo interfaces.Repository) interfaces.LinkedIssueStore {
	return &repositoryStore{repo: repo}
}

func (s *repositoryStore) GetLinkedIssueContext(ctx context.Context, id string) (*model.LinkedIssueContext, error) {
	link, err := s.repo.LinkedIssue().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get linked issue", goerr.V("id", id))
	}

	issue, err := s.repo.Issue().Get(ctx, link.IssueID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get issue", goerr.V("issue_id", link.IssueID))
	}

	team, err := s.repo.Workspace().GetTeam(ctx, issue.TeamID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get team", goerr.V("team_id", issue.TeamID))
	}

	workspace, err := s.repo.Workspace().Get(ctx, team.WorkspaceID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get workspace", goerr.V("workspace_id", team.WorkspaceID))
	}

	return &model.LinkedIssueContext{
		LinkedIssue: link,
		Issue:       issue,
		Team:        team,
		Workspace:   workspace,
	}, nil
}

func (s *repositoryStore) UpdateLinkedIssue(ctx context.Context, id string, patch *model.LinkedIssueUpdate) (*model.LinkedIssue, error) {
	return s.repo.LinkedIssue().Update(ctx, id, patch)
}

func (s *repositoryStore) CreateIssueComment(ctx context.Context, comment *model.IssueComment) (*model.IssueComment, error) {
	return s.repo.Issue().CreateComment(ctx, comment)
}
