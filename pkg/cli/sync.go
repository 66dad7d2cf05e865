package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/tracknest/tracknest/pkg/cli/config"
	"github.com/tracknest/tracknest/pkg/domain/model"
	"github.com/tracknest/tracknest/pkg/usecase"
	"github.com/tracknest/tracknest/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// cmdSyncLinkIssue runs the linked-issue sync flow outside the server
// process, reaching the data layer through the backend REST API.
func cmdSyncLinkIssue() *cli.Command {
	var linkedIssueID string
	var frontendURL string
	var slackAccountID string
	var backendCfg config.Backend
	var slackCfg config.Slack

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "linked-issue-id",
			Usage:       "ID of the linked issue to sync",
			Required:    true,
			Sources:     cli.EnvVars("TRACKNEST_LINKED_ISSUE_ID"),
			Destination: &linkedIssueID,
		},
		&cli.StringFlag{
			Name:        "frontend-url",
			Usage:       "Frontend URL used to build issue deep links",
			Sources:     cli.EnvVars("TRACKNEST_FRONTEND_URL"),
			Destination: &frontendURL,
		},
		&cli.StringFlag{
			Name:        "slack-account-id",
			Usage:       "Integration account ID recorded as the link source",
			Category:    "Slack",
			Sources:     cli.EnvVars("TRACKNEST_SLACK_ACCOUNT_ID"),
			Destination: &slackAccountID,
		},
	}

	flags = append(flags, backendCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:  "sync-link-issue",
		Usage: "Sync one linked issue with Slack thread metadata via the backend API",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			store, err := backendCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize backend client")
			}

			logging.Default().Info("Syncing linked issue",
				"linked_issue_id", linkedIssueID, "backend", backendCfg)

			accounts := map[string]*model.IntegrationAccount{}
			if token := slackCfg.BotToken(); token != "" {
				accounts[model.IntegrationSlack] = &model.IntegrationAccount{
					ID:              slackAccountID,
					IntegrationName: model.IntegrationSlack,
					Token:           token,
				}
			}

			uc := usecase.NewLinkSyncUseCase(store, nil, frontendURL)

			link, err := uc.SyncLinkedIssue(ctx, accounts, linkedIssueID)
			if err != nil {
				return goerr.Wrap(err, "failed to sync linked issue",
					goerr.V("linked_issue_id", linkedIssueID))
			}

			logging.Default().Info("Linked issue synced",
				"linked_issue_id", link.ID, "source_id", link.SourceID)
			return nil
		},
	}
}
