package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/tracknest/tracknest/pkg/cli/config"
	httpctrl "github.com/tracknest/tracknest/pkg/controller/http"
	"github.com/tracknest/tracknest/pkg/service/slack"
	"github.com/tracknest/tracknest/pkg/usecase"
	"github.com/tracknest/tracknest/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var baseURL string
	var frontendURL string
	var repoCfg config.Repository
	var triggerCfg config.Trigger
	var slackCfg config.Slack
	var githubCfg config.GitHub
	var registryCfg config.WorkspaceRegistry

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("TRACKNEST_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "Base URL of this server (used by tasks calling back)",
			Sources:     cli.EnvVars("TRACKNEST_BASE_URL"),
			Destination: &baseURL,
		},
		&cli.StringFlag{
			Name:        "frontend-url",
			Usage:       "Frontend URL used to build issue deep links",
			Sources:     cli.EnvVars("TRACKNEST_FRONTEND_URL"),
			Destination: &frontendURL,
		},
	}

	// Add shared config flags
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, triggerCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, registryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			if err := registryCfg.Seed(ctx, repo); err != nil {
				return goerr.Wrap(err, "failed to seed workspace registry")
			}

			ucOpts := []usecase.Option{
				usecase.WithFrontendURL(frontendURL),
			}

			triggerClient, err := triggerCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize trigger client")
			}
			if triggerClient != nil {
				ucOpts = append(ucOpts, usecase.WithTrigger(triggerClient))
				logging.Default().Info("Task execution platform enabled", "trigger", triggerCfg)
			} else {
				logging.Default().Info("Trigger API not configured, action dispatch is disabled")
			}

			if fallback := slackCfg.BotToken(); fallback != "" {
				ucOpts = append(ucOpts, usecase.WithSlackFactory(func(token string) (slack.Service, error) {
					if token == "" {
						token = fallback
					}
					return slack.New(token)
				}))
				logging.Default().Info("Slack bot token fallback enabled", "slack", slackCfg)
			}

			githubSvc, err := githubCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize GitHub App service")
			}
			if githubSvc != nil {
				ucOpts = append(ucOpts, usecase.WithGitHub(githubSvc))
				logging.Default().Info("GitHub App enabled", "github", githubCfg)
			}

			uc := usecase.New(repo, ucOpts...)

			httpOpts := []httpctrl.Options{}
			if slackCfg.IsWebhookConfigured() {
				httpOpts = append(httpOpts, httpctrl.WithSlackSigningSecret(slackCfg.SigningSecret()))
				logging.Default().Info("Slack webhook verification enabled")
			}

			server := httpctrl.New(uc, httpOpts...)

			httpServer := &http.Server{
				Addr:              addr,
				Handler:           server,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr, "base_url", baseURL)
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- goerr.Wrap(err, "HTTP server failed")
				}
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Shutting down", "signal", sig.String())
			case <-ctx.Done():
				logging.Default().Info("Shutting down", "reason", ctx.Err())
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shut down HTTP server")
			}

			return nil
		},
	}
}
