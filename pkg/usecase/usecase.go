package usecase

import (
	"github.com/tracknest/tracknest/pkg/domain/interfaces"
	"github.com/tracknest/tracknest/pkg/service/github"
	"github.com/tracknest/tracknest/pkg/service/slack"
	"github.com/tracknest/tracknest/pkg/service/trigger"
)

type UseCases struct {
	repo         interfaces.Repository
	trigger      trigger.Client
	slackFactory slack.Factory
	github       github.Service
	frontendURL  string

	Action      *ActionUseCase
	Dispatch    *DispatchUseCase
	LinkSync    *LinkSyncUseCase
	Integration *IntegrationUseCase
}

type Option func(*UseCases)

// WithTrigger sets the task execution platform client
func WithTrigger(client trigger.Client) Option {
	return func(uc *UseCases) {
		uc.trigger = client
	}
}

// WithSlackFactory sets the constructor for per-workspace Slack clients
func WithSlackFactory(factory slack.Factory) Option {
	return func(uc *UseCases) {
		uc.slackFactory = factory
	}
}

// WithGitHub sets the GitHub App service
func WithGitHub(svc github.Service) Option {
	return func(uc *UseCases) {
		uc.github = svc
	}
}

// WithFrontendURL sets the host used to build issue deep links
func WithFrontendURL(url string) Option {
	return func(uc *UseCases) {
		uc.frontendURL = url
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:         repo,
		slackFactory: func(token string) (slack.Service, error) {
			return slack.New(token)
		},
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Action = NewActionUseCase(repo, uc.trigger)
	uc.Dispatch = NewDispatchUseCase(repo, uc.trigger)
	uc.LinkSync = NewLinkSyncUseCase(NewRepositoryStore(repo), uc.slackFactory, uc.frontendURL)
	uc.Integration = NewIntegrationUseCase(repo, uc.github)

	return uc
}

// Repository exposes the data layer for thin REST handlers that do not
// need a dedicated use case
func (uc *UseCases) Repository() interfaces.Repository {
	return uc.repo
}
