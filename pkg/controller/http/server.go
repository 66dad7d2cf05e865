package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tracknest/tracknest/pkg/usecase"
	"github.com/tracknest/tracknest/pkg/utils/logging"
)

type Server struct {
	router             *chi.Mux
	uc                 *usecase.UseCases
	slackSigningSecret string
}

type Options func(*Server)

// WithSlackSigningSecret enables signature verification on
// Slack-facing hooks
func WithSlackSigningSecret(secret string) Options {
	return func(s *Server) {
		s.slackSigningSecret = secret
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	// Entity store surface consumed by tasks running on the platform
	r.Route("/v1", func(r chi.Router) {
		r.Get("/linked_issues/{id}", s.getLinkedIssue)
		r.Post("/linked_issues/{id}", s.updateLinkedIssue)
		r.Post("/linked_issues/source/{sourceID}", s.updateLinkedIssuesBySource)
		r.Post("/issue_comments", s.createIssueComment)
	})

	// Action management API
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/actions", s.createOrUpdateAction)
		r.Get("/actions", s.listActions)
		r.Get("/actions/{id}", s.getAction)
		r.Delete("/actions/{id}", s.deleteAction)
		r.Delete("/actions/slug/{slug}/dev", s.cleanDevAction)
		r.Post("/actions/slug/{slug}/inputs", s.updateActionInputs)
		r.Get("/actions/slug/{slug}/inputs", s.getActionInputs)
		r.Get("/actions/slug/{slug}/runs", s.listRuns)
		r.Get("/actions/slug/{slug}/runs/{runID}", s.getRun)
		r.Post("/actions/slug/{slug}/runs/{runID}/replay", s.replayRun)
		r.Post("/actions/slug/{slug}/runs/{runID}/cancel", s.cancelRun)
		r.Post("/actions/slug/{slug}/schedules", s.createSchedule)
		r.Post("/schedules/{id}", s.updateSchedule)
		r.Delete("/schedules/{id}", s.deleteSchedule)

		r.Post("/labels/{labelID}", s.updateLabel)
	})

	// Replication events from the data pipeline
	r.Route("/hooks", func(r chi.Router) {
		r.Post("/replication", s.handleReplication)

		// Slack-facing hooks require signature verification
		if s.slackSigningSecret != "" {
			r.Route("/slack", func(r chi.Router) {
				r.Use(SlackSignatureMiddleware(s.slackSigningSecret))
				r.Post("/event", s.handleSlackEvent)
			})
		}
	})

	// Task entrypoints called by the execution platform
	r.Route("/tasks", func(r chi.Router) {
		r.Post("/link-issue-sync", s.handleLinkIssueSync)
		r.Post("/integration/{name}", s.handleIntegrationEvent)
		r.Post("/schedule/{actionID}", s.handleScheduleFired)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
