package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/tracknest/tracknest/pkg/domain/model"
	"github.com/tracknest/tracknest/pkg/usecase"
	"github.com/tracknest/tracknest/pkg/utils/async"
)

// handleReplication accepts one replication event and fans it out to
// subscribed action handlers. Responds 202 because the triggered tasks
// run asynchronously.
func (s *Server) handleReplication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var event model.ReplicationEvent
	if err := decodeBody(r, &event); err != nil {
		respondError(ctx, w, goerr.Wrap(usecase.ErrInvalidRequest, "invalid request body", goerr.V("cause", err.Error())))
		return
	}

	result, err := s.uc.Dispatch.DispatchIssueCommentEvent(ctx, &event)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusAccepted, result)
}

// linkIssueSyncRequest is the payload the platform delivers when a
// link-issue sync task fires
type linkIssueSyncRequest struct {
	LinkedIssueID       string                               `json:"linkIssueId"`
	IntegrationAccounts map[string]*model.IntegrationAccount `json:"integrationAccounts,omitempty"`
}

// handleLinkIssueSync runs the sync flow. A permanent failure (the URL
// is not a Slack permalink) responds 422 so the platform marks the run
// aborted instead of retrying; other errors respond 500 and retry.
func (s *Server) handleLinkIssueSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req linkIssueSyncRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(ctx, w, goerr.Wrap(usecase.ErrInvalidRequest, "invalid request body", goerr.V("cause", err.Error())))
		return
	}
	if req.LinkedIssueID == "" {
		respondError(ctx, w, goerr.Wrap(usecase.ErrInvalidRequest, "linkIssueId is required"))
		return
	}

	link, err := s.uc.LinkSync.SyncLinkedIssue(ctx, req.IntegrationAccounts, req.LinkedIssueID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, link)
}

func (s *Server) handleIntegrationEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "name")

	var event model.IntegrationEvent
	if err := decodeBody(r, &event); err != nil {
		respondError(ctx, w, goerr.Wrap(usecase.ErrInvalidRequest, "invalid request body", goerr.V("cause", err.Error())))
		return
	}

	result, err := s.uc.Integration.HandleEvent(ctx, name, &event)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, result)
}

// handleScheduleFired fires an action's handler with an ON_SCHEDULE
// event when a registered schedule triggers. The platform only needs
// an acknowledgement, so the trigger runs detached from the request.
func (s *Server) handleScheduleFired(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actionID := chi.URLParam(r, "actionID")

	async.Dispatch(ctx, func(ctx context.Context) error {
		_, err := s.uc.Action.TriggerScheduledAction(ctx, actionID)
		return err
	})

	respondJSON(ctx, w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
