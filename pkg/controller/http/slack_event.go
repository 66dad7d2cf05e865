package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack/slackevents"
	"github.com/tracknest/tracknest/pkg/utils/async"
	"github.com/tracknest/tracknest/pkg/utils/errutil"
	"github.com/tracknest/tracknest/pkg/utils/logging"
)

// handleSlackEvent answers Slack's endpoint verification and accepts
// event callbacks. Callbacks are acknowledged immediately; Slack
// retries on anything but a fast 2xx.
func (s *Server) handleSlackEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Read body (already verified by middleware)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}

	eventsAPIEvent, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to parse slack event"), http.StatusBadRequest)
		return
	}

	switch eventsAPIEvent.Type {
	case slackevents.URLVerification:
		var challenge *slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &challenge); err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to unmarshal challenge"), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(challenge.Challenge)); err != nil {
			logging.From(ctx).Error("failed to write challenge response", "error", err)
		}

	case slackevents.CallbackEvent:
		// Return 200 immediately to satisfy Slack's 3-second timeout
		w.WriteHeader(http.StatusOK)

		async.Dispatch(ctx, func(ctx context.Context) error {
			logging.From(ctx).Info("slack callback event received",
				"inner_type", eventsAPIEvent.InnerEvent.Type,
				"team_id", eventsAPIEvent.TeamID,
			)
			return nil
		})

	default:
		logging.From(ctx).Warn("unknown slack event type", "type", eventsAPIEvent.Type)
		w.WriteHeader(http.StatusOK)
	}
}
