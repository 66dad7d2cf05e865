package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/tracknest/tracknest/pkg/domain/model"
	"github.com/tracknest/tracknest/pkg/usecase"
)

// deployActionRequest is one action deployment from the CLI tooling
type deployActionRequest struct {
	Config      model.ActionConfig `json:"config"`
	WorkspaceID string             `json:"workspaceId"`
	UserID      string             `json:"userId,omitempty"`
	Version     string             `json:"version,omitempty"`
	IsDev       bool               `json:"isDev,omitempty"`
	IsPersonal  bool               `json:"isPersonal,omitempty"`
}

func (s *Server) createOrUpdateAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req deployActionRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(ctx, w, goerr.Wrap(usecase.ErrInvalidRequest, "invalid request body", goerr.V("cause", err.Error())))
		return
	}
	if req.WorkspaceID == "" {
		respondError(ctx, w, goerr.Wrap(usecase.ErrInvalidRequest, "workspace ID is required"))
		return
	}

	action, err := s.uc.Action.CreateOrUpdateAction(ctx, usecase.CreateActionInput{
		Config:      req.Config,
		WorkspaceID: req.WorkspaceID,
		UserID:      req.UserID,
		Version:     req.Version,
		IsDev:       req.IsDev,
		IsPersonal:  req.IsPersonal,
	})
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, action)
}

func (s *Server) listActions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	workspaceID := r.URL.Query().Get("workspace_id")
	if workspaceID == "" {
		respondError(ctx, w, goerr.Wrap(usecase.ErrInvalidRequest, "workspace_id query parameter is required"))
		return
	}

	actions, err := s.uc.Action.GetActions(ctx, workspaceID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, actions)
}

func (s *Server) getAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	action, err := s.uc.Action.GetAction(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, action)
}

func (s *Server) deleteAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	action, err := s.uc.Action.DeleteAction(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, action)
}

func (s *Server) cleanDevAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	workspaceID := r.URL.Query().Get("workspace_id")
	userID := r.URL.Query().Get("user_id")
	if workspaceID == "" || userID == "" {
		respondError(ctx, w, goerr.Wrap(usecase.ErrInvalidRequest, "workspace_id and user_id query parameters are required"))
		return
	}

	if err := s.uc.Action.CleanDevActions(ctx, chi.URLParam(r, "slug"), workspaceID, userID); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) updateActionInputs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		WorkspaceID string         `json:"workspaceId"`
		Inputs      map[string]any `json:"inputs"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(ctx, w, goerr.Wrap(usecase.ErrInvalidRequest, "invalid request body", goerr.V("cause", err.Error())))
		return
	}

	action, err := s.uc.Action.UpdateActionInputs(ctx, chi.URLParam(r, "slug"), req.WorkspaceID, req.Inputs)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, action)
}

func (s *Server) getActionInputs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	workspaceID := r.URL.Query().Get("workspace_id")
	if workspaceID == "" {
		respondError(ctx, w, goerr.Wrap(usecase.ErrInvalidRequest, "workspace_id query parameter is required"))
		return
	}

	inputs, err := s.uc.Action.GetInputsForSlug(ctx, chi.URLParam(r, "slug"), workspaceID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"inputs": inputs})
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	workspaceID := r.URL.Query().Get("workspace_id")
	runs, err := s.uc.Action.GetRunsForSlug(ctx, chi.URLParam(r, "slug"), workspaceID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, runs)
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	workspaceID := r.URL.Query().Get("workspace_id")
	run, err := s.uc.Action.GetRunForSlug(ctx, chi.URLParam(r, "slug"), workspaceID, chi.URLParam(r, "runID"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, run)
}

func (s *Server) replayRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	workspaceID := r.URL.Query().Get("workspace_id")
	handle, err := s.uc.Action.ReplayRunForSlug(ctx, chi.URLParam(r, "slug"), workspaceID, chi.URLParam(r, "runID"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, handle)
}

func (s *Server) cancelRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	workspaceID := r.URL.Query().Get("workspace_id")
	if err := s.uc.Action.CancelRunForSlug(ctx, chi.URLParam(r, "slug"), workspaceID, chi.URLParam(r, "runID")); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "canceled"})
}

func (s *Server) createSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		WorkspaceID   string `json:"workspaceId"`
		Cron          string `json:"cron"`
		Timezone      string `json:"timezone,omitempty"`
		ScheduledByID string `json:"scheduledById,omitempty"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(ctx, w, goerr.Wrap(usecase.ErrInvalidRequest, "invalid request body", goerr.V("cause", err.Error())))
		return
	}

	schedule, err := s.uc.Action.CreateSchedule(ctx, chi.URLParam(r, "slug"), req.WorkspaceID,
		usecase.ScheduleInput{Cron: req.Cron, Timezone: req.Timezone}, req.ScheduledByID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, schedule)
}

func (s *Server) updateSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Cron     string `json:"cron,omitempty"`
		Timezone string `json:"timezone,omitempty"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(ctx, w, goerr.Wrap(usecase.ErrInvalidRequest, "invalid request body", goerr.V("cause", err.Error())))
		return
	}

	schedule, err := s.uc.Action.UpdateSchedule(ctx, chi.URLParam(r, "id"),
		usecase.ScheduleInput{Cron: req.Cron, Timezone: req.Timezone})
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, schedule)
}

func (s *Server) deleteSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	schedule, err := s.uc.Action.DeleteSchedule(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, schedule)
}
