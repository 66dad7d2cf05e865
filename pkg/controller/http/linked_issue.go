package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/tracknest/tracknest/pkg/domain/model"
	"github.com/tracknest/tracknest/pkg/usecase"
)

// linkedIssueUpdateRequest is the REST shape of an enrichment patch
type linkedIssueUpdateRequest struct {
	Title      string                   `json:"title,omitempty"`
	SourceID   string                   `json:"sourceId,omitempty"`
	Source     *model.LinkedIssueSource `json:"source,omitempty"`
	SourceData map[string]any           `json:"sourceData,omitempty"`
}

func (req *linkedIssueUpdateRequest) patch() *model.LinkedIssueUpdate {
	return &model.LinkedIssueUpdate{
		Title:      req.Title,
		SourceID:   req.SourceID,
		Source:     req.Source,
		SourceData: req.SourceData,
	}
}

func (s *Server) getLinkedIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	store := usecase.NewRepositoryStore(s.uc.Repository())
	lctx, err := store.GetLinkedIssueContext(ctx, id)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, lctx)
}

func (s *Server) updateLinkedIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	var req linkedIssueUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(ctx, w, goerr.Wrap(usecase.ErrInvalidRequest, "invalid request body", goerr.V("cause", err.Error())))
		return
	}

	link, err := s.uc.Repository().LinkedIssue().Update(ctx, id, req.patch())
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, link)
}

func (s *Server) updateLinkedIssuesBySource(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sourceID := chi.URLParam(r, "sourceID")

	var req linkedIssueUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(ctx, w, goerr.Wrap(usecase.ErrInvalidRequest, "invalid request body", goerr.V("cause", err.Error())))
		return
	}

	links, err := s.uc.Repository().LinkedIssue().UpdateBySource(ctx, sourceID, req.patch())
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, links)
}

func (s *Server) createIssueComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var comment model.IssueComment
	if err := decodeBody(r, &comment); err != nil {
		respondError(ctx, w, goerr.Wrap(usecase.ErrInvalidRequest, "invalid request body", goerr.V("cause", err.Error())))
		return
	}
	if comment.IssueID == "" {
		respondError(ctx, w, goerr.Wrap(usecase.ErrInvalidRequest, "issue ID is required"))
		return
	}

	created, err := s.uc.Repository().Issue().CreateComment(ctx, &comment)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, created)
}

func (s *Server) updateLabel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	labelID := chi.URLParam(r, "labelID")

	var req struct {
		Name  string `json:"name,omitempty"`
		Color string `json:"color,omitempty"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(ctx, w, goerr.Wrap(usecase.ErrInvalidRequest, "invalid request body", goerr.V("cause", err.Error())))
		return
	}

	label, err := s.uc.Repository().Label().Get(ctx, labelID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if req.Name != "" {
		label.Name = req.Name
	}
	if req.Color != "" {
		label.Color = req.Color
	}

	updated, err := s.uc.Repository().Label().Put(ctx, label)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, updated)
}
