package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/me/dagsim/pkg/model"
)

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	opts := model.ListOptions{}
	if v := r.URL.Query().Get("limit"); v != "" {
		opts.Limit, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		opts.Offset, _ = strconv.Atoi(v)
	}
	opts.Clamp()

	runs, total, err := s.store.ListRuns(r.Context(), opts)
	if err != nil {
		s.logger.Error("list runs", "error", err)
		respondError(w, reqID, http.StatusInternalServerError, &model.APIError{
			Code:    model.ErrCodeInternal,
			Message: "failed to list runs",
		})
		return
	}
	if runs == nil {
		runs = []*model.Run{}
	}

	respondList(w, reqID, runs, &model.Pagination{
		Total:   total,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
		HasMore: opts.Offset+len(runs) < total,
	})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	run, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		s.logger.Error("get run", "id", id, "error", err)
		respondError(w, reqID, http.StatusInternalServerError, &model.APIError{
			Code:    model.ErrCodeInternal,
			Message: "failed to load run",
		})
		return
	}
	if run == nil {
		respondError(w, reqID, http.StatusNotFound, &model.APIError{
			Code:    model.ErrCodeNotFound,
			Message: "run '" + id + "' not found",
		})
		return
	}

	respondOK(w, reqID, run)
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	err := s.store.DeleteRun(r.Context(), id)
	var nf *model.NotFoundError
	if errors.As(err, &nf) {
		respondError(w, reqID, http.StatusNotFound, &model.APIError{
			Code:    model.ErrCodeNotFound,
			Message: "run '" + id + "' not found",
		})
		return
	}
	if err != nil {
		s.logger.Error("delete run", "id", id, "error", err)
		respondError(w, reqID, http.StatusInternalServerError, &model.APIError{
			Code:    model.ErrCodeInternal,
			Message: "failed to delete run",
		})
		return
	}

	respondOK(w, reqID, map[string]any{"deleted": true})
}
