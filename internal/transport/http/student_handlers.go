package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
)

func (s *Server) studentDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := s.service.StudentDashboard(r.Context(), identityFrom(r.Context()))
	if err != nil {
		handleJsonSrvcError(httplog.LogEntry(r.Context()), w, err)
		return
	}
	writeJsonSuccessResponse(w, http.StatusOK, dash)
}

func (s *Server) studentAssignment(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.StudentAssignment(r.Context(), identityFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		handleJsonSrvcError(httplog.LogEntry(r.Context()), w, err)
		return
	}
	writeJsonSuccessResponse(w, http.StatusOK, view)
}

type contentRequest struct {
	Content string `json:"content"`
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	logger := httplog.LogEntry(r.Context())

	var req contentRequest
	if err := decodeJSON(r, s.validate, &req); err != nil {
		handleJsonSrvcError(logger, w, err)
		return
	}
	sub, err := s.service.Submit(r.Context(), identityFrom(r.Context()), chi.URLParam(r, "id"), req.Content)
	if err != nil {
		handleJsonSrvcError(logger, w, err)
		return
	}
	logger.Info("submission recorded", "assignment_id", sub.AssignmentID, "submission_id", sub.ID)
	writeJsonSuccessResponse(w, http.StatusCreated, sub)
}

func (s *Server) startAttempt(w http.ResponseWriter, r *http.Request) {
	attempt, err := s.service.StartAttempt(r.Context(), identityFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		handleJsonSrvcError(httplog.LogEntry(r.Context()), w, err)
		return
	}
	writeJsonSuccessResponse(w, http.StatusOK, newAttemptPayload(attempt, s.service.Now()))
}

func (s *Server) saveDraft(w http.ResponseWriter, r *http.Request) {
	logger := httplog.LogEntry(r.Context())

	var req contentRequest
	if err := decodeJSON(r, s.validate, &req); err != nil {
		handleJsonSrvcError(logger, w, err)
		return
	}
	if err := s.service.SaveDraft(r.Context(), identityFrom(r.Context()), chi.URLParam(r, "id"), req.Content); err != nil {
		handleJsonSrvcError(logger, w, err)
		return
	}
	writeJsonSuccessResponse(w, http.StatusOK, req)
}

func (s *Server) loadDraft(w http.ResponseWriter, r *http.Request) {
	content, err := s.service.LoadDraft(r.Context(), identityFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		handleJsonSrvcError(httplog.LogEntry(r.Context()), w, err)
		return
	}
	writeJsonSuccessResponse(w, http.StatusOK, contentRequest{Content: content})
}
