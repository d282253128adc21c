package http

import (
	"net/http"
	"time"

	"assignment-service/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
)

type createAssignmentRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"required"`
	Kind        string    `json:"kind" validate:"required"`
	VisibleFrom time.Time `json:"visibleFrom" validate:"required"`
	Deadline    time.Time `json:"deadline" validate:"required"`
	TimeLimit   *int      `json:"timeLimit" validate:"omitempty,gt=0"`
}

func (s *Server) createAssignment(w http.ResponseWriter, r *http.Request) {
	logger := httplog.LogEntry(r.Context())

	var req createAssignmentRequest
	if err := decodeJSON(r, s.validate, &req); err != nil {
		handleJsonSrvcError(logger, w, err)
		return
	}
	kind, err := domain.ParseKind(req.Kind)
	if err != nil {
		handleJsonSrvcError(logger, w, err)
		return
	}

	a, err := s.service.CreateAssignment(r.Context(), identityFrom(r.Context()), domain.NewAssignment{
		Title:       req.Title,
		Description: req.Description,
		Kind:        kind,
		VisibleFrom: req.VisibleFrom,
		Deadline:    req.Deadline,
		TimeLimit:   req.TimeLimit,
	})
	if err != nil {
		handleJsonSrvcError(logger, w, err)
		return
	}
	logger.Info("assignment created", "assignment_id", a.ID, "kind", a.Kind)
	writeJsonSuccessResponse(w, http.StatusCreated, a)
}

func (s *Server) listAssignments(w http.ResponseWriter, r *http.Request) {
	list, err := s.service.ListAssignments(r.Context(), identityFrom(r.Context()))
	if err != nil {
		handleJsonSrvcError(httplog.LogEntry(r.Context()), w, err)
		return
	}
	writeJsonSuccessResponse(w, http.StatusOK, list)
}

func (s *Server) assignmentOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := s.service.AssignmentOverview(r.Context(), identityFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		handleJsonSrvcError(httplog.LogEntry(r.Context()), w, err)
		return
	}
	writeJsonSuccessResponse(w, http.StatusOK, overview)
}

type gradeRequest struct {
	Rating   *int    `json:"rating"`
	Status   *string `json:"status"`
	Feedback *string `json:"feedback"`
}

func (s *Server) gradeSubmission(w http.ResponseWriter, r *http.Request) {
	logger := httplog.LogEntry(r.Context())

	var req gradeRequest
	if err := decodeJSON(r, s.validate, &req); err != nil {
		handleJsonSrvcError(logger, w, err)
		return
	}
	in := domain.GradeInput{Rating: req.Rating, Feedback: req.Feedback}
	if req.Status != nil {
		status := domain.GradeStatus(*req.Status)
		in.Status = &status
	}

	sub, err := s.service.Grade(r.Context(), identityFrom(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		handleJsonSrvcError(logger, w, err)
		return
	}
	logger.Info("submission graded", "submission_id", sub.ID)
	writeJsonSuccessResponse(w, http.StatusOK, sub)
}
