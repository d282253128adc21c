package http

import (
	"errors"
	"net/http"

	"assignment-service/internal/auth"
	"assignment-service/internal/domain"
	"github.com/go-chi/httplog/v2"
)

type loginResponse struct {
	Token    string          `json:"token"`
	Identity domain.Identity `json:"identity"`
}

func (s *Server) loginTeacher(w http.ResponseWriter, r *http.Request) {
	logger := httplog.LogEntry(r.Context())

	type loginRequest struct {
		Mobile string `json:"mobile" validate:"required,numeric"`
	}
	var req loginRequest
	if err := decodeJSON(r, s.validate, &req); err != nil {
		handleJsonSrvcError(logger, w, err)
		return
	}

	id, err := s.auth.LoginTeacher(req.Mobile)
	s.finishLogin(w, r, id, err)
}

func (s *Server) loginStudent(w http.ResponseWriter, r *http.Request) {
	logger := httplog.LogEntry(r.Context())

	type loginRequest struct {
		Name      string `json:"name" validate:"required"`
		StudentID string `json:"studentId" validate:"required"`
	}
	var req loginRequest
	if err := decodeJSON(r, s.validate, &req); err != nil {
		handleJsonSrvcError(logger, w, err)
		return
	}

	id, err := s.auth.LoginStudent(req.Name, req.StudentID)
	s.finishLogin(w, r, id, err)
}

func (s *Server) finishLogin(w http.ResponseWriter, r *http.Request, id domain.Identity, err error) {
	logger := httplog.LogEntry(r.Context())
	if errors.Is(err, auth.ErrInvalidCredentials) {
		logger.Info("login rejected")
		writeJsonErrorResponse(w, errUnauthenticated(err.Error()))
		return
	}
	if err != nil {
		handleJsonSrvcError(logger, w, err)
		return
	}

	token, err := s.auth.Issue(id)
	if err != nil {
		logger.Error("failed to issue token", "error", err)
		handleJsonSrvcError(logger, w, err)
		return
	}
	logger.Info("login", "role", id.Role, "name", id.Name)
	writeJsonSuccessResponse(w, http.StatusOK, loginResponse{Token: token, Identity: id})
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Stats(r.Context())
	if err != nil {
		handleJsonSrvcError(httplog.LogEntry(r.Context()), w, err)
		return
	}
	writeJsonSuccessResponse(w, http.StatusOK, stats)
}
