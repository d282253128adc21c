package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"assignment-service/internal/domain"
	"github.com/go-playground/validator/v10"
)

type JsonResponse struct {
	Status  string            `json:"status"` // "success" or "error"
	Data    any               `json:"data,omitempty"`
	ErrCode string            `json:"code,omitempty"`
	ErrMsg  string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func writeJsonSuccessResponse(w http.ResponseWriter, statusCode int, data any) {
	resp := JsonResponse{
		Status: "success",
		Data:   data,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

func writeJsonErrorResponse(w http.ResponseWriter, apiErr *apiError) {
	resp := JsonResponse{
		Status:  "error",
		ErrCode: apiErr.code,
		ErrMsg:  apiErr.message,
		Errors:  apiErr.fields,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.status)
	_ = json.NewEncoder(w).Encode(resp)
}

// apiError is an error translated for the wire.
type apiError struct {
	status  int
	code    string
	message string
	fields  map[string]string
}

func (e *apiError) Error() string {
	return e.message
}

const (
	codeUnauthorized       = "unauthorized"
	codeAlreadySubmitted   = "already_submitted"
	codePastDeadline       = "past_deadline"
	codeAttemptExpired     = "attempt_expired"
	codeNotFound           = "not_found"
	codeStorageUnavailable = "storage_unavailable"
	codeInvalidRequest     = "invalid_request"
	codeInternal           = "internal"
)

var validationCodes = []struct {
	err  error
	code string
}{
	{domain.ErrInvalidRating, "invalid_rating"},
	{domain.ErrInvalidGradingFields, "invalid_grading_fields"},
	{domain.ErrInvalidAssignment, "invalid_assignment"},
	{domain.ErrInvalidSubmission, "invalid_submission"},
	{domain.ErrNotTimed, "not_timed"},
	{domain.ErrDraftNotAllowed, "draft_not_allowed"},
}

// toAPIError maps service errors onto status codes and stable error codes.
func toAPIError(err error) *apiError {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return &apiError{status: http.StatusForbidden, code: codeUnauthorized, message: err.Error()}
	case errors.Is(err, domain.ErrAlreadySubmitted):
		return &apiError{status: http.StatusConflict, code: codeAlreadySubmitted, message: err.Error()}
	case errors.Is(err, domain.ErrPastDeadline):
		return &apiError{status: http.StatusUnprocessableEntity, code: codePastDeadline, message: err.Error()}
	case errors.Is(err, domain.ErrAttemptExpired):
		return &apiError{status: http.StatusUnprocessableEntity, code: codeAttemptExpired, message: err.Error()}
	case domain.IsNotFound(err):
		return &apiError{status: http.StatusNotFound, code: codeNotFound, message: err.Error()}
	case errors.Is(err, domain.ErrStorageUnavailable):
		return &apiError{status: http.StatusServiceUnavailable, code: codeStorageUnavailable, message: domain.ErrStorageUnavailable.Error()}
	}
	for _, vc := range validationCodes {
		if errors.Is(err, vc.err) {
			return &apiError{status: http.StatusBadRequest, code: vc.code, message: err.Error()}
		}
	}
	return &apiError{status: http.StatusInternalServerError, code: codeInternal, message: http.StatusText(http.StatusInternalServerError)}
}

func handleJsonSrvcError(logger *slog.Logger, w http.ResponseWriter, err error) {
	apiErr := toAPIError(err)
	if apiErr.status >= http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
	}
	writeJsonErrorResponse(w, apiErr)
}

func errUnauthenticated(msg string) *apiError {
	return &apiError{status: http.StatusUnauthorized, code: codeUnauthorized, message: msg}
}

func errInvalidRequest(msg string, fields map[string]string) *apiError {
	return &apiError{status: http.StatusBadRequest, code: codeInvalidRequest, message: msg, fields: fields}
}

// decodeJSON reads the request body into dst and runs struct validation.
func decodeJSON(r *http.Request, validate *validator.Validate, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errInvalidRequest("malformed JSON body", nil)
	}
	if err := validate.Struct(dst); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			return errInvalidRequest("invalid input", nil)
		}
		fields := make(map[string]string, len(ve))
		for _, fe := range ve {
			fields[fe.Field()] = fe.Tag()
		}
		return errInvalidRequest("validation failed", fields)
	}
	return nil
}
