package domain

import "errors"

var (
	// ErrUnauthorized is returned when the caller lacks the role an operation needs.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrAlreadySubmitted is returned when the student already has a submission for the assignment.
	ErrAlreadySubmitted = errors.New("already submitted")
	// ErrPastDeadline is returned when a submission arrives at or after the deadline.
	ErrPastDeadline = errors.New("deadline has passed")
	// ErrInvalidRating indicates a rating outside [0,10].
	ErrInvalidRating = errors.New("rating must be between 0 and 10")
	// ErrInvalidGradingFields indicates grading fields that do not apply to the assignment kind.
	ErrInvalidGradingFields = errors.New("invalid grading fields")
	// ErrInvalidAssignment indicates an assignment that fails creation checks.
	ErrInvalidAssignment = errors.New("invalid assignment")
	// ErrInvalidSubmission indicates empty submission content.
	ErrInvalidSubmission = errors.New("invalid submission")
	// ErrNotTimed is returned when starting an attempt on an untimed assignment.
	ErrNotTimed = errors.New("assignment has no time limit")
	// ErrAttemptExpired is returned when a student submits by hand after the
	// time limit of their attempt ran out.
	ErrAttemptExpired = errors.New("time limit of the attempt has run out")
	// ErrDraftNotAllowed is returned when auto-saving a timed assignment.
	ErrDraftNotAllowed = errors.New("drafts are only kept for untimed assignments")
	// ErrAssignmentNotFound indicates the assignment id does not resolve.
	ErrAssignmentNotFound = errors.New("assignment not found")
	// ErrSubmissionNotFound indicates the submission id does not resolve.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrAttemptNotFound indicates no timed attempt was started.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrStorageUnavailable wraps connectivity failures of a backing store.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// IsNotFound reports whether err is one of the not-found errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAssignmentNotFound) ||
		errors.Is(err, ErrSubmissionNotFound) ||
		errors.Is(err, ErrAttemptNotFound)
}
