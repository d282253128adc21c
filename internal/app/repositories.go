package app

import (
	"context"
	"time"

	"assignment-service/internal/domain"
)

// AssignmentSort selects the listing order.
type AssignmentSort int

const (
	// SortCreatedDesc lists newest assignments first (teacher view).
	SortCreatedDesc AssignmentSort = iota
	// SortDeadlineAsc lists the nearest deadline first (student view).
	SortDeadlineAsc
)

// AssignmentFilter narrows ListAssignments. A zero VisibleAt disables the visibility filter.
type AssignmentFilter struct {
	VisibleAt time.Time
}

// Matches reports whether a passes the filter.
func (f AssignmentFilter) Matches(a domain.Assignment) bool {
	return f.VisibleAt.IsZero() || !a.VisibleFrom.After(f.VisibleAt)
}

// AssignmentRepository stores assignments (memory, Postgres, optionally cached).
type AssignmentRepository interface {
	FindAssignment(ctx context.Context, id string) (domain.Assignment, error)
	ListAssignments(ctx context.Context, filter AssignmentFilter, sort AssignmentSort) ([]domain.Assignment, error)
	InsertAssignment(ctx context.Context, a domain.Assignment) error
	CountAssignments(ctx context.Context) (int, error)
}

// SubmissionRepository stores submissions. InsertSubmission must enforce one
// submission per (assignment, student) and report a violation as
// domain.ErrAlreadySubmitted.
type SubmissionRepository interface {
	FindSubmission(ctx context.Context, assignmentID, studentID string) (domain.Submission, error)
	FindSubmissionByID(ctx context.Context, id string) (domain.Submission, error)
	ListSubmissionsByAssignment(ctx context.Context, assignmentID string) ([]domain.Submission, error)
	ListSubmissionsByStudent(ctx context.Context, studentID string) ([]domain.Submission, error)
	InsertSubmission(ctx context.Context, sub domain.Submission) error
	UpdateSubmissionGrading(ctx context.Context, id string, grading domain.Grading) error
	CountSubmissions(ctx context.Context) (int, error)
}

// AttemptRepository persists timed attempt start times. StartAttempt keeps
// the first attempt and returns it on later calls.
type AttemptRepository interface {
	StartAttempt(ctx context.Context, attempt domain.Attempt) (domain.Attempt, error)
	GetAttempt(ctx context.Context, assignmentID, studentID string) (domain.Attempt, error)
}

// DraftRepository keeps best-effort auto-saved content for untimed assignments.
type DraftRepository interface {
	SaveDraft(ctx context.Context, assignmentID, studentID, content string) error
	LoadDraft(ctx context.Context, assignmentID, studentID string) (string, bool, error)
	DeleteDraft(ctx context.Context, assignmentID, studentID string) error
}
