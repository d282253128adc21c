package app

import (
	"context"
	"errors"
	"time"

	"assignment-service/internal/domain"
	"github.com/google/uuid"
)

// Service contains the assignment lifecycle and grading use cases.
type Service struct {
	assignments AssignmentRepository
	submissions SubmissionRepository
	attempts    AttemptRepository
	drafts      DraftRepository
	now         func() time.Time
	newID       func() string
}

func NewService(assignments AssignmentRepository, submissions SubmissionRepository, attempts AttemptRepository, drafts DraftRepository) *Service {
	return NewServiceWithClock(assignments, submissions, attempts, drafts, time.Now)
}

// NewServiceWithClock is used by tests for deterministic timestamps.
func NewServiceWithClock(assignments AssignmentRepository, submissions SubmissionRepository, attempts AttemptRepository, drafts DraftRepository, now func() time.Time) *Service {
	return &Service{
		assignments: assignments,
		submissions: submissions,
		attempts:    attempts,
		drafts:      drafts,
		now:         now,
		newID:       uuid.NewString,
	}
}

// Now returns the service clock reading, truncated to the second precision
// the stores guarantee.
func (s *Service) Now() time.Time {
	return s.now().UTC().Truncate(time.Second)
}

// CreateAssignment publishes a new assignment. Teachers only.
func (s *Service) CreateAssignment(ctx context.Context, id domain.Identity, in domain.NewAssignment) (domain.Assignment, error) {
	if err := id.Require(domain.RoleTeacher); err != nil {
		return domain.Assignment{}, err
	}
	if err := in.Validate(); err != nil {
		return domain.Assignment{}, err
	}
	kind, err := domain.ParseKind(string(in.Kind))
	if err != nil {
		return domain.Assignment{}, err
	}
	a := domain.Assignment{
		ID:          s.newID(),
		Title:       in.Title,
		Description: in.Description,
		Kind:        kind,
		VisibleFrom: in.VisibleFrom.UTC(),
		Deadline:    in.Deadline.UTC(),
		TimeLimit:   in.TimeLimit,
		CreatedAt:   s.Now(),
		CreatedBy:   id.Name,
	}
	if err := s.assignments.InsertAssignment(ctx, a); err != nil {
		return domain.Assignment{}, err
	}
	return a, nil
}

// ListAssignments returns every assignment, newest first. Teachers only.
func (s *Service) ListAssignments(ctx context.Context, id domain.Identity) ([]domain.Assignment, error) {
	if err := id.Require(domain.RoleTeacher); err != nil {
		return nil, err
	}
	return s.assignments.ListAssignments(ctx, AssignmentFilter{}, SortCreatedDesc)
}

// SubmissionSummary holds the simple aggregates shown next to a submission list.
type SubmissionSummary struct {
	Submitted     int      `json:"submitted"`
	Graded        int      `json:"graded"`
	AverageRating *float64 `json:"averageRating,omitempty"`
	Passed        int      `json:"passed"`
	Failed        int      `json:"failed"`
}

// AssignmentOverview is the teacher's view of one assignment.
type AssignmentOverview struct {
	Assignment  domain.Assignment   `json:"assignment"`
	Countdown   domain.Countdown    `json:"countdown"`
	Submissions []domain.Submission `json:"submissions"`
	Summary     SubmissionSummary   `json:"summary"`
}

// AssignmentOverview loads an assignment with its submissions, newest first. Teachers only.
func (s *Service) AssignmentOverview(ctx context.Context, id domain.Identity, assignmentID string) (AssignmentOverview, error) {
	if err := id.Require(domain.RoleTeacher); err != nil {
		return AssignmentOverview{}, err
	}
	a, err := s.assignments.FindAssignment(ctx, assignmentID)
	if err != nil {
		return AssignmentOverview{}, err
	}
	subs, err := s.submissions.ListSubmissionsByAssignment(ctx, assignmentID)
	if err != nil {
		return AssignmentOverview{}, err
	}
	return AssignmentOverview{
		Assignment:  a,
		Countdown:   domain.CountdownFor(a, s.Now()),
		Submissions: subs,
		Summary:     summarize(subs),
	}, nil
}

func summarize(subs []domain.Submission) SubmissionSummary {
	summary := SubmissionSummary{Submitted: len(subs)}
	rated, total := 0, 0
	for _, sub := range subs {
		if sub.Graded() {
			summary.Graded++
		}
		if sub.Rating != nil {
			rated++
			total += *sub.Rating
		}
		if sub.Status != nil {
			switch *sub.Status {
			case domain.StatusPass:
				summary.Passed++
			case domain.StatusFail:
				summary.Failed++
			}
		}
	}
	if rated > 0 {
		avg := float64(total) / float64(rated)
		summary.AverageRating = &avg
	}
	return summary
}

// StoreStats reports record counts; used as a storage health probe.
type StoreStats struct {
	Assignments int `json:"assignments"`
	Submissions int `json:"submissions"`
}

func (s *Service) Stats(ctx context.Context) (StoreStats, error) {
	assignments, err := s.assignments.CountAssignments(ctx)
	if err != nil {
		return StoreStats{}, err
	}
	submissions, err := s.submissions.CountSubmissions(ctx)
	if err != nil {
		return StoreStats{}, err
	}
	return StoreStats{Assignments: assignments, Submissions: submissions}, nil
}

// findExisting returns the student's submission, or nil when there is none.
func (s *Service) findExisting(ctx context.Context, assignmentID, studentID string) (*domain.Submission, error) {
	sub, err := s.submissions.FindSubmission(ctx, assignmentID, studentID)
	if errors.Is(err, domain.ErrSubmissionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
