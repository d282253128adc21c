package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"assignment-service/internal/domain"
)

// Submit records the student's single response. Students only. Once a timed
// attempt has run out only the expiry path may record it.
func (s *Service) Submit(ctx context.Context, id domain.Identity, assignmentID, content string) (domain.Submission, error) {
	if err := id.Require(domain.RoleStudent); err != nil {
		return domain.Submission{}, err
	}
	if strings.TrimSpace(content) == "" {
		return domain.Submission{}, domain.ErrInvalidSubmission
	}
	return s.submit(ctx, id, assignmentID, content, true)
}

// AutoSubmit records the last draft when a timed attempt runs out. It follows
// the Submit contract, except that an empty draft is still recorded.
func (s *Service) AutoSubmit(ctx context.Context, id domain.Identity, assignmentID, draft string) (domain.Submission, error) {
	if err := id.Require(domain.RoleStudent); err != nil {
		return domain.Submission{}, err
	}
	return s.submit(ctx, id, assignmentID, draft, false)
}

func (s *Service) submit(ctx context.Context, id domain.Identity, assignmentID, content string, manual bool) (domain.Submission, error) {
	a, err := s.assignments.FindAssignment(ctx, assignmentID)
	if err != nil {
		return domain.Submission{}, err
	}
	existing, err := s.findExisting(ctx, assignmentID, id.StudentID)
	if err != nil {
		return domain.Submission{}, err
	}
	now := s.Now()
	if err := domain.CheckSubmit(a, existing, now); err != nil {
		return domain.Submission{}, err
	}
	if manual && a.Kind.Timed() {
		attempt, err := s.attempts.GetAttempt(ctx, a.ID, id.StudentID)
		switch {
		case err == nil && attempt.Expired(now):
			return domain.Submission{}, domain.ErrAttemptExpired
		case err != nil && !errors.Is(err, domain.ErrAttemptNotFound):
			return domain.Submission{}, err
		}
	}

	sub := domain.Submission{
		ID:           s.newID(),
		AssignmentID: a.ID,
		StudentID:    id.StudentID,
		StudentName:  id.Name,
		Content:      content,
		SubmittedAt:  now,
	}
	// The store's uniqueness constraint is the final word on double submits.
	if err := s.submissions.InsertSubmission(ctx, sub); err != nil {
		return domain.Submission{}, err
	}

	if !a.Kind.Timed() {
		if err := s.drafts.DeleteDraft(ctx, a.ID, id.StudentID); err != nil {
			slog.WarnContext(ctx, "drop draft after submit", "assignment_id", a.ID, "student_id", id.StudentID, "error", err)
		}
	}
	return sub, nil
}

// StartAttempt begins the countdown of a timed assignment. A second call
// returns the attempt already running; it never restarts the clock.
func (s *Service) StartAttempt(ctx context.Context, id domain.Identity, assignmentID string) (domain.Attempt, error) {
	if err := id.Require(domain.RoleStudent); err != nil {
		return domain.Attempt{}, err
	}
	a, err := s.assignments.FindAssignment(ctx, assignmentID)
	if err != nil {
		return domain.Attempt{}, err
	}
	if !a.Kind.Timed() {
		return domain.Attempt{}, domain.ErrNotTimed
	}
	existing, err := s.findExisting(ctx, assignmentID, id.StudentID)
	if err != nil {
		return domain.Attempt{}, err
	}
	now := s.Now()
	if err := domain.CheckSubmit(a, existing, now); err != nil {
		return domain.Attempt{}, err
	}
	attempt, err := domain.NewAttempt(a, id.StudentID, now)
	if err != nil {
		return domain.Attempt{}, err
	}
	return s.attempts.StartAttempt(ctx, attempt)
}

// SaveDraft auto-saves content of an untimed assignment. Drafts are not part
// of the durable record and are dropped once the student submits.
func (s *Service) SaveDraft(ctx context.Context, id domain.Identity, assignmentID, content string) error {
	if err := id.Require(domain.RoleStudent); err != nil {
		return err
	}
	a, err := s.assignments.FindAssignment(ctx, assignmentID)
	if err != nil {
		return err
	}
	if a.Kind.Timed() {
		return domain.ErrDraftNotAllowed
	}
	existing, err := s.findExisting(ctx, assignmentID, id.StudentID)
	if err != nil {
		return err
	}
	if err := domain.CheckSubmit(a, existing, s.Now()); err != nil {
		return err
	}
	return s.drafts.SaveDraft(ctx, assignmentID, id.StudentID, content)
}

// LoadDraft returns the auto-saved content, empty when nothing was saved.
func (s *Service) LoadDraft(ctx context.Context, id domain.Identity, assignmentID string) (string, error) {
	if err := id.Require(domain.RoleStudent); err != nil {
		return "", err
	}
	content, _, err := s.drafts.LoadDraft(ctx, assignmentID, id.StudentID)
	return content, err
}

// StudentView is an assignment as a student sees it right now.
type StudentView struct {
	Assignment domain.Assignment  `json:"assignment"`
	Countdown  domain.Countdown   `json:"countdown"`
	Submission *domain.Submission `json:"submission,omitempty"`
	CanSubmit  bool               `json:"canSubmit"`
}

// StudentAssignment is the detail view: the assignment plus any running
// attempt or saved draft.
type StudentAssignment struct {
	StudentView
	Attempt          *domain.Attempt `json:"attempt,omitempty"`
	RemainingSeconds *int64          `json:"remainingSeconds,omitempty"`
	Draft            string          `json:"draft,omitempty"`
}

// StudentAssignment loads one visible assignment. Assignments before their
// visibility window resolve as not found.
func (s *Service) StudentAssignment(ctx context.Context, id domain.Identity, assignmentID string) (StudentAssignment, error) {
	if err := id.Require(domain.RoleStudent); err != nil {
		return StudentAssignment{}, err
	}
	a, err := s.assignments.FindAssignment(ctx, assignmentID)
	if err != nil {
		return StudentAssignment{}, err
	}
	now := s.Now()
	if domain.Classify(now, a.VisibleFrom, a.Deadline) == domain.StateNotYetVisible {
		return StudentAssignment{}, domain.ErrAssignmentNotFound
	}
	existing, err := s.findExisting(ctx, assignmentID, id.StudentID)
	if err != nil {
		return StudentAssignment{}, err
	}
	view := StudentAssignment{StudentView: studentView(a, existing, now)}
	if existing != nil {
		return view, nil
	}

	if a.Kind.Timed() {
		attempt, err := s.attempts.GetAttempt(ctx, assignmentID, id.StudentID)
		switch {
		case err == nil:
			left := int64(attempt.Remaining(now).Seconds())
			view.Attempt = &attempt
			view.RemainingSeconds = &left
		case !errors.Is(err, domain.ErrAttemptNotFound):
			return StudentAssignment{}, err
		}
		return view, nil
	}

	draft, _, err := s.drafts.LoadDraft(ctx, assignmentID, id.StudentID)
	if err != nil {
		slog.WarnContext(ctx, "load draft", "assignment_id", assignmentID, "error", err)
	}
	view.Draft = draft
	return view, nil
}

func studentView(a domain.Assignment, sub *domain.Submission, now time.Time) StudentView {
	return StudentView{
		Assignment: a,
		Countdown:  domain.CountdownFor(a, now),
		Submission: sub,
		CanSubmit:  domain.CanSubmit(a, sub, now),
	}
}
