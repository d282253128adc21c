package memory

import (
	"context"
	"sort"
	"sync"

	"assignment-service/internal/app"
	"assignment-service/internal/domain"
)

// Store is an in-memory implementation of app.AssignmentRepository and
// app.SubmissionRepository. The (assignment, student) uniqueness constraint is
// checked and written under one lock.
type Store struct {
	mu          sync.RWMutex
	assignments map[string]domain.Assignment
	submissions map[string]domain.Submission
	byStudent   map[submissionKey]string
}

type submissionKey struct {
	assignmentID string
	studentID    string
}

func NewStore() *Store {
	return &Store{
		assignments: make(map[string]domain.Assignment),
		submissions: make(map[string]domain.Submission),
		byStudent:   make(map[submissionKey]string),
	}
}

func (s *Store) FindAssignment(_ context.Context, id string) (domain.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.assignments[id]; ok {
		return a, nil
	}
	return domain.Assignment{}, domain.ErrAssignmentNotFound
}

func (s *Store) ListAssignments(_ context.Context, filter app.AssignmentFilter, order app.AssignmentSort) ([]domain.Assignment, error) {
	s.mu.RLock()
	out := make([]domain.Assignment, 0, len(s.assignments))
	for _, a := range s.assignments {
		if filter.Matches(a) {
			out = append(out, a)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		switch order {
		case app.SortDeadlineAsc:
			if !out[i].Deadline.Equal(out[j].Deadline) {
				return out[i].Deadline.Before(out[j].Deadline)
			}
		default:
			if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].CreatedAt.After(out[j].CreatedAt)
			}
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) InsertAssignment(_ context.Context, a domain.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments[a.ID] = a
	return nil
}

func (s *Store) CountAssignments(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.assignments), nil
}

func (s *Store) FindSubmission(_ context.Context, assignmentID, studentID string) (domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byStudent[submissionKey{assignmentID, studentID}]
	if !ok {
		return domain.Submission{}, domain.ErrSubmissionNotFound
	}
	return s.submissions[id], nil
}

func (s *Store) FindSubmissionByID(_ context.Context, id string) (domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sub, ok := s.submissions[id]; ok {
		return sub, nil
	}
	return domain.Submission{}, domain.ErrSubmissionNotFound
}

func (s *Store) ListSubmissionsByAssignment(_ context.Context, assignmentID string) ([]domain.Submission, error) {
	return s.listSubmissions(func(sub domain.Submission) bool { return sub.AssignmentID == assignmentID }), nil
}

func (s *Store) ListSubmissionsByStudent(_ context.Context, studentID string) ([]domain.Submission, error) {
	return s.listSubmissions(func(sub domain.Submission) bool { return sub.StudentID == studentID }), nil
}

// listSubmissions returns matching submissions, newest first.
func (s *Store) listSubmissions(match func(domain.Submission) bool) []domain.Submission {
	s.mu.RLock()
	out := make([]domain.Submission, 0)
	for _, sub := range s.submissions {
		if match(sub) {
			out = append(out, sub)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.After(out[j].SubmittedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) InsertSubmission(_ context.Context, sub domain.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := submissionKey{sub.AssignmentID, sub.StudentID}
	if _, exists := s.byStudent[key]; exists {
		return domain.ErrAlreadySubmitted
	}
	s.byStudent[key] = sub.ID
	s.submissions[sub.ID] = sub
	return nil
}

func (s *Store) UpdateSubmissionGrading(_ context.Context, id string, grading domain.Grading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.submissions[id]
	if !ok {
		return domain.ErrSubmissionNotFound
	}
	sub.Grading = grading
	s.submissions[id] = sub
	return nil
}

func (s *Store) CountSubmissions(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.submissions), nil
}
