package memory

import (
	"context"
	"sync"

	"assignment-service/internal/domain"
)

// AttemptStore is an in-memory implementation of app.AttemptRepository.
type AttemptStore struct {
	mu       sync.RWMutex
	attempts map[submissionKey]domain.Attempt
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{
		attempts: make(map[submissionKey]domain.Attempt),
	}
}

// StartAttempt stores attempt unless one is already running for the pair, in
// which case the running one is returned unchanged.
func (s *AttemptStore) StartAttempt(_ context.Context, attempt domain.Attempt) (domain.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := submissionKey{attempt.AssignmentID, attempt.StudentID}
	if existing, ok := s.attempts[key]; ok {
		return existing, nil
	}
	s.attempts[key] = attempt
	return attempt, nil
}

func (s *AttemptStore) GetAttempt(_ context.Context, assignmentID, studentID string) (domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempt, ok := s.attempts[submissionKey{assignmentID, studentID}]
	if !ok {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	return attempt, nil
}
