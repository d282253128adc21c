package memory

import (
	"context"
	"sync"
)

// DraftStore is an in-memory implementation of app.DraftRepository.
type DraftStore struct {
	mu     sync.RWMutex
	drafts map[submissionKey]string
}

func NewDraftStore() *DraftStore {
	return &DraftStore{
		drafts: make(map[submissionKey]string),
	}
}

func (s *DraftStore) SaveDraft(_ context.Context, assignmentID, studentID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[submissionKey{assignmentID, studentID}] = content
	return nil
}

func (s *DraftStore) LoadDraft(_ context.Context, assignmentID, studentID string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.drafts[submissionKey{assignmentID, studentID}]
	return content, ok, nil
}

func (s *DraftStore) DeleteDraft(_ context.Context, assignmentID, studentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, submissionKey{assignmentID, studentID})
	return nil
}
