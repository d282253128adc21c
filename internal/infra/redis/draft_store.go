package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"assignment-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// DraftStore keeps auto-saved content with a TTL; drafts are best-effort and
// never part of the durable record.
type DraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDraftStore(client *redis.Client, ttl time.Duration) *DraftStore {
	return &DraftStore{client: client, ttl: ttl}
}

func (s *DraftStore) SaveDraft(ctx context.Context, assignmentID, studentID, content string) error {
	if err := s.client.Set(ctx, s.key(assignmentID, studentID), content, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: save draft: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *DraftStore) LoadDraft(ctx context.Context, assignmentID, studentID string) (string, bool, error) {
	content, err := s.client.Get(ctx, s.key(assignmentID, studentID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: load draft: %v", domain.ErrStorageUnavailable, err)
	}
	return content, true, nil
}

func (s *DraftStore) DeleteDraft(ctx context.Context, assignmentID, studentID string) error {
	if err := s.client.Del(ctx, s.key(assignmentID, studentID)).Err(); err != nil {
		return fmt.Errorf("%w: delete draft: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *DraftStore) key(assignmentID, studentID string) string {
	return "draft:" + assignmentID + ":" + studentID
}
