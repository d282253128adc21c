package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"assignment-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// AttemptStore persists timed attempt start times so a countdown survives
// reconnects. The first SETNX wins; the key expires some grace period after
// the assignment deadline, when no submit or restart is possible anymore.
//
//	SET attempt:{assignmentID}:{studentID} {json} NX EX (deadline-start)+grace
type AttemptStore struct {
	client *redis.Client
	grace  time.Duration
}

func NewAttemptStore(client *redis.Client, grace time.Duration) *AttemptStore {
	return &AttemptStore{client: client, grace: grace}
}

func (s *AttemptStore) StartAttempt(ctx context.Context, attempt domain.Attempt) (domain.Attempt, error) {
	data, err := json.Marshal(attempt)
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("marshal attempt: %w", err)
	}
	ttl := attempt.KeepUntil().Sub(attempt.StartedAt) + s.grace
	created, err := s.client.SetNX(ctx, s.key(attempt.AssignmentID, attempt.StudentID), data, ttl).Result()
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("%w: start attempt: %v", domain.ErrStorageUnavailable, err)
	}
	if created {
		return attempt, nil
	}
	return s.GetAttempt(ctx, attempt.AssignmentID, attempt.StudentID)
}

func (s *AttemptStore) GetAttempt(ctx context.Context, assignmentID, studentID string) (domain.Attempt, error) {
	raw, err := s.client.Get(ctx, s.key(assignmentID, studentID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("%w: get attempt: %v", domain.ErrStorageUnavailable, err)
	}
	var attempt domain.Attempt
	if err := json.Unmarshal(raw, &attempt); err != nil {
		return domain.Attempt{}, fmt.Errorf("unmarshal attempt: %w", err)
	}
	return attempt, nil
}

func (s *AttemptStore) key(assignmentID, studentID string) string {
	return "attempt:" + assignmentID + ":" + studentID
}
