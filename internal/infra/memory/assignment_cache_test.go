package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"assignment-service/internal/app"
	"assignment-service/internal/domain"
)

func TestAssignmentCacheCaches(t *testing.T) {
	store := NewStore()
	if err := store.InsertAssignment(context.Background(), sampleAssignment("a1")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	loader := &countingRepository{AssignmentRepository: store}
	cache := NewAssignmentCache(loader, time.Minute)

	if _, err := cache.FindAssignment(context.Background(), "a1"); err != nil {
		t.Fatalf("find: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := cache.FindAssignment(context.Background(), "a1"); err != nil {
		t.Fatalf("find 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestAssignmentCacheDoesNotCacheMisses(t *testing.T) {
	loader := &countingRepository{AssignmentRepository: NewStore()}
	cache := NewAssignmentCache(loader, time.Minute)

	for i := 0; i < 2; i++ {
		_, err := cache.FindAssignment(context.Background(), "missing")
		if !errors.Is(err, domain.ErrAssignmentNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	}
	if loader.calls != 2 {
		t.Fatalf("expected every miss to reach the loader, got %d", loader.calls)
	}
}

func TestAssignmentCacheExpires(t *testing.T) {
	store := NewStore()
	_ = store.InsertAssignment(context.Background(), sampleAssignment("a1"))
	loader := &countingRepository{AssignmentRepository: store}
	cache := NewAssignmentCache(loader, time.Minute)

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	cache.clock = func() time.Time { return now }

	_, _ = cache.FindAssignment(context.Background(), "a1")
	now = now.Add(2 * time.Minute)
	_, _ = cache.FindAssignment(context.Background(), "a1")
	if loader.calls != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.calls)
	}
}

type countingRepository struct {
	app.AssignmentRepository
	calls int
}

func (r *countingRepository) FindAssignment(ctx context.Context, id string) (domain.Assignment, error) {
	r.calls++
	return r.AssignmentRepository.FindAssignment(ctx, id)
}

func sampleAssignment(id string) domain.Assignment {
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return domain.Assignment{
		ID:          id,
		Title:       "Essay",
		Description: "Write about **rivers**.",
		Kind:        domain.KindPlain,
		VisibleFrom: t0,
		Deadline:    t0.Add(7 * 24 * time.Hour),
		CreatedAt:   t0,
		CreatedBy:   "Teacher",
	}
}
