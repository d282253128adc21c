package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"assignment-service/internal/app"
	"assignment-service/internal/domain"
)

func TestStoreRejectsSecondSubmission(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	if err := store.InsertSubmission(ctx, domain.Submission{ID: "x1", AssignmentID: "a1", StudentID: "s1", SubmittedAt: now}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	err := store.InsertSubmission(ctx, domain.Submission{ID: "x2", AssignmentID: "a1", StudentID: "s1", SubmittedAt: now})
	if !errors.Is(err, domain.ErrAlreadySubmitted) {
		t.Fatalf("expected already submitted, got %v", err)
	}
	if n, _ := store.CountSubmissions(ctx); n != 1 {
		t.Fatalf("expected 1 submission, got %d", n)
	}
}

func TestStoreConcurrentInsertsKeepOne(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- store.InsertSubmission(ctx, domain.Submission{
				ID:           string(rune('a' + i)),
				AssignmentID: "a1",
				StudentID:    "s1",
			})
		}(i)
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
		} else if !errors.Is(err, domain.ErrAlreadySubmitted) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Fatalf("expected exactly one insert to win, got %d", ok)
	}
}

func TestStoreListOrdering(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	early := sampleAssignment("early")
	early.CreatedAt = t0
	early.Deadline = t0.Add(48 * time.Hour)
	late := sampleAssignment("late")
	late.CreatedAt = t0.Add(time.Hour)
	late.Deadline = t0.Add(24 * time.Hour)
	hidden := sampleAssignment("hidden")
	hidden.VisibleFrom = t0.Add(72 * time.Hour)
	hidden.Deadline = t0.Add(96 * time.Hour)
	for _, a := range []domain.Assignment{early, late, hidden} {
		_ = store.InsertAssignment(ctx, a)
	}

	byCreated, _ := store.ListAssignments(ctx, app.AssignmentFilter{}, app.SortCreatedDesc)
	if len(byCreated) != 3 || byCreated[0].ID != "late" {
		t.Fatalf("expected newest first, got %+v", ids(byCreated))
	}

	visible, _ := store.ListAssignments(ctx, app.AssignmentFilter{VisibleAt: t0.Add(time.Minute)}, app.SortDeadlineAsc)
	if len(visible) != 2 || visible[0].ID != "late" || visible[1].ID != "early" {
		t.Fatalf("expected visible by deadline, got %+v", ids(visible))
	}
}

func TestStoreUpdateGrading(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	_ = store.InsertSubmission(ctx, domain.Submission{ID: "x1", AssignmentID: "a1", StudentID: "s1", Content: "answer"})

	rating := 7
	if err := store.UpdateSubmissionGrading(ctx, "x1", domain.Grading{Rating: &rating}); err != nil {
		t.Fatalf("update: %v", err)
	}
	sub, _ := store.FindSubmissionByID(ctx, "x1")
	if sub.Rating == nil || *sub.Rating != 7 || sub.Content != "answer" {
		t.Fatalf("unexpected submission after grading: %+v", sub)
	}

	if err := store.UpdateSubmissionGrading(ctx, "nope", domain.Grading{}); !errors.Is(err, domain.ErrSubmissionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func ids(as []domain.Assignment) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.ID
	}
	return out
}
