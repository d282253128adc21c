package bolt

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"assignment-service/internal/app"
	"assignment-service/internal/domain"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "data", "assignments.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSubmissionPairIsUnique(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	const workers = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		stored    int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := store.InsertSubmission(ctx, domain.Submission{
				ID: "sub-" + string(rune('a'+i)), AssignmentID: "a1", StudentID: "s1", Content: "x", SubmittedAt: t0,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				stored++
			case errors.Is(err, domain.ErrAlreadySubmitted):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()
	if stored != 1 || conflicts != workers-1 {
		t.Fatalf("expected 1 stored and %d conflicts, got %d and %d", workers-1, stored, conflicts)
	}

	n, err := store.CountSubmissions(ctx)
	if err != nil || n != 1 {
		t.Fatalf("expected one submission, got %d (%v)", n, err)
	}
}

func TestAssignmentsRoundTripAndOrder(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	limit := 30
	for i, a := range []domain.Assignment{
		{ID: "a1", Title: "first", Kind: domain.KindPlain, VisibleFrom: t0, Deadline: t0.Add(3 * time.Hour), CreatedAt: t0},
		{ID: "a2", Title: "second", Kind: domain.KindTimedQuiz, TimeLimit: &limit, VisibleFrom: t0, Deadline: t0.Add(time.Hour), CreatedAt: t0.Add(time.Minute)},
		{ID: "a3", Title: "hidden", Kind: domain.KindPlain, VisibleFrom: t0.Add(time.Hour), Deadline: t0.Add(2 * time.Hour), CreatedAt: t0.Add(2 * time.Minute)},
	} {
		if err := store.InsertAssignment(ctx, a); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	got, err := store.FindAssignment(ctx, "a2")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Kind != domain.KindTimedQuiz || got.TimeLimit == nil || *got.TimeLimit != 30 {
		t.Fatalf("unexpected assignment %+v", got)
	}
	if _, err := store.FindAssignment(ctx, "nope"); !errors.Is(err, domain.ErrAssignmentNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	created, _ := store.ListAssignments(ctx, app.AssignmentFilter{}, app.SortCreatedDesc)
	if ids(created) != "a3,a2,a1" {
		t.Fatalf("unexpected created order %s", ids(created))
	}
	visible, _ := store.ListAssignments(ctx, app.AssignmentFilter{VisibleAt: t0}, app.SortDeadlineAsc)
	if ids(visible) != "a2,a1" {
		t.Fatalf("unexpected deadline order %s", ids(visible))
	}
}

func TestUpdateGradingKeepsResponse(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	sub := domain.Submission{ID: "s1", AssignmentID: "a1", StudentID: "st", Content: "answer", SubmittedAt: t0}
	if err := store.InsertSubmission(ctx, sub); err != nil {
		t.Fatalf("insert: %v", err)
	}

	rating, by, at := 9, "Teacher", t0.Add(time.Hour)
	if err := store.UpdateSubmissionGrading(ctx, "s1", domain.Grading{Rating: &rating, GradedBy: &by, GradedAt: &at}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := store.FindSubmission(ctx, "a1", "st")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Content != "answer" || got.Rating == nil || *got.Rating != 9 {
		t.Fatalf("unexpected submission %+v", got)
	}
	if err := store.UpdateSubmissionGrading(ctx, "missing", domain.Grading{}); !errors.Is(err, domain.ErrSubmissionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func ids(list []domain.Assignment) string {
	out := ""
	for i, a := range list {
		if i > 0 {
			out += ","
		}
		out += a.ID
	}
	return out
}
