package domain

import (
	"errors"
	"testing"
	"time"
)

func TestCheckSubmit(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a := Assignment{VisibleFrom: now.Add(-time.Hour), Deadline: now.Add(time.Hour)}
	prior := &Submission{ID: "s1"}

	if err := CheckSubmit(a, nil, now); err != nil {
		t.Fatalf("expected open submission, got %v", err)
	}
	if !CanSubmit(a, nil, now) {
		t.Fatalf("expected CanSubmit before deadline")
	}
	if err := CheckSubmit(a, nil, a.Deadline); !errors.Is(err, ErrPastDeadline) {
		t.Fatalf("expected past deadline at the deadline, got %v", err)
	}
	if err := CheckSubmit(a, prior, now); !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("expected already submitted, got %v", err)
	}
	if err := CheckSubmit(a, prior, a.Deadline.Add(time.Hour)); !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("already submitted must take precedence, got %v", err)
	}
	if CanSubmit(a, prior, now) {
		t.Fatalf("prior submission must block")
	}
}

func TestAttemptTiming(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	limit := 30
	quiz := Assignment{ID: "a1", Kind: KindTimedQuiz, TimeLimit: &limit}

	at, err := NewAttempt(quiz, "s1", start)
	if err != nil {
		t.Fatalf("new attempt: %v", err)
	}
	if !at.EndsAt.Equal(start.Add(30 * time.Minute)) {
		t.Fatalf("unexpected end %v", at.EndsAt)
	}
	if got := at.Remaining(start.Add(10 * time.Minute)); got != 20*time.Minute {
		t.Fatalf("expected 20m left, got %v", got)
	}
	if got := at.Remaining(start.Add(time.Hour)); got != 0 {
		t.Fatalf("remaining must clamp at zero, got %v", got)
	}
	if at.Expired(at.EndsAt.Add(-time.Second)) || !at.Expired(at.EndsAt) {
		t.Fatalf("expiry must flip exactly at the end")
	}
	if !at.KeepUntil().Equal(at.EndsAt) {
		t.Fatalf("without a later deadline the record is kept until the end, got %v", at.KeepUntil())
	}

	quiz.Deadline = start.Add(48 * time.Hour)
	at, _ = NewAttempt(quiz, "s1", start)
	if !at.Deadline.Equal(quiz.Deadline) || !at.KeepUntil().Equal(quiz.Deadline) {
		t.Fatalf("expected the record to be kept until the deadline, got %v", at.KeepUntil())
	}

	if _, err := NewAttempt(Assignment{Kind: KindPlain}, "s1", start); !errors.Is(err, ErrNotTimed) {
		t.Fatalf("expected not timed, got %v", err)
	}
}

func TestNewAssignmentValidate(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	limit, zero := 30, 0
	cases := []struct {
		name string
		in   NewAssignment
		ok   bool
	}{
		{"plain", NewAssignment{Title: "t", Description: "d", Kind: KindPlain, VisibleFrom: now, Deadline: now.Add(time.Hour)}, true},
		{"timed", NewAssignment{Title: "t", Description: "d", Kind: KindTimedExam, VisibleFrom: now, Deadline: now.Add(time.Hour), TimeLimit: &limit}, true},
		{"missing title", NewAssignment{Description: "d", Kind: KindPlain, VisibleFrom: now, Deadline: now.Add(time.Hour)}, false},
		{"empty window", NewAssignment{Title: "t", Description: "d", Kind: KindPlain, VisibleFrom: now, Deadline: now}, false},
		{"timed without limit", NewAssignment{Title: "t", Description: "d", Kind: KindTimedQuiz, VisibleFrom: now, Deadline: now.Add(time.Hour)}, false},
		{"zero limit", NewAssignment{Title: "t", Description: "d", Kind: KindTimedQuiz, VisibleFrom: now, Deadline: now.Add(time.Hour), TimeLimit: &zero}, false},
		{"plain with limit", NewAssignment{Title: "t", Description: "d", Kind: KindPlain, VisibleFrom: now, Deadline: now.Add(time.Hour), TimeLimit: &limit}, false},
		{"quiz alias", NewAssignment{Title: "t", Description: "d", Kind: "quiz", VisibleFrom: now, Deadline: now.Add(time.Hour), TimeLimit: &limit}, true},
		{"exam alias without limit", NewAssignment{Title: "t", Description: "d", Kind: "exam", VisibleFrom: now, Deadline: now.Add(time.Hour)}, false},
		{"unknown kind", NewAssignment{Title: "t", Description: "d", Kind: "essay", VisibleFrom: now, Deadline: now.Add(time.Hour)}, false},
	}
	for _, tc := range cases {
		err := tc.in.Validate()
		if tc.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidAssignment) {
			t.Errorf("%s: expected invalid assignment, got %v", tc.name, err)
		}
	}
}

func TestParseKindAliases(t *testing.T) {
	for raw, want := range map[string]Kind{
		"assignment": KindPlain, "quiz": KindTimedQuiz, "exam": KindTimedExam, "timed-exam": KindTimedExam,
	} {
		got, err := ParseKind(raw)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q) = %s, %v", raw, got, err)
		}
	}
}
