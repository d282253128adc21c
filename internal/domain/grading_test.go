package domain

import (
	"errors"
	"testing"
	"time"
)

func TestApplyGrade(t *testing.T) {
	now := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	submitted := now.Add(-48 * time.Hour)
	sub := Submission{ID: "s1", Content: "answer", SubmittedAt: submitted}
	rating := func(v int) *int { return &v }
	feedback := "nice"
	pass := StatusPass
	bogus := GradeStatus("maybe")

	cases := []struct {
		name string
		kind Kind
		in   GradeInput
		err  error
	}{
		{"rating 0", KindPlain, GradeInput{Rating: rating(0)}, nil},
		{"rating 10 with feedback", KindTimedQuiz, GradeInput{Rating: rating(10), Feedback: &feedback}, nil},
		{"rating 11", KindPlain, GradeInput{Rating: rating(11)}, ErrInvalidRating},
		{"rating -1", KindTimedExam, GradeInput{Rating: rating(-1), Status: &pass}, ErrInvalidRating},
		{"status on quiz", KindTimedQuiz, GradeInput{Rating: rating(5), Status: &pass}, ErrInvalidGradingFields},
		{"exam pass", KindTimedExam, GradeInput{Rating: rating(6), Status: &pass}, nil},
		{"exam without status", KindTimedExam, GradeInput{Rating: rating(6)}, ErrInvalidGradingFields},
		{"exam unknown status", KindTimedExam, GradeInput{Status: &bogus}, ErrInvalidGradingFields},
		{"exam with feedback", KindTimedExam, GradeInput{Status: &pass, Feedback: &feedback}, ErrInvalidGradingFields},
	}
	for _, tc := range cases {
		got, err := ApplyGrade(sub, tc.kind, tc.in, "Teacher", now)
		if tc.err != nil {
			if !errors.Is(err, tc.err) {
				t.Errorf("%s: expected %v, got %v", tc.name, tc.err, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
			continue
		}
		if got.GradedAt == nil || !got.GradedAt.Equal(now) || got.GradedBy == nil || *got.GradedBy != "Teacher" {
			t.Errorf("%s: grading stamp missing: %+v", tc.name, got.Grading)
		}
		if got.Content != "answer" || !got.SubmittedAt.Equal(submitted) {
			t.Errorf("%s: response fields changed: %+v", tc.name, got)
		}
	}
}

func TestApplyGradeOverwrites(t *testing.T) {
	now := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	eight, three := 8, 3
	note := "first"

	first, err := ApplyGrade(Submission{ID: "s1"}, KindPlain, GradeInput{Rating: &eight, Feedback: &note}, "Teacher", now)
	if err != nil {
		t.Fatalf("first grade: %v", err)
	}
	second, err := ApplyGrade(first, KindPlain, GradeInput{Rating: &three}, "Teacher", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("second grade: %v", err)
	}
	if *second.Rating != 3 || second.Feedback != nil || !second.GradedAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("expected full overwrite, got %+v", second.Grading)
	}
}
