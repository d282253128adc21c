package domain

import (
	"fmt"
	"time"
)

const (
	MinRating = 0
	MaxRating = 10
)

// GradeInput carries the fields a teacher supplies. Nil fields clear any
// previously stored value.
type GradeInput struct {
	Rating   *int         `json:"rating"`
	Status   *GradeStatus `json:"status"`
	Feedback *string      `json:"feedback"`
}

// ApplyGrade validates input against the assignment kind and overwrites the
// grading fields of sub. Content and SubmittedAt are never touched.
func ApplyGrade(sub Submission, kind Kind, in GradeInput, grader string, now time.Time) (Submission, error) {
	if in.Rating != nil && (*in.Rating < MinRating || *in.Rating > MaxRating) {
		return Submission{}, ErrInvalidRating
	}

	if kind == KindTimedExam {
		if in.Status == nil || (*in.Status != StatusPass && *in.Status != StatusFail) {
			return Submission{}, fmt.Errorf("%w: exams need status pass or fail", ErrInvalidGradingFields)
		}
		if in.Feedback != nil {
			return Submission{}, fmt.Errorf("%w: exams take no feedback", ErrInvalidGradingFields)
		}
	} else if in.Status != nil {
		return Submission{}, fmt.Errorf("%w: status only applies to exams", ErrInvalidGradingFields)
	}

	gradedAt := now
	gradedBy := grader
	sub.Grading = Grading{
		Rating:   in.Rating,
		Status:   in.Status,
		Feedback: in.Feedback,
		GradedAt: &gradedAt,
		GradedBy: &gradedBy,
	}
	return sub, nil
}
