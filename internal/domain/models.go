package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind discriminates assignment variants. Timed kinds carry a time limit.
type Kind string

const (
	KindPlain     Kind = "plain"
	KindTimedQuiz Kind = "timed-quiz"
	KindTimedExam Kind = "timed-exam"
)

// ParseKind accepts the canonical names and the short names used by the
// original storage ("assignment", "quiz", "exam").
func ParseKind(raw string) (Kind, error) {
	switch raw {
	case string(KindPlain), "assignment":
		return KindPlain, nil
	case string(KindTimedQuiz), "quiz":
		return KindTimedQuiz, nil
	case string(KindTimedExam), "exam":
		return KindTimedExam, nil
	}
	return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidAssignment, raw)
}

// Timed reports whether attempts of this kind run under a time limit.
func (k Kind) Timed() bool {
	return k == KindTimedQuiz || k == KindTimedExam
}

func (k *Kind) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := ParseKind(raw)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Assignment is a unit of work a teacher publishes to students.
type Assignment struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Kind        Kind      `json:"kind"`
	VisibleFrom time.Time `json:"visibleFrom"`
	Deadline    time.Time `json:"deadline"`
	// TimeLimit is in minutes; nil for plain assignments.
	TimeLimit *int      `json:"timeLimit,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"`
}

// TimeLimitDuration returns the per-attempt limit, zero when untimed.
func (a Assignment) TimeLimitDuration() time.Duration {
	if a.TimeLimit == nil {
		return 0
	}
	return time.Duration(*a.TimeLimit) * time.Minute
}

// NewAssignment is the teacher-supplied input for creating an assignment.
type NewAssignment struct {
	Title       string
	Description string
	Kind        Kind
	VisibleFrom time.Time
	Deadline    time.Time
	TimeLimit   *int
}

// Validate checks the window and the kind/time-limit pairing.
func (n NewAssignment) Validate() error {
	if n.Title == "" || n.Description == "" {
		return fmt.Errorf("%w: title and description are required", ErrInvalidAssignment)
	}
	kind, err := ParseKind(string(n.Kind))
	if err != nil {
		return err
	}
	if !n.Deadline.After(n.VisibleFrom) {
		return fmt.Errorf("%w: deadline must be after visibleFrom", ErrInvalidAssignment)
	}
	if kind.Timed() {
		if n.TimeLimit == nil || *n.TimeLimit <= 0 {
			return fmt.Errorf("%w: timed %s requires a positive time limit", ErrInvalidAssignment, kind)
		}
	} else if n.TimeLimit != nil {
		return fmt.Errorf("%w: time limit only applies to timed kinds", ErrInvalidAssignment)
	}
	return nil
}

// GradeStatus is the pass/fail verdict used for exams.
type GradeStatus string

const (
	StatusPass GradeStatus = "pass"
	StatusFail GradeStatus = "fail"
)

// Grading holds the teacher-written fields of a submission.
type Grading struct {
	Rating   *int         `json:"rating,omitempty"`
	Status   *GradeStatus `json:"status,omitempty"`
	Feedback *string      `json:"feedback,omitempty"`
	GradedAt *time.Time   `json:"gradedAt,omitempty"`
	GradedBy *string      `json:"gradedBy,omitempty"`
}

// Submission is a student's single recorded response to an assignment.
type Submission struct {
	ID           string    `json:"id"`
	AssignmentID string    `json:"assignmentId"`
	StudentID    string    `json:"studentId"`
	StudentName  string    `json:"studentName"`
	Content      string    `json:"content"`
	SubmittedAt  time.Time `json:"submittedAt"`
	Grading
}

// Graded reports whether a teacher has written grading fields.
func (s Submission) Graded() bool {
	return s.GradedAt != nil
}

// Role of the caller as supplied by the identity provider.
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Identity is the caller context passed into every operation.
type Identity struct {
	Role      Role   `json:"role"`
	Name      string `json:"name"`
	StudentID string `json:"studentId,omitempty"`
	Mobile    string `json:"mobile,omitempty"`
}

// Require returns ErrUnauthorized unless the identity holds role.
func (i Identity) Require(role Role) error {
	if i.Role != role {
		return ErrUnauthorized
	}
	if role == RoleStudent && i.StudentID == "" {
		return ErrUnauthorized
	}
	return nil
}
