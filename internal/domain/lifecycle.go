package domain

import "time"

// CanSubmit reports whether a student may still submit. A prior submission
// always blocks, as does reaching the deadline.
func CanSubmit(a Assignment, existing *Submission, now time.Time) bool {
	if existing != nil {
		return false
	}
	return now.Before(a.Deadline)
}

// CheckSubmit returns the error CanSubmit would report as false.
// ErrAlreadySubmitted takes precedence over ErrPastDeadline.
func CheckSubmit(a Assignment, existing *Submission, now time.Time) error {
	if existing != nil {
		return ErrAlreadySubmitted
	}
	if !now.Before(a.Deadline) {
		return ErrPastDeadline
	}
	return nil
}

// Attempt is a started timed attempt. EndsAt is fixed at start and every
// remaining-time read is reconciled against it. Deadline is the assignment
// deadline; the attempt record must outlive it so it can never be restarted.
type Attempt struct {
	AssignmentID string    `json:"assignmentId"`
	StudentID    string    `json:"studentId"`
	StartedAt    time.Time `json:"startedAt"`
	EndsAt       time.Time `json:"endsAt"`
	Deadline     time.Time `json:"deadline"`
}

// NewAttempt starts the countdown for a timed assignment at now.
func NewAttempt(a Assignment, studentID string, now time.Time) (Attempt, error) {
	if !a.Kind.Timed() || a.TimeLimit == nil {
		return Attempt{}, ErrNotTimed
	}
	return Attempt{
		AssignmentID: a.ID,
		StudentID:    studentID,
		StartedAt:    now,
		EndsAt:       now.Add(a.TimeLimitDuration()),
		Deadline:     a.Deadline,
	}, nil
}

// KeepUntil is the last instant the attempt record is still needed: the
// later of its end and the assignment deadline.
func (at Attempt) KeepUntil() time.Time {
	if at.Deadline.After(at.EndsAt) {
		return at.Deadline
	}
	return at.EndsAt
}

// Remaining is the time left in the attempt, never negative.
func (at Attempt) Remaining(now time.Time) time.Duration {
	left := at.EndsAt.Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// Expired reports whether the time limit has been reached.
func (at Attempt) Expired(now time.Time) bool {
	return !now.Before(at.EndsAt)
}
