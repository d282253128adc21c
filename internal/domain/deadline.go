package domain

import (
	"math"
	"strconv"
	"time"
)

// TemporalState is an assignment's position in its visibility window relative to now.
type TemporalState string

const (
	StateNotYetVisible TemporalState = "not-yet-visible"
	StateUrgent        TemporalState = "urgent"
	StateWarning       TemporalState = "warning"
	StateSoon          TemporalState = "soon"
	StateNormal        TemporalState = "normal"
	StateOverdue       TemporalState = "overdue"
)

const (
	urgentWindow  = 24 * time.Hour
	warningWindow = 3 * 24 * time.Hour
	soonWindow    = 7 * 24 * time.Hour
)

// Open reports whether the assignment is visible and still accepting submissions.
func (s TemporalState) Open() bool {
	switch s {
	case StateUrgent, StateWarning, StateSoon, StateNormal:
		return true
	}
	return false
}

// Classify places now against the window [visibleFrom, deadline).
// Boundaries fall on the more urgent side: exactly 24h left is urgent.
func Classify(now, visibleFrom, deadline time.Time) TemporalState {
	if now.Before(visibleFrom) {
		return StateNotYetVisible
	}
	left := deadline.Sub(now)
	switch {
	case left <= 0:
		return StateOverdue
	case left <= urgentWindow:
		return StateUrgent
	case left <= warningWindow:
		return StateWarning
	case left <= soonWindow:
		return StateSoon
	default:
		return StateNormal
	}
}

// Countdown is a read-time view of the time left until a deadline.
type Countdown struct {
	State            TemporalState `json:"state"`
	RemainingSeconds int64         `json:"remainingSeconds"`
	Label            string        `json:"label"`
}

// CountdownFor classifies the assignment and renders the short "left" label.
func CountdownFor(a Assignment, now time.Time) Countdown {
	state := Classify(now, a.VisibleFrom, a.Deadline)
	left := a.Deadline.Sub(now)
	if left < 0 {
		left = 0
	}
	c := Countdown{State: state, RemainingSeconds: int64(left / time.Second)}
	switch state {
	case StateOverdue:
		c.Label = "Overdue"
	case StateUrgent:
		c.Label = strconv.Itoa(int(math.Ceil(left.Hours()))) + "h left"
	case StateWarning, StateSoon:
		c.Label = strconv.Itoa(int(math.Ceil(left.Hours()/24))) + "d left"
	case StateNormal:
		c.Label = a.Deadline.Format("Jan 2, 2006 03:04 PM")
	}
	return c
}
