package app

import (
	"context"
	"time"

	"assignment-service/internal/domain"
)

const (
	upcomingWindow = 7 * 24 * time.Hour
	upcomingLimit  = 3
)

// DashboardCounts summarizes the student's visible assignments.
type DashboardCounts struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	Overdue   int `json:"overdue"`
}

// Dashboard is the student landing view.
type Dashboard struct {
	Assignments []StudentView   `json:"assignments"`
	Counts      DashboardCounts `json:"counts"`
	Upcoming    []StudentView   `json:"upcoming"`
}

// StudentDashboard lists visible assignments by nearest deadline together
// with the caller's submissions. Students only.
func (s *Service) StudentDashboard(ctx context.Context, id domain.Identity) (Dashboard, error) {
	if err := id.Require(domain.RoleStudent); err != nil {
		return Dashboard{}, err
	}
	now := s.Now()
	assignments, err := s.assignments.ListAssignments(ctx, AssignmentFilter{VisibleAt: now}, SortDeadlineAsc)
	if err != nil {
		return Dashboard{}, err
	}
	subs, err := s.submissions.ListSubmissionsByStudent(ctx, id.StudentID)
	if err != nil {
		return Dashboard{}, err
	}
	byAssignment := make(map[string]*domain.Submission, len(subs))
	for i := range subs {
		byAssignment[subs[i].AssignmentID] = &subs[i]
	}

	dash := Dashboard{
		Assignments: make([]StudentView, 0, len(assignments)),
		Upcoming:    []StudentView{},
	}
	for _, a := range assignments {
		sub := byAssignment[a.ID]
		view := studentView(a, sub, now)
		dash.Assignments = append(dash.Assignments, view)

		dash.Counts.Total++
		if sub != nil {
			dash.Counts.Completed++
			continue
		}
		dash.Counts.Pending++
		if !now.Before(a.Deadline) {
			dash.Counts.Overdue++
		}
		if a.Deadline.After(now) && !a.Deadline.After(now.Add(upcomingWindow)) && len(dash.Upcoming) < upcomingLimit {
			dash.Upcoming = append(dash.Upcoming, view)
		}
	}
	return dash, nil
}
