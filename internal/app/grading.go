package app

import (
	"context"

	"assignment-service/internal/domain"
)

// Grade overwrites the grading fields of a submission. Teachers only; there
// is no deadline restriction and no history of earlier grades.
func (s *Service) Grade(ctx context.Context, id domain.Identity, submissionID string, in domain.GradeInput) (domain.Submission, error) {
	if err := id.Require(domain.RoleTeacher); err != nil {
		return domain.Submission{}, err
	}
	sub, err := s.submissions.FindSubmissionByID(ctx, submissionID)
	if err != nil {
		return domain.Submission{}, err
	}
	a, err := s.assignments.FindAssignment(ctx, sub.AssignmentID)
	if err != nil {
		return domain.Submission{}, err
	}
	graded, err := domain.ApplyGrade(sub, a.Kind, in, id.Name, s.Now())
	if err != nil {
		return domain.Submission{}, err
	}
	if err := s.submissions.UpdateSubmissionGrading(ctx, sub.ID, graded.Grading); err != nil {
		return domain.Submission{}, err
	}
	return graded, nil
}
