package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"assignment-service/internal/app"
	"assignment-service/internal/domain"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// uniqueViolation is the SQLSTATE Postgres reports for a unique index clash.
const uniqueViolation = "23505"

// Store persists assignments and submissions in Postgres. The unique index
// on submissions(assignment_id, student_id) serializes double submits.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const assignmentColumns = `id, title, description, kind, visible_from, deadline, time_limit, created_at, created_by`

func (s *Store) FindAssignment(ctx context.Context, id string) (domain.Assignment, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+assignmentColumns+` FROM assignments WHERE id=$1`, id)
	a, err := scanAssignment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Assignment{}, domain.ErrAssignmentNotFound
	}
	if err != nil {
		return domain.Assignment{}, storageErr("find assignment", err)
	}
	return a, nil
}

func (s *Store) ListAssignments(ctx context.Context, filter app.AssignmentFilter, order app.AssignmentSort) ([]domain.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments`
	var args []interface{}
	if !filter.VisibleAt.IsZero() {
		query += ` WHERE visible_from <= $1`
		args = append(args, filter.VisibleAt)
	}
	switch order {
	case app.SortDeadlineAsc:
		query += ` ORDER BY deadline ASC, id ASC`
	default:
		query += ` ORDER BY created_at DESC, id ASC`
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list assignments", err)
	}
	defer rows.Close()

	out := make([]domain.Assignment, 0)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, storageErr("scan assignment", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list assignments", err)
	}
	return out, nil
}

func (s *Store) InsertAssignment(ctx context.Context, a domain.Assignment) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO assignments (`+assignmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.Title, a.Description, string(a.Kind), a.VisibleFrom, a.Deadline, a.TimeLimit, a.CreatedAt, a.CreatedBy,
	)
	if err != nil {
		return storageErr("insert assignment", err)
	}
	return nil
}

func (s *Store) CountAssignments(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM assignments`)
}

const submissionColumns = `id, assignment_id, student_id, student_name, content, submitted_at,
	rating, status, feedback, graded_at, graded_by`

func (s *Store) FindSubmission(ctx context.Context, assignmentID, studentID string) (domain.Submission, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE assignment_id=$1 AND student_id=$2`, assignmentID, studentID)
	return findSubmission(row)
}

func (s *Store) FindSubmissionByID(ctx context.Context, id string) (domain.Submission, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id=$1`, id)
	return findSubmission(row)
}

func (s *Store) ListSubmissionsByAssignment(ctx context.Context, assignmentID string) ([]domain.Submission, error) {
	return s.listSubmissions(ctx, `SELECT `+submissionColumns+` FROM submissions
		WHERE assignment_id=$1 ORDER BY submitted_at DESC, id ASC`, assignmentID)
}

func (s *Store) ListSubmissionsByStudent(ctx context.Context, studentID string) ([]domain.Submission, error) {
	return s.listSubmissions(ctx, `SELECT `+submissionColumns+` FROM submissions
		WHERE student_id=$1 ORDER BY submitted_at DESC, id ASC`, studentID)
}

// InsertSubmission maps the unique index violation to domain.ErrAlreadySubmitted.
func (s *Store) InsertSubmission(ctx context.Context, sub domain.Submission) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO submissions (id, assignment_id, student_id, student_name, content, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		sub.ID, sub.AssignmentID, sub.StudentID, sub.StudentName, sub.Content, sub.SubmittedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrAlreadySubmitted
	}
	if err != nil {
		return storageErr("insert submission", err)
	}
	return nil
}

func (s *Store) UpdateSubmissionGrading(ctx context.Context, id string, g domain.Grading) error {
	var status *string
	if g.Status != nil {
		v := string(*g.Status)
		status = &v
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE submissions
		SET rating=$2, status=$3, feedback=$4, graded_at=$5, graded_by=$6
		WHERE id=$1`,
		id, g.Rating, status, g.Feedback, g.GradedAt, g.GradedBy,
	)
	if err != nil {
		return storageErr("update grading", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubmissionNotFound
	}
	return nil
}

func (s *Store) CountSubmissions(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM submissions`)
}

func (s *Store) count(ctx context.Context, query string) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, storageErr("count", err)
	}
	return n, nil
}

func (s *Store) listSubmissions(ctx context.Context, query string, arg string) ([]domain.Submission, error) {
	rows, err := s.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, storageErr("list submissions", err)
	}
	defer rows.Close()

	out := make([]domain.Submission, 0)
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, storageErr("scan submission", err)
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list submissions", err)
	}
	return out, nil
}

func findSubmission(row pgx.Row) (domain.Submission, error) {
	sub, err := scanSubmission(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Submission{}, domain.ErrSubmissionNotFound
	}
	if err != nil {
		return domain.Submission{}, storageErr("find submission", err)
	}
	return sub, nil
}

func scanAssignment(row pgx.Row) (domain.Assignment, error) {
	var (
		a    domain.Assignment
		kind string
	)
	if err := row.Scan(&a.ID, &a.Title, &a.Description, &kind, &a.VisibleFrom, &a.Deadline, &a.TimeLimit, &a.CreatedAt, &a.CreatedBy); err != nil {
		return domain.Assignment{}, err
	}
	parsed, err := domain.ParseKind(kind)
	if err != nil {
		return domain.Assignment{}, err
	}
	a.Kind = parsed
	a.VisibleFrom = a.VisibleFrom.UTC()
	a.Deadline = a.Deadline.UTC()
	a.CreatedAt = a.CreatedAt.UTC()
	return a, nil
}

func scanSubmission(row pgx.Row) (domain.Submission, error) {
	var (
		sub      domain.Submission
		status   *string
		gradedAt *time.Time
	)
	err := row.Scan(&sub.ID, &sub.AssignmentID, &sub.StudentID, &sub.StudentName, &sub.Content, &sub.SubmittedAt,
		&sub.Rating, &status, &sub.Feedback, &gradedAt, &sub.GradedBy)
	if err != nil {
		return domain.Submission{}, err
	}
	sub.SubmittedAt = sub.SubmittedAt.UTC()
	if status != nil {
		st := domain.GradeStatus(*status)
		sub.Status = &st
	}
	if gradedAt != nil {
		t := gradedAt.UTC()
		sub.GradedAt = &t
	}
	return sub, nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrStorageUnavailable, op, err)
}
