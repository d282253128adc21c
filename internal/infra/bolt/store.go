package bolt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"assignment-service/internal/app"
	"assignment-service/internal/domain"
	"go.etcd.io/bbolt"
)

var (
	assignmentsBucket = []byte("Assignments")
	submissionsBucket = []byte("Submissions")
	// pairsBucket maps "assignmentID:studentID" to the submission id.
	pairsBucket = []byte("SubmissionPairs")
)

// Store keeps assignments and submissions in a single bbolt file. bbolt
// serializes write transactions, so the pair check and the insert in
// InsertSubmission cannot interleave with another submit.
type Store struct {
	db *bbolt.DB
}

// Open opens (or creates) the database at path and its buckets.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range [][]byte{assignmentsBucket, submissionsBucket, pairsBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) FindAssignment(_ context.Context, id string) (domain.Assignment, error) {
	var a domain.Assignment
	err := s.db.View(func(tx *bbolt.Tx) error {
		return getJSON(tx.Bucket(assignmentsBucket), id, &a, domain.ErrAssignmentNotFound)
	})
	if err != nil {
		return domain.Assignment{}, storageErr("find assignment", err)
	}
	return a, nil
}

func (s *Store) ListAssignments(_ context.Context, filter app.AssignmentFilter, order app.AssignmentSort) ([]domain.Assignment, error) {
	out := make([]domain.Assignment, 0)
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(assignmentsBucket).ForEach(func(_, v []byte) error {
			var a domain.Assignment
			if err := json.Unmarshal(v, &a); err != nil {
				return err
			}
			if filter.Matches(a) {
				out = append(out, a)
			}
			return nil
		})
	})
	if err != nil {
		return nil, storageErr("list assignments", err)
	}

	sort.Slice(out, func(i, j int) bool {
		switch order {
		case app.SortDeadlineAsc:
			if !out[i].Deadline.Equal(out[j].Deadline) {
				return out[i].Deadline.Before(out[j].Deadline)
			}
		default:
			if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].CreatedAt.After(out[j].CreatedAt)
			}
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) InsertAssignment(_ context.Context, a domain.Assignment) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return putJSON(tx.Bucket(assignmentsBucket), a.ID, a)
	})
	if err != nil {
		return storageErr("insert assignment", err)
	}
	return nil
}

func (s *Store) CountAssignments(_ context.Context) (int, error) {
	return s.count(assignmentsBucket)
}

func (s *Store) FindSubmission(_ context.Context, assignmentID, studentID string) (domain.Submission, error) {
	var sub domain.Submission
	err := s.db.View(func(tx *bbolt.Tx) error {
		id := tx.Bucket(pairsBucket).Get(pairKey(assignmentID, studentID))
		if id == nil {
			return domain.ErrSubmissionNotFound
		}
		return getJSON(tx.Bucket(submissionsBucket), string(id), &sub, domain.ErrSubmissionNotFound)
	})
	if err != nil {
		return domain.Submission{}, storageErr("find submission", err)
	}
	return sub, nil
}

func (s *Store) FindSubmissionByID(_ context.Context, id string) (domain.Submission, error) {
	var sub domain.Submission
	err := s.db.View(func(tx *bbolt.Tx) error {
		return getJSON(tx.Bucket(submissionsBucket), id, &sub, domain.ErrSubmissionNotFound)
	})
	if err != nil {
		return domain.Submission{}, storageErr("find submission", err)
	}
	return sub, nil
}

func (s *Store) ListSubmissionsByAssignment(_ context.Context, assignmentID string) ([]domain.Submission, error) {
	return s.listSubmissions(func(sub domain.Submission) bool { return sub.AssignmentID == assignmentID })
}

func (s *Store) ListSubmissionsByStudent(_ context.Context, studentID string) ([]domain.Submission, error) {
	return s.listSubmissions(func(sub domain.Submission) bool { return sub.StudentID == studentID })
}

func (s *Store) InsertSubmission(_ context.Context, sub domain.Submission) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		pairs := tx.Bucket(pairsBucket)
		key := pairKey(sub.AssignmentID, sub.StudentID)
		if pairs.Get(key) != nil {
			return domain.ErrAlreadySubmitted
		}
		if err := pairs.Put(key, []byte(sub.ID)); err != nil {
			return err
		}
		return putJSON(tx.Bucket(submissionsBucket), sub.ID, sub)
	})
	if err != nil {
		return storageErr("insert submission", err)
	}
	return nil
}

func (s *Store) UpdateSubmissionGrading(_ context.Context, id string, grading domain.Grading) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(submissionsBucket)
		var sub domain.Submission
		if err := getJSON(b, id, &sub, domain.ErrSubmissionNotFound); err != nil {
			return err
		}
		sub.Grading = grading
		return putJSON(b, id, sub)
	})
	if err != nil {
		return storageErr("update grading", err)
	}
	return nil
}

func (s *Store) CountSubmissions(_ context.Context) (int, error) {
	return s.count(submissionsBucket)
}

func (s *Store) count(bucket []byte) (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucket).Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, storageErr("count", err)
	}
	return n, nil
}

// listSubmissions returns matching submissions, newest first.
func (s *Store) listSubmissions(match func(domain.Submission) bool) ([]domain.Submission, error) {
	out := make([]domain.Submission, 0)
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(submissionsBucket).ForEach(func(_, v []byte) error {
			var sub domain.Submission
			if err := json.Unmarshal(v, &sub); err != nil {
				return err
			}
			if match(sub) {
				out = append(out, sub)
			}
			return nil
		})
	})
	if err != nil {
		return nil, storageErr("list submissions", err)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.After(out[j].SubmittedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func pairKey(assignmentID, studentID string) []byte {
	return []byte(assignmentID + ":" + studentID)
}

func getJSON(b *bbolt.Bucket, key string, dst any, missing error) error {
	v := b.Get([]byte(key))
	if v == nil {
		return missing
	}
	return json.Unmarshal(v, dst)
}

func putJSON(b *bbolt.Bucket, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return b.Put([]byte(key), data)
}

// storageErr passes domain errors through and marks everything else as a
// storage failure.
func storageErr(op string, err error) error {
	if errors.Is(err, domain.ErrAlreadySubmitted) || domain.IsNotFound(err) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrStorageUnavailable, op, err)
}
