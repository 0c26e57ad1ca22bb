// Package storage defines the Storage interface — a contract that any
// database backend must satisfy to work with this application.
//
// Handlers depend only on this interface, so the backend can be swapped
// (SQLite locally, PostgreSQL in production) without touching them, and
// tests can pass a fake.
//
// Every method can fail in three ways the handlers tell apart:
//
//   - ErrNotFound:       the id did not resolve to a record.
//   - *ConstraintError:  the store rejected the write (uniqueness, schema).
//   - anything else:     the store itself is unavailable.
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/college-api/internal/types"
)

// ErrNotFound is returned when no record has the requested id.
var ErrNotFound = errors.New("record not found")

// ConstraintError is a write the store refused because of a uniqueness or
// schema rule. Message is safe to show to clients.
type ConstraintError struct {
	// Field is the offending field's JSON name, when known.
	Field   string
	Message string
	Err     error
}

func (e *ConstraintError) Error() string {
	return e.Message
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// Storage is the database contract.
type Storage interface {
	// ListStudents returns every student. Never nil.
	ListStudents(ctx context.Context) ([]types.Student, error)

	GetStudent(ctx context.Context, id string) (types.Student, error)

	// CreateStudent assigns the id and timestamps and returns the stored record.
	CreateStudent(ctx context.Context, s types.Student) (types.Student, error)

	// UpdateStudent applies only the supplied fields of patch and returns the
	// updated record.
	UpdateStudent(ctx context.Context, id string, patch types.StudentPatch) (types.Student, error)

	DeleteStudent(ctx context.Context, id string) error

	ListCourses(ctx context.Context) ([]types.Course, error)
	GetCourse(ctx context.Context, id string) (types.Course, error)
	CreateCourse(ctx context.Context, c types.Course) (types.Course, error)
	UpdateCourse(ctx context.Context, id string, patch types.CoursePatch) (types.Course, error)
	DeleteCourse(ctx context.Context, id string) error

	Close() error
}
