package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/aanand-mishra/college-api/internal/storage"
	"github.com/aanand-mishra/college-api/internal/types"
)

const courseColumns = `id, title, code, department, credit_units, level, semester,
	is_elective, description, created_at, updated_at`

func (s *Store) ListCourses(ctx context.Context) ([]types.Course, error) {
	courses := make([]types.Course, 0)
	err := s.db.SelectContext(ctx, &courses,
		`SELECT `+courseColumns+` FROM courses ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("ListCourses: %w", err)
	}
	return courses, nil
}

func (s *Store) GetCourse(ctx context.Context, id string) (types.Course, error) {
	var course types.Course
	err := s.db.GetContext(ctx, &course,
		s.db.Rebind(`SELECT `+courseColumns+` FROM courses WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Course{}, storage.ErrNotFound
	}
	if err != nil {
		return types.Course{}, fmt.Errorf("GetCourse: %w", err)
	}
	return course, nil
}

// CreateCourse stores c with its code upper-cased. A code already taken by
// another course, in any letter case, is a *storage.ConstraintError.
func (s *Store) CreateCourse(ctx context.Context, c types.Course) (types.Course, error) {
	c.Code = strings.ToUpper(c.Code)
	if err := checkSchema(c); err != nil {
		return types.Course{}, err
	}

	now := s.now()
	c.ID = uuid.NewString()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO courses (`+courseColumns+`)
		 VALUES (:id, :title, :code, :department, :credit_units, :level, :semester,
		 	:is_elective, :description, :created_at, :updated_at)`, c)
	if err != nil {
		return types.Course{}, fmt.Errorf("CreateCourse: %w", constraintError(err))
	}
	return c, nil
}

func (s *Store) UpdateCourse(ctx context.Context, id string, patch types.CoursePatch) (types.Course, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return types.Course{}, fmt.Errorf("UpdateCourse: begin: %w", err)
	}
	defer tx.Rollback()

	var c types.Course
	err = tx.GetContext(ctx, &c,
		tx.Rebind(`SELECT `+courseColumns+` FROM courses WHERE id = ?`+s.forUpdate()), id)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Course{}, storage.ErrNotFound
	}
	if err != nil {
		return types.Course{}, fmt.Errorf("UpdateCourse: load: %w", err)
	}

	patch.Apply(&c)
	c.Code = strings.ToUpper(c.Code)
	if err := checkSchema(c); err != nil {
		return types.Course{}, err
	}
	c.UpdatedAt = s.now()

	_, err = tx.NamedExecContext(ctx,
		`UPDATE courses SET title = :title, code = :code, department = :department,
			credit_units = :credit_units, level = :level, semester = :semester,
			is_elective = :is_elective, description = :description, updated_at = :updated_at
		 WHERE id = :id`, c)
	if err != nil {
		return types.Course{}, fmt.Errorf("UpdateCourse: exec: %w", constraintError(err))
	}

	if err := tx.Commit(); err != nil {
		return types.Course{}, fmt.Errorf("UpdateCourse: commit: %w", err)
	}
	return c, nil
}

func (s *Store) DeleteCourse(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM courses WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("DeleteCourse: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteCourse: rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
