package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/aanand-mishra/college-api/internal/storage"
	"github.com/aanand-mishra/college-api/internal/types"
)

const studentColumns = `id, name, course, level, created_at, updated_at`

func (s *Store) ListStudents(ctx context.Context) ([]types.Student, error) {
	students := make([]types.Student, 0)
	err := s.db.SelectContext(ctx, &students,
		`SELECT `+studentColumns+` FROM students ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("ListStudents: %w", err)
	}
	return students, nil
}

func (s *Store) GetStudent(ctx context.Context, id string) (types.Student, error) {
	var student types.Student
	err := s.db.GetContext(ctx, &student,
		s.db.Rebind(`SELECT `+studentColumns+` FROM students WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Student{}, storage.ErrNotFound
	}
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudent: %w", err)
	}
	return student, nil
}

func (s *Store) CreateStudent(ctx context.Context, student types.Student) (types.Student, error) {
	if err := checkSchema(student); err != nil {
		return types.Student{}, err
	}

	now := s.now()
	student.ID = uuid.NewString()
	student.CreatedAt = now
	student.UpdatedAt = now

	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO students (`+studentColumns+`)
		 VALUES (:id, :name, :course, :level, :created_at, :updated_at)`, student)
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: %w", constraintError(err))
	}
	return student, nil
}

func (s *Store) UpdateStudent(ctx context.Context, id string, patch types.StudentPatch) (types.Student, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudent: begin: %w", err)
	}
	defer tx.Rollback()

	var student types.Student
	err = tx.GetContext(ctx, &student,
		tx.Rebind(`SELECT `+studentColumns+` FROM students WHERE id = ?`+s.forUpdate()), id)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Student{}, storage.ErrNotFound
	}
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudent: load: %w", err)
	}

	patch.Apply(&student)
	if err := checkSchema(student); err != nil {
		return types.Student{}, err
	}
	student.UpdatedAt = s.now()

	_, err = tx.NamedExecContext(ctx,
		`UPDATE students SET name = :name, course = :course, level = :level, updated_at = :updated_at
		 WHERE id = :id`, student)
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudent: exec: %w", constraintError(err))
	}

	if err := tx.Commit(); err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudent: commit: %w", err)
	}
	return student, nil
}

func (s *Store) DeleteStudent(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM students WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("DeleteStudent: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteStudent: rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
