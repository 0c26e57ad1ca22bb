package sqlstore

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/college-api/internal/storage"
	"github.com/aanand-mishra/college-api/internal/types"
)

// setupTestStore opens an in-memory SQLite store with the schema applied.
func setupTestStore(t *testing.T) (*Store, func()) {
	s, err := New(context.Background(), DriverSQLite, ":memory:")
	require.NoError(t, err, "Failed to create store")

	cleanup := func() {
		require.NoError(t, s.Close(), "Failed to close database")
	}
	return s, cleanup
}

func ptr[T any](v T) *T { return &v }

func sampleCourse(code string) types.Course {
	return types.Course{
		Title:       "Operating Systems",
		Code:        code,
		Department:  "Computer Science",
		CreditUnits: 3,
		Level:       300,
		Semester:    types.SemesterFirst,
	}
}

func TestDriverFor(t *testing.T) {
	assert.Equal(t, DriverPostgres, DriverFor("", "postgres://u:p@localhost/college"))
	assert.Equal(t, DriverPostgres, DriverFor("", "postgresql://localhost/college"))
	assert.Equal(t, DriverSQLite, DriverFor("", "storage/college.db"))
	assert.Equal(t, DriverSQLite, DriverFor(DriverSQLite, "postgres://ignored"))
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "mongo", "mongodb://localhost")
	require.Error(t, err)
}

func TestMigrateIsIdempotent(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, s.Ping(context.Background()))
}

func TestStudentLifecycle(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	created, err := s.CreateStudent(ctx, types.Student{Name: "Al", Course: "CS101", Level: 200})
	require.NoError(t, err)
	assert.Len(t, created.ID, 36)
	assert.False(t, created.CreatedAt.IsZero())
	assert.True(t, created.CreatedAt.Equal(created.UpdatedAt))

	t.Run("get", func(t *testing.T) {
		got, err := s.GetStudent(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "Al", got.Name)
		assert.Equal(t, "CS101", got.Course)
		assert.Equal(t, 200, got.Level)
		assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("list", func(t *testing.T) {
		all, err := s.ListStudents(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, created.ID, all[0].ID)
	})

	t.Run("partial update leaves other fields", func(t *testing.T) {
		s.now = func() time.Time { return created.UpdatedAt.Add(time.Minute) }

		updated, err := s.UpdateStudent(ctx, created.ID, types.StudentPatch{Level: ptr(300)})
		require.NoError(t, err)
		assert.Equal(t, 300, updated.Level)
		assert.Equal(t, "Al", updated.Name)
		assert.Equal(t, "CS101", updated.Course)
		assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

		got, err := s.GetStudent(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, 300, got.Level)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.DeleteStudent(ctx, created.ID))
		_, err := s.GetStudent(ctx, created.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestStudentNotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	missing := "7f1c6a5e-3f5b-4c1e-9a53-0a7a3c1d2e4f"

	_, err := s.GetStudent(ctx, missing)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.UpdateStudent(ctx, missing, types.StudentPatch{Level: ptr(300)})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.ErrorIs(t, s.DeleteStudent(ctx, missing), storage.ErrNotFound)
}

func TestStudentSchemaIsEnforced(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	_, err := s.CreateStudent(ctx, types.Student{Name: "A", Course: "CS101", Level: 900})

	var cerr *storage.ConstraintError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "name", cerr.Field)
	assert.Equal(t, "Validation error: name must be at least 2 characters, level must not exceed 500", cerr.Message)

	all, err := s.ListStudents(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCourseCodeIsUppercasedAndUnique(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	first, err := s.CreateCourse(ctx, sampleCourse("csc301"))
	require.NoError(t, err)
	assert.Equal(t, "CSC301", first.Code)
	assert.False(t, first.IsElective)

	_, err = s.CreateCourse(ctx, sampleCourse("CSC301"))
	var cerr *storage.ConstraintError
	require.True(t, errors.As(err, &cerr), "want ConstraintError, got %v", err)
	assert.Equal(t, "code", cerr.Field)
	assert.Equal(t, "Code already exists", cerr.Message)

	t.Run("update onto a taken code", func(t *testing.T) {
		other, err := s.CreateCourse(ctx, sampleCourse("MTH101"))
		require.NoError(t, err)

		_, err = s.UpdateCourse(ctx, other.ID, types.CoursePatch{Code: ptr("csc301")})
		require.True(t, errors.As(err, &cerr))
		assert.Equal(t, "Code already exists", cerr.Message)

		got, err := s.GetCourse(ctx, other.ID)
		require.NoError(t, err)
		assert.Equal(t, "MTH101", got.Code)
	})
}

func TestCourseUpdate(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	c, err := s.CreateCourse(ctx, sampleCourse("CSC401"))
	require.NoError(t, err)

	updated, err := s.UpdateCourse(ctx, c.ID, types.CoursePatch{
		IsElective:  ptr(true),
		Description: ptr("Processes, memory and file systems."),
		Semester:    ptr(types.SemesterSecond),
	})
	require.NoError(t, err)
	assert.True(t, updated.IsElective)
	assert.Equal(t, types.SemesterSecond, updated.Semester)
	assert.Equal(t, "Operating Systems", updated.Title)

	got, err := s.GetCourse(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, got.IsElective)
	assert.Equal(t, "Processes, memory and file systems.", got.Description)

	t.Run("description over 300 characters", func(t *testing.T) {
		_, err := s.UpdateCourse(ctx, c.ID, types.CoursePatch{Description: ptr(strings.Repeat("x", 301))})
		var cerr *storage.ConstraintError
		require.True(t, errors.As(err, &cerr))
		assert.Equal(t, "description", cerr.Field)
	})

	t.Run("delete twice", func(t *testing.T) {
		require.NoError(t, s.DeleteCourse(ctx, c.ID))
		assert.ErrorIs(t, s.DeleteCourse(ctx, c.ID), storage.ErrNotFound)
	})

	all, err := s.ListCourses(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestFileDatabaseSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "nested", "college.db")

	s, err := New(ctx, DriverSQLite, dsn)
	require.NoError(t, err)
	created, err := s.CreateStudent(ctx, types.Student{Name: "Ada", Course: "CS101", Level: 100})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = New(ctx, DriverSQLite, dsn)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetStudent(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
}
