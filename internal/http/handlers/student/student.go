// Package student contains all HTTP handlers related to the Student resource.
//
// HANDLER PATTERN USED HERE — THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────────────────
// Each exported function receives its dependencies (the storage) once, at
// route registration, and returns the function that runs on every request:
//
//	validation.Student.Create()(student.New(store))
//
// Handlers return an error instead of writing one. Input has already been
// checked by the validation middleware in front of them, so they only
// translate a request into one store call and shape the result.
package student

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aanand-mishra/college-api/internal/errs"
	"github.com/aanand-mishra/college-api/internal/http/handlers"
	"github.com/aanand-mishra/college-api/internal/metrics"
	"github.com/aanand-mishra/college-api/internal/storage"
	"github.com/aanand-mishra/college-api/internal/types"
	"github.com/aanand-mishra/college-api/internal/utils/response"
	"github.com/aanand-mishra/college-api/internal/validation"
)

const entity = "Student"

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/students
//
// Request body (JSON), validated by validation.Student.Create:
//
//	{ "name": "Al", "course": "CS101", "level": 200 }
//
// Success response (201 Created):
//
//	{ "success": true, "data": { "id": "...", "name": "Al", ... } }
//
// ─────────────────────────────────────────────────────────────────────────────
func New(store storage.Storage) response.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		log := zerolog.Ctx(r.Context())
		log.Info().Msg("creating a student")

		var patch types.StudentPatch
		if err := validation.Bind(r.Context(), &patch); err != nil {
			return errs.NewInternal(err)
		}

		var student types.Student
		patch.Apply(&student)

		created, err := store.CreateStudent(r.Context(), student)
		if err != nil {
			return handlers.StoreError(entity, err)
		}

		metrics.Written("student", "create")
		log.Info().Str("id", created.ID).Msg("student created")
		return response.OK(w, http.StatusCreated, created)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /api/students/{id}
// The id has been checked by validation.Student.ID.
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(store storage.Storage) response.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		id := r.PathValue("id")
		zerolog.Ctx(r.Context()).Info().Str("id", id).Msg("getting a student")

		student, err := store.GetStudent(r.Context(), id)
		if err != nil {
			return handlers.StoreError(entity, err)
		}
		return response.OK(w, http.StatusOK, student)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/students
// Returns an empty array (not null) when there are no students.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(store storage.Storage) response.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		zerolog.Ctx(r.Context()).Info().Msg("getting all students")

		students, err := store.ListStudents(r.Context())
		if err != nil {
			return handlers.StoreError(entity, err)
		}
		return response.OK(w, http.StatusOK, students)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/students/{id}
// Only the fields present in the body are changed.
// ─────────────────────────────────────────────────────────────────────────────
func Update(store storage.Storage) response.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		id := r.PathValue("id")
		log := zerolog.Ctx(r.Context())
		log.Info().Str("id", id).Msg("updating a student")

		var patch types.StudentPatch
		if err := validation.Bind(r.Context(), &patch); err != nil {
			return errs.NewInternal(err)
		}

		updated, err := store.UpdateStudent(r.Context(), id, patch)
		if err != nil {
			return handlers.StoreError(entity, err)
		}

		metrics.Written("student", "update")
		log.Info().Str("id", id).Msg("student updated")
		return response.OK(w, http.StatusOK, updated)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/students/{id}
//
// Success response (200 OK):
//
//	{ "success": true, "message": "Student deleted successfully" }
//
// ─────────────────────────────────────────────────────────────────────────────
func Delete(store storage.Storage) response.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		id := r.PathValue("id")
		log := zerolog.Ctx(r.Context())
		log.Info().Str("id", id).Msg("deleting a student")

		if err := store.DeleteStudent(r.Context(), id); err != nil {
			return handlers.StoreError(entity, err)
		}

		metrics.Written("student", "delete")
		log.Info().Str("id", id).Msg("student deleted")
		return response.Message(w, http.StatusOK, "Student deleted successfully")
	}
}
