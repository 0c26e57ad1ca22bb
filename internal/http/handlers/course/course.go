// Package course contains the HTTP handlers for the Course resource.
// They follow the same factory shape as package student.
package course

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

const entity = "Course"

// New handles POST /api/courses. A code already in use answers 400
// "Code already exists".
func New(store storage.Storage) response.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		log := zerolog.Ctx(r.Context())
		log.Info().Msg("creating a course")

		var patch types.CoursePatch
		if err := validation.Bind(r.Context(), &patch); err != nil {
			return errs.NewInternal(err)
		}

		var c types.Course
		patch.Apply(&c)

		created, err := store.CreateCourse(r.Context(), c)
		if err != nil {
			return handlers.StoreError(entity, err)
		}

		metrics.Written("course", "create")
		log.Info().Str("id", created.ID).Str("code", created.Code).Msg("course created")
		return response.OK(w, http.StatusCreated, created)
	}
}

// GetByID handles GET /api/courses/{id}.
func GetByID(store storage.Storage) response.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		id := r.PathValue("id")
		zerolog.Ctx(r.Context()).Info().Str("id", id).Msg("getting a course")

		c, err := store.GetCourse(r.Context(), id)
		if err != nil {
			return handlers.StoreError(entity, err)
		}
		return response.OK(w, http.StatusOK, c)
	}
}

// GetList handles GET /api/courses.
func GetList(store storage.Storage) response.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		zerolog.Ctx(r.Context()).Info().Msg("getting all courses")

		courses, err := store.ListCourses(r.Context())
		if err != nil {
			return handlers.StoreError(entity, err)
		}
		return response.OK(w, http.StatusOK, courses)
	}
}

// Update handles PUT /api/courses/{id}.
func Update(store storage.Storage) response.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		id := r.PathValue("id")
		log := zerolog.Ctx(r.Context())
		log.Info().Str("id", id).Msg("updating a course")

		var patch types.CoursePatch
		if err := validation.Bind(r.Context(), &patch); err != nil {
			return errs.NewInternal(err)
		}

		updated, err := store.UpdateCourse(r.Context(), id, patch)
		if err != nil {
			return handlers.StoreError(entity, err)
		}

		metrics.Written("course", "update")
		log.Info().Str("id", id).Msg("course updated")
		return response.OK(w, http.StatusOK, updated)
	}
}

// Delete handles DELETE /api/courses/{id}.
func Delete(store storage.Storage) response.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		id := r.PathValue("id")
		log := zerolog.Ctx(r.Context())
		log.Info().Str("id", id).Msg("deleting a course")

		if err := store.DeleteCourse(r.Context(), id); err != nil {
			return handlers.StoreError(entity, err)
		}

		metrics.Written("course", "delete")
		log.Info().Str("id", id).Msg("course deleted")
		return response.Message(w, http.StatusOK, "Course deleted successfully")
	}
}
