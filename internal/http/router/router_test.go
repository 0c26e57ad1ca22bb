package router

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/college-api/internal/auth"
	"github.com/aanand-mishra/college-api/internal/storage"
	"github.com/aanand-mishra/college-api/internal/storage/sqlstore"
	"github.com/aanand-mishra/college-api/internal/types"
	"github.com/aanand-mishra/college-api/internal/utils/response"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Errors  []string        `json:"errors"`
	Error   string          `json:"error"`
	Stack   string          `json:"stack"`
}

type testAPI struct {
	handler  http.Handler
	sessions *auth.Sessions
}

// newTestAPI builds the full handler over an in-memory SQLite store.
func newTestAPI(t *testing.T, configure ...func(*Options)) *testAPI {
	t.Helper()

	store, err := sqlstore.New(context.Background(), sqlstore.DriverSQLite, ":memory:")
	require.NoError(t, err, "Failed to create store")
	t.Cleanup(func() { store.Close() })

	sessions := &auth.Sessions{Store: auth.NewMemoryStore(), CookieName: "college.sid", TTL: time.Hour}
	opts := Options{
		Store:          store,
		Logger:         zerolog.Nop(),
		Sessions:       sessions,
		RequestTimeout: 5 * time.Second,
	}
	for _, c := range configure {
		c(&opts)
	}
	return &testAPI{handler: New(opts), sessions: sessions}
}

func (a *testAPI) do(t *testing.T, method, path, body string, cookies ...*http.Cookie) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

// signIn stores a session for a test user and returns its cookie.
func (a *testAPI) signIn(t *testing.T) *http.Cookie {
	t.Helper()
	id := uuid.NewString()
	require.NoError(t, a.sessions.Store.Save(context.Background(), id, auth.Identity{ID: 1, Login: "octocat"}, time.Hour))
	return &http.Cookie{Name: a.sessions.CookieName, Value: id}
}

const courseBody = `{
	"title": "Operating Systems",
	"code": "cs301",
	"department": "Computer Science",
	"creditUnits": 3,
	"level": 300,
	"semester": "First"
}`

func TestStudentEndpoints(t *testing.T) {
	api := newTestAPI(t)

	rec, env := api.do(t, http.MethodPost, "/api/students", `{"name":"Al","course":"CS101","level":200}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.True(t, env.Success)

	var created types.Student
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Len(t, created.ID, 36)
	assert.Equal(t, "Al", created.Name)
	assert.Equal(t, 200, created.Level)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	t.Run("list", func(t *testing.T) {
		rec, env := api.do(t, http.MethodGet, "/api/students", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var list []types.Student
		require.NoError(t, json.Unmarshal(env.Data, &list))
		require.Len(t, list, 1)
		assert.Equal(t, created.ID, list[0].ID)
	})

	t.Run("get", func(t *testing.T) {
		rec, env := api.do(t, http.MethodGet, "/api/students/"+created.ID, "")
		require.Equal(t, http.StatusOK, rec.Code)
		var got types.Student
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("invalid id", func(t *testing.T) {
		rec, env := api.do(t, http.MethodGet, "/api/students/not-a-valid-id", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, env.Success)
		assert.Equal(t, "Invalid student ID format", env.Message)
	})

	t.Run("update with empty body", func(t *testing.T) {
		rec, env := api.do(t, http.MethodPut, "/api/students/"+created.ID, "{}")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Request body cannot be empty", env.Message)
	})

	t.Run("update out of range", func(t *testing.T) {
		rec, env := api.do(t, http.MethodPut, "/api/students/"+created.ID, `{"level":999}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Validation failed", env.Message)
		assert.Equal(t, []string{"Level must be between 100 and 500"}, env.Errors)
	})

	t.Run("partial update keeps other fields", func(t *testing.T) {
		rec, env := api.do(t, http.MethodPut, "/api/students/"+created.ID, `{"level":300}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var updated types.Student
		require.NoError(t, json.Unmarshal(env.Data, &updated))
		assert.Equal(t, 300, updated.Level)
		assert.Equal(t, "Al", updated.Name)
		assert.Equal(t, "CS101", updated.Course)
	})

	t.Run("unknown keys only is not an empty body", func(t *testing.T) {
		rec, env := api.do(t, http.MethodPut, "/api/students/"+created.ID, `{"foo":1}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.True(t, env.Success)

		var updated types.Student
		require.NoError(t, json.Unmarshal(env.Data, &updated))
		assert.Equal(t, "Al", updated.Name)
		assert.Equal(t, "CS101", updated.Course)
		assert.Equal(t, 300, updated.Level)

		_, env = api.do(t, http.MethodGet, "/api/students/"+created.ID, "")
		var stored types.Student
		require.NoError(t, json.Unmarshal(env.Data, &stored))
		assert.Equal(t, updated.Name, stored.Name)
		assert.Equal(t, updated.Course, stored.Course)
		assert.Equal(t, updated.Level, stored.Level)
		assert.NotContains(t, string(env.Data), "foo")
	})

	t.Run("update unknown id", func(t *testing.T) {
		rec, env := api.do(t, http.MethodPut, "/api/students/"+uuid.NewString(), `{"level":300}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Student not found", env.Message)
	})

	t.Run("create with missing fields", func(t *testing.T) {
		rec, env := api.do(t, http.MethodPost, "/api/students", `{"name":"A"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, []string{"Name must be at least 2 characters", "Course is required", "Level is required"}, env.Errors)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec, env := api.do(t, http.MethodPost, "/api/students", `{"name":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Malformed JSON body", env.Message)
	})

	t.Run("delete", func(t *testing.T) {
		rec, env := api.do(t, http.MethodDelete, "/api/students/"+created.ID, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Student deleted successfully", env.Message)

		rec, env = api.do(t, http.MethodDelete, "/api/students/"+created.ID, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Student not found", env.Message)
	})

	t.Run("empty list is an array", func(t *testing.T) {
		rec, _ := api.do(t, http.MethodGet, "/api/students", "")
		assert.JSONEq(t, `{"success":true,"data":[]}`, rec.Body.String())
	})
}

func TestCourseEndpoints(t *testing.T) {
	api := newTestAPI(t)

	rec, env := api.do(t, http.MethodPost, "/api/courses", courseBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created types.Course
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "CS301", created.Code)
	assert.False(t, created.IsElective)

	t.Run("duplicate code in another case", func(t *testing.T) {
		body := strings.Replace(courseBody, "cs301", "Cs301", 1)
		rec, env := api.do(t, http.MethodPost, "/api/courses", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, env.Success)
		assert.Equal(t, "Code already exists", env.Message)
	})

	t.Run("combined errors", func(t *testing.T) {
		body := `{"code":"MA101","department":"Maths","creditUnits":2,"level":100,"semester":"Summer"}`
		rec, env := api.do(t, http.MethodPost, "/api/courses", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, []string{
			"Course title is required",
			"Semester must be either 'First' or 'Second'",
		}, env.Errors)
	})

	t.Run("update", func(t *testing.T) {
		rec, env := api.do(t, http.MethodPut, "/api/courses/"+created.ID, `{"isElective":true,"code":"cs302"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var updated types.Course
		require.NoError(t, json.Unmarshal(env.Data, &updated))
		assert.True(t, updated.IsElective)
		assert.Equal(t, "CS302", updated.Code)
		assert.Equal(t, "Operating Systems", updated.Title)
	})

	t.Run("invalid id", func(t *testing.T) {
		rec, env := api.do(t, http.MethodDelete, "/api/courses/123", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid course ID format", env.Message)
	})

	t.Run("delete", func(t *testing.T) {
		rec, env := api.do(t, http.MethodDelete, "/api/courses/"+created.ID, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Course deleted successfully", env.Message)

		rec, env = api.do(t, http.MethodGet, "/api/courses/"+created.ID, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Course not found", env.Message)
	})
}

func TestGuard(t *testing.T) {
	api := newTestAPI(t, func(o *Options) { o.AuthEnabled = true })

	t.Run("mutations need a session", func(t *testing.T) {
		rec, env := api.do(t, http.MethodPost, "/api/courses", courseBody)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, env.Success)
		assert.Equal(t, "You do not have access!", env.Message)
	})

	t.Run("guard runs before validation", func(t *testing.T) {
		rec, _ := api.do(t, http.MethodDelete, "/api/courses/not-an-id", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("reads stay public", func(t *testing.T) {
		rec, _ := api.do(t, http.MethodGet, "/api/courses", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("signed-in user passes", func(t *testing.T) {
		rec, _ := api.do(t, http.MethodPost, "/api/courses", courseBody, api.signIn(t))
		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	})

	t.Run("guarded reads", func(t *testing.T) {
		api := newTestAPI(t, func(o *Options) {
			o.AuthEnabled = true
			o.GuardReads = true
		})
		rec, _ := api.do(t, http.MethodGet, "/api/students", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		rec, _ = api.do(t, http.MethodGet, "/api/students", "", api.signIn(t))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRouteNotFound(t *testing.T) {
	api := newTestAPI(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/teachers"},
		{http.MethodPatch, "/api/students"},
		{http.MethodGet, "/login"},
	} {
		rec, env := api.do(t, tc.method, tc.path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, tc.path)
		assert.Equal(t, "Route not found", env.Message)
	}
}

func TestPagesAndMetrics(t *testing.T) {
	gh := auth.NewGitHub("id", "secret", "http://localhost/github/callback", nil)
	api := newTestAPI(t, func(o *Options) {
		gh.Sessions = o.Sessions
		o.GitHub = gh
		o.AuthEnabled = true
	})

	rec, _ := api.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="/login"`)

	rec, _ = api.do(t, http.MethodGet, "/welcome", "", api.signIn(t))
	assert.Contains(t, rec.Body.String(), "Welcome octocat!")

	rec, _ = api.do(t, http.MethodGet, "/github", "")
	assert.Equal(t, http.StatusFound, rec.Code)

	api.do(t, http.MethodGet, "/api/courses", "")
	rec, _ = api.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "api_request_duration_seconds")
}

func TestCORS(t *testing.T) {
	api := newTestAPI(t, func(o *Options) { o.CORSAllowedOrigins = []string{"http://app.example"} })

	req := httptest.NewRequest(http.MethodOptions, "/api/students", nil)
	req.Header.Set("Origin", "http://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)

	assert.Equal(t, "http://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

// failingStore answers every call with a connection error.
type failingStore struct{}

var errDown = errors.New("connection refused")

var _ storage.Storage = failingStore{}

func (failingStore) ListStudents(context.Context) ([]types.Student, error) { return nil, errDown }
func (failingStore) GetStudent(context.Context, string) (types.Student, error) {
	return types.Student{}, errDown
}
func (failingStore) CreateStudent(context.Context, types.Student) (types.Student, error) {
	return types.Student{}, errDown
}
func (failingStore) UpdateStudent(context.Context, string, types.StudentPatch) (types.Student, error) {
	return types.Student{}, errDown
}
func (failingStore) DeleteStudent(context.Context, string) error        { return errDown }
func (failingStore) ListCourses(context.Context) ([]types.Course, error) { return nil, errDown }
func (failingStore) GetCourse(context.Context, string) (types.Course, error) {
	return types.Course{}, errDown
}
func (failingStore) CreateCourse(context.Context, types.Course) (types.Course, error) {
	return types.Course{}, errDown
}
func (failingStore) UpdateCourse(context.Context, string, types.CoursePatch) (types.Course, error) {
	return types.Course{}, errDown
}
func (failingStore) DeleteCourse(context.Context, string) error { return errDown }
func (failingStore) Close() error                               { return nil }

func TestStoreUnavailable(t *testing.T) {
	t.Run("production hides detail", func(t *testing.T) {
		api := newTestAPI(t, func(o *Options) { o.Store = failingStore{} })
		rec, env := api.do(t, http.MethodGet, "/api/courses", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Server error", env.Message)
		assert.Empty(t, env.Error)
		assert.Empty(t, env.Stack)
	})

	t.Run("development shows detail", func(t *testing.T) {
		api := newTestAPI(t, func(o *Options) {
			o.Store = failingStore{}
			o.Renderer = response.Renderer{Dev: true}
		})
		rec, env := api.do(t, http.MethodDelete, "/api/students/"+uuid.NewString(), "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Server error", env.Message)
		assert.Equal(t, "connection refused", env.Error)
		assert.Empty(t, env.Stack)
	})
}
