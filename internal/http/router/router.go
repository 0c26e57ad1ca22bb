// Package router binds every HTTP route to its guard → validation → handler
// chain and wraps the result in the server-wide middleware.
//
// Route table:
//
//	GET    /api/students          list             (guarded when GuardReads)
//	GET    /api/students/{id}     get by id        (guarded when GuardReads)
//	POST   /api/students          create           guarded
//	PUT    /api/students/{id}     partial update   guarded
//	DELETE /api/students/{id}     delete           guarded
//	...    /api/courses           same pattern
//	GET    /metrics               Prometheus
//	GET    /, /welcome            home page
//	GET    /login, /github, /github/callback, /logout   (when login is enabled)
//
// Anything else is 404 "Route not found".
package router

import (
	"net/http"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/aanand-mishra/college-api/internal/auth"
	"github.com/aanand-mishra/college-api/internal/errs"
	"github.com/aanand-mishra/college-api/internal/http/handlers/course"
	"github.com/aanand-mishra/college-api/internal/http/handlers/student"
	"github.com/aanand-mishra/college-api/internal/http/middleware"
	"github.com/aanand-mishra/college-api/internal/metrics"
	"github.com/aanand-mishra/college-api/internal/storage"
	"github.com/aanand-mishra/college-api/internal/utils/response"
	"github.com/aanand-mishra/college-api/internal/validation"
)

// Options are the router's dependencies.
type Options struct {
	Store    storage.Storage
	Logger   zerolog.Logger
	Renderer response.Renderer

	// AuthEnabled turns on the guard for mutating routes; GuardReads extends
	// it to reads.
	AuthEnabled bool
	GuardReads  bool

	// Sessions resolves the session cookie. Required.
	Sessions *auth.Sessions
	// GitHub is the login flow; nil leaves the login routes unregistered.
	GitHub *auth.GitHub

	RequestTimeout     time.Duration
	CORSAllowedOrigins []string
}

type router struct {
	mux *http.ServeMux
	rd  response.Renderer
}

// handle registers h behind mws (first listed runs first), timed under pattern.
func (rt *router) handle(pattern string, h response.HandlerFunc, mws ...response.Middleware) {
	rt.mux.Handle(pattern, metrics.Instrument(pattern, rt.rd.Handle(response.Chain(h, mws...))))
}

// New builds the complete HTTP handler.
func New(opts Options) http.Handler {
	rt := &router{mux: http.NewServeMux(), rd: opts.Renderer}
	store := opts.Store

	guard := auth.Guard(opts.AuthEnabled)
	readGuard := auth.Guard(opts.AuthEnabled && opts.GuardReads)

	rt.handle("GET /api/students", student.GetList(store), readGuard)
	rt.handle("GET /api/students/{id}", student.GetByID(store), readGuard, validation.Student.ID())
	rt.handle("POST /api/students", student.New(store), guard, validation.Student.Create())
	rt.handle("PUT /api/students/{id}", student.Update(store), guard, validation.Student.Update())
	rt.handle("DELETE /api/students/{id}", student.Delete(store), guard, validation.Student.ID())

	rt.handle("GET /api/courses", course.GetList(store), readGuard)
	rt.handle("GET /api/courses/{id}", course.GetByID(store), readGuard, validation.Course.ID())
	rt.handle("POST /api/courses", course.New(store), guard, validation.Course.Create())
	rt.handle("PUT /api/courses/{id}", course.Update(store), guard, validation.Course.Update())
	rt.handle("DELETE /api/courses/{id}", course.Delete(store), guard, validation.Course.ID())

	rt.mux.Handle("GET /metrics", metrics.Handler())

	home := auth.Home(opts.GitHub != nil)
	rt.mux.HandleFunc("GET /{$}", home)
	rt.mux.HandleFunc("GET /welcome", home)
	if gh := opts.GitHub; gh != nil {
		rt.mux.HandleFunc("GET /login", auth.Login)
		rt.mux.HandleFunc("GET /github", gh.Start)
		rt.mux.HandleFunc("GET /github/callback", gh.Callback)
		rt.mux.HandleFunc("GET /logout", gh.Logout)
	}

	rt.mux.Handle("/", rt.rd.Handle(func(w http.ResponseWriter, r *http.Request) error {
		return errs.NewRouteNotFound()
	}))

	var h http.Handler = rt.mux
	h = opts.Sessions.Load(h)
	h = middleware.Timeout(opts.RequestTimeout)(h)
	h = middleware.Recover(opts.Renderer)(h)
	h = middleware.RequestID(h)
	h = middleware.Logging(opts.Logger)(h)

	if len(opts.CORSAllowedOrigins) > 0 {
		h = cors.New(cors.Options{
			AllowedOrigins:   opts.CORSAllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowedHeaders:   []string{"Content-Type", middleware.RequestIDHeader},
			AllowCredentials: true,
		}).Handler(h)
	}
	return h
}
