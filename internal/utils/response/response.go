// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every endpoint answers with the same envelope:
//
//	{ "success": true,  "data": ... }
//	{ "success": true,  "message": "Student deleted successfully" }
//	{ "success": false, "message": "Validation failed", "errors": ["..."] }
//
// Handlers in this application do not build error responses themselves. They
// return an error (usually an *errs.Error) and Renderer.Handle turns it into
// the right status code and envelope. That keeps the mapping from failure kind
// to HTTP response in exactly one function: Renderer.Fail.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aanand-mishra/college-api/internal/errs"
)

// ─────────────────────────────────────────────────────────────────────────────
// Envelope is the body of every response.
//
// Error and Stack are only filled in development mode, for 5xx failures.
// Stack is only set for recovered panics.
// ─────────────────────────────────────────────────────────────────────────────
type Envelope struct {
	Success bool     `json:"success"`
	Data    any      `json:"data,omitempty"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
	Error   string   `json:"error,omitempty"`
	Stack   string   `json:"stack,omitempty"`
}

// HandlerFunc is an HTTP handler that reports failure by returning an error
// instead of writing it.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Middleware decorates a HandlerFunc, e.g. with validation or an auth guard.
type Middleware func(HandlerFunc) HandlerFunc

// Chain applies mws so that the first one listed runs first.
func Chain(h HandlerFunc, mws ...Middleware) HandlerFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// ─────────────────────────────────────────────────────────────────────────────
// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
// ─────────────────────────────────────────────────────────────────────────────
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// OK writes a success envelope around data.
func OK(w http.ResponseWriter, status int, data any) error {
	return WriteJSON(w, status, Envelope{Success: true, Data: data})
}

// Message writes a success envelope that only carries a message, used for
// delete acknowledgements.
func Message(w http.ResponseWriter, status int, message string) error {
	return WriteJSON(w, status, Envelope{Success: true, Message: message})
}

// Renderer is the boundary between HandlerFuncs and net/http.
//
// Dev turns on raw error detail and stack traces in 5xx bodies. It must be
// false for any production-like deployment.
type Renderer struct {
	Dev bool
}

// Handle adapts h to an http.HandlerFunc, rendering any returned error.
func (rd Renderer) Handle(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			rd.Fail(w, r, err)
		}
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Fail maps err to its status code and envelope and writes it.
//
// Classified errors (*errs.Error) keep their message and field list. Anything
// else is degraded to a generic 500 "Server error". The cause of every 5xx is
// logged through the request logger; clients only see it when Dev is set.
// ─────────────────────────────────────────────────────────────────────────────
func (rd Renderer) Fail(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *errs.Error
	if !errors.As(err, &appErr) {
		appErr = errs.NewInternal(err)
	}

	status := appErr.Status()
	env := Envelope{
		Success: false,
		Message: appErr.Message,
		Errors:  appErr.Errors,
	}

	log := zerolog.Ctx(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("kind", string(appErr.Kind)).Msg("request failed")
		if rd.Dev {
			env.Error = detail(appErr)
			env.Stack = appErr.Stack
		}
	} else {
		log.Debug().Str("kind", string(appErr.Kind)).Msg(appErr.Message)
	}

	if werr := WriteJSON(w, status, env); werr != nil {
		log.Error().Err(werr).Msg("failed to write error response")
	}
}

func detail(e *errs.Error) string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}
