// Package errs defines the application's error taxonomy.
//
// Every failure a request can end in is one of a small, fixed set of kinds.
// Handlers, middleware and the validation layer return *Error values and never
// write error responses themselves; the response package maps each kind to its
// HTTP status and envelope in one place.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind names one class of failure.
type Kind string

const (
	InvalidIdentifier   Kind = "INVALID_IDENTIFIER"
	ValidationFailed    Kind = "VALIDATION_FAILED"
	EmptyBody           Kind = "EMPTY_BODY"
	MalformedBody       Kind = "MALFORMED_BODY"
	NotFound            Kind = "NOT_FOUND"
	ConstraintViolation Kind = "CONSTRAINT_VIOLATION"
	StoreUnavailable    Kind = "STORE_UNAVAILABLE"
	Unauthorized        Kind = "UNAUTHORIZED"
	RouteNotFound       Kind = "ROUTE_NOT_FOUND"
	Internal            Kind = "INTERNAL"
)

// ServerErrorMessage is the only message a client sees for 5xx failures.
const ServerErrorMessage = "Server error"

// Status returns the HTTP status code a kind is rendered with.
func (k Kind) Status() int {
	switch k {
	case InvalidIdentifier, ValidationFailed, EmptyBody, MalformedBody, ConstraintViolation:
		return http.StatusBadRequest
	case NotFound, RouteNotFound:
		return http.StatusNotFound
	case Unauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure.
//
// Message is the client-facing summary. Errors holds the ordered list of
// field messages for ValidationFailed. Err is the underlying cause, logged
// and only exposed to clients in development mode.
type Error struct {
	Kind    Kind
	Message string
	Errors  []string
	Err     error

	// Stack is the goroutine stack at a recovered panic. Empty for errors
	// that were returned.
	Stack string
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status is shorthand for e.Kind.Status().
func (e *Error) Status() int {
	return e.Kind.Status()
}

// KindOf returns the kind of the first *Error in err's chain, or Internal
// when err carries no classification.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// NewInvalidIdentifier reports a path id that is not in the store's format.
// entity is the lower-case resource name, e.g. "student".
func NewInvalidIdentifier(entity string) *Error {
	return &Error{
		Kind:    InvalidIdentifier,
		Message: fmt.Sprintf("Invalid %s ID format", entity),
	}
}

// NewValidationFailed carries every rule violation found in a request body.
func NewValidationFailed(messages []string) *Error {
	return &Error{
		Kind:    ValidationFailed,
		Message: "Validation failed",
		Errors:  messages,
	}
}

func NewEmptyBody() *Error {
	return &Error{Kind: EmptyBody, Message: "Request body cannot be empty"}
}

func NewMalformedBody(err error) *Error {
	return &Error{Kind: MalformedBody, Message: "Malformed JSON body", Err: err}
}

// NewNotFound reports a missing record. entity is capitalised in the message,
// e.g. NewNotFound("Course") -> "Course not found".
func NewNotFound(entity string) *Error {
	return &Error{Kind: NotFound, Message: entity + " not found"}
}

// NewConstraintViolation carries a store-side rejection message verbatim.
func NewConstraintViolation(message string, err error) *Error {
	return &Error{Kind: ConstraintViolation, Message: message, Err: err}
}

func NewStoreUnavailable(err error) *Error {
	return &Error{Kind: StoreUnavailable, Message: ServerErrorMessage, Err: err}
}

func NewUnauthorized() *Error {
	return &Error{Kind: Unauthorized, Message: "You do not have access!"}
}

func NewRouteNotFound() *Error {
	return &Error{Kind: RouteNotFound, Message: "Route not found"}
}

func NewInternal(err error) *Error {
	return &Error{Kind: Internal, Message: ServerErrorMessage, Err: err}
}

// NewPanic is Internal for a recovered panic value v, keeping the stack
// captured where it was recovered.
func NewPanic(v any, stack []byte) *Error {
	return &Error{
		Kind:    Internal,
		Message: ServerErrorMessage,
		Err:     fmt.Errorf("panic: %v", v),
		Stack:   string(stack),
	}
}
