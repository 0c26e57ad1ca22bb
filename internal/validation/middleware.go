package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/aanand-mishra/college-api/internal/errs"
	"github.com/aanand-mishra/college-api/internal/utils/response"
)

// maxBodyBytes caps how much of a request body is read.
const maxBodyBytes = 1 << 20

// IsValidID reports whether id is in the store's identifier format: a
// hyphenated 36-character UUID.
func IsValidID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// CheckID validates the {id} path value of r.
func (res Resource) CheckID(r *http.Request) error {
	if !IsValidID(r.PathValue("id")) {
		return errs.NewInvalidIdentifier(res.Name)
	}
	return nil
}

// CheckCreate validates a full creation body.
func (res Resource) CheckCreate(body map[string]any) (map[string]any, error) {
	msgs, values := Check(res.Fields, body, Create)
	if len(msgs) > 0 {
		return nil, errs.NewValidationFailed(msgs)
	}
	return values, nil
}

// CheckUpdate validates a partial body. An empty body is rejected before any
// field is looked at.
func (res Resource) CheckUpdate(body map[string]any) (map[string]any, error) {
	if len(body) == 0 {
		return nil, errs.NewEmptyBody()
	}
	msgs, values := Check(res.Fields, body, Update)
	if len(msgs) > 0 {
		return nil, errs.NewValidationFailed(msgs)
	}
	return values, nil
}

// ID is a middleware that rejects requests whose {id} is malformed.
func (res Resource) ID() response.Middleware {
	return func(next response.HandlerFunc) response.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) error {
			if err := res.CheckID(r); err != nil {
				return err
			}
			return next(w, r)
		}
	}
}

// Create is a middleware that decodes and validates a creation body and
// stores the normalized values for Bind.
func (res Resource) Create() response.Middleware {
	return func(next response.HandlerFunc) response.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) error {
			body, err := decodeBody(r)
			if err != nil {
				return err
			}
			values, err := res.CheckCreate(body)
			if err != nil {
				return err
			}
			return next(w, r.WithContext(withPayload(r.Context(), values)))
		}
	}
}

// Update is a middleware that validates {id} first, then the partial body.
func (res Resource) Update() response.Middleware {
	return func(next response.HandlerFunc) response.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) error {
			if err := res.CheckID(r); err != nil {
				return err
			}
			body, err := decodeBody(r)
			if err != nil {
				return err
			}
			values, err := res.CheckUpdate(body)
			if err != nil {
				return err
			}
			return next(w, r.WithContext(withPayload(r.Context(), values)))
		}
	}
}

// decodeBody reads r's body as a JSON object. A missing or whitespace-only
// body decodes to nil.
func decodeBody(r *http.Request) (map[string]any, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, errs.NewMalformedBody(err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, errs.NewMalformedBody(err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errs.NewMalformedBody(errors.New("trailing data after JSON body"))
	}
	body, ok := v.(map[string]any)
	if !ok {
		return nil, errs.NewMalformedBody(fmt.Errorf("body is %T, not an object", v))
	}
	return body, nil
}

type payloadKey struct{}

func withPayload(ctx context.Context, values map[string]any) context.Context {
	return context.WithValue(ctx, payloadKey{}, values)
}

// Bind decodes the values validated earlier in the chain into dst, a pointer
// to a patch struct such as *types.StudentPatch.
func Bind(ctx context.Context, dst any) error {
	values, ok := ctx.Value(payloadKey{}).(map[string]any)
	if !ok {
		return fmt.Errorf("validation.Bind: no validated payload in context")
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("validation.Bind: marshal: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("validation.Bind: unmarshal: %w", err)
	}
	return nil
}
