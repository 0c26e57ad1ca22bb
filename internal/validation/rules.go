// Package validation gates every request before it reaches the store.
//
// Each resource is described by a rule table: an ordered list of fields,
// each with a value kind, the messages to use when the field is missing,
// blank or of the wrong type, and a list of go-playground/validator tags
// paired with the message to report when the tag fails. The same table drives
// creation (required fields must be present) and partial update (only the
// supplied fields are checked). All violations of one request are collected
// and reported together, in table order, at most one message per field.
package validation

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Mode selects how absent fields are treated.
type Mode int

const (
	// Create requires every non-optional field.
	Create Mode = iota
	// Update only checks the fields present in the body.
	Update
)

// ValueKind is the JSON type a field must hold.
type ValueKind int

const (
	String ValueKind = iota
	// Number accepts JSON numbers and numeric strings.
	Number
	Bool
)

// Constraint is one validator tag and the message reported when it fails.
type Constraint struct {
	Tag     string
	Message string
}

// Field is one row of a rule table.
type Field struct {
	Name string
	Kind ValueKind

	// Optional fields are never required; null means "not supplied".
	Optional bool

	Required string // create: absent or blank
	Empty    string // update: present but blank
	Type     string // present with the wrong JSON type

	Constraints []Constraint

	// Normalize rewrites a valid string before it is handed to the store.
	Normalize func(string) string
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// whole: a number without a fractional part.
	_ = v.RegisterValidation("whole", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		switch f.Kind() {
		case reflect.Float32, reflect.Float64:
			return f.Float() == math.Trunc(f.Float())
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return true
		}
		return false
	})
	return v
}

// Check runs fields against body and returns every violation in table order,
// plus the normalized values of the fields that passed. body may be nil.
func Check(fields []Field, body map[string]any, mode Mode) ([]string, map[string]any) {
	var messages []string
	values := make(map[string]any, len(fields))

	for _, f := range fields {
		raw, present := body[f.Name]
		if !present || (f.Optional && raw == nil) {
			if mode == Create && !f.Optional {
				messages = append(messages, f.Required)
			}
			continue
		}

		if !f.Optional && isBlank(raw) {
			if mode == Create {
				messages = append(messages, f.Required)
			} else {
				messages = append(messages, f.Empty)
			}
			continue
		}

		v, ok := coerce(f.Kind, raw)
		if !ok {
			messages = append(messages, f.Type)
			continue
		}

		if msg, failed := firstFailure(f.Constraints, v); failed {
			messages = append(messages, msg)
			continue
		}

		values[f.Name] = normalize(f, v)
	}

	return messages, values
}

func firstFailure(constraints []Constraint, v any) (string, bool) {
	for _, c := range constraints {
		if err := validate.Var(v, c.Tag); err != nil {
			return c.Message, true
		}
	}
	return "", false
}

// isBlank reports JSON null or a string that is empty once trimmed.
func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	}
	return false
}

// coerce converts a decoded JSON value to the Go type its constraints run on:
// trimmed string, float64 or bool.
func coerce(kind ValueKind, v any) (any, bool) {
	switch kind {
	case String:
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		return strings.TrimSpace(s), true

	case Number:
		var (
			f   float64
			err error
		)
		switch t := v.(type) {
		case json.Number:
			f, err = t.Float64()
		case float64:
			f = t
		case string:
			// plain decimals only; ParseFloat alone would take "0x1p8" or "1_0"
			s := strings.TrimSpace(t)
			if validate.Var(s, "numeric") != nil {
				return nil, false
			}
			f, err = strconv.ParseFloat(s, 64)
		default:
			return nil, false
		}
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, false
		}
		return f, true

	case Bool:
		b, ok := v.(bool)
		return b, ok
	}
	return nil, false
}

func normalize(f Field, v any) any {
	switch t := v.(type) {
	case string:
		if f.Normalize != nil {
			return f.Normalize(t)
		}
		return t
	case float64:
		// constraints have already rejected fractional values
		return int(t)
	}
	return v
}
