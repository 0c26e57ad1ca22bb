package sqlstore

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/aanand-mishra/college-api/internal/storage"
)

// pgUniqueViolation is PostgreSQL's SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// columnFields maps unique columns to their JSON field names.
var columnFields = map[string]string{
	"code": "code",
}

// constraintError converts a driver-level uniqueness violation into a
// *storage.ConstraintError. Any other error is returned unchanged.
func constraintError(err error) error {
	if err == nil {
		return nil
	}

	var column string

	var liteErr sqlite3.Error
	var pgErr *pq.Error
	switch {
	case errors.As(err, &liteErr) && liteErr.ExtendedCode == sqlite3.ErrConstraintUnique:
		// "UNIQUE constraint failed: courses.code"
		msg := liteErr.Error()
		column = msg[strings.LastIndex(msg, ".")+1:]
	case errors.As(err, &pgErr) && string(pgErr.Code) == pgUniqueViolation:
		// "courses_code_key"
		column = strings.TrimSuffix(pgErr.Constraint, "_key")
		column = column[strings.Index(column, "_")+1:]
	default:
		return err
	}

	field, ok := columnFields[column]
	if !ok {
		field = column
	}
	return &storage.ConstraintError{
		Field:   field,
		Message: fmt.Sprintf("%s already exists", capitalize(field)),
		Err:     err,
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// schemaValidator re-checks records against their struct tags before every
// write, reporting fields by JSON name.
var schemaValidator = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// checkSchema returns a *storage.ConstraintError describing every field of
// record that breaks its schema tags.
func checkSchema(record any) error {
	err := schemaValidator.Struct(record)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return &storage.ConstraintError{
		Field:   verrs[0].Field(),
		Message: "Validation error: " + strings.Join(msgs, ", "),
		Err:     err,
	}
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must not exceed %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must not exceed %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "uppercase":
		return fmt.Sprintf("%s must be upper case", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
