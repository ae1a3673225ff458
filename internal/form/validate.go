// internal/form/validate.go
//
// Struct validation for posted forms.
//
// Context
//   Each form type carries `validate` tags for go-playground/validator and a
//   `form` tag naming the HTML input.  Validate runs the validator and maps
//   every failure to a core.FieldError whose Field is the input name, so
//   templates can highlight exactly the offending input.
//
//   Messages are user-facing English; they never echo submitted values.
//
//------------------------------------------------------------------------------

package form

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yanizio/campus/internal/core"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	// Report the HTML input name rather than the Go field name.
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return val
}

// Validate returns one FieldError per failed rule, or nil when s is valid.
// A non-validation failure (s is not a struct) is reported form-wide.
func Validate(s any) []core.FieldError {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var fes validator.ValidationErrors
	if !errors.As(err, &fes) {
		return []core.FieldError{{Message: "The form could not be checked.  Please try again."}}
	}
	out := make([]core.FieldError, 0, len(fes))
	for _, fe := range fes {
		out = append(out, core.FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	label := labelFor(fe.Field())
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "email":
		return "Please enter a valid email address."
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be less than %s characters.", label, fe.Param())
	case "eqfield":
		return "Passwords do not match."
	default:
		return label + " is invalid."
	}
}

// labelFor turns "confirm_password" into "Confirm password".
func labelFor(field string) string {
	s := strings.ReplaceAll(field, "_", " ")
	if s == "" {
		return "This field"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
