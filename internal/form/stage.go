// internal/form/stage.go
//
// Validation stage.
//
// Context
//   Mounted on a form's scope.  On every request it issues a fresh CSRF
//   token into view data ("CSRFToken").  On POST it also parses the body,
//   checks the token, binds a new form value, validates it, and records the
//   outcome with core.Context.SetForm.  It never fails the request: a bad
//   submission is the leaf's job to re-render, not the Error Funnel's.
//
//------------------------------------------------------------------------------

package form

import (
	"fmt"
	"net/http"

	"github.com/yanizio/campus/internal/core"
	"github.com/yanizio/campus/internal/funnel"
	"github.com/yanizio/campus/internal/pipeline"
)

// TokenField is the hidden input carrying the CSRF token.
const TokenField = "csrf_token"

var (
	msgBadToken = core.FieldError{Message: "Security token invalid.  Please refresh and try again."}
	msgBadBody  = core.FieldError{Message: "The form could not be read.  Please try again."}
)

// Validation returns the stage for forms built by newForm.
func Validation(newForm func() Binder, csrf *CSRF) pipeline.Stage {
	return func(c *core.Context, _ http.ResponseWriter, r *http.Request) pipeline.Result {
		tok, err := csrf.Token()
		if err != nil {
			return pipeline.Fail(funnel.ServerFault(fmt.Errorf("csrf token: %w", err)))
		}
		c.Set("CSRFToken", tok)

		if r.Method != http.MethodPost {
			return pipeline.Continue()
		}

		f := newForm()
		if err := r.ParseForm(); err != nil {
			return record(c, f, []core.FieldError{msgBadBody})
		}
		f.Bind(r.PostForm)
		if !csrf.Verify(r.PostForm.Get(TokenField)) {
			return record(c, f, []core.FieldError{msgBadToken})
		}
		return record(c, f, Validate(f))
	}
}

func record(c *core.Context, f Binder, errs []core.FieldError) pipeline.Result {
	if err := c.SetForm(f, errs); err != nil {
		return pipeline.Fail(funnel.ServerFault(fmt.Errorf("record form: %w", err)))
	}
	return pipeline.Continue()
}

// Valid reports whether a form was posted and passed validation.
func Valid(c *core.Context) bool {
	return c.Form() != nil && len(c.FormErrors()) == 0
}
