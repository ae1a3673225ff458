// internal/pipeline/result.go
//
// Result is the continuation decision every stage returns.  A stage cannot
// "forget" to proceed: it must hand back exactly one of Continue, Respond,
// Render, or Fail, and the pipeline acts on it.  The zero Result is
// rejected and funnelled as a 500.

package pipeline

import (
	"errors"
	"net/http"

	"github.com/yanizio/campus/internal/funnel"
)

type outcome uint8

const (
	outcomeInvalid outcome = iota
	outcomeContinue
	outcomeRespond
	outcomeRender
	outcomeFail
)

func (o outcome) String() string {
	switch o {
	case outcomeContinue:
		return "continue"
	case outcomeRespond:
		return "respond"
	case outcomeRender:
		return "render"
	case outcomeFail:
		return "fail"
	default:
		return "invalid"
	}
}

// Result tells the pipeline what to do after a stage returns.
type Result struct {
	outcome outcome
	respond http.HandlerFunc
	view    string
	err     error
}

var (
	errZeroResult   = errors.New("pipeline: stage returned the zero Result")
	errLeafContinue = errors.New("pipeline: leaf handler returned Continue")
)

// Continue passes control to the next stage.
func Continue() Result { return Result{outcome: outcomeContinue} }

// Respond short-circuits the chain; h writes the response itself.
func Respond(h http.HandlerFunc) Result {
	if h == nil {
		return Fail(funnel.ServerFault(errors.New("pipeline: Respond with nil handler")))
	}
	return Result{outcome: outcomeRespond, respond: h}
}

// Redirect short-circuits with an HTTP redirect.
func Redirect(url string, code int) Result {
	return Respond(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, url, code)
	})
}

// Render seals the Request Context and renders view with it.
func Render(view string) Result {
	if view == "" {
		return Fail(funnel.ServerFault(errors.New("pipeline: Render with empty view")))
	}
	return Result{outcome: outcomeRender, view: view}
}

// Fail diverts the request to the Error Funnel.
func Fail(err error) Result {
	if err == nil {
		err = funnel.ServerFault(errors.New("pipeline: Fail with nil error"))
	}
	return Result{outcome: outcomeFail, err: err}
}

// Continued reports whether r is Continue.  Handy in tests.
func (r Result) Continued() bool { return r.outcome == outcomeContinue }

// Err returns the failure carried by a Fail result, or nil.
func (r Result) Err() error { return r.err }

// View returns the view name carried by a Render result.
func (r Result) View() string { return r.view }

func (r Result) String() string { return r.outcome.String() }
