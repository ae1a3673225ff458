// internal/funnel/errors.go
//
// Error taxonomy.
//
//	NotFound         404   unmatched route or missing record
//	Validation       -     bad form/query input; handled by the leaf
//	ServerFault      500   anything uncaught (also the default)
//	RenderFault      -     the error view failed; downgraded to plain text
//
// Any error can travel through the funnel.  StatusOf unwraps *Error with
// errors.As and falls back to 500 for everything else, including a
// Validation error that escaped its handler.

package funnel

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
)

// Kind classifies an error for logging and metrics.
type Kind int

const (
	KindServerFault Kind = iota
	KindNotFound
	KindValidation
	KindRender
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindRender:
		return "render"
	default:
		return "server_fault"
	}
}

// Error carries an HTTP status alongside the cause.
type Error struct {
	Status  int
	Kind    Kind
	Message string
	Err     error
	Stack   []byte
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return e.Message + ": " + e.Err.Error()
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return http.StatusText(e.Status)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound builds a 404.
func NotFound(format string, args ...any) *Error {
	return &Error{Status: http.StatusNotFound, Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// ServerFault wraps err as a 500 and captures the current stack.
func ServerFault(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Kind: KindServerFault, Err: err, Stack: debug.Stack()}
}

// WithStatus builds an error with an explicit status.  A zero status is
// treated as 500 by StatusOf.
func WithStatus(status int, msg string) *Error {
	kind := KindServerFault
	if status == http.StatusNotFound {
		kind = KindNotFound
	}
	return &Error{Status: status, Kind: kind, Message: msg, Stack: debug.Stack()}
}

// Recovered converts a recovered panic value into a ServerFault.
func Recovered(v any, stack []byte) *Error {
	err, ok := v.(error)
	if !ok {
		err = fmt.Errorf("panic: %v", v)
	}
	return &Error{Status: http.StatusInternalServerError, Kind: KindServerFault, Err: err, Stack: stack}
}

// StatusOf returns the HTTP status for err (default 500).
func StatusOf(err error) int {
	var fe *Error
	if errors.As(err, &fe) && fe.Status != 0 {
		return fe.Status
	}
	return http.StatusInternalServerError
}

// KindOf returns the Kind for err (default KindServerFault).
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindServerFault
}

// stackOf returns the captured stack, if any.
func stackOf(err error) []byte {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Stack
	}
	return nil
}
