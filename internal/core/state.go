// internal/core/state.go
//
// Funnel state for one request.
//
//	NORMAL ──► ERRORED ──► RESPONDED
//	   └──────────────────────▲
//
// RESPONDED is terminal.  Every transition is appended to a history so
// tests (and the access log) can prove each state was entered once.
package core

import (
	"fmt"
	"slices"
)

// State is the request's position in the funnel state machine.
type State int

const (
	StateNormal State = iota
	StateErrored
	StateResponded
)

func (s State) String() string {
	switch s {
	case StateNormal:
		return "NORMAL"
	case StateErrored:
		return "ERRORED"
	case StateResponded:
		return "RESPONDED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrBadTransition wraps an illegal state change.
type ErrBadTransition struct{ From, To State }

func (e ErrBadTransition) Error() string {
	return fmt.Sprintf("core: illegal transition %s -> %s", e.From, e.To)
}

// Transition moves the context to next or returns ErrBadTransition.
func (c *Context) Transition(next State) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ok := false
	switch c.state {
	case StateNormal:
		ok = next == StateErrored || next == StateResponded
	case StateErrored:
		ok = next == StateResponded
	}
	if !ok {
		return ErrBadTransition{From: c.state, To: next}
	}
	c.state = next
	c.history = append(c.history, next)
	return nil
}

// State returns the current funnel state.
func (c *Context) State() State { c.mu.Lock(); defer c.mu.Unlock(); return c.state }

// History returns every state entered, in order, starting with NORMAL.
func (c *Context) History() []State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.history)
}
