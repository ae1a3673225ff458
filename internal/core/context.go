// internal/core/context.go
//
// Central per-request context.
//
// Context
// -------
// The pipeline builds one *core.Context per inbound request and passes it
// by reference to every stage and leaf handler.  It bundles:
//
//   - Request      : the original *http.Request.
//   - Assets       : the per-request head.Registry (styles, scripts).
//   - Scalars      : current year, greeting, theme class (write-once).
//   - QueryParams  : a verbatim copy of the query string (write-once).
//   - Auth         : the authenticated flag and user email.
//   - Info         : parsed UA, geo, URL, and timestamp.
//   - View output  : title, view data, status, and form outcome.
//
// Lifecycle
// ---------
// Created when the request enters the pipeline, populated by stages, and
// sealed the moment the leaf hands off to rendering or the Error Funnel
// takes over.  After Seal, write-once setters return ErrSealed and the
// void setters are no-ops.
//
// Notes
// -----
// • Never shared between requests.  The mutex only covers a handler that
//   fans out goroutines inside one request.
// • Oxford commas, two spaces after periods.
package core

import (
	"context"
	"errors"
	"maps"
	"net/http"
	"net/url"
	"sync"

	"github.com/yanizio/campus/internal/head"
	"github.com/yanizio/campus/internal/requestinfo"
)

var (
	// ErrAlreadySet is returned when a write-once value is written twice.
	ErrAlreadySet = errors.New("core: value already set")
	// ErrSealed is returned when a sealed context is mutated.
	ErrSealed = errors.New("core: context sealed")
)

// FieldError is one user-facing validation message.  Field may be empty
// for form-level problems such as a bad CSRF token.
type FieldError struct {
	Field   string
	Message string
}

// Context is the Request Context.  Construct with New.
type Context struct {
	Request *http.Request
	Assets  *head.Registry
	Env     string

	mu sync.Mutex

	currentYear int
	greeting    string
	themeClass  string
	queryParams url.Values
	written     map[string]bool

	authenticated bool
	user          string
	info          *requestinfo.RequestInfo

	title      string
	viewData   map[string]any
	status     int
	form       any
	formErrors []FieldError

	sealed  bool
	state   State
	history []State
}

// New initialises a Context with an empty asset registry.
func New(r *http.Request, env string) *Context {
	return &Context{
		Request:  r,
		Assets:   head.New(),
		Env:      env,
		written:  make(map[string]bool, 4),
		viewData: make(map[string]any),
		state:    StateNormal,
		history:  []State{StateNormal},
	}
}

/*──────────────────────────── net/context glue ───────────────────────────*/

type ctxKey struct{} // unexported, collision-proof

// WithContext stores c inside ctx.
func WithContext(ctx context.Context, c *Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext returns the Context stored by the pipeline, or nil.
func FromContext(ctx context.Context) *Context {
	c, _ := ctx.Value(ctxKey{}).(*Context)
	return c
}

/*──────────────────────────── write-once scalars ─────────────────────────*/

// setOnce guards a write-once field.  Caller holds no lock.
func (c *Context) setOnce(key string, apply func()) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sealed {
		return ErrSealed
	}
	if c.written[key] {
		return ErrAlreadySet
	}
	c.written[key] = true
	apply()
	return nil
}

func (c *Context) SetCurrentYear(y int) error {
	return c.setOnce("currentYear", func() { c.currentYear = y })
}

func (c *Context) SetGreeting(g string) error {
	return c.setOnce("greeting", func() { c.greeting = g })
}

func (c *Context) SetThemeClass(class string) error {
	return c.setOnce("themeClass", func() { c.themeClass = class })
}

// SetQueryParams stores a private copy of q.
func (c *Context) SetQueryParams(q url.Values) error {
	cp := make(url.Values, len(q))
	for k, v := range q {
		cp[k] = append([]string(nil), v...)
	}
	return c.setOnce("queryParams", func() { c.queryParams = cp })
}

func (c *Context) CurrentYear() int   { c.mu.Lock(); defer c.mu.Unlock(); return c.currentYear }
func (c *Context) Greeting() string   { c.mu.Lock(); defer c.mu.Unlock(); return c.greeting }
func (c *Context) ThemeClass() string { c.mu.Lock(); defer c.mu.Unlock(); return c.themeClass }

// Query returns the first value for key from the copied query string.
func (c *Context) Query(key string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queryParams.Get(key)
}

// QueryParams returns a copy of the stored query parameters.
func (c *Context) QueryParams() url.Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := make(url.Values, len(c.queryParams))
	for k, v := range c.queryParams {
		cp[k] = append([]string(nil), v...)
	}
	return cp
}

/*──────────────────────────── auth + visitor ─────────────────────────────*/

// SetUser marks the request as authenticated for email.
func (c *Context) SetUser(email string) error {
	return c.setOnce("user", func() {
		c.authenticated = true
		c.user = email
	})
}

func (c *Context) Authenticated() bool { c.mu.Lock(); defer c.mu.Unlock(); return c.authenticated }
func (c *Context) User() string        { c.mu.Lock(); defer c.mu.Unlock(); return c.user }

func (c *Context) SetInfo(info *requestinfo.RequestInfo) error {
	return c.setOnce("info", func() { c.info = info })
}

func (c *Context) Info() *requestinfo.RequestInfo { c.mu.Lock(); defer c.mu.Unlock(); return c.info }

/*──────────────────────────── leaf output ────────────────────────────────*/

// SetTitle sets the page title.  Last caller wins until Seal.
func (c *Context) SetTitle(t string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.sealed {
		c.title = t
	}
}

func (c *Context) Title() string { c.mu.Lock(); defer c.mu.Unlock(); return c.title }

// Set stores one named value for the view.
func (c *Context) Set(key string, val any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.sealed {
		c.viewData[key] = val
	}
}

// Get returns a view value previously stored with Set.
func (c *Context) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.viewData[key]
	return v, ok
}

// SetStatus overrides the status used by a successful render (default 200).
func (c *Context) SetStatus(code int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.sealed {
		c.status = code
	}
}

// Status returns the render status, defaulting to 200.
func (c *Context) Status() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}

// SetForm records a bound form value and its validation outcome.
func (c *Context) SetForm(v any, errs []FieldError) error {
	return c.setOnce("form", func() {
		c.form = v
		c.formErrors = errs
	})
}

// Form returns the bound form value, or nil when no form was posted.
func (c *Context) Form() any { c.mu.Lock(); defer c.mu.Unlock(); return c.form }

// FormErrors returns a copy of the recorded validation messages.
func (c *Context) FormErrors() []FieldError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]FieldError(nil), c.formErrors...)
}

/*──────────────────────────── seal ───────────────────────────────────────*/

// Seal freezes the context and its asset registry.  Idempotent.
func (c *Context) Seal() {
	c.mu.Lock()
	c.sealed = true
	c.mu.Unlock()
	c.Assets.Seal()
}

func (c *Context) Sealed() bool { c.mu.Lock(); defer c.mu.Unlock(); return c.sealed }

// viewDataCopy is used by Page.
func (c *Context) viewDataCopy() map[string]any {
	return maps.Clone(c.viewData)
}
