// internal/funnel/funnel.go
//
// The Error Funnel: the single terminal stage that turns any error, or an
// unmatched route, into exactly one rendered response.
//
/*
Context
--------
Stages and leaf handlers never write error pages themselves.  They return
pipeline.Fail(err) and the pipeline calls Handle.  For each call Handle:

  1. Refuses to double-respond.  When the writer already committed a
     status (or the request already reached RESPONDED) nothing is written
     and ErrAlreadyResponded, wrapping the original error, is returned to
     the caller so it can be logged upstream.
  2. Moves the Request Context NORMAL → ERRORED and seals it.
  3. Picks errors/404 for status 404, errors/500 for everything else.
  4. Exposes the real message and stack outside production, a generic
     message in production.
  5. Renders into a buffer.  When the error view itself fails the body is
     replaced by a minimal inline message (RenderFault, never propagated).
  6. Writes the response and moves the context to RESPONDED.

Notes
-----
  • 404s log at debug; everything else logs at error with the stack.
  • Oxford commas, two spaces after periods.
*/
package funnel

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/yanizio/campus/internal/core"
	"github.com/yanizio/campus/internal/metrics"
	"github.com/yanizio/campus/internal/view"
)

const (
	viewNotFound = "errors/404"
	viewError    = "errors/500"

	genericMessage = "An error occurred"
	fallbackHTML   = "<h1>Error %d</h1><p>An error occurred.</p>"
)

// ErrAlreadyResponded is returned by Handle when it declined to write.
var ErrAlreadyResponded = errors.New("funnel: response already sent")

// Funnel is safe for concurrent use; it holds no per-request state.
type Funnel struct {
	log        *zap.SugaredLogger
	renderer   view.Renderer
	production bool
}

// New builds a Funnel.  A nil renderer always produces the inline fallback.
func New(log *zap.SugaredLogger, renderer view.Renderer, production bool) *Funnel {
	if log == nil {
		log = zap.S()
	}
	return &Funnel{log: log, renderer: renderer, production: production}
}

// statusWriter is satisfied by chi's middleware.WrapResponseWriter.
type statusWriter interface{ Status() int }

// committed reports whether w already sent a status line.
func committed(w http.ResponseWriter) bool {
	sw, ok := w.(statusWriter)
	return ok && sw.Status() != 0
}

// Handle normalises err into one response for r.  c may be nil when the
// failure happened before the pipeline built a context.
func (f *Funnel) Handle(c *core.Context, w http.ResponseWriter, r *http.Request, err error) error {
	if err == nil {
		err = ServerFault(errors.New("funnel: nil error"))
	}
	if c == nil {
		c = core.New(r, "")
	}
	status := StatusOf(err)

	if committed(w) || c.State() == core.StateResponded {
		f.log.Warnw("error after response sent",
			"path", r.URL.Path, "status", status, "err", err)
		return fmt.Errorf("%w: %w", ErrAlreadyResponded, err)
	}
	if terr := c.Transition(core.StateErrored); terr != nil {
		f.log.Warnw("error funnel re-entered", "path", r.URL.Path, "err", err)
		return fmt.Errorf("%w: %w", terr, err)
	}
	c.Seal()

	kind := KindOf(err)
	metrics.FunnelTotal.WithLabelValues(strconv.Itoa(status), kind.String()).Inc()
	if status == http.StatusNotFound {
		f.log.Debugw("not found", "path", r.URL.Path, "err", err)
	} else {
		f.log.Errorw("request failed",
			"path", r.URL.Path, "status", status, "kind", kind.String(),
			"err", err, "stack", string(stackOf(err)))
	}

	name, page := f.page(c, status, err)

	var buf bytes.Buffer
	if f.renderer == nil {
		fmt.Fprintf(&buf, fallbackHTML, status)
	} else if rerr := f.render(&buf, name, page); rerr != nil {
		metrics.RenderFallbackTotal.Inc()
		f.log.Errorw("error view failed", "view", name, "kind", KindRender.String(), "err", rerr)
		buf.Reset()
		fmt.Fprintf(&buf, fallbackHTML, status)
	}

	h := w.Header()
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Del("Content-Length")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)

	_ = c.Transition(core.StateResponded)
	return nil
}

// render calls the error view, converting a panic into an error so the
// inline fallback still answers the request.
func (f *Funnel) render(buf *bytes.Buffer, name string, page core.Page) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("funnel: %s panicked: %v", name, v)
		}
	}()
	return f.renderer.Render(buf, name, page)
}

// page builds the view name and the environment-gated error snapshot.
func (f *Funnel) page(c *core.Context, status int, err error) (string, core.Page) {
	p := c.Page()
	p.Status = status

	name := viewError
	p.Title = "Server Error"
	if status == http.StatusNotFound {
		name = viewNotFound
		p.Title = "Page Not Found"
	}

	if f.production {
		p.Error = genericMessage
		p.Stack = ""
	} else {
		p.Error = err.Error()
		p.Stack = string(stackOf(err))
	}
	return name, p
}
