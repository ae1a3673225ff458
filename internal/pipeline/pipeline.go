// internal/pipeline/pipeline.go
//
// Middleware Pipeline.
//
// Context
// -------
// Every request walks the same strictly ordered chain:
//
//	outer net/http middleware (Wrap)
//	  └─ begin: wrap writer, build *core.Context, recover panics
//	       ├─ global stages (Use), registration order
//	       ├─ scope stages whose prefix matches the path
//	       └─ chi routing
//	            ├─ route stages (the before... arguments)
//	            └─ leaf  ─►  Respond | Render | Fail
//	          (no match  ─►  Error Funnel, 404)
//
// A stage returns a Result instead of calling next, so "exactly one
// terminal action" is enforced by the type system.  Render seals the
// Request Context, renders into a buffer, and only then writes.  Every
// failure, panic, and unmatched route lands in the Error Funnel.
//
// Routing is chi; the pipeline only decides what happens around it.
//
// Notes
// -----
// • Register everything before the first Handler call.  Registration
//   after the mux is built panics.
// • Oxford commas, two spaces after periods.
package pipeline

import (
	"bytes"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/yanizio/campus/internal/core"
	"github.com/yanizio/campus/internal/funnel"
	"github.com/yanizio/campus/internal/metrics"
	"github.com/yanizio/campus/internal/view"
)

// Stage is one link in the chain.  Leaf handlers share the signature but
// must not return Continue.
type Stage func(c *core.Context, w http.ResponseWriter, r *http.Request) Result

// Options configures a Pipeline.
type Options struct {
	Env      string
	Renderer view.Renderer
	Funnel   *funnel.Funnel
	Log      *zap.SugaredLogger
}

// RouteInfo describes one registered route.
type RouteInfo struct {
	Method  string
	Pattern string
	Stages  int
}

type route struct {
	method  string
	pattern string
	leaf    Stage
	before  []Stage
}

// Pipeline owns the stage lists and the chi mux built from them.
type Pipeline struct {
	env      string
	renderer view.Renderer
	funnel   *funnel.Funnel
	log      *zap.SugaredLogger

	mu       sync.Mutex
	global   []Stage
	wrappers []func(http.Handler) http.Handler
	root     *Scope
	routes   []route
	built    bool

	once    sync.Once
	handler http.Handler
}

// New returns an empty pipeline.  A nil Funnel is built from Renderer
// with production output.
func New(opts Options) *Pipeline {
	if opts.Log == nil {
		opts.Log = zap.S()
	}
	if opts.Funnel == nil {
		opts.Funnel = funnel.New(opts.Log, opts.Renderer, true)
	}
	p := &Pipeline{
		env:      opts.Env,
		renderer: opts.Renderer,
		funnel:   opts.Funnel,
		log:      opts.Log,
	}
	p.root = &Scope{p: p}
	return p
}

func (p *Pipeline) mustOpen() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.built {
		panic("pipeline: registration after Handler")
	}
}

// Use appends global stages.
func (p *Pipeline) Use(stages ...Stage) {
	p.mustOpen()
	p.mu.Lock()
	p.global = append(p.global, stages...)
	p.mu.Unlock()
}

// Wrap appends outer net/http middleware.  These run before begin and see
// the raw writer; use them for logging, headers, and the like.
func (p *Pipeline) Wrap(mw ...func(http.Handler) http.Handler) {
	p.mustOpen()
	p.mu.Lock()
	p.wrappers = append(p.wrappers, mw...)
	p.mu.Unlock()
}

// Scope registers a top-level prefix scope.
func (p *Pipeline) Scope(prefix string, stages ...Stage) *Scope {
	return p.root.Scope(prefix, stages...)
}

// Get registers a GET route.
func (p *Pipeline) Get(pattern string, leaf Stage, before ...Stage) {
	p.Handle(http.MethodGet, pattern, leaf, before...)
}

// Post registers a POST route.
func (p *Pipeline) Post(pattern string, leaf Stage, before ...Stage) {
	p.Handle(http.MethodPost, pattern, leaf, before...)
}

// Handle registers leaf for method and chi pattern, preceded by before.
func (p *Pipeline) Handle(method, pattern string, leaf Stage, before ...Stage) {
	if leaf == nil {
		panic(fmt.Sprintf("pipeline: nil leaf for %s %s", method, pattern))
	}
	p.mustOpen()
	p.mu.Lock()
	p.routes = append(p.routes, route{method: method, pattern: pattern, leaf: leaf, before: before})
	p.mu.Unlock()
}

// Routes lists the registered routes in registration order.
func (p *Pipeline) Routes() []RouteInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]RouteInfo, 0, len(p.routes))
	for _, rt := range p.routes {
		out = append(out, RouteInfo{Method: rt.method, Pattern: rt.pattern, Stages: len(rt.before) + 1})
	}
	return out
}

// Handler builds the chi mux on first call and returns it thereafter.
func (p *Pipeline) Handler() http.Handler {
	p.once.Do(func() {
		p.mu.Lock()
		p.built = true
		p.mu.Unlock()

		mux := chi.NewRouter()
		mux.Use(p.wrappers...)
		mux.Use(middleware.StripSlashes, p.begin)
		for _, rt := range p.routes {
			mux.Method(rt.method, rt.pattern, p.serve(rt))
		}
		mux.NotFound(p.notFound)
		mux.MethodNotAllowed(p.notFound)
		p.handler = mux
	})
	return p.handler
}

/*──────────────────────────── request flow ───────────────────────────────*/

// begin creates the Request Context and runs the global and scope stages.
func (p *Pipeline) begin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		c := core.New(r, p.env)
		r = r.WithContext(core.WithContext(r.Context(), c))
		c.Request = r

		defer p.observe(ww, r, start)
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				p.fail(c, ww, r, funnel.Recovered(v, debug.Stack()))
			}
		}()

		stages := append([]Stage(nil), p.global...)
		stages = p.root.collect(r.URL.Path, stages)
		if res, ok := p.run(c, ww, r, stages); !ok {
			p.finish(c, ww, r, res)
			return
		}
		next.ServeHTTP(ww, r)
	})
}

// serve adapts one route into a chi handler.
func (p *Pipeline) serve(rt route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := core.FromContext(r.Context())
		if res, ok := p.run(c, w, r, rt.before); !ok {
			p.finish(c, w, r, res)
			return
		}
		res := rt.leaf(c, w, r)
		if res.outcome == outcomeContinue {
			res = Fail(funnel.ServerFault(errLeafContinue))
		}
		p.finish(c, w, r, res)
	}
}

func (p *Pipeline) notFound(w http.ResponseWriter, r *http.Request) {
	p.fail(core.FromContext(r.Context()), w, r,
		funnel.NotFound("no route for %s %s", r.Method, r.URL.Path))
}

// run executes stages until one returns anything other than Continue.
// ok is true when every stage continued.
func (p *Pipeline) run(c *core.Context, w http.ResponseWriter, r *http.Request, stages []Stage) (Result, bool) {
	for _, s := range stages {
		res := s(c, w, r)
		if res.outcome != outcomeContinue {
			return res, false
		}
	}
	return Result{}, true
}

// finish performs the terminal action carried by res.
func (p *Pipeline) finish(c *core.Context, w http.ResponseWriter, r *http.Request, res Result) {
	switch res.outcome {
	case outcomeRespond:
		c.Seal()
		res.respond(w, r)
		if err := c.Transition(core.StateResponded); err != nil {
			p.log.Warnw("respond transition", "path", r.URL.Path, "err", err)
		}
	case outcomeRender:
		p.render(c, w, r, res.view)
	case outcomeFail:
		p.fail(c, w, r, res.err)
	default:
		p.fail(c, w, r, funnel.ServerFault(errZeroResult))
	}
}

// render seals c, renders view into a buffer, then writes it.
func (p *Pipeline) render(c *core.Context, w http.ResponseWriter, r *http.Request, name string) {
	c.Seal()
	if p.renderer == nil {
		p.fail(c, w, r, funnel.ServerFault(fmt.Errorf("pipeline: no renderer for %q", name)))
		return
	}

	var buf bytes.Buffer
	if err := p.renderer.Render(&buf, name, c.Page()); err != nil {
		p.fail(c, w, r, funnel.ServerFault(fmt.Errorf("render %s: %w", name, err)))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(c.Status())
	if _, err := buf.WriteTo(w); err != nil {
		p.log.Debugw("write body", "path", r.URL.Path, "err", err)
	}
	if err := c.Transition(core.StateResponded); err != nil {
		p.log.Warnw("render transition", "path", r.URL.Path, "err", err)
	}
}

// fail hands err to the Error Funnel.  A refused hand-off is only logged;
// the response is already on the wire.
func (p *Pipeline) fail(c *core.Context, w http.ResponseWriter, r *http.Request, err error) {
	if ferr := p.funnel.Handle(c, w, r, err); ferr != nil {
		p.log.Warnw("error funnel declined", "path", r.URL.Path, "err", ferr)
	}
}

// observe records request metrics once the response is complete.
func (p *Pipeline) observe(ww middleware.WrapResponseWriter, r *http.Request, start time.Time) {
	pattern := "unmatched"
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if rp := rctx.RoutePattern(); rp != "" {
			pattern = rp
		}
	}
	status := ww.Status()
	if status == 0 {
		status = http.StatusOK
	}
	metrics.RequestsTotal.WithLabelValues(r.Method, pattern, strconv.Itoa(status)).Inc()
	metrics.RequestDuration.WithLabelValues(pattern).Observe(time.Since(start).Seconds())
}
