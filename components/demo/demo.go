// components/demo/demo.go
//
// Demo component: shows route-specific middleware at work.  The
// DemoHeaders stage runs only for /demo; the page also lists the
// request's UA, IP, and Geo details gathered by the Visitor stage.
//
// A JSON twin at /api/demo returns the same request info.
package demo

import (
	"encoding/json"
	"net/http"

	"github.com/yanizio/campus/internal/component"
	"github.com/yanizio/campus/internal/core"
	"github.com/yanizio/campus/internal/funnel"
	"github.com/yanizio/campus/internal/locals"
	"github.com/yanizio/campus/internal/pipeline"
)

// compile-time assertion
var _ component.Component = (*Comp)(nil)

// Comp implements component.Component; no state needed.
type Comp struct{}

// New returns the demo component.
func New() *Comp { return &Comp{} }

func (c *Comp) Name() string         { return "demo" }
func (c *Comp) Migrations() []string { return nil }

func (c *Comp) Routes(p *pipeline.Pipeline) {
	// HTML page
	p.Get("/demo", func(c *core.Context, _ http.ResponseWriter, _ *http.Request) pipeline.Result {
		c.SetTitle("Middleware Demo Page")
		c.Set("Headers", locals.DemoHeaderValues())
		return pipeline.Render("demo")
	}, locals.DemoHeaders())

	// JSON endpoint
	p.Get("/api/demo", func(c *core.Context, _ http.ResponseWriter, _ *http.Request) pipeline.Result {
		ri := c.Info()
		if ri == nil {
			return pipeline.Fail(funnel.WithStatus(http.StatusInternalServerError, "request info not available"))
		}
		body, err := json.Marshal(ri)
		if err != nil {
			return pipeline.Fail(funnel.ServerFault(err))
		}
		return pipeline.Respond(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(body)
		})
	}, locals.DemoHeaders())
}
