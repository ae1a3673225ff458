// components/pages/pages.go
//
// Static pages: home, about, products, and the deliberate test error.
//
//------------------------------------------------------------------------------

package pages

import (
	"net/http"

	"github.com/yanizio/campus/internal/component"
	"github.com/yanizio/campus/internal/core"
	"github.com/yanizio/campus/internal/funnel"
	"github.com/yanizio/campus/internal/pipeline"
)

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// Component serves the site's fixed pages.
type Component struct{}

// New returns the pages component.
func New() *Component { return &Component{} }

/*────────────────── component.Component methods ───────────────────────────*/

// Name returns the canonical component key.
func (c *Component) Name() string { return "pages" }

// Migrations returns nil; static pages have no schema.
func (c *Component) Migrations() []string { return nil }

// Routes registers the page routes at the root.
func (c *Component) Routes(p *pipeline.Pipeline) {
	p.Get("/", page("home", "Welcome Home"))
	p.Get("/about", page("about", "About Me"))
	p.Get("/products", page("products", "Our Products"))
	p.Get("/test-error", testError)
}

/*──────────────────────────── Handlers ─────────────────────────────────────*/

func page(view, title string) pipeline.Stage {
	return func(c *core.Context, _ http.ResponseWriter, _ *http.Request) pipeline.Result {
		c.SetTitle(title)
		return pipeline.Render(view)
	}
}

func testError(*core.Context, http.ResponseWriter, *http.Request) pipeline.Result {
	return pipeline.Fail(funnel.WithStatus(http.StatusInternalServerError, "This is a test error"))
}
