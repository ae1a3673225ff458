// components/catalog/catalog.go
//
// Course catalog component.
//
// Context
// -------
// Everything under /catalog gets the catalog stylesheet through a scope
// stage, so the link never leaks onto unrelated pages.
//
//   - GET /catalog         – every course.
//   - GET /catalog/{id}    – one course; ?sort=time|professor|room orders
//                            its sections (default time, i.e. schedule).
//
// An unknown course ID is a 404 through the Error Funnel.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package catalog

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/campus/internal/catalog"
	"github.com/yanizio/campus/internal/component"
	"github.com/yanizio/campus/internal/core"
	"github.com/yanizio/campus/internal/funnel"
	"github.com/yanizio/campus/internal/locals"
	"github.com/yanizio/campus/internal/pipeline"
)

// Stylesheet is added to every /catalog request.
const Stylesheet = "/css/catalog.css"

var _ component.Component = (*Component)(nil)

// Component serves the course catalog from a catalog.Store.
type Component struct {
	store catalog.Store
	sql   bool
}

// New wraps store.  Pass sql=true when store is backed by the database
// so Migrations returns the schema.
func New(store catalog.Store, sql bool) *Component {
	return &Component{store: store, sql: sql}
}

func (c *Component) Name() string { return "catalog" }

// Migrations returns the catalog schema and seed when SQL-backed.
func (c *Component) Migrations() []string {
	if !c.sql {
		return nil
	}
	return catalog.Migrations()
}

func (c *Component) Routes(p *pipeline.Pipeline) {
	s := p.Scope("/catalog", locals.Stylesheet(Stylesheet, 0))
	s.Get("/", c.list)
	s.Get("/{id}", c.detail)
}

/*──────────────────────────── Handlers ─────────────────────────────────────*/

func (c *Component) list(ctx *core.Context, _ http.ResponseWriter, r *http.Request) pipeline.Result {
	courses, err := c.store.List(r.Context())
	if err != nil {
		return pipeline.Fail(funnel.ServerFault(fmt.Errorf("catalog list: %w", err)))
	}
	ctx.SetTitle("Course Catalog")
	ctx.Set("Courses", courses)
	return pipeline.Render("catalog/list")
}

func (c *Component) detail(ctx *core.Context, _ http.ResponseWriter, r *http.Request) pipeline.Result {
	id := chi.URLParam(r, "id")
	course, err := c.store.Lookup(r.Context(), id)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return pipeline.Fail(funnel.NotFound("Course %s not found", id))
	case err != nil:
		return pipeline.Fail(funnel.ServerFault(fmt.Errorf("catalog lookup %s: %w", id, err)))
	}

	sortBy := catalog.ParseSort(ctx.Query("sort"))
	course.Sections = catalog.SortSections(course.Sections, sortBy)
	zap.S().Debugw("viewing course", "id", id, "sort", sortBy)

	ctx.SetTitle(course.ID + " - " + course.Title)
	ctx.Set("Course", course)
	ctx.Set("CurrentSort", string(sortBy))
	ctx.Set("SortOptions", []catalog.SortKey{catalog.SortTime, catalog.SortProfessor, catalog.SortRoom})
	return pipeline.Render("catalog/detail")
}
