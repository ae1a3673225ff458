// components/faculty/faculty.go
//
// Faculty directory component.
//
//   - GET /faculty           – directory; ?sort=name|department|title
//                              (default department).
//   - GET /faculty/{slug}    – one member, or 404.
//
// The faculty stylesheet is attached by a /faculty scope stage.

package faculty

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/campus/internal/component"
	"github.com/yanizio/campus/internal/core"
	"github.com/yanizio/campus/internal/faculty"
	"github.com/yanizio/campus/internal/funnel"
	"github.com/yanizio/campus/internal/locals"
	"github.com/yanizio/campus/internal/pipeline"
	"github.com/yanizio/campus/internal/routing"
)

// Stylesheet is added to every /faculty request.
const Stylesheet = "/css/faculty.css"

var _ component.Component = (*Component)(nil)

// Component serves the directory from a faculty.Store.
type Component struct {
	store faculty.Store
	sql   bool
}

// New wraps store; sql marks a database-backed store.
func New(store faculty.Store, sql bool) *Component {
	return &Component{store: store, sql: sql}
}

func (c *Component) Name() string { return "faculty" }

func (c *Component) Migrations() []string {
	if !c.sql {
		return nil
	}
	return faculty.Migrations()
}

func (c *Component) Routes(p *pipeline.Pipeline) {
	s := p.Scope("/faculty", locals.Stylesheet(Stylesheet, 0))
	s.Get("/", c.list)
	s.Get("/{slug}", c.detail)
}

// Entry is one row of the directory view.
type Entry struct {
	faculty.Member
	Path string
}

func (c *Component) list(ctx *core.Context, _ http.ResponseWriter, r *http.Request) pipeline.Result {
	members, err := c.store.List(r.Context())
	if err != nil {
		return pipeline.Fail(funnel.ServerFault(fmt.Errorf("faculty list: %w", err)))
	}
	sortBy := faculty.ParseSort(ctx.Query("sort"))

	sorted := faculty.Sorted(members, sortBy)
	entries := make([]Entry, 0, len(sorted))
	for _, m := range sorted {
		entries = append(entries, Entry{Member: m, Path: routing.BuildPath("faculty", m.Slug)})
	}

	ctx.SetTitle("Faculty List")
	ctx.Set("Faculty", entries)
	ctx.Set("CurrentSort", string(sortBy))
	ctx.Set("SortOptions", []faculty.SortKey{faculty.SortName, faculty.SortDepartment, faculty.SortTitle})
	return pipeline.Render("faculty/list")
}

func (c *Component) detail(ctx *core.Context, _ http.ResponseWriter, r *http.Request) pipeline.Result {
	slug := chi.URLParam(r, "slug")
	m, err := c.store.Lookup(r.Context(), slug)
	switch {
	case errors.Is(err, faculty.ErrNotFound):
		return pipeline.Fail(funnel.NotFound("Faculty member %s not found", slug))
	case err != nil:
		return pipeline.Fail(funnel.ServerFault(fmt.Errorf("faculty lookup %s: %w", slug, err)))
	}
	ctx.SetTitle("Faculty Member")
	ctx.Set("Member", m)
	return pipeline.Render("faculty/detail")
}
