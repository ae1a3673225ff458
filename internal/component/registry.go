// internal/component/registry.go
//
// Component registry (ordered, cycle-free).
//
// Each concrete component lives under components/<name> and is built by
// the application with its collaborators already injected.  The registry
// keeps registration order: routes are mounted, and migrations applied,
// in exactly the order components were added.
//
// Notes
// -----
// • Names are unique.  A duplicate is a wiring bug and panics.
// • Oxford commas, two spaces after periods.

package component

import (
	"context"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/campus/internal/database"
	"github.com/yanizio/campus/internal/pipeline"
)

// Component contract.
//
// Migrations() may return nil if the component has no schema changes.
// Routes() registers scopes and routes on the shared pipeline, e.g:
//
//	s := p.Scope("/catalog", locals.Stylesheet("/css/catalog.css", 0))
//	s.Get("/", list)
//	s.Get("/{id}", detail)
type Component interface {
	Name() string
	Routes(p *pipeline.Pipeline)
	Migrations() []string
}

// Registry holds components in registration order.
type Registry struct {
	mu    sync.RWMutex
	order []Component
	names map[string]bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]bool)}
}

// Register appends components.
func (r *Registry) Register(cs ...Component) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range cs {
		if r.names[c.Name()] {
			panic(fmt.Sprintf("component: %q registered twice", c.Name()))
		}
		r.names[c.Name()] = true
		r.order = append(r.order, c)
	}
}

// All returns every registered component in registration order.
func (r *Registry) All() []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Component(nil), r.order...)
}

// Mount calls Routes on every component.
func (r *Registry) Mount(p *pipeline.Pipeline) {
	for _, c := range r.All() {
		c.Routes(p)
		zap.S().Debugw("component mounted", "component", c.Name())
	}
}

// Migrate applies each component's migrations under its own name.
func (r *Registry) Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, c := range r.All() {
		stmts := c.Migrations()
		if len(stmts) == 0 {
			continue
		}
		if err := database.Migrate(ctx, db, c.Name(), stmts); err != nil {
			return fmt.Errorf("migrate %s: %w", c.Name(), err)
		}
	}
	return nil
}
