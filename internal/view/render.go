// internal/view/render.go
//
// View engine: template-set lookup, func-map injection, buffered render,
// and hot reload for the live-reload channel.
//
// Public helpers
// --------------
//   - Renderer       – the interface the pipeline and Error Funnel use.
//   - Engine.Render  – execute "base" for a named view into w.
//   - Engine.Reload  – re-parse the template tree (development only).
//
// Every render executes into a buffer first.  A template error therefore
// never leaves a half-written body behind, which lets the Error Funnel
// fall back cleanly.
//
// Style
// -----
// • Oxford commas, two spaces after periods.

package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"sync"

	"go.uber.org/zap"

	"github.com/yanizio/campus/internal/core"
	"github.com/yanizio/campus/internal/theme"
	"github.com/yanizio/campus/internal/viewhelpers"
)

// Renderer renders a finalized page snapshot for a named view.
type Renderer interface {
	Render(w io.Writer, name string, page core.Page) error
}

// ErrUnknownView is returned when no template set exists for a name.
type ErrUnknownView string

func (e ErrUnknownView) Error() string { return fmt.Sprintf("view: unknown view %q", string(e)) }

// Engine is safe for concurrent use.  Zero value is unusable; call New.
type Engine struct {
	fsys fs.FS

	mu   sync.RWMutex
	sets map[string]*template.Template
}

// New parses the template tree in fsys.
func New(fsys fs.FS) (*Engine, error) {
	e := &Engine{fsys: fsys}
	if err := e.Reload(); err != nil {
		return nil, err
	}
	return e, nil
}

// Reload re-parses every view.  On failure the previous sets stay live.
func (e *Engine) Reload() error {
	sets, err := theme.Load(e.fsys, viewhelpers.FuncMap())
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.sets = sets
	e.mu.Unlock()
	zap.S().Debugw("views loaded", "count", len(sets))
	return nil
}

// Render executes the "base" layout for name and copies it to w.
func (e *Engine) Render(w io.Writer, name string, page core.Page) error {
	e.mu.RLock()
	t, ok := e.sets[name]
	e.mu.RUnlock()
	if !ok {
		return ErrUnknownView(name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", page); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Has reports whether a view exists.
func (e *Engine) Has(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.sets[name]
	return ok
}
