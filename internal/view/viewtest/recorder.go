// Package viewtest provides a view.Renderer that records what it was asked
// to render, for handler tests that should not depend on templates.
package viewtest

import (
	"fmt"
	"io"
	"sync"

	"github.com/yanizio/campus/internal/core"
)

// Recorder writes "<view>|<title>" and keeps the last page per view.
type Recorder struct {
	mu    sync.Mutex
	pages map[string]core.Page
	order []string

	// Fail, when set, makes Render return an error for that view.
	Fail map[string]bool
}

// New returns an empty Recorder.
func New() *Recorder { return &Recorder{pages: make(map[string]core.Page)} }

// Render implements view.Renderer.
func (r *Recorder) Render(w io.Writer, name string, page core.Page) error {
	r.mu.Lock()
	fail := r.Fail[name]
	if !fail {
		r.pages[name] = page
		r.order = append(r.order, name)
	}
	r.mu.Unlock()
	if fail {
		return fmt.Errorf("viewtest: %s configured to fail", name)
	}
	_, err := fmt.Fprintf(w, "%s|%s", name, page.Title)
	return err
}

// Page returns the last page rendered for name.
func (r *Recorder) Page(name string) (core.Page, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pages[name]
	return p, ok
}

// Views lists rendered view names in order.
func (r *Recorder) Views() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}
