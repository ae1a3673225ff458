// internal/head/registry.go
//
// The Registry collects the stylesheet and script fragments a page needs.
// It is scoped to a single request.  Global stages, route scopes, and leaf
// handlers push fragments in, then the base layout emits them once.
//
// Ordering
// --------
//   - Higher priority first.
//   - Equal priority keeps append order (stable sort).
//   - Entries are never mutated or reordered in place; every Render call
//     sorts a fresh copy, so two calls without an intervening Add return
//     identical output.
//
// Notes
// -----
//   - Content is opaque.  The registry neither escapes nor validates it.
//   - After Seal the registry silently ignores further appends.
package head

import (
	"cmp"
	"html/template"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Entry is one registered fragment.
type Entry struct {
	Content  string
	Priority int
}

// Registry is not meant to be shared between requests.  The mutex only
// guards against a handler that fans out goroutines within one request.
type Registry struct {
	mu sync.Mutex

	styles  []Entry
	scripts []Entry
	sealed  bool
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{}
}

// ------------------------------------------------------------------
// Append helpers
// ------------------------------------------------------------------

// AddStyle appends a style fragment at the default priority (0).
func (r *Registry) AddStyle(content string) { r.add(&r.styles, "style", content, 0) }

// AddStyleWithPriority appends a style fragment; higher priority renders first.
func (r *Registry) AddStyleWithPriority(content string, priority int) {
	r.add(&r.styles, "style", content, priority)
}

// AddScript appends a script fragment at the default priority (0).
func (r *Registry) AddScript(content string) { r.add(&r.scripts, "script", content, 0) }

// AddScriptWithPriority appends a script fragment; higher priority renders first.
func (r *Registry) AddScriptWithPriority(content string, priority int) {
	r.add(&r.scripts, "script", content, priority)
}

func (r *Registry) add(tgt *[]Entry, kind, content string, priority int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		zap.L().Debug("asset dropped after seal",
			zap.String("kind", kind), zap.String("content", content))
		return
	}
	*tgt = append(*tgt, Entry{Content: content, Priority: priority})
}

// Seal freezes the registry.  Called when the page is handed to the renderer.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// ------------------------------------------------------------------
// Read helpers
// ------------------------------------------------------------------

// Styles returns a copy of the style entries in append order.
func (r *Registry) Styles() []Entry { return r.snapshot(r.styles) }

// Scripts returns a copy of the script entries in append order.
func (r *Registry) Scripts() []Entry { return r.snapshot(r.scripts) }

// RenderStyles flattens styles into newline-separated markup.
func (r *Registry) RenderStyles() template.HTML { return flatten(r.Styles()) }

// RenderScripts flattens scripts into newline-separated markup.
func (r *Registry) RenderScripts() template.HTML { return flatten(r.Scripts()) }

func (r *Registry) snapshot(src []Entry) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(src)
}

// flatten sorts by descending priority (stable) and joins with "\n".
// An empty slice yields "".
func flatten(entries []Entry) template.HTML {
	if len(entries) == 0 {
		return ""
	}
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return cmp.Compare(b.Priority, a.Priority)
	})
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = e.Content
	}
	return template.HTML(strings.Join(parts, "\n"))
}
