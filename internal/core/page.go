// internal/core/page.go
//
// Page is the immutable snapshot handed to the renderer.  Styles and
// Scripts are the flattened registry output at snapshot time.

package core

import (
	"html/template"
	"net/url"

	"github.com/yanizio/campus/internal/requestinfo"
)

// Page carries everything a template may read.
type Page struct {
	Title         string
	Env           string
	CurrentYear   int
	Greeting      string
	ThemeClass    string
	QueryParams   url.Values
	Styles        template.HTML
	Scripts       template.HTML
	Authenticated bool
	User          string
	Info          *requestinfo.RequestInfo
	Data          map[string]any
	FormErrors    []FieldError

	// Error pages only.
	Status int
	Error  string
	Stack  string
}

// Page builds the render snapshot.  Call after Seal so the output is final.
func (c *Context) Page() Page {
	styles := c.Assets.RenderStyles()
	scripts := c.Assets.RenderScripts()
	query := c.QueryParams()

	c.mu.Lock()
	defer c.mu.Unlock()
	return Page{
		Title:         c.title,
		Env:           c.Env,
		CurrentYear:   c.currentYear,
		Greeting:      c.greeting,
		ThemeClass:    c.themeClass,
		QueryParams:   query,
		Styles:        styles,
		Scripts:       scripts,
		Authenticated: c.authenticated,
		User:          c.user,
		Info:          c.info,
		Data:          c.viewDataCopy(),
		FormErrors:    append([]FieldError(nil), c.formErrors...),
		Status:        c.statusLocked(),
	}
}

func (c *Context) statusLocked() int {
	if c.status == 0 {
		return 200
	}
	return c.status
}
