package theme

import (
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
)

// Template tree layout inside the supplied fs.FS:
//
//	layouts/*.html   – shared layouts; must define "base"
//	partials/*.html  – optional shared fragments
//	pages/**.html    – one file per view; each defines "content"
//
// Every page is parsed into its own clone of the shared set so the pages'
// "content" blocks never collide.  The view name is the page path without
// the "pages/" prefix and ".html" suffix, e.g. "catalog/detail".
const (
	layoutsDir  = "layouts"
	partialsDir = "partials"
	pagesDir    = "pages"
)

// Load parses the template tree and returns one set per view name.
func Load(fsys fs.FS, funcs template.FuncMap) (map[string]*template.Template, error) {
	shared, err := CollectHTML(fsys, layoutsDir)
	if err != nil {
		return nil, fmt.Errorf("collect layouts: %w", err)
	}
	if len(shared) == 0 {
		return nil, fmt.Errorf("theme: no layouts under %s", layoutsDir)
	}
	partials, err := CollectHTML(fsys, partialsDir)
	if err != nil {
		return nil, fmt.Errorf("collect partials: %w", err)
	}
	shared = append(shared, partials...)

	base, err := template.New("").Funcs(funcs).ParseFS(fsys, shared...)
	if err != nil {
		return nil, fmt.Errorf("parse layouts: %w", err)
	}
	if base.Lookup("base") == nil {
		return nil, fmt.Errorf("theme: layouts do not define %q", "base")
	}

	pages, err := CollectHTML(fsys, pagesDir)
	if err != nil {
		return nil, fmt.Errorf("collect pages: %w", err)
	}

	sets := make(map[string]*template.Template, len(pages))
	for _, p := range pages {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(fsys, p); err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
		name := strings.TrimSuffix(strings.TrimPrefix(p, pagesDir+"/"), path.Ext(p))
		sets[name] = t
	}
	return sets, nil
}
