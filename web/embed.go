// web/embed.go
//
// Embedded site assets.  Templates follow the layout internal/theme
// expects (layouts/, partials/, pages/); public/ is served verbatim.
// Development mode may point views.dir at web/templates on disk instead
// so edits show up through live reload.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates public
var files embed.FS

// Templates returns the template tree rooted at templates/.
func Templates() fs.FS { return sub("templates") }

// Public returns the static asset tree rooted at public/.
func Public() fs.FS { return sub("public") }

func sub(dir string) fs.FS {
	f, err := fs.Sub(files, dir)
	if err != nil {
		panic(err) // dir is a compile-time constant
	}
	return f
}
