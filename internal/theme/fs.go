// fs.go holds tiny helpers for walking a template tree when glob patterns
// such as “**/*.html” are not available in the Go standard library.  The
// key export is CollectHTML, which returns every .html path under a
// directory of an fs.FS.
package theme

import (
	"io/fs"
	"strings"
)

// CollectHTML walks dir recursively and returns a sorted list of *.html
// paths in slash form, ready for template.ParseFS.
//
// A missing directory yields (nil, nil) so optional folders such as
// “partials” can be skipped without special cases.
func CollectHTML(fsys fs.FS, dir string) ([]string, error) {
	var files []string

	err := fs.WalkDir(fsys, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil { // propagate filesystem errors immediately
			return err
		}
		// Skip directories quickly.
		if d.IsDir() {
			return nil
		}
		// We care only about *.html files.
		if strings.HasSuffix(strings.ToLower(d.Name()), ".html") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		if _, statErr := fs.Stat(fsys, dir); statErr != nil {
			return nil, nil
		}
		return nil, err
	}
	return files, nil
}
