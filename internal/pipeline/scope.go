// internal/pipeline/scope.go
//
// Route Scoping: a tree of path prefixes, each carrying extra stages.  For
// every request the tree is walked in registration order, parents before
// children, and the stages of every matching node are spliced in after
// the global stages and before the route's own stages.
//
// Matching is segment-aware.  "/catalog" matches "/catalog",
// "/catalog/", and "/catalog/CS121" but never "/catalogue".

package pipeline

import (
	"strings"
)

// Scope is one node in the prefix tree.  Create with Pipeline.Scope or
// Scope.Scope; the zero value is unusable.
type Scope struct {
	p        *Pipeline
	prefix   string
	stages   []Stage
	children []*Scope
}

// Prefix returns the full, joined prefix of s.
func (s *Scope) Prefix() string { return s.prefix }

// Use appends stages to s.
func (s *Scope) Use(stages ...Stage) *Scope {
	s.p.mustOpen()
	s.p.mu.Lock()
	defer s.p.mu.Unlock()
	s.stages = append(s.stages, stages...)
	return s
}

// Scope registers a child scope whose prefix is joined onto s's.
func (s *Scope) Scope(prefix string, stages ...Stage) *Scope {
	s.p.mustOpen()
	child := &Scope{p: s.p, prefix: joinPath(s.prefix, prefix), stages: stages}
	s.p.mu.Lock()
	s.children = append(s.children, child)
	s.p.mu.Unlock()
	return child
}

// Get registers a GET leaf relative to s.  "" and "/" mean the prefix
// itself.
func (s *Scope) Get(pattern string, leaf Stage, before ...Stage) {
	s.p.Handle("GET", joinPath(s.prefix, pattern), leaf, before...)
}

// Post registers a POST leaf relative to s.
func (s *Scope) Post(pattern string, leaf Stage, before ...Stage) {
	s.p.Handle("POST", joinPath(s.prefix, pattern), leaf, before...)
}

// collect appends the stages of every node matching path, depth first.
func (s *Scope) collect(path string, out []Stage) []Stage {
	if !matchPrefix(s.prefix, path) {
		return out
	}
	out = append(out, s.stages...)
	for _, c := range s.children {
		out = c.collect(path, out)
	}
	return out
}

// matchPrefix reports whether path lies under prefix on a segment boundary.
func matchPrefix(prefix, path string) bool {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return true
	}
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	rest := path[len(prefix):]
	return rest == "" || rest[0] == '/'
}

// joinPath glues a prefix and a relative pattern without doubling slashes.
func joinPath(prefix, pattern string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	switch {
	case pattern == "" || pattern == "/":
		if prefix == "" {
			return "/"
		}
		return prefix
	case !strings.HasPrefix(pattern, "/"):
		pattern = "/" + pattern
	}
	return prefix + pattern
}
