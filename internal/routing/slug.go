// internal/routing/slug.go
//
// Slug and path helpers for record URLs such as /faculty/{slug}.
//
// • MakeSlug(name) ─ converts a display name into a URL-safe slug limited
//   to ASCII a-z, 0-9, and “-”.
// • BuildPath(parent, slug) ─ joins parent and slug with a single “/” and
//   guarantees exactly one leading slash.
//
// Rules (MakeSlug)
// ----------------
// 1. Decompose (NFD) and drop combining marks, so “José” becomes “jose”.
// 2. Lower-case everything.
// 3. Convert any run of other characters to one “-”.
// 4. Trim leading and trailing “-”.
// 5. Cap at 100 bytes; an empty result becomes "item".

package routing

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxSlug = 100

// MakeSlug converts name → lower-kebab ASCII.
func MakeSlug(name string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	b.Grow(len(folded))
	dash := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash {
			b.WriteByte('-')
			dash = true
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxSlug {
		slug = strings.TrimRight(slug[:maxSlug], "-")
	}
	if slug == "" {
		return "item"
	}
	return slug
}

// BuildPath joins parent + slug with exactly one leading slash and no
// duplicate separators.
func BuildPath(parent, slug string) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{parent, slug} {
		if p = strings.Trim(p, "/"); p != "" {
			parts = append(parts, p)
		}
	}
	return "/" + strings.Join(parts, "/")
}
