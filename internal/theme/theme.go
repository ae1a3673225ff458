// Package theme describes the site's visual theme.  It combines:
//
//   - Classes   – the body classes a request may be assigned.
//   - Pick      – the injected-randomness chooser used by the theme stage.
//   - Load      – the template-set loader used by internal/view.
//
// Randomness is injected as an intn function so callers can test theme
// selection without seeding a global RNG.
package theme

// Classes lists the body classes in selection order.
var Classes = []string{"blue-theme", "green-theme", "red-theme"}

// Pick returns Classes[intn(len(Classes))].  Out-of-range results are
// clamped so a misbehaving source can never panic a request.
func Pick(intn func(n int) int) string {
	i := intn(len(Classes))
	if i < 0 || i >= len(Classes) {
		i = 0
	}
	return Classes[i]
}
